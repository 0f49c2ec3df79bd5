package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
)

// envelope 响应体的统一包装
type envelope map[string]interface{}

// readTitleParam 从 URL 中取出 :title 参数
func (app *application) readTitleParam(r *http.Request) string {
	params := httprouter.ParamsFromContext(r.Context())
	return params.ByName("title")
}

// readBoolQuery 读取布尔型查询参数，缺失或者非 "true" 都算 false
func (app *application) readBoolQuery(r *http.Request, key string) bool {
	return r.URL.Query().Get(key) == "true"
}

// writeJSON 将数据编码成 JSON 写入响应
func (app *application) writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}

	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)

	return nil
}

// readJSON 解码请求体到 dst，并把常见的解码错误翻译成友好的提示
func (app *application) readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	// 限制请求体大小为 1MB
	maxBytes := 1_048_576
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)

		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")

		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)

		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")

		case strings.Contains(err.Error(), "http: request body too large"):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)

		case errors.As(err, &invalidUnmarshalError):
			panic(err)

		default:
			return err
		}
	}

	// 请求体中只允许有一个 JSON 值
	err = dec.Decode(&struct{}{})
	if err != io.EOF {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

// requestEnvelope 写操作的成功响应：消息、回显的请求头和请求体、配置的 key
func (app *application) requestEnvelope(r *http.Request, message string, body interface{}) envelope {
	e := envelope{
		"message": message,
		"headers": "No headers",
		"key":     app.config.uniqueKey,
		"body":    "No body",
	}

	if r.Header != nil {
		e["headers"] = r.Header
	}

	if body != nil {
		e["body"] = body
	}

	return e
}

// background 在后台 goroutine 中执行 fn，并从 panic 中恢复
func (app *application) background(fn func()) {
	app.wg.Add(1)

	go func() {
		defer app.wg.Done()

		defer func() {
			if err := recover(); err != nil {
				app.logger.PrintError(fmt.Errorf("%s", err), nil)
			}
		}()

		fn()
	}()
}
