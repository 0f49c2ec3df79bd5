package main

import (
	"net/http"

	"github.com/liliang-cn/cinelight/internal/data"
)

// logError 记录请求处理中的错误
func (app *application) logError(r *http.Request, err error) {
	app.logger.PrintError(err, map[string]string{
		"request_method": r.Method,
		"request_url":    r.URL.String(),
	})
}

// errorResponse 所有失败响应的统一出口：{success:false, message}
func (app *application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	env := envelope{"success": false, "message": message}

	err := app.writeJSON(w, status, env, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

// serverErrorResponse 500，存储层的原始错误只进日志，不回给客户端
func (app *application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)

	message := "the server encountered a problem and could not process your request"
	app.errorResponse(w, r, http.StatusInternalServerError, message)
}

// notFoundResponse 404，路由不存在
func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := "the requested resource could not be found"
	app.errorResponse(w, r, http.StatusNotFound, message)
}

// methodNotAllowedResponse 405
func (app *application) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	message := "the " + r.Method + " method is not supported for this resource"
	app.errorResponse(w, r, http.StatusMethodNotAllowed, message)
}

// badRequestResponse 400，请求体解析失败等
func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

// failedValidationResponse 400，返回最先失败的字段校验消息
func (app *application) failedValidationResponse(w http.ResponseWriter, r *http.Request, message string) {
	app.errorResponse(w, r, http.StatusBadRequest, message)
}

// invalidGenreResponse 400，附带允许的类型列表
func (app *application) invalidGenreResponse(w http.ResponseWriter, r *http.Request) {
	env := envelope{
		"success":         false,
		"message":         "Invalid genre.",
		"accepted_genres": data.Genres,
	}

	err := app.writeJSON(w, http.StatusBadRequest, env, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

// movieNotFoundResponse 400，被引用的电影不存在
func (app *application) movieNotFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusBadRequest, "Movie not found")
}

// invalidCredentialsResponse 401，用户名或密码错误
func (app *application) invalidCredentialsResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusUnauthorized, "Authentication failed.")
}

// invalidAuthenticationTokenResponse 401，Token 缺失或者不合法
func (app *application) invalidAuthenticationTokenResponse(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	app.errorResponse(w, r, http.StatusUnauthorized, "invalid or missing authentication token")
}

// authenticationRequiredResponse 401，必须先登录
func (app *application) authenticationRequiredResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusUnauthorized, "you must be authenticated to access this resource")
}

// rateLimitExceededResponse 429
func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	message := "rate limit exceeded"
	app.errorResponse(w, r, http.StatusTooManyRequests, message)
}
