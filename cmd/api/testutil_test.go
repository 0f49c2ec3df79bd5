package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/liliang-cn/cinelight/internal/auth"
	"github.com/liliang-cn/cinelight/internal/data"
	"github.com/liliang-cn/cinelight/internal/jsonlog"
)

// stubMovieStore 用函数字段打桩的电影存储
type stubMovieStore struct {
	insert            func(*data.Movie) error
	getAll            func() ([]*data.Movie, error)
	getByTitle        func(string) (*data.Movie, error)
	update            func(string, *data.Movie) error
	delete            func(string) error
	getAllWithRatings func() ([]*data.MovieWithRating, error)
	getWithRatings    func(string) ([]*data.MovieWithRating, error)
}

func (s stubMovieStore) Insert(movie *data.Movie) error {
	if s.insert == nil {
		return nil
	}
	return s.insert(movie)
}

func (s stubMovieStore) GetAll() ([]*data.Movie, error) {
	if s.getAll == nil {
		return []*data.Movie{}, nil
	}
	return s.getAll()
}

func (s stubMovieStore) GetByTitle(title string) (*data.Movie, error) {
	if s.getByTitle == nil {
		return nil, data.ErrRecordNotFound
	}
	return s.getByTitle(title)
}

func (s stubMovieStore) Update(title string, movie *data.Movie) error {
	if s.update == nil {
		return nil
	}
	return s.update(title, movie)
}

func (s stubMovieStore) Delete(title string) error {
	if s.delete == nil {
		return data.ErrRecordNotFound
	}
	return s.delete(title)
}

func (s stubMovieStore) GetAllWithRatings() ([]*data.MovieWithRating, error) {
	if s.getAllWithRatings == nil {
		return []*data.MovieWithRating{}, nil
	}
	return s.getAllWithRatings()
}

func (s stubMovieStore) GetWithRatings(title string) ([]*data.MovieWithRating, error) {
	if s.getWithRatings == nil {
		return []*data.MovieWithRating{}, nil
	}
	return s.getWithRatings(title)
}

// stubUserStore 用函数字段打桩的用户存储
type stubUserStore struct {
	insert        func(*data.User) error
	getByUsername func(string) (*data.User, error)
}

func (s stubUserStore) Insert(user *data.User) error {
	if s.insert == nil {
		return nil
	}
	return s.insert(user)
}

func (s stubUserStore) GetByUsername(username string) (*data.User, error) {
	if s.getByUsername == nil {
		return nil, data.ErrRecordNotFound
	}
	return s.getByUsername(username)
}

// stubReviewStore 用函数字段打桩的影评存储
type stubReviewStore struct {
	insert func(*data.Review) error
	getAll func() ([]*data.Review, error)
}

func (s stubReviewStore) Insert(review *data.Review) error {
	if s.insert == nil {
		return nil
	}
	return s.insert(review)
}

func (s stubReviewStore) GetAll() ([]*data.Review, error) {
	if s.getAll == nil {
		return []*data.Review{}, nil
	}
	return s.getAll()
}

// newTestApplication 返回一个带打桩存储的 application，限流关闭
func newTestApplication() *application {
	var cfg config
	cfg.env = "testing"
	cfg.uniqueKey = "test-unique-key"
	cfg.limiter.enabled = false
	cfg.jwt.secret = "test-secret-which-is-long-enough"
	cfg.jwt.ttl = time.Hour

	return &application{
		config: cfg,
		logger: jsonlog.New(io.Discard, jsonlog.LevelOff),
		models: data.Models{
			Movies:  stubMovieStore{},
			Users:   stubUserStore{},
			Reviews: stubReviewStore{},
		},
		tokens: auth.NewManager(cfg.jwt.secret, cfg.jwt.ttl),
	}
}

// authHeader 为测试用户签发一个可用的 Authorization 头
func authHeader(t *testing.T, app *application) string {
	t.Helper()

	token, err := app.tokens.GenerateToken("64b0c0ffee0c0ffee0c0ffee", "alice")
	require.NoError(t, err)

	return "JWT " + token
}

// send 经过完整中间件链发一个请求，返回状态码和原始响应体
func send(t *testing.T, app *application, method, path, authorization string, body interface{}) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		js, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(js)
	}

	req := httptest.NewRequest(method, path, reader)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rr := httptest.NewRecorder()
	app.routes().ServeHTTP(rr, req)

	rs := rr.Result()
	defer rs.Body.Close()

	respBody, err := io.ReadAll(rs.Body)
	require.NoError(t, err)

	return rs.StatusCode, respBody
}

// sendVia 复用同一个 handler 发请求，用于限流这类有内部状态的中间件
func sendVia(t *testing.T, handler http.Handler, method, path, authorization string) (int, []byte) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	rs := rr.Result()
	defer rs.Body.Close()

	respBody, err := io.ReadAll(rs.Body)
	require.NoError(t, err)

	return rs.StatusCode, respBody
}

// sendWithOrigin 带 Origin 头访问 healthcheck，返回状态码和 CORS 响应头
func sendWithOrigin(t *testing.T, handler http.Handler, origin string) (int, string) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	req.Header.Set("Origin", origin)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	rs := rr.Result()
	defer rs.Body.Close()

	return rs.StatusCode, rs.Header.Get("Access-Control-Allow-Origin")
}

// decode 把响应体解析成 map 方便断言
func decode(t *testing.T, body []byte) map[string]interface{} {
	t.Helper()

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &m))

	return m
}
