package main

import (
	"expvar"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	// 路由不存在或者方法不允许时也返回统一的 JSON 错误
	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	router.HandlerFunc(http.MethodGet, "/healthcheck", app.healthcheckHandler)
	router.Handler(http.MethodGet, "/debug/vars", expvar.Handler())

	// signup 和 signin 不经过认证关卡
	router.HandlerFunc(http.MethodPost, "/signup", app.signupHandler)
	router.HandlerFunc(http.MethodPost, "/signin", app.signinHandler)

	router.HandlerFunc(http.MethodGet, "/movies", app.requireAuthenticatedUser(app.listMoviesHandler))
	router.HandlerFunc(http.MethodPost, "/movies", app.requireAuthenticatedUser(app.createMovieHandler))
	router.HandlerFunc(http.MethodGet, "/movies/:title", app.requireAuthenticatedUser(app.showMovieHandler))
	router.HandlerFunc(http.MethodPut, "/movies/:title", app.requireAuthenticatedUser(app.updateMovieHandler))
	router.HandlerFunc(http.MethodDelete, "/movies/:title", app.requireAuthenticatedUser(app.deleteMovieHandler))

	router.HandlerFunc(http.MethodGet, "/reviews", app.requireAuthenticatedUser(app.listReviewsHandler))
	router.HandlerFunc(http.MethodPost, "/reviews", app.requireAuthenticatedUser(app.createReviewHandler))

	return app.recoverPanic(app.enableCORS(app.rateLimiter(app.authenticate(router))))
}
