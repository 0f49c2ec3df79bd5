package main

import (
	"errors"
	"net/http"

	"github.com/liliang-cn/cinelight/internal/data"
	"github.com/liliang-cn/cinelight/internal/validator"
)

// signinHandler 校验用户名密码并签发 Token
func (app *application) signinHandler(w http.ResponseWriter, r *http.Request) {
	// 解析请求中的用户名和密码
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	// 校验用户名和密码
	v := validator.New()
	v.Check(input.Username != "", "username", "Please include both username and password to signin.")
	v.Check(input.Password != "", "password", "Please include both username and password to signin.")
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.First().Message)
		return
	}

	// 根据用户名获取用户，用户不存在时同样返回 401，不能泄露用户名是否已注册
	user, err := app.models.Users.GetByUsername(input.Username)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.invalidCredentialsResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	// 检查提供的密码是否与存储的哈希匹配
	match, err := user.Password.Matches(input.Password)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	// 密码不匹配
	if !match {
		app.invalidCredentialsResponse(w, r)
		return
	}

	// 密码匹配，签发带 id 和 username 的 JWT
	token, err := app.tokens.GenerateToken(user.ID.Hex(), user.Username)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	// 返回的 Token 带 "JWT " 前缀，客户端整个放进 Authorization 头
	env := envelope{"success": true, "token": "JWT " + token}

	err = app.writeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
