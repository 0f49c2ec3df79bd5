package main

import (
	"errors"
	"net/http"

	"github.com/liliang-cn/cinelight/internal/data"
	"github.com/liliang-cn/cinelight/internal/validator"
)

// signupHandler 注册新用户
func (app *application) signupHandler(w http.ResponseWriter, r *http.Request) {
	// 解析请求中的姓名、用户名和密码
	var input struct {
		Name     string `json:"name"`
		Username string `json:"username"`
		Password string `json:"password"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	// 用户名和密码缺一不可
	v := validator.New()
	v.Check(input.Username != "", "username", "Please include both username and password to signup.")
	v.Check(input.Password != "", "password", "Please include both username and password to signup.")
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.First().Message)
		return
	}

	user := &data.User{
		Name:     input.Name,
		Username: input.Username,
	}

	// 密码只存 bcrypt 哈希，明文不落库
	err = user.Password.Set(input.Password)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.models.Users.Insert(user)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrDuplicateUsername):
			app.errorResponse(w, r, http.StatusConflict, "A user with that username already exists.")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	// 用户名是邮箱地址时在后台发封欢迎邮件，失败只记日志
	if app.config.smtp.host != "" && validator.Matches(user.Username, validator.EmailRX) {
		app.background(func() {
			err := app.mailer.Send(user.Username, "user_welcome.tmpl", user)
			if err != nil {
				app.logger.PrintError(err, nil)
			}
		})
	}

	env := envelope{"success": true, "message": "Successfully created new user."}

	err = app.writeJSON(w, http.StatusCreated, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
