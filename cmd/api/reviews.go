package main

import (
	"errors"
	"net/http"

	"github.com/liliang-cn/cinelight/internal/data"
	"github.com/liliang-cn/cinelight/internal/validator"
)

// listReviewsHandler 返回所有影评，不按电影过滤
func (app *application) listReviewsHandler(w http.ResponseWriter, r *http.Request) {
	reviews, err := app.models.Reviews.GetAll()
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, reviews, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// createReviewHandler 为已存在的电影新增一条影评
// reviewerName 取自 Token 里的用户身份，不信任客户端提供的值
func (app *application) createReviewHandler(w http.ResponseWriter, r *http.Request) {
	// rating 用指针解码，0 分也算提供了评分
	var input struct {
		Title  string   `json:"title"`
		Review string   `json:"review"`
		Rating *float64 `json:"rating"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(input.Title != "", "title", "Title must be included to post reviews.")
	v.Check(input.Review != "", "review", "Must include a review")
	v.Check(input.Rating != nil, "rating", "Must include a rating")

	if !v.Valid() {
		app.failedValidationResponse(w, r, v.First().Message)
		return
	}

	// 影评只能挂在已存在的电影标题上
	_, err = app.models.Movies.GetByTitle(input.Title)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.movieNotFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	review := &data.Review{
		Title:        input.Title,
		ReviewerName: app.contextGetUser(r).Username,
		Review:       input.Review,
		Rating:       *input.Rating,
	}

	err = app.models.Reviews.Insert(review)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, app.requestEnvelope(r, "review saved", input), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
