package main

import (
	"errors"
	"net/http"

	"github.com/liliang-cn/cinelight/internal/data"
	"github.com/liliang-cn/cinelight/internal/validator"
)

// movieInput 创建和更新电影共用的请求体
type movieInput struct {
	Title        string   `json:"title"`
	YearReleased string   `json:"yearReleased"`
	Genre        string   `json:"genre"`
	Actors       []string `json:"actors"`
	ImgURL       string   `json:"imgURL"`
}

// listMoviesHandler 返回所有电影，带 ?reviews=true 时返回按平均分降序的聚合视图
func (app *application) listMoviesHandler(w http.ResponseWriter, r *http.Request) {
	if app.readBoolQuery(r, "reviews") {
		movies, err := app.models.Movies.GetAllWithRatings()
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}

		err = app.writeJSON(w, http.StatusOK, movies, nil)
		if err != nil {
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	movies, err := app.models.Movies.GetAll()
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, movies, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showMovieHandler 按标题返回单部电影，带 ?reviews=true 时返回聚合视图
func (app *application) showMovieHandler(w http.ResponseWriter, r *http.Request) {
	title := app.readTitleParam(r)

	// 先确认电影存在，再决定返回普通记录还是聚合视图
	movie, err := app.models.Movies.GetByTitle(title)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.movieNotFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	if app.readBoolQuery(r, "reviews") {
		view, err := app.models.Movies.GetWithRatings(title)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}

		err = app.writeJSON(w, http.StatusOK, view, nil)
		if err != nil {
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, movie, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// createMovieHandler 新增电影
// 校验按固定顺序短路：genre 存在 → genre 合法 → yearReleased 长度 → actors 数量
func (app *application) createMovieHandler(w http.ResponseWriter, r *http.Request) {
	var input movieInput

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(input.Genre != "", "genre", "Movie must contain a genre.")
	v.Check(input.Genre == "" || validator.In(input.Genre, data.Genres...), "genre", "Invalid genre.")
	v.Check(len(input.YearReleased) >= 4, "yearReleased", "yearReleased must be at least 4 digits.")
	v.Check(len(input.Actors) >= 3, "actors", "Movie must contain at least three actors.")

	if !v.Valid() {
		first := v.First()
		// 类型不在枚举里时要附带允许的类型列表
		if first.Message == "Invalid genre." {
			app.invalidGenreResponse(w, r)
			return
		}
		app.failedValidationResponse(w, r, first.Message)
		return
	}

	movie := &data.Movie{
		Title:        input.Title,
		YearReleased: input.YearReleased,
		Genre:        input.Genre,
		Actors:       input.Actors,
		ImgURL:       input.ImgURL,
	}

	err = app.models.Movies.Insert(movie)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrDuplicateTitle):
			app.errorResponse(w, r, http.StatusConflict, "A movie with that title already exists.")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, app.requestEnvelope(r, "movie saved", input), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updateMovieHandler 按标题整体替换 title、yearReleased、genre、actors
// 标题不存在时更新零条记录，依旧报成功，这是既定契约
func (app *application) updateMovieHandler(w http.ResponseWriter, r *http.Request) {
	title := app.readTitleParam(r)

	var input movieInput

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	movie := &data.Movie{
		Title:        input.Title,
		YearReleased: input.YearReleased,
		Genre:        input.Genre,
		Actors:       input.Actors,
	}

	err = app.models.Movies.Update(title, movie)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrDuplicateTitle):
			app.errorResponse(w, r, http.StatusConflict, "A movie with that title already exists.")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, app.requestEnvelope(r, "movie updated", input), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteMovieHandler 按标题删除电影
func (app *application) deleteMovieHandler(w http.ResponseWriter, r *http.Request) {
	title := app.readTitleParam(r)

	err := app.models.Movies.Delete(title)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.errorResponse(w, r, http.StatusBadRequest, "Title not found.")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, app.requestEnvelope(r, "movie deleted", nil), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
