package main

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liliang-cn/cinelight/internal/data"
)

func existingMovieStore() stubMovieStore {
	return stubMovieStore{getByTitle: func(title string) (*data.Movie, error) {
		if title == "X" {
			return &data.Movie{Title: "X", Genre: "Action", YearReleased: "2020", Actors: []string{"A", "B", "C"}}, nil
		}
		return nil, data.ErrRecordNotFound
	}}
}

// 必填字段按 title → review → rating 的顺序报告
func TestCreateReviewValidationOrder(t *testing.T) {
	tests := []struct {
		name        string
		body        map[string]interface{}
		wantMessage string
	}{
		{
			name:        "missing title",
			body:        map[string]interface{}{"review": "great", "rating": 4},
			wantMessage: "Title must be included to post reviews.",
		},
		{
			name:        "missing review",
			body:        map[string]interface{}{"title": "X", "rating": 4},
			wantMessage: "Must include a review",
		},
		{
			name:        "missing rating",
			body:        map[string]interface{}{"title": "X", "review": "great"},
			wantMessage: "Must include a rating",
		},
		{
			name:        "missing everything reports title first",
			body:        map[string]interface{}{},
			wantMessage: "Title must be included to post reviews.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApplication()
			app.models.Movies = existingMovieStore()

			status, body := send(t, app, http.MethodPost, "/reviews", authHeader(t, app), tt.body)

			assert.Equal(t, http.StatusBadRequest, status)

			got := decode(t, body)
			assert.Equal(t, false, got["success"])
			assert.Equal(t, tt.wantMessage, got["message"])
		})
	}
}

// 0 分也是有效评分，不能当成缺失
func TestCreateReviewZeroRating(t *testing.T) {
	app := newTestApplication()
	app.models.Movies = existingMovieStore()

	status, body := send(t, app, http.MethodPost, "/reviews", authHeader(t, app), map[string]interface{}{
		"title": "X", "review": "terrible", "rating": 0,
	})

	require.Equal(t, http.StatusOK, status)

	got := decode(t, body)
	assert.Equal(t, "review saved", got["message"])
}

func TestCreateReviewMovieMissing(t *testing.T) {
	app := newTestApplication()
	app.models.Movies = existingMovieStore()

	status, body := send(t, app, http.MethodPost, "/reviews", authHeader(t, app), map[string]interface{}{
		"title": "NoSuchTitle", "review": "great", "rating": 4,
	})

	assert.Equal(t, http.StatusBadRequest, status)

	got := decode(t, body)
	assert.Equal(t, false, got["success"])
	assert.Equal(t, "Movie not found", got["message"])
}

// reviewerName 一律取 Token 里的用户名，客户端传什么都不算数
func TestCreateReviewUsesAuthenticatedIdentity(t *testing.T) {
	app := newTestApplication()
	app.models.Movies = existingMovieStore()

	var inserted *data.Review
	app.models.Reviews = stubReviewStore{insert: func(rev *data.Review) error {
		inserted = rev
		return nil
	}}

	status, _ := send(t, app, http.MethodPost, "/reviews", authHeader(t, app), map[string]interface{}{
		"title": "X", "review": "great", "rating": 4, "reviewerName": "mallory",
	})

	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, inserted)

	assert.Equal(t, "alice", inserted.ReviewerName)
	assert.Equal(t, "X", inserted.Title)
	assert.Equal(t, 4.0, inserted.Rating)
}

func TestListReviews(t *testing.T) {
	app := newTestApplication()
	app.models.Reviews = stubReviewStore{getAll: func() ([]*data.Review, error) {
		return []*data.Review{
			{Title: "X", ReviewerName: "alice", Review: "great", Rating: 4},
			{Title: "Y", ReviewerName: "bob", Review: "meh", Rating: 2},
		}, nil
	}}

	status, body := send(t, app, http.MethodGet, "/reviews", authHeader(t, app), nil)

	require.Equal(t, http.StatusOK, status)

	var reviews []data.Review
	require.NoError(t, json.Unmarshal(body, &reviews))
	require.Len(t, reviews, 2)
	assert.Equal(t, "alice", reviews[0].ReviewerName)
}
