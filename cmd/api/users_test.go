package main

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liliang-cn/cinelight/internal/data"
)

func TestSignup(t *testing.T) {
	tests := []struct {
		name        string
		body        map[string]interface{}
		insert      func(*data.User) error
		wantStatus  int
		wantSuccess bool
		wantMessage string
	}{
		{
			name:        "valid signup",
			body:        map[string]interface{}{"name": "Alice", "username": "alice", "password": "pa55word"},
			wantStatus:  http.StatusCreated,
			wantSuccess: true,
			wantMessage: "Successfully created new user.",
		},
		{
			name:        "missing username",
			body:        map[string]interface{}{"name": "Alice", "password": "pa55word"},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Please include both username and password to signup.",
		},
		{
			name:        "missing password",
			body:        map[string]interface{}{"name": "Alice", "username": "alice"},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Please include both username and password to signup.",
		},
		{
			name: "duplicate username",
			body: map[string]interface{}{"name": "Alice", "username": "alice", "password": "pa55word"},
			insert: func(*data.User) error {
				return data.ErrDuplicateUsername
			},
			wantStatus:  http.StatusConflict,
			wantMessage: "A user with that username already exists.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApplication()
			app.models.Users = stubUserStore{insert: tt.insert}

			status, body := send(t, app, http.MethodPost, "/signup", "", tt.body)

			assert.Equal(t, tt.wantStatus, status)

			got := decode(t, body)
			assert.Equal(t, tt.wantSuccess, got["success"])
			assert.Equal(t, tt.wantMessage, got["message"])
		})
	}
}

// 签名成功后密码只保留哈希，返回体里也不应出现 token
func TestSignupStoresHashedPassword(t *testing.T) {
	app := newTestApplication()

	var inserted *data.User
	app.models.Users = stubUserStore{insert: func(u *data.User) error {
		inserted = u
		return nil
	}}

	status, body := send(t, app, http.MethodPost, "/signup", "", map[string]interface{}{
		"name": "Alice", "username": "alice", "password": "pa55word",
	})

	require.Equal(t, http.StatusCreated, status)
	require.NotNil(t, inserted)

	match, err := inserted.Password.Matches("pa55word")
	require.NoError(t, err)
	assert.True(t, match)

	got := decode(t, body)
	assert.NotContains(t, got, "token")
}
