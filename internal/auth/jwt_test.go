package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	m := NewManager("test-secret-which-is-long-enough", time.Hour)

	token, err := m.GenerateToken("64b0c0ffee0c0ffee0c0ffee", "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, "64b0c0ffee0c0ffee0c0ffee", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	m := NewManager("test-secret-which-is-long-enough", time.Hour)
	other := NewManager("a-completely-different-secret-key", time.Hour)

	token, err := other.GenerateToken("64b0c0ffee0c0ffee0c0ffee", "alice")
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenExpired(t *testing.T) {
	m := NewManager("test-secret-which-is-long-enough", -time.Minute)

	token, err := m.GenerateToken("64b0c0ffee0c0ffee0c0ffee", "alice")
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenMalformed(t *testing.T) {
	m := NewManager("test-secret-which-is-long-enough", time.Hour)

	for _, token := range []string{"", "not.a.token", "abc"} {
		_, err := m.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}
