package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-that-is-at-least-32-characters-long"

func TestIssueAndValidateAccessToken(t *testing.T) {
	m := NewJWTManager(testSecret, 15*time.Minute, 7*24*time.Hour)

	token, err := m.IssueAccessToken("user@example.com")
	require.NoError(t, err)

	assert.True(t, m.ValidateAccessToken(token))

	subject, err := m.GetAccessSubject(token)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", subject)
}

func TestRefreshTokenIsNotAnAccessToken(t *testing.T) {
	m := NewJWTManager(testSecret, 15*time.Minute, 7*24*time.Hour)

	token, err := m.IssueRefreshToken("user@example.com")
	require.NoError(t, err)

	assert.False(t, m.ValidateAccessToken(token))
	_, err = m.GetAccessSubject(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokensForSameSubjectDiffer(t *testing.T) {
	m := NewJWTManager(testSecret, 15*time.Minute, 7*24*time.Hour)

	first, err := m.IssueRefreshToken("user@example.com")
	require.NoError(t, err)
	second, err := m.IssueRefreshToken("user@example.com")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestValidateRejectsGarbage(t *testing.T) {
	m := NewJWTManager(testSecret, 15*time.Minute, 7*24*time.Hour)

	for _, token := range []string{"", "garbage", "a.b.c", strings.Repeat("x", 500)} {
		assert.False(t, m.ValidateAccessToken(token), token)
		_, err := m.GetAccessSubject(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	m := NewJWTManager(testSecret, time.Minute, time.Hour)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Minute) }

	token, err := m.IssueAccessToken("user@example.com")
	require.NoError(t, err)

	m.now = time.Now
	assert.False(t, m.ValidateAccessToken(token))
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	issuer := NewJWTManager(strings.Repeat("a", 32), time.Minute, time.Hour)
	verifier := NewJWTManager(strings.Repeat("b", 32), time.Minute, time.Hour)

	token, err := issuer.IssueAccessToken("user@example.com")
	require.NoError(t, err)

	assert.False(t, verifier.ValidateAccessToken(token))
}

func TestValidateRejectsOtherAlgorithm(t *testing.T) {
	m := NewJWTManager(testSecret, time.Minute, time.Hour)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user@example.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	assert.False(t, m.ValidateAccessToken(token))
}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(4)

	hash, err := h.Hash("password1")
	require.NoError(t, err)

	assert.NotEqual(t, "password1", hash)
	assert.True(t, h.Matches("password1", hash))
	assert.False(t, h.Matches("password2", hash))
	assert.False(t, h.Matches("password1", "not-a-hash"))
}

func TestSanitizers(t *testing.T) {
	assert.Equal(t, "user@example.com", SanitizeEmail("  User@Example.COM "))
	assert.Equal(t, "홍길동", SanitizeNickname(" 홍 길동! "))
	assert.True(t, ValidateEmail("a.b@example.org"))
	assert.False(t, ValidateEmail("not-an-email"))
	assert.Len(t, HashToken("token"), 64)
	assert.Equal(t, HashToken("token"), HashToken("token"))
}
