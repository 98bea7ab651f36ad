package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRefreshTokenIsValid(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		token RefreshToken
		want  bool
	}{
		{"active", RefreshToken{ExpiresAt: now.Add(time.Hour)}, true},
		{"revoked", RefreshToken{ExpiresAt: now.Add(time.Hour), Revoked: true}, false},
		{"expired", RefreshToken{ExpiresAt: now.Add(-time.Second)}, false},
		{"expires exactly now", RefreshToken{ExpiresAt: now}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.token.IsValid(now))
		})
	}
}

func TestActor(t *testing.T) {
	u := &User{ID: 7, Email: "a@b.com", Role: RoleUser}
	a := UserActor(u)

	assert.True(t, a.Is(7))
	assert.False(t, a.Is(8))
	assert.False(t, a.IsAdmin())
	assert.True(t, SystemActor.IsAdmin())
	assert.False(t, AnonymousActor.Is(0))
}
