package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/prperemyshlev/wms-server/internal/domain"
	"github.com/prperemyshlev/wms-server/internal/service"
)

const frontendURL = "http://localhost:3000/oauth2/redirect"

type fakeOAuthService struct {
	service.OAuthService
	callbackErr error
	code        string
}

func (f *fakeOAuthService) AuthorizeURL(_ context.Context, provider string) (string, error) {
	if provider != "google" {
		return "", fmt.Errorf("%s: %w", provider, service.ErrUnsupportedProvider)
	}
	return "https://accounts.example/auth?state=xyz", nil
}

func (f *fakeOAuthService) Callback(_ context.Context, provider, state, code string) (*service.AuthResult, error) {
	f.code = code
	if f.callbackErr != nil {
		return nil, f.callbackErr
	}
	return &service.AuthResult{
		User:   &domain.User{ID: 9, Email: "g@example.com", Nickname: "g_123456"},
		Tokens: domain.TokenPair{AccessToken: "access", RefreshToken: "refresh"},
	}, nil
}

func oauthRouter(svc service.OAuthService) *gin.Engine {
	h := NewOAuthHandler(svc, frontendURL, zap.NewNop())
	r := gin.New()
	r.GET("/oauth2/authorize/:provider", h.Authorize)
	r.GET("/oauth2/callback/:provider", h.Callback)
	return r
}

func redirectQuery(t *testing.T, location string) url.Values {
	t.Helper()
	u, err := url.Parse(location)
	require.NoError(t, err)
	assert.Equal(t, frontendURL, u.Scheme+"://"+u.Host+u.Path)
	return u.Query()
}

func TestOAuthAuthorize(t *testing.T) {
	r := oauthRouter(&fakeOAuthService{})

	w := perform(t, r, http.MethodGet, "/oauth2/authorize/google", "", nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://accounts.example/auth?state=xyz", w.Header().Get("Location"))

	w = perform(t, r, http.MethodGet, "/oauth2/authorize/github", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNSUPPORTED_PROVIDER", decodeError(t, w).Code)
}

func TestOAuthCallback(t *testing.T) {
	t.Run("success carries tokens", func(t *testing.T) {
		svc := &fakeOAuthService{}
		w := perform(t, oauthRouter(svc), http.MethodGet, "/oauth2/callback/google?state=s&code=c", "", nil)

		require.Equal(t, http.StatusFound, w.Code)
		q := redirectQuery(t, w.Header().Get("Location"))
		assert.Equal(t, "access", q.Get("token"))
		assert.Equal(t, "refresh", q.Get("refreshToken"))
		assert.Equal(t, "g@example.com", q.Get("email"))
		assert.Equal(t, "g_123456", q.Get("nickname"))
		assert.Equal(t, "google", q.Get("provider"))
		assert.Equal(t, "c", svc.code)
	})

	t.Run("provider denied consent", func(t *testing.T) {
		svc := &fakeOAuthService{}
		w := perform(t, oauthRouter(svc), http.MethodGet, "/oauth2/callback/google?error=access_denied", "", nil)

		require.Equal(t, http.StatusFound, w.Code)
		q := redirectQuery(t, w.Header().Get("Location"))
		assert.Equal(t, "OAUTH2_PROVIDER_ERROR", q.Get("error"))
		assert.Empty(t, q.Get("token"))
		assert.Empty(t, svc.code)
	})

	t.Run("state rejected", func(t *testing.T) {
		svc := &fakeOAuthService{callbackErr: service.ErrInvalidOAuthState}
		w := perform(t, oauthRouter(svc), http.MethodGet, "/oauth2/callback/google?state=old&code=c", "", nil)

		require.Equal(t, http.StatusFound, w.Code)
		q := redirectQuery(t, w.Header().Get("Location"))
		assert.Equal(t, "INVALID_OAUTH2_STATE", q.Get("error"))
		assert.Equal(t, service.ErrInvalidOAuthState.Error(), q.Get("message"))
	})
}
