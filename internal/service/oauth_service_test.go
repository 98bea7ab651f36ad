package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/prperemyshlev/wms-server/internal/config"
	"github.com/prperemyshlev/wms-server/internal/domain"
)

func TestFindOrRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("registers new provider account", func(t *testing.T) {
		env := newTestEnv()
		svc := env.oauth(nil)

		user, err := svc.FindOrRegister(ctx, &domain.ProviderInfo{
			Provider: "naver", ProviderID: "nv-abcdef123", Email: "bob@naver.com", Nickname: "bobby", Name: "Bob",
		})
		require.NoError(t, err)

		assert.Equal(t, "bob@naver.com", user.Email)
		assert.Equal(t, "bobby_nv-abc", user.Nickname)
		assert.Equal(t, domain.RoleUser, user.Role)
		assert.False(t, user.HasPassword())
		require.NotNil(t, user.Provider)
		assert.Equal(t, "naver", *user.Provider)
		assert.Equal(t, "nv-abcdef123", *user.ProviderID)
		require.NotNil(t, user.Name)
		assert.Equal(t, "Bob", *user.Name)
	})

	t.Run("returns existing provider account", func(t *testing.T) {
		env := newTestEnv()
		svc := env.oauth(nil)
		info := &domain.ProviderInfo{Provider: "google", ProviderID: "g-1", Email: "a@gmail.com", Nickname: "a"}

		first, err := svc.FindOrRegister(ctx, info)
		require.NoError(t, err)
		second, err := svc.FindOrRegister(ctx, info)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Len(t, env.users.users, 1)
	})

	t.Run("does not link by email", func(t *testing.T) {
		env := newTestEnv()
		signUp(t, env, "alice@example.com", "alice")

		_, err := env.oauth(nil).FindOrRegister(ctx, &domain.ProviderInfo{
			Provider: "google", ProviderID: "g-2", Email: "alice@example.com", Nickname: "alice",
		})
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("suffixes colliding nicknames", func(t *testing.T) {
		env := newTestEnv()
		svc := env.oauth(nil)
		signUp(t, env, "x@example.com", "sam_123456")
		signUp(t, env, "y@example.com", "sam_123456_1")

		user, err := svc.FindOrRegister(ctx, &domain.ProviderInfo{
			Provider: "kakao", ProviderID: "1234567890", Nickname: "sam",
		})
		require.NoError(t, err)
		assert.Equal(t, "sam_123456_2", user.Nickname)
		assert.Equal(t, "kakao_1234567890@users.noreply.wms", user.Email)
	})

	t.Run("rejects deleted account", func(t *testing.T) {
		env := newTestEnv()
		svc := env.oauth(nil)
		info := &domain.ProviderInfo{Provider: "google", ProviderID: "g-3", Email: "d@gmail.com", Nickname: "d"}
		user, err := svc.FindOrRegister(ctx, info)
		require.NoError(t, err)
		require.NoError(t, env.userSvc.Delete(ctx, user.ID, domain.SystemActor))

		_, err = svc.FindOrRegister(ctx, info)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

// newProviderServer fakes a provider's token and user-info endpoints
func newProviderServer(t *testing.T, userInfo map[string]any) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.Form.Get("code") != "good-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"provider-access","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer provider-access" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(userInfo)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testProviders(server *httptest.Server) map[string]OAuthProvider {
	return map[string]OAuthProvider{
		domain.ProviderKakao: {
			Config: &oauth2.Config{
				ClientID:     "client",
				ClientSecret: "secret",
				RedirectURL:  "http://localhost:8080/api/v1/oauth2/callback/kakao",
				Endpoint: oauth2.Endpoint{
					AuthURL:   server.URL + "/authorize",
					TokenURL:  server.URL + "/token",
					AuthStyle: oauth2.AuthStyleInParams,
				},
			},
			UserInfoURL: server.URL + "/userinfo",
		},
	}
}

func TestOAuthAuthorizationCodeFlow(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	server := newProviderServer(t, map[string]any{
		"id": 3141592653,
		"kakao_account": map[string]any{
			"email":   "carol@kakao.com",
			"profile": map[string]any{"nickname": "carol"},
		},
	})
	svc := env.oauth(testProviders(server))

	authURL, err := svc.AuthorizeURL(ctx, domain.ProviderKakao)
	require.NoError(t, err)
	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	state := parsed.Query().Get("state")
	require.NotEmpty(t, state)
	assert.Equal(t, "client", parsed.Query().Get("client_id"))

	result, err := svc.Callback(ctx, domain.ProviderKakao, state, "good-code")
	require.NoError(t, err)
	assert.Equal(t, "carol@kakao.com", result.User.Email)
	assert.Equal(t, "carol_314159", result.User.Nickname)
	subject, err := env.jwt.GetAccessSubject(result.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "carol@kakao.com", subject)
	assert.Contains(t, env.auditLog.actions(), domain.ActionOAuth2SignIn)

	_, err = svc.Callback(ctx, domain.ProviderKakao, state, "good-code")
	assert.ErrorIs(t, err, ErrInvalidOAuthState)
}

func TestOAuthCallbackFailures(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	server := newProviderServer(t, map[string]any{"id": 1})
	svc := env.oauth(testProviders(server))

	_, err := svc.AuthorizeURL(ctx, domain.ProviderGoogle)
	assert.ErrorIs(t, err, ErrUnsupportedProvider)

	_, err = svc.Callback(ctx, domain.ProviderKakao, "forged", "good-code")
	assert.ErrorIs(t, err, ErrInvalidOAuthState)

	state, err := env.states.Issue(ctx, domain.ProviderKakao)
	require.NoError(t, err)
	_, err = svc.Callback(ctx, domain.ProviderKakao, state, "bad-code")
	assert.ErrorIs(t, err, ErrInvalidProviderResponse)
}

func TestOAuthProvidersFromConfig(t *testing.T) {
	providers := OAuthProvidersFromConfig(config.OAuth2Config{
		Google: config.ProviderConfig{ClientID: "id", ClientSecret: "secret", CallbackURL: "http://cb"},
		Kakao:  config.ProviderConfig{ClientID: "id"},
	})

	require.Contains(t, providers, domain.ProviderGoogle)
	assert.NotContains(t, providers, domain.ProviderKakao)
	assert.NotContains(t, providers, domain.ProviderNaver)
	assert.Equal(t, "https://www.googleapis.com/oauth2/v3/userinfo", providers[domain.ProviderGoogle].UserInfoURL)
	assert.Equal(t, "http://cb", providers[domain.ProviderGoogle].Config.RedirectURL)
}
