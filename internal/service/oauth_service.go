package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/prperemyshlev/wms-server/internal/config"
	"github.com/prperemyshlev/wms-server/internal/domain"
	"github.com/prperemyshlev/wms-server/internal/repository"
	"github.com/prperemyshlev/wms-server/internal/utils"
)

const maxUserInfoSize = 1 << 20

// OAuthProvider is a configured identity provider
type OAuthProvider struct {
	Config      *oauth2.Config
	UserInfoURL string
}

// OAuthProvidersFromConfig builds the enabled providers. Providers without credentials are skipped.
func OAuthProvidersFromConfig(cfg config.OAuth2Config) map[string]OAuthProvider {
	providers := make(map[string]OAuthProvider)

	if cfg.Google.Enabled() {
		providers[domain.ProviderGoogle] = OAuthProvider{
			Config: &oauth2.Config{
				ClientID:     cfg.Google.ClientID,
				ClientSecret: cfg.Google.ClientSecret,
				RedirectURL:  cfg.Google.CallbackURL,
				Scopes:       []string{"openid", "email", "profile"},
				Endpoint: oauth2.Endpoint{
					AuthURL:   "https://accounts.google.com/o/oauth2/auth",
					TokenURL:  "https://oauth2.googleapis.com/token",
					AuthStyle: oauth2.AuthStyleInParams,
				},
			},
			UserInfoURL: "https://www.googleapis.com/oauth2/v3/userinfo",
		}
	}

	if cfg.Naver.Enabled() {
		providers[domain.ProviderNaver] = OAuthProvider{
			Config: &oauth2.Config{
				ClientID:     cfg.Naver.ClientID,
				ClientSecret: cfg.Naver.ClientSecret,
				RedirectURL:  cfg.Naver.CallbackURL,
				Scopes:       []string{"name", "email", "nickname", "profile_image"},
				Endpoint: oauth2.Endpoint{
					AuthURL:   "https://nid.naver.com/oauth2.0/authorize",
					TokenURL:  "https://nid.naver.com/oauth2.0/token",
					AuthStyle: oauth2.AuthStyleInParams,
				},
			},
			UserInfoURL: "https://openapi.naver.com/v1/nid/me",
		}
	}

	if cfg.Kakao.Enabled() {
		providers[domain.ProviderKakao] = OAuthProvider{
			Config: &oauth2.Config{
				ClientID:     cfg.Kakao.ClientID,
				ClientSecret: cfg.Kakao.ClientSecret,
				RedirectURL:  cfg.Kakao.CallbackURL,
				Scopes:       []string{"profile_nickname", "profile_image", "account_email"},
				Endpoint: oauth2.Endpoint{
					AuthURL:   "https://kauth.kakao.com/oauth/authorize",
					TokenURL:  "https://kauth.kakao.com/oauth/token",
					AuthStyle: oauth2.AuthStyleInParams,
				},
			},
			UserInfoURL: "https://kapi.kakao.com/v2/user/me",
		}
	}

	return providers
}

// oauthService implements OAuthService interface
type oauthService struct {
	providers     map[string]OAuthProvider
	userRepo      repository.UserRepository
	refreshTokens RefreshTokenService
	jwtManager    *utils.JWTManager
	states        StateStore
	audit         AuditService
	metrics       *authMetrics
	logger        *zap.Logger
	httpClient    *http.Client
}

// NewOAuthService creates a new OAuth2 service
func NewOAuthService(
	providers map[string]OAuthProvider,
	userRepo repository.UserRepository,
	refreshTokens RefreshTokenService,
	jwtManager *utils.JWTManager,
	states StateStore,
	audit AuditService,
	logger *zap.Logger,
) OAuthService {
	return &oauthService{
		providers:     providers,
		userRepo:      userRepo,
		refreshTokens: refreshTokens,
		jwtManager:    jwtManager,
		states:        states,
		audit:         audit,
		metrics:       newAuthMetrics(),
		logger:        logger,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *oauthService) provider(name string) (OAuthProvider, error) {
	p, ok := s.providers[name]
	if !ok {
		return OAuthProvider{}, fmt.Errorf("provider %q: %w", name, ErrUnsupportedProvider)
	}
	return p, nil
}

// AuthorizeURL returns the provider's consent page URL carrying a fresh state
func (s *oauthService) AuthorizeURL(ctx context.Context, provider string) (string, error) {
	p, err := s.provider(provider)
	if err != nil {
		return "", err
	}

	state, err := s.states.Issue(ctx, provider)
	if err != nil {
		return "", err
	}

	return p.Config.AuthCodeURL(state), nil
}

// Callback completes the authorization-code flow and signs the user in
func (s *oauthService) Callback(ctx context.Context, provider, state, code string) (*AuthResult, error) {
	p, err := s.provider(provider)
	if err != nil {
		return nil, err
	}

	if err := s.states.Consume(ctx, state, provider); err != nil {
		s.metrics.signIn(ctx, "oauth2_"+provider, "bad_state")
		return nil, err
	}

	if code == "" {
		return nil, fmt.Errorf("missing authorization code: %w", ErrBadRequest)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)

	token, err := p.Config.Exchange(ctx, code)
	if err != nil {
		s.metrics.signIn(ctx, "oauth2_"+provider, "exchange_failed")
		return nil, fmt.Errorf("%s code exchange: %w: %w", provider, ErrInvalidProviderResponse, err)
	}

	attrs, err := s.fetchUserInfo(ctx, p, token)
	if err != nil {
		return nil, err
	}

	info, err := NormalizeProviderInfo(provider, attrs)
	if err != nil {
		return nil, err
	}

	user, err := s.FindOrRegister(ctx, info)
	if err != nil {
		s.metrics.signIn(ctx, "oauth2_"+provider, "rejected")
		return nil, err
	}

	result, err := issueTokens(ctx, s.jwtManager, s.refreshTokens, user)
	if err != nil {
		return nil, err
	}

	s.metrics.signIn(ctx, "oauth2_"+provider, "success")
	s.audit.Record(ctx, domain.UserActor(user), domain.ActionOAuth2SignIn, domain.EntityUser, &user.ID,
		provider+" sign-in")

	return result, nil
}

func (s *oauthService) fetchUserInfo(ctx context.Context, p OAuthProvider, token *oauth2.Token) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.UserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build user info request: %w", err)
	}

	resp, err := p.Config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("user info request: %w: %w", ErrInvalidProviderResponse, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info status %d: %w", resp.StatusCode, ErrInvalidProviderResponse)
	}

	decoder := json.NewDecoder(io.LimitReader(resp.Body, maxUserInfoSize))
	decoder.UseNumber()

	var attrs map[string]any
	if err := decoder.Decode(&attrs); err != nil {
		return nil, fmt.Errorf("user info body: %w: %w", ErrInvalidProviderResponse, err)
	}

	return attrs, nil
}

// FindOrRegister returns the account linked to the provider identity, creating one on first
// sign-in. Existing accounts are never linked by email: an address already in use is rejected.
func (s *oauthService) FindOrRegister(ctx context.Context, info *domain.ProviderInfo) (*domain.User, error) {
	user, err := s.userRepo.GetByProvider(ctx, info.Provider, info.ProviderID)
	if err == nil {
		if user.Deleted {
			return nil, fmt.Errorf("account is deleted: %w", ErrInvalidCredentials)
		}
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, translate(err, "failed to find provider account")
	}

	email := info.Email
	if email == "" {
		email = placeholderEmail(info)
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, translate(err, "failed to check email")
	}
	if exists {
		return nil, fmt.Errorf("%s account email %s: %w", info.Provider, email, ErrDuplicateEmail)
	}

	nickname, err := s.uniqueNickname(ctx, baseNickname(info))
	if err != nil {
		return nil, err
	}

	provider, providerID := info.Provider, info.ProviderID
	user = &domain.User{
		Email:      email,
		Nickname:   nickname,
		Role:       domain.RoleUser,
		Provider:   &provider,
		ProviderID: &providerID,
		CreatedBy:  domain.SystemActor.Name,
		UpdatedBy:  domain.SystemActor.Name,
	}
	if info.Name != "" {
		name := info.Name
		user.Name = &name
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, translate(err, "failed to register provider account")
	}

	s.logger.Info("registered oauth2 account",
		zap.String("provider", provider),
		zap.Int64("user_id", user.ID),
	)
	s.audit.Record(ctx, domain.SystemActor, domain.ActionSignUp, domain.EntityUser, &user.ID,
		"registered via "+provider)

	return user, nil
}

func (s *oauthService) uniqueNickname(ctx context.Context, base string) (string, error) {
	candidate := base
	for i := 1; ; i++ {
		exists, err := s.userRepo.ExistsByNickname(ctx, candidate)
		if err != nil {
			return "", translate(err, "failed to check nickname")
		}
		if !exists {
			return candidate, nil
		}
		candidate = base + "_" + strconv.Itoa(i)
	}
}
