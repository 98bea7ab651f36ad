package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/prperemyshlev/wms-server/internal/domain"
	"github.com/prperemyshlev/wms-server/internal/dto"
	"github.com/prperemyshlev/wms-server/internal/repository"
	"github.com/prperemyshlev/wms-server/internal/utils"
)

// authService implements AuthService interface
type authService struct {
	userRepo      repository.UserRepository
	refreshTokens RefreshTokenService
	jwtManager    *utils.JWTManager
	hasher        *utils.PasswordHasher
	cache         *PrincipalCache
	audit         AuditService
	metrics       *authMetrics
	logger        *zap.Logger
	now           func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	refreshTokens RefreshTokenService,
	jwtManager *utils.JWTManager,
	hasher *utils.PasswordHasher,
	cache *PrincipalCache,
	audit AuditService,
	logger *zap.Logger,
) AuthService {
	return &authService{
		userRepo:      userRepo,
		refreshTokens: refreshTokens,
		jwtManager:    jwtManager,
		hasher:        hasher,
		cache:         cache,
		audit:         audit,
		metrics:       newAuthMetrics(),
		logger:        logger,
		now:           time.Now,
	}
}

// SignUp registers a password account with role USER
func (s *authService) SignUp(ctx context.Context, req *dto.SignUpRequest, actor domain.Actor) (*domain.User, error) {
	email := utils.SanitizeEmail(req.Email)
	nickname := req.Nickname

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, translate(err, "failed to check email")
	}
	if exists {
		return nil, fmt.Errorf("sign up %s: %w", email, ErrDuplicateEmail)
	}

	exists, err = s.userRepo.ExistsByNickname(ctx, nickname)
	if err != nil {
		return nil, translate(err, "failed to check nickname")
	}
	if exists {
		return nil, fmt.Errorf("sign up %s: %w", nickname, ErrDuplicateNickname)
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		Nickname:     nickname,
		PasswordHash: &passwordHash,
		Role:         domain.RoleUser,
		CreatedBy:    actor.Name,
		UpdatedBy:    actor.Name,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, translate(err, "failed to create user")
	}

	s.audit.Record(ctx, actor, domain.ActionSignUp, domain.EntityUser, &user.ID, "user registered: "+user.Email)

	return user, nil
}

// SignIn verifies a password and issues an access and refresh token
func (s *authService) SignIn(ctx context.Context, req *dto.SignInRequest) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, utils.SanitizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.signIn(ctx, "password", "unknown_email")
			return nil, ErrInvalidCredentials
		}
		return nil, translate(err, "failed to get user")
	}

	if user.Deleted {
		s.metrics.signIn(ctx, "password", "deleted")
		return nil, fmt.Errorf("account is deleted: %w", ErrInvalidCredentials)
	}

	if !user.HasPassword() || !s.hasher.Matches(req.Password, *user.PasswordHash) {
		s.metrics.signIn(ctx, "password", "bad_password")
		return nil, ErrInvalidCredentials
	}

	result, err := issueTokens(ctx, s.jwtManager, s.refreshTokens, user)
	if err != nil {
		return nil, err
	}

	s.metrics.signIn(ctx, "password", "success")
	s.audit.Record(ctx, domain.UserActor(user), domain.ActionSignIn, domain.EntityUser, &user.ID, "password sign-in")

	return result, nil
}

// SignOut revokes the refresh tokens of the access token's owner. It never fails:
// problems are logged and the client is expected to discard its tokens regardless.
func (s *authService) SignOut(ctx context.Context, accessToken string) {
	if !s.jwtManager.ValidateAccessToken(accessToken) {
		s.logger.Debug("sign-out with invalid access token")
		return
	}

	email, err := s.jwtManager.GetAccessSubject(accessToken)
	if err != nil {
		s.logger.Debug("sign-out token has no subject", zap.Error(err))
		return
	}
	s.cache.Evict(email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Debug("sign-out user lookup failed", zap.String("email", email), zap.Error(err))
		return
	}

	revoked, err := s.refreshTokens.RevokeAllForUser(ctx, user.ID)
	if err != nil {
		s.logger.Warn("sign-out revoke failed", zap.Int64("user_id", user.ID), zap.Error(err))
		return
	}

	s.audit.Record(ctx, domain.UserActor(user), domain.ActionSignOut, domain.EntityUser, &user.ID,
		fmt.Sprintf("revoked %d refresh token(s)", revoked))
}

// Refresh exchanges a valid refresh token for a new token pair. The presented token
// is single use: it is revoked in the same transaction that stores its replacement.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	record, err := s.refreshTokens.FindByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.metrics.refresh(ctx, "unknown")
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	if !record.IsValid(s.now()) {
		s.metrics.refresh(ctx, "expired")
		return nil, ErrTokenExpired
	}

	user, err := s.userRepo.GetByID(ctx, record.UserID)
	if err != nil {
		return nil, translate(err, "failed to get token owner")
	}

	accessToken, err := s.jwtManager.IssueAccessToken(user.Email)
	if err != nil {
		return nil, err
	}

	newRefreshToken, err := s.refreshTokens.Rotate(ctx, refreshToken, user)
	if err != nil {
		s.metrics.refresh(ctx, "conflict")
		return nil, err
	}

	s.metrics.refresh(ctx, "success")

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
	}, nil
}

// Authenticate resolves a bearer access token to an active user
func (s *authService) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	email, err := s.jwtManager.GetAccessSubject(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	if user, ok := s.cache.Get(email); ok {
		s.metrics.cache(ctx, true)
		return user, nil
	}
	s.metrics.cache(ctx, false)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("token subject %s: %w", email, ErrUnauthorized)
		}
		return nil, translate(err, "failed to load principal")
	}

	if user.Deleted {
		return nil, fmt.Errorf("account is deleted: %w", ErrUnauthorized)
	}

	s.cache.Add(user)
	return user, nil
}

// issueTokens mints an access token and creates or overwrites the user's refresh token
func issueTokens(ctx context.Context, jwtManager *utils.JWTManager, refreshTokens RefreshTokenService, user *domain.User) (*AuthResult, error) {
	accessToken, err := jwtManager.IssueAccessToken(user.Email)
	if err != nil {
		return nil, err
	}

	refreshToken, err := refreshTokens.CreateAndSave(ctx, user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		User: user,
		Tokens: domain.TokenPair{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
		},
	}, nil
}
