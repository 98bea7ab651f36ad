package service

import (
	"context"
	"fmt"
	"time"

	"github.com/prperemyshlev/wms-server/internal/domain"
	"github.com/prperemyshlev/wms-server/internal/repository"
	"github.com/prperemyshlev/wms-server/internal/utils"
)

// refreshTokenService implements RefreshTokenService interface
type refreshTokenService struct {
	tokenRepo  repository.TokenRepository
	jwtManager *utils.JWTManager
	now        func() time.Time
}

// NewRefreshTokenService creates a new refresh token service
func NewRefreshTokenService(tokenRepo repository.TokenRepository, jwtManager *utils.JWTManager) RefreshTokenService {
	return &refreshTokenService{
		tokenRepo:  tokenRepo,
		jwtManager: jwtManager,
		now:        time.Now,
	}
}

func (s *refreshTokenService) mint(user *domain.User) (string, *domain.RefreshToken, error) {
	token, err := s.jwtManager.IssueRefreshToken(user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	now := s.now()
	return token, &domain.RefreshToken{
		UserID:    user.ID,
		TokenHash: utils.HashToken(token),
		ExpiresAt: now.Add(s.jwtManager.RefreshTokenExpiry()),
		CreatedAt: now,
	}, nil
}

// CreateAndSave mints a refresh token and upserts it as the user's current token
func (s *refreshTokenService) CreateAndSave(ctx context.Context, user *domain.User) (string, error) {
	token, record, err := s.mint(user)
	if err != nil {
		return "", err
	}

	if err := s.tokenRepo.Upsert(ctx, record); err != nil {
		return "", translate(err, "failed to save refresh token")
	}

	return token, nil
}

// FindByToken looks up the stored record of a refresh token
func (s *refreshTokenService) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	record, err := s.tokenRepo.GetByTokenHash(ctx, utils.HashToken(token))
	if err != nil {
		return nil, translate(err, "failed to find refresh token")
	}
	return record, nil
}

// Rotate revokes presented and stores a fresh token for user atomically
func (s *refreshTokenService) Rotate(ctx context.Context, presented string, user *domain.User) (string, error) {
	token, record, err := s.mint(user)
	if err != nil {
		return "", err
	}

	if err := s.tokenRepo.Rotate(ctx, utils.HashToken(presented), record); err != nil {
		return "", translate(err, "failed to rotate refresh token")
	}

	return token, nil
}

// RevokeAllForUser revokes every live token of a user
func (s *refreshTokenService) RevokeAllForUser(ctx context.Context, userID int64) (int64, error) {
	n, err := s.tokenRepo.RevokeAllForUser(ctx, userID)
	if err != nil {
		return 0, translate(err, "failed to revoke refresh tokens")
	}
	return n, nil
}

// PurgeExpired physically deletes expired tokens
func (s *refreshTokenService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.tokenRepo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, translate(err, "failed to purge expired refresh tokens")
	}
	return n, nil
}

// PurgeRevoked physically deletes revoked tokens
func (s *refreshTokenService) PurgeRevoked(ctx context.Context) (int64, error) {
	n, err := s.tokenRepo.DeleteRevoked(ctx)
	if err != nil {
		return 0, translate(err, "failed to purge revoked refresh tokens")
	}
	return n, nil
}
