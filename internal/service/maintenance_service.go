package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/prperemyshlev/wms-server/internal/domain"
)

// PurgeResult counts the refresh tokens removed by a purge
type PurgeResult struct {
	Expired int64
	Revoked int64
}

// MaintenanceService runs housekeeping jobs shared by the admin API and the housekeeping command
type MaintenanceService struct {
	refreshTokens RefreshTokenService
	audit         AuditService
	logger        *zap.Logger
}

// NewMaintenanceService creates a new maintenance service
func NewMaintenanceService(refreshTokens RefreshTokenService, audit AuditService, logger *zap.Logger) *MaintenanceService {
	return &MaintenanceService{
		refreshTokens: refreshTokens,
		audit:         audit,
		logger:        logger,
	}
}

// PurgeRefreshTokens deletes expired and revoked refresh tokens
func (s *MaintenanceService) PurgeRefreshTokens(ctx context.Context, actor domain.Actor) (*PurgeResult, error) {
	expired, err := s.refreshTokens.PurgeExpired(ctx)
	if err != nil {
		return nil, err
	}

	revoked, err := s.refreshTokens.PurgeRevoked(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("purged refresh tokens",
		zap.Int64("expired", expired),
		zap.Int64("revoked", revoked),
		zap.String("actor", actor.Name),
	)
	s.audit.Record(ctx, actor, domain.ActionPurgeTokens, domain.EntityRefreshToken, nil,
		fmt.Sprintf("expired=%d revoked=%d", expired, revoked))

	return &PurgeResult{Expired: expired, Revoked: revoked}, nil
}
