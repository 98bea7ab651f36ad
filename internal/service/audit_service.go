package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/prperemyshlev/wms-server/internal/domain"
	"github.com/prperemyshlev/wms-server/internal/repository"
)

const (
	defaultRecentLimit = 20
	publishTimeout     = 2 * time.Second
)

// AuditEvent is the message published for every recorded audit entry
type AuditEvent struct {
	ID         int64     `json:"id"`
	Action     string    `json:"action"`
	EntityType string    `json:"entityType"`
	EntityID   *int64    `json:"entityId,omitempty"`
	UserID     *int64    `json:"userId,omitempty"`
	Actor      string    `json:"actor"`
	Details    string    `json:"details"`
	Timestamp  time.Time `json:"timestamp"`
}

// auditService implements AuditService interface
type auditService struct {
	auditRepo repository.AuditRepository
	publisher EventPublisher
	logger    *zap.Logger
}

// NewAuditService creates an audit service. publisher may be nil to disable event publishing.
func NewAuditService(auditRepo repository.AuditRepository, publisher EventPublisher, logger *zap.Logger) AuditService {
	return &auditService{
		auditRepo: auditRepo,
		publisher: publisher,
		logger:    logger,
	}
}

// Record appends an audit entry and publishes it. Failures are logged, never returned,
// so auditing cannot fail the operation being audited.
func (s *auditService) Record(ctx context.Context, actor domain.Actor, action, entityType string, entityID *int64, details string) {
	entry := &domain.AuditLog{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		UserID:     actor.UserID,
		Details:    details,
		CreatedBy:  actor.Name,
	}

	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.logger.Error("failed to record audit log",
			zap.String("action", action),
			zap.String("entity_type", entityType),
			zap.Error(err),
		)
		return
	}

	if s.publisher == nil {
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	event := AuditEvent{
		ID:         entry.ID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		UserID:     entry.UserID,
		Actor:      entry.CreatedBy,
		Details:    entry.Details,
		Timestamp:  entry.Timestamp,
	}

	routingKey := fmt.Sprintf("audit.%s.%s", strings.ToLower(entityType), strings.ToLower(action))
	if err := s.publisher.Publish(pubCtx, routingKey, event); err != nil {
		s.logger.Warn("failed to publish audit event",
			zap.String("routing_key", routingKey),
			zap.Int64("audit_id", entry.ID),
			zap.Error(err),
		)
	}
}

func (s *auditService) Get(ctx context.Context, id int64) (*domain.AuditLog, error) {
	entry, err := s.auditRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "failed to get audit log")
	}
	return entry, nil
}

// Search returns entries matching the filter, newest first
func (s *auditService) Search(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, fmt.Errorf("date range start is after its end: %w", ErrBadRequest)
	}

	entries, err := s.auditRepo.Search(ctx, filter)
	if err != nil {
		return nil, translate(err, "failed to search audit logs")
	}
	return entries, nil
}

// Recent returns the latest limit entries
func (s *auditService) Recent(ctx context.Context, limit int) ([]*domain.AuditLog, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	return s.Search(ctx, domain.AuditFilter{Limit: limit})
}

// EntityHistory returns every entry about one entity, newest first
func (s *auditService) EntityHistory(ctx context.Context, entityType string, entityID int64) ([]*domain.AuditLog, error) {
	return s.Search(ctx, domain.AuditFilter{
		EntityType: strings.ToUpper(entityType),
		EntityID:   &entityID,
	})
}

func (s *auditService) Count(ctx context.Context) (int64, error) {
	n, err := s.auditRepo.Count(ctx)
	if err != nil {
		return 0, translate(err, "failed to count audit logs")
	}
	return n, nil
}

// Facets lists the distinct actions and entity types in the log
func (s *auditService) Facets(ctx context.Context) ([]string, []string, error) {
	actions, err := s.auditRepo.DistinctActions(ctx)
	if err != nil {
		return nil, nil, translate(err, "failed to list audit actions")
	}

	entityTypes, err := s.auditRepo.DistinctEntityTypes(ctx)
	if err != nil {
		return nil, nil, translate(err, "failed to list audit entity types")
	}

	return actions, entityTypes, nil
}
