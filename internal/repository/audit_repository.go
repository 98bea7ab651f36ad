package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prperemyshlev/wms-server/internal/domain"
	"github.com/prperemyshlev/wms-server/pkg/database"
)

const (
	auditColumns     = `id, action, entity_type, entity_id, user_id, details, timestamp, created_by`
	defaultAuditPage = 100
	maxAuditPage     = 1000
)

// auditRepository implements AuditRepository interface
type auditRepository struct {
	db *database.Postgres
}

// NewAuditRepository creates a new audit log repository
func NewAuditRepository(db *database.Postgres) AuditRepository {
	return &auditRepository{db: db}
}

func scanAudit(row rowScanner) (*domain.AuditLog, error) {
	entry := &domain.AuditLog{}
	var entityID, userID sql.NullInt64
	var details sql.NullString

	err := row.Scan(
		&entry.ID,
		&entry.Action,
		&entry.EntityType,
		&entityID,
		&userID,
		&details,
		&entry.Timestamp,
		&entry.CreatedBy,
	)
	if err != nil {
		return nil, err
	}

	if entityID.Valid {
		entry.EntityID = &entityID.Int64
	}
	if userID.Valid {
		entry.UserID = &userID.Int64
	}
	entry.Details = details.String

	return entry, nil
}

// Create appends an audit entry
func (r *auditRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	query := `
		INSERT INTO logs (action, entity_type, entity_id, user_id, details, timestamp, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	err := r.db.DB.QueryRowContext(ctx, query,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		entry.UserID,
		entry.Details,
		entry.Timestamp,
		entry.CreatedBy,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}

	return nil
}

// GetByID retrieves an audit entry by ID
func (r *auditRepository) GetByID(ctx context.Context, id int64) (*domain.AuditLog, error) {
	entry, err := scanAudit(r.db.DB.QueryRowContext(ctx, `SELECT `+auditColumns+` FROM logs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("audit log with id %d not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get audit log: %w", err)
	}
	return entry, nil
}

// Search returns entries matching filter, newest first
func (r *auditRepository) Search(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	var conditions []string
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.Action != "" {
		add("action = $%d", filter.Action)
	}
	if filter.EntityType != "" {
		add("entity_type = $%d", filter.EntityType)
	}
	if filter.EntityID != nil {
		add("entity_id = $%d", *filter.EntityID)
	}
	if filter.UserID != nil {
		add("user_id = $%d", *filter.UserID)
	}
	if filter.From != nil {
		add("timestamp >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("timestamp <= $%d", *filter.To)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultAuditPage
	}
	if limit > maxAuditPage {
		limit = maxAuditPage
	}

	query := `SELECT ` + auditColumns + ` FROM logs`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	args = append(args, limit, max(filter.Offset, 0))
	query += fmt.Sprintf(` ORDER BY timestamp DESC, id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search audit logs: %w", err)
	}
	defer rows.Close()

	entries := make([]*domain.AuditLog, 0)
	for rows.Next() {
		entry, err := scanAudit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit logs: %w", err)
	}

	return entries, nil
}

// Count counts all audit entries
func (r *auditRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM logs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count audit logs: %w", err)
	}
	return count, nil
}

// DistinctActions lists every action recorded so far
func (r *auditRepository) DistinctActions(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, `SELECT DISTINCT action FROM logs ORDER BY action`)
}

// DistinctEntityTypes lists every entity type recorded so far
func (r *auditRepository) DistinctEntityTypes(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, `SELECT DISTINCT entity_type FROM logs ORDER BY entity_type`)
}

func (r *auditRepository) distinct(ctx context.Context, query string) ([]string, error) {
	rows, err := r.db.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query distinct values: %w", err)
	}
	defer rows.Close()

	values := make([]string, 0)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan distinct value: %w", err)
		}
		values = append(values, v)
	}

	return values, rows.Err()
}
