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

// orderTable describes where orders of one kind are stored
type orderTable struct {
	name        string
	partyColumn string
}

var orderTables = map[domain.OrderKind]orderTable{
	domain.OrderInbound:  {name: "inbound_orders", partyColumn: "supplier_id"},
	domain.OrderOutbound: {name: "outbound_orders", partyColumn: "customer_id"},
}

func tableFor(kind domain.OrderKind) (orderTable, error) {
	t, ok := orderTables[kind]
	if !ok {
		return orderTable{}, fmt.Errorf("unknown order kind %q", kind)
	}
	return t, nil
}

func (t orderTable) columns() string {
	return `id, order_number, ` + t.partyColumn + `, status, total_quantity, user_id, processed_at,
		deleted, created_at, updated_at, created_by, updated_by`
}

// orderRepository implements OrderRepository interface
type orderRepository struct {
	db *database.Postgres
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *database.Postgres) OrderRepository {
	return &orderRepository{db: db}
}

func scanOrder(row rowScanner, kind domain.OrderKind) (*domain.Order, error) {
	order := &domain.Order{Kind: kind}
	var processedAt sql.NullTime

	err := row.Scan(
		&order.ID,
		&order.OrderNumber,
		&order.PartyID,
		&order.Status,
		&order.TotalQuantity,
		&order.UserID,
		&processedAt,
		&order.Deleted,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.CreatedBy,
		&order.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}

	if processedAt.Valid {
		order.ProcessedAt = &processedAt.Time
	}

	return order, nil
}

// Create creates a new order
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	t, err := tableFor(order.Kind)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO ` + t.name + ` (order_number, ` + t.partyColumn + `, status, total_quantity, user_id,
			processed_at, deleted, created_at, updated_at, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7, $8, $9, $10)
		RETURNING id
	`

	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now

	err = r.db.DB.QueryRowContext(ctx, query,
		order.OrderNumber,
		order.PartyID,
		order.Status,
		order.TotalQuantity,
		order.UserID,
		order.ProcessedAt,
		order.CreatedAt,
		order.UpdatedAt,
		order.CreatedBy,
		order.UpdatedBy,
	).Scan(&order.ID)

	if err != nil {
		if sentinel := uniqueViolationError(err); sentinel != nil {
			return fmt.Errorf("failed to create order %s: %w", order.OrderNumber, sentinel)
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

// GetByID retrieves an active order by ID
func (r *orderRepository) GetByID(ctx context.Context, kind domain.OrderKind, id int64) (*domain.Order, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + t.columns() + ` FROM ` + t.name + ` WHERE id = $1 AND deleted = FALSE`

	order, err := scanOrder(r.db.DB.QueryRowContext(ctx, query, id), kind)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s order with id %d not found: %w", strings.ToLower(string(kind)), id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by id: %w", err)
	}

	return order, nil
}

// GetByOrderNumber retrieves an active order by its number
func (r *orderRepository) GetByOrderNumber(ctx context.Context, kind domain.OrderKind, orderNumber string) (*domain.Order, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + t.columns() + ` FROM ` + t.name + ` WHERE order_number = $1 AND deleted = FALSE`

	order, err := scanOrder(r.db.DB.QueryRowContext(ctx, query, orderNumber), kind)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("order %s not found: %w", orderNumber, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by number: %w", err)
	}

	return order, nil
}

// ExistsByOrderNumber reports whether any order of the kind, deleted or not, uses the number
func (r *orderRepository) ExistsByOrderNumber(ctx context.Context, kind domain.OrderKind, orderNumber string) (bool, error) {
	t, err := tableFor(kind)
	if err != nil {
		return false, err
	}

	var exists bool
	err = r.db.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+t.name+` WHERE order_number = $1)`, orderNumber).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check order number: %w", err)
	}
	return exists, nil
}

// List returns active orders of the kind, newest first
func (r *orderRepository) List(ctx context.Context, kind domain.OrderKind, filter OrderFilter) ([]*domain.Order, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	conditions := []string{"deleted = FALSE"}
	var args []any

	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}

	query := `SELECT ` + t.columns() + ` FROM ` + t.name +
		` WHERE ` + strings.Join(conditions, " AND ") + ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows, kind)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}

	return orders, nil
}

// CountByStatus counts active orders of the kind in a status
func (r *orderRepository) CountByStatus(ctx context.Context, kind domain.OrderKind, status domain.OrderStatus) (int64, error) {
	t, err := tableFor(kind)
	if err != nil {
		return 0, err
	}

	var count int64
	err = r.db.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM `+t.name+` WHERE status = $1 AND deleted = FALSE`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

// Update updates an existing order, including status and deleted flag
func (r *orderRepository) Update(ctx context.Context, order *domain.Order) error {
	t, err := tableFor(order.Kind)
	if err != nil {
		return err
	}

	query := `
		UPDATE ` + t.name + `
		SET order_number = $2, ` + t.partyColumn + ` = $3, status = $4, total_quantity = $5,
			processed_at = $6, deleted = $7, updated_at = $8, updated_by = $9
		WHERE id = $1
	`

	order.UpdatedAt = time.Now()

	result, err := r.db.DB.ExecContext(ctx, query,
		order.ID,
		order.OrderNumber,
		order.PartyID,
		order.Status,
		order.TotalQuantity,
		order.ProcessedAt,
		order.Deleted,
		order.UpdatedAt,
		order.UpdatedBy,
	)

	if err != nil {
		if sentinel := uniqueViolationError(err); sentinel != nil {
			return fmt.Errorf("failed to update order %d: %w", order.ID, sentinel)
		}
		return fmt.Errorf("failed to update order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("order with id %d not found: %w", order.ID, ErrNotFound)
	}

	return nil
}

// UpdateStatus moves a live order from one status to order.Status in a single conditional UPDATE
func (r *orderRepository) UpdateStatus(ctx context.Context, order *domain.Order, from domain.OrderStatus) error {
	t, err := tableFor(order.Kind)
	if err != nil {
		return err
	}

	query := `
		UPDATE ` + t.name + `
		SET status = $3, processed_at = $4, updated_at = $5, updated_by = $6
		WHERE id = $1 AND status = $2 AND deleted = FALSE
	`

	order.UpdatedAt = time.Now()

	result, err := r.db.DB.ExecContext(ctx, query,
		order.ID,
		from,
		order.Status,
		order.ProcessedAt,
		order.UpdatedAt,
		order.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 1 {
		return nil
	}

	var exists bool
	err = r.db.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM `+t.name+` WHERE id = $1 AND deleted = FALSE)`, order.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check order existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("order with id %d not found: %w", order.ID, ErrNotFound)
	}

	return fmt.Errorf("order %d is no longer %s: %w", order.ID, from, ErrStatusChanged)
}
