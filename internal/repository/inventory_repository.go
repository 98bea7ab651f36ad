package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/prperemyshlev/wms-server/internal/domain"
	"github.com/prperemyshlev/wms-server/pkg/database"
)

const inventoryColumns = `id, item_name, item_code, quantity, location, qr_code,
		deleted, created_at, updated_at, created_by, updated_by`

// inventoryRepository implements InventoryRepository interface
type inventoryRepository struct {
	db *database.Postgres
}

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db *database.Postgres) InventoryRepository {
	return &inventoryRepository{db: db}
}

func scanItem(row rowScanner) (*domain.InventoryItem, error) {
	item := &domain.InventoryItem{}
	var location, qrCode sql.NullString

	err := row.Scan(
		&item.ID,
		&item.ItemName,
		&item.ItemCode,
		&item.Quantity,
		&location,
		&qrCode,
		&item.Deleted,
		&item.CreatedAt,
		&item.UpdatedAt,
		&item.CreatedBy,
		&item.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}

	item.Location = nullString(location)
	item.QRCode = nullString(qrCode)

	return item, nil
}

// Create creates a new inventory item
func (r *inventoryRepository) Create(ctx context.Context, item *domain.InventoryItem) error {
	query := `
		INSERT INTO inventory (item_name, item_code, quantity, location, qr_code,
			deleted, created_at, updated_at, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6, $7, $8, $9)
		RETURNING id
	`

	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now

	err := r.db.DB.QueryRowContext(ctx, query,
		item.ItemName,
		item.ItemCode,
		item.Quantity,
		item.Location,
		item.QRCode,
		item.CreatedAt,
		item.UpdatedAt,
		item.CreatedBy,
		item.UpdatedBy,
	).Scan(&item.ID)

	if err != nil {
		if sentinel := uniqueViolationError(err); sentinel != nil {
			return fmt.Errorf("failed to create item %s: %w", item.ItemCode, sentinel)
		}
		return fmt.Errorf("failed to create inventory item: %w", err)
	}

	return nil
}

// GetByID retrieves an active item by ID
func (r *inventoryRepository) GetByID(ctx context.Context, id int64) (*domain.InventoryItem, error) {
	return r.getOne(ctx, `SELECT `+inventoryColumns+` FROM inventory WHERE id = $1 AND deleted = FALSE`,
		id, fmt.Sprintf("inventory item with id %d", id))
}

// GetByItemCode retrieves an active item by its code
func (r *inventoryRepository) GetByItemCode(ctx context.Context, itemCode string) (*domain.InventoryItem, error) {
	return r.getOne(ctx, `SELECT `+inventoryColumns+` FROM inventory WHERE item_code = $1 AND deleted = FALSE`,
		itemCode, fmt.Sprintf("inventory item with code %s", itemCode))
}

// GetByQRCode retrieves an active item by its QR code payload
func (r *inventoryRepository) GetByQRCode(ctx context.Context, qrCode string) (*domain.InventoryItem, error) {
	return r.getOne(ctx, `SELECT `+inventoryColumns+` FROM inventory WHERE qr_code = $1 AND deleted = FALSE`,
		qrCode, "inventory item with qr code")
}

func (r *inventoryRepository) getOne(ctx context.Context, query string, arg any, what string) (*domain.InventoryItem, error) {
	item, err := scanItem(r.db.DB.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s not found: %w", what, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get %s: %w", what, err)
	}
	return item, nil
}

// ExistsByItemCode reports whether any item, deleted or not, uses the code
func (r *inventoryRepository) ExistsByItemCode(ctx context.Context, itemCode string) (bool, error) {
	var exists bool
	err := r.db.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM inventory WHERE item_code = $1)`, itemCode).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check item code: %w", err)
	}
	return exists, nil
}

// ListActive returns active items, most recently updated first
func (r *inventoryRepository) ListActive(ctx context.Context) ([]*domain.InventoryItem, error) {
	return r.list(ctx, `SELECT `+inventoryColumns+` FROM inventory
		WHERE deleted = FALSE ORDER BY updated_at DESC`)
}

// SearchByLocation returns active items whose location contains the text, ignoring case
func (r *inventoryRepository) SearchByLocation(ctx context.Context, location string) ([]*domain.InventoryItem, error) {
	return r.list(ctx, `SELECT `+inventoryColumns+` FROM inventory
		WHERE deleted = FALSE AND location ILIKE '%' || $1 || '%' ORDER BY updated_at DESC`, location)
}

// SearchByName returns active items whose name contains the text, ignoring case
func (r *inventoryRepository) SearchByName(ctx context.Context, name string) ([]*domain.InventoryItem, error) {
	return r.list(ctx, `SELECT `+inventoryColumns+` FROM inventory
		WHERE deleted = FALSE AND item_name ILIKE '%' || $1 || '%' ORDER BY updated_at DESC`, name)
}

// ListLowStock returns active items with quantity at or below threshold, lowest first
func (r *inventoryRepository) ListLowStock(ctx context.Context, threshold int) ([]*domain.InventoryItem, error) {
	return r.list(ctx, `SELECT `+inventoryColumns+` FROM inventory
		WHERE deleted = FALSE AND quantity <= $1 ORDER BY quantity ASC, id ASC`, threshold)
}

func (r *inventoryRepository) list(ctx context.Context, query string, args ...any) ([]*domain.InventoryItem, error) {
	rows, err := r.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	defer rows.Close()

	items := make([]*domain.InventoryItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inventory item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate inventory: %w", err)
	}

	return items, nil
}

// CountActive counts items that are not soft-deleted
func (r *inventoryRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM inventory WHERE deleted = FALSE`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count inventory: %w", err)
	}
	return count, nil
}

// Update updates an existing item, including its deleted flag
func (r *inventoryRepository) Update(ctx context.Context, item *domain.InventoryItem) error {
	query := `
		UPDATE inventory
		SET item_name = $2, item_code = $3, quantity = $4, location = $5, qr_code = $6,
			deleted = $7, updated_at = $8, updated_by = $9
		WHERE id = $1
	`

	item.UpdatedAt = time.Now()

	result, err := r.db.DB.ExecContext(ctx, query,
		item.ID,
		item.ItemName,
		item.ItemCode,
		item.Quantity,
		item.Location,
		item.QRCode,
		item.Deleted,
		item.UpdatedAt,
		item.UpdatedBy,
	)

	if err != nil {
		if sentinel := uniqueViolationError(err); sentinel != nil {
			return fmt.Errorf("failed to update item %d: %w", item.ID, sentinel)
		}
		return fmt.Errorf("failed to update inventory item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("inventory item with id %d not found: %w", item.ID, ErrNotFound)
	}

	return nil
}

// AdjustQuantity adds delta to an item's quantity in a single conditional update.
// The update is refused when the result would be negative.
func (r *inventoryRepository) AdjustQuantity(ctx context.Context, id int64, delta int, updatedBy string) (*domain.InventoryItem, error) {
	query := `
		UPDATE inventory
		SET quantity = quantity + $2, updated_at = $3, updated_by = $4
		WHERE id = $1 AND deleted = FALSE AND quantity + $2 >= 0
		RETURNING ` + inventoryColumns

	item, err := scanItem(r.db.DB.QueryRowContext(ctx, query, id, delta, time.Now(), updatedBy))
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to adjust quantity: %w", err)
	}

	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}

	return nil, fmt.Errorf("adjusting item %d by %d: %w", id, delta, ErrInsufficientQuantity)
}
