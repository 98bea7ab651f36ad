package repository

import (
	"context"
	"time"

	"github.com/prperemyshlev/wms-server/internal/domain"
)

// UserRepository defines methods for user operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByProvider(ctx context.Context, provider, providerID string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByNickname(ctx context.Context, nickname string) (bool, error)
	List(ctx context.Context) ([]*domain.User, error)
	ListActive(ctx context.Context) ([]*domain.User, error)
	CountActive(ctx context.Context) (int64, error)
	Update(ctx context.Context, user *domain.User) error
}

// TokenRepository defines methods for refresh token operations
type TokenRepository interface {
	Upsert(ctx context.Context, token *domain.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	Rotate(ctx context.Context, presentedHash string, next *domain.RefreshToken) error
	RevokeAllForUser(ctx context.Context, userID int64) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	DeleteRevoked(ctx context.Context) (int64, error)
}

// InventoryRepository defines methods for inventory operations
type InventoryRepository interface {
	Create(ctx context.Context, item *domain.InventoryItem) error
	GetByID(ctx context.Context, id int64) (*domain.InventoryItem, error)
	GetByItemCode(ctx context.Context, itemCode string) (*domain.InventoryItem, error)
	GetByQRCode(ctx context.Context, qrCode string) (*domain.InventoryItem, error)
	ExistsByItemCode(ctx context.Context, itemCode string) (bool, error)
	ListActive(ctx context.Context) ([]*domain.InventoryItem, error)
	SearchByLocation(ctx context.Context, location string) ([]*domain.InventoryItem, error)
	SearchByName(ctx context.Context, name string) ([]*domain.InventoryItem, error)
	ListLowStock(ctx context.Context, threshold int) ([]*domain.InventoryItem, error)
	CountActive(ctx context.Context) (int64, error)
	Update(ctx context.Context, item *domain.InventoryItem) error
	AdjustQuantity(ctx context.Context, id int64, delta int, updatedBy string) (*domain.InventoryItem, error)
}

// OrderFilter narrows an order listing. Zero values are ignored.
type OrderFilter struct {
	Status domain.OrderStatus
	UserID *int64
}

// OrderRepository defines methods for inbound and outbound order operations
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, kind domain.OrderKind, id int64) (*domain.Order, error)
	GetByOrderNumber(ctx context.Context, kind domain.OrderKind, orderNumber string) (*domain.Order, error)
	ExistsByOrderNumber(ctx context.Context, kind domain.OrderKind, orderNumber string) (bool, error)
	List(ctx context.Context, kind domain.OrderKind, filter OrderFilter) ([]*domain.Order, error)
	CountByStatus(ctx context.Context, kind domain.OrderKind, status domain.OrderStatus) (int64, error)
	Update(ctx context.Context, order *domain.Order) error
	// UpdateStatus stores order's status, processed_at and updated_by only if the
	// stored status still equals from
	UpdateStatus(ctx context.Context, order *domain.Order, from domain.OrderStatus) error
}

// AuditRepository defines methods for audit log operations
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
	GetByID(ctx context.Context, id int64) (*domain.AuditLog, error)
	Search(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
	Count(ctx context.Context) (int64, error)
	DistinctActions(ctx context.Context) ([]string, error)
	DistinctEntityTypes(ctx context.Context) ([]string, error)
}
