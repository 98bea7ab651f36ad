package service

import (
	"context"

	"github.com/prperemyshlev/wms-server/internal/domain"
	"github.com/prperemyshlev/wms-server/internal/dto"
)

// AuthResult is returned by a successful sign-in
type AuthResult struct {
	User   *domain.User
	Tokens domain.TokenPair
}

// AuthService defines sign-up, sign-in, sign-out and token refresh
type AuthService interface {
	SignUp(ctx context.Context, req *dto.SignUpRequest, actor domain.Actor) (*domain.User, error)
	SignIn(ctx context.Context, req *dto.SignInRequest) (*AuthResult, error)
	SignOut(ctx context.Context, accessToken string)
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	Authenticate(ctx context.Context, accessToken string) (*domain.User, error)
}

// RefreshTokenService owns the persisted refresh token lifecycle
type RefreshTokenService interface {
	CreateAndSave(ctx context.Context, user *domain.User) (string, error)
	FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error)
	Rotate(ctx context.Context, presented string, user *domain.User) (string, error)
	RevokeAllForUser(ctx context.Context, userID int64) (int64, error)
	PurgeExpired(ctx context.Context) (int64, error)
	PurgeRevoked(ctx context.Context) (int64, error)
}

// OAuthService drives the OAuth2 authorization-code flow
type OAuthService interface {
	AuthorizeURL(ctx context.Context, provider string) (string, error)
	Callback(ctx context.Context, provider, state, code string) (*AuthResult, error)
	FindOrRegister(ctx context.Context, info *domain.ProviderInfo) (*domain.User, error)
}

// UserService manages user accounts
type UserService interface {
	Get(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	ListActive(ctx context.Context) ([]*domain.User, error)
	CountActive(ctx context.Context) (int64, error)
	Update(ctx context.Context, id int64, req *dto.UpdateUserRequest, actor domain.Actor) (*domain.User, error)
	Delete(ctx context.Context, id int64, actor domain.Actor) error
	Restore(ctx context.Context, id int64, actor domain.Actor) (*domain.User, error)
}

// InventoryService manages stock items
type InventoryService interface {
	Create(ctx context.Context, req *dto.CreateInventoryRequest, actor domain.Actor) (*domain.InventoryItem, error)
	Get(ctx context.Context, id int64) (*domain.InventoryItem, error)
	GetByItemCode(ctx context.Context, itemCode string) (*domain.InventoryItem, error)
	FindByQRCode(ctx context.Context, qrCode string) (*domain.InventoryItem, error)
	List(ctx context.Context) ([]*domain.InventoryItem, error)
	SearchByLocation(ctx context.Context, location string) ([]*domain.InventoryItem, error)
	SearchByName(ctx context.Context, name string) ([]*domain.InventoryItem, error)
	LowStock(ctx context.Context, threshold int) ([]*domain.InventoryItem, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id int64, req *dto.UpdateInventoryRequest, actor domain.Actor) (*domain.InventoryItem, error)
	SetQuantity(ctx context.Context, id int64, quantity int, actor domain.Actor) (*domain.InventoryItem, error)
	AdjustQuantity(ctx context.Context, id int64, delta int, actor domain.Actor) (*domain.InventoryItem, error)
	Delete(ctx context.Context, id int64, actor domain.Actor) error
}

// OrderService manages inbound and outbound orders
type OrderService interface {
	Create(ctx context.Context, kind domain.OrderKind, req *dto.CreateOrderRequest, actor domain.Actor) (*domain.Order, error)
	Get(ctx context.Context, kind domain.OrderKind, id int64) (*domain.Order, error)
	GetByOrderNumber(ctx context.Context, kind domain.OrderKind, orderNumber string) (*domain.Order, error)
	List(ctx context.Context, kind domain.OrderKind, status domain.OrderStatus, userID *int64) ([]*domain.Order, error)
	CountByStatus(ctx context.Context, kind domain.OrderKind, status domain.OrderStatus) (int64, error)
	Process(ctx context.Context, kind domain.OrderKind, id int64, actor domain.Actor) (*domain.Order, error)
	Complete(ctx context.Context, kind domain.OrderKind, id int64, actor domain.Actor) (*domain.Order, error)
	Cancel(ctx context.Context, kind domain.OrderKind, id int64, actor domain.Actor) (*domain.Order, error)
	UpdateStatus(ctx context.Context, kind domain.OrderKind, id int64, status domain.OrderStatus, actor domain.Actor) (*domain.Order, error)
	Delete(ctx context.Context, kind domain.OrderKind, id int64, actor domain.Actor) error
}

// AuditService records and queries the audit trail
type AuditService interface {
	Record(ctx context.Context, actor domain.Actor, action, entityType string, entityID *int64, details string)
	Get(ctx context.Context, id int64) (*domain.AuditLog, error)
	Search(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
	Recent(ctx context.Context, limit int) ([]*domain.AuditLog, error)
	EntityHistory(ctx context.Context, entityType string, entityID int64) ([]*domain.AuditLog, error)
	Count(ctx context.Context) (int64, error)
	Facets(ctx context.Context) (actions, entityTypes []string, err error)
}

// EventPublisher publishes domain events to a message broker
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}
