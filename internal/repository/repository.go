package repository

import (
	"github.com/prperemyshlev/wms-server/pkg/database"
)

// Repositories holds all repository interfaces
type Repositories struct {
	User      UserRepository
	Token     TokenRepository
	Inventory InventoryRepository
	Order     OrderRepository
	Audit     AuditRepository
}

// NewRepositories creates all repositories
func NewRepositories(db *database.Postgres) *Repositories {
	return &Repositories{
		User:      NewUserRepository(db),
		Token:     NewTokenRepository(db),
		Inventory: NewInventoryRepository(db),
		Order:     NewOrderRepository(db),
		Audit:     NewAuditRepository(db),
	}
}
