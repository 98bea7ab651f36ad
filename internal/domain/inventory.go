package domain

import "time"

// DefaultLowStockThreshold applies when a low-stock query gives no threshold
const DefaultLowStockThreshold = 10

// InventoryItem is a stock-keeping unit held at a location
type InventoryItem struct {
	ID        int64     `json:"id" db:"id"`
	ItemName  string    `json:"item_name" db:"item_name"`
	ItemCode  string    `json:"item_code" db:"item_code"`
	Quantity  int       `json:"quantity" db:"quantity"`
	Location  *string   `json:"location" db:"location"`
	QRCode    *string   `json:"qr_code" db:"qr_code"`
	Deleted   bool      `json:"deleted" db:"deleted"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	CreatedBy string    `json:"created_by" db:"created_by"`
	UpdatedBy string    `json:"updated_by" db:"updated_by"`
}

// IsLowStock reports whether quantity is at or below threshold
func (i *InventoryItem) IsLowStock(threshold int) bool {
	return i.Quantity <= threshold
}
