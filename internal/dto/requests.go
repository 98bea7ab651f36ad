package dto

import "time"

// SignUpRequest represents a sign-up request
type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Nickname string `json:"nickname" binding:"required,min=2,max=50"`
}

// SignInRequest represents a sign-in request
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SignOutRequest carries the access token whose owner is signing out
type SignOutRequest struct {
	AccessToken string `json:"accessToken"`
}

// RefreshRequest represents a token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// UpdateUserRequest changes selected user fields. Nil fields are left unchanged.
type UpdateUserRequest struct {
	Email    *string `json:"email" binding:"omitempty,email,max=255"`
	Nickname *string `json:"nickname" binding:"omitempty,min=2,max=50"`
	Name     *string `json:"name" binding:"omitempty,max=100"`
	Role     *string `json:"role" binding:"omitempty,oneof=USER ADMIN"`
}

// CreateInventoryRequest represents a new inventory item
type CreateInventoryRequest struct {
	ItemName string  `json:"itemName" binding:"required,max=255"`
	ItemCode string  `json:"itemCode" binding:"required,max=100"`
	Quantity int     `json:"quantity" binding:"min=0"`
	Location *string `json:"location" binding:"omitempty,max=255"`
	QRCode   *string `json:"qrCode" binding:"omitempty,max=500"`
}

// UpdateInventoryRequest changes selected item fields. Nil fields are left unchanged.
type UpdateInventoryRequest struct {
	ItemName *string `json:"itemName" binding:"omitempty,min=1,max=255"`
	ItemCode *string `json:"itemCode" binding:"omitempty,min=1,max=100"`
	Quantity *int    `json:"quantity" binding:"omitempty,min=0"`
	Location *string `json:"location" binding:"omitempty,max=255"`
	QRCode   *string `json:"qrCode" binding:"omitempty,max=500"`
}

// AdjustQuantityRequest adds a signed amount to an item's quantity
type AdjustQuantityRequest struct {
	Adjustment int `json:"adjustment" binding:"required"`
}

// SetQuantityRequest replaces an item's quantity
type SetQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0"`
}

// CreateOrderRequest represents a new inbound or outbound order.
// SupplierID is required for inbound orders and CustomerID for outbound ones.
type CreateOrderRequest struct {
	OrderNumber   string `json:"orderNumber" binding:"required,max=100"`
	SupplierID    *int64 `json:"supplierId" binding:"omitempty,min=1"`
	CustomerID    *int64 `json:"customerId" binding:"omitempty,min=1"`
	TotalQuantity int    `json:"totalQuantity" binding:"required,min=1"`
}

// UpdateOrderStatusRequest moves an order to a new status
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=PENDING PROCESSING COMPLETED CANCELLED"`
}

// AuditSearchQuery filters the audit log. Times are RFC 3339.
type AuditSearchQuery struct {
	Action     string     `form:"action"`
	EntityType string     `form:"entityType"`
	EntityID   *int64     `form:"entityId" binding:"omitempty,min=1"`
	UserID     *int64     `form:"userId" binding:"omitempty,min=1"`
	From       *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To         *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit      int        `form:"limit" binding:"omitempty,min=1,max=1000"`
	Offset     int        `form:"offset" binding:"omitempty,min=0"`
}
