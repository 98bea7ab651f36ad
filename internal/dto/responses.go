package dto

import "time"

// MessageResponse represents a response that only carries a message
type MessageResponse struct {
	Message string `json:"message"`
}

// UserResponse is the public view of a user. The password hash is never exposed.
type UserResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Nickname  string    `json:"nickname"`
	Name      *string   `json:"name"`
	Role      string    `json:"role"`
	Provider  *string   `json:"provider,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	CreatedBy string    `json:"createdBy"`
	UpdatedBy string    `json:"updatedBy"`
	Deleted   bool      `json:"deleted"`
}

// SignUpResponse represents a sign-up response
type SignUpResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// SignInResponse represents a sign-in response
type SignInResponse struct {
	Message      string       `json:"message"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	User         UserResponse `json:"user"`
}

// RefreshResponse represents a token refresh response
type RefreshResponse struct {
	Message      string `json:"message"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// InventoryResponse represents an inventory item
type InventoryResponse struct {
	ID        int64     `json:"id"`
	ItemName  string    `json:"itemName"`
	ItemCode  string    `json:"itemCode"`
	Quantity  int       `json:"quantity"`
	Location  *string   `json:"location"`
	QRCode    *string   `json:"qrCode"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	CreatedBy string    `json:"createdBy"`
	UpdatedBy string    `json:"updatedBy"`
}

// OrderResponse represents an inbound or outbound order
type OrderResponse struct {
	ID            int64      `json:"id"`
	Kind          string     `json:"kind"`
	OrderNumber   string     `json:"orderNumber"`
	SupplierID    *int64     `json:"supplierId,omitempty"`
	CustomerID    *int64     `json:"customerId,omitempty"`
	Status        string     `json:"status"`
	TotalQuantity int        `json:"totalQuantity"`
	UserID        int64      `json:"userId"`
	ProcessedAt   *time.Time `json:"processedAt"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	CreatedBy     string     `json:"createdBy"`
	UpdatedBy     string     `json:"updatedBy"`
}

// AuditLogResponse represents an audit log entry
type AuditLogResponse struct {
	ID         int64     `json:"id"`
	Action     string    `json:"action"`
	EntityType string    `json:"entityType"`
	EntityID   *int64    `json:"entityId"`
	UserID     *int64    `json:"userId"`
	Details    string    `json:"details"`
	Timestamp  time.Time `json:"timestamp"`
	CreatedBy  string    `json:"createdBy"`
}

// AuditFacetsResponse lists the actions and entity types present in the audit log
type AuditFacetsResponse struct {
	Actions     []string `json:"actions"`
	EntityTypes []string `json:"entityTypes"`
}

// CountResponse wraps a single count
type CountResponse struct {
	Count int64 `json:"count"`
}

// PurgeResponse reports how many refresh tokens housekeeping removed
type PurgeResponse struct {
	Message string `json:"message"`
	Expired int64  `json:"expired"`
	Revoked int64  `json:"revoked"`
}

// FieldError describes one rejected request field
type FieldError struct {
	Field         string `json:"field"`
	RejectedValue any    `json:"rejectedValue"`
	Message       string `json:"message"`
}

// ErrorResponse is the body of every error response
type ErrorResponse struct {
	Status           int          `json:"status"`
	Error            string       `json:"error"`
	Code             string       `json:"code"`
	Message          string       `json:"message"`
	Path             string       `json:"path"`
	Timestamp        time.Time    `json:"timestamp"`
	ValidationErrors []FieldError `json:"validationErrors,omitempty"`
}
