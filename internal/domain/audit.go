package domain

import "time"

// Audit actions
const (
	ActionCreate         = "CREATE"
	ActionUpdate         = "UPDATE"
	ActionDelete         = "DELETE"
	ActionRestore        = "RESTORE"
	ActionSignUp         = "SIGN_UP"
	ActionSignIn         = "SIGN_IN"
	ActionSignOut        = "SIGN_OUT"
	ActionOAuth2SignIn   = "OAUTH2_SIGN_IN"
	ActionAdjustQuantity = "ADJUST_QUANTITY"
	ActionStatusChange   = "STATUS_CHANGE"
	ActionPurgeTokens    = "PURGE_TOKENS"
)

// Audited entity types
const (
	EntityUser          = "USER"
	EntityInventory     = "INVENTORY"
	EntityInboundOrder  = "INBOUND_ORDER"
	EntityOutboundOrder = "OUTBOUND_ORDER"
	EntityRefreshToken  = "REFRESH_TOKEN"
)

// AuditLog is an append-only record of a state change
type AuditLog struct {
	ID         int64     `json:"id" db:"id"`
	Action     string    `json:"action" db:"action"`
	EntityType string    `json:"entity_type" db:"entity_type"`
	EntityID   *int64    `json:"entity_id" db:"entity_id"`
	UserID     *int64    `json:"user_id" db:"user_id"`
	Details    string    `json:"details" db:"details"`
	Timestamp  time.Time `json:"timestamp" db:"timestamp"`
	CreatedBy  string    `json:"created_by" db:"created_by"`
}

// AuditFilter narrows an audit log search. Zero values are ignored.
type AuditFilter struct {
	Action     string
	EntityType string
	EntityID   *int64
	UserID     *int64
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}
