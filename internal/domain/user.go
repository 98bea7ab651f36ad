package domain

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents an account. Users are soft-deleted and never removed.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Nickname     string    `json:"nickname" db:"nickname"`
	PasswordHash *string   `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	Name         *string   `json:"name" db:"name"`
	Provider     *string   `json:"provider" db:"provider"`
	ProviderID   *string   `json:"provider_id" db:"provider_id"`
	Deleted      bool      `json:"deleted" db:"deleted"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
	CreatedBy    string    `json:"created_by" db:"created_by"`
	UpdatedBy    string    `json:"updated_by" db:"updated_by"`
}

// HasPassword reports whether the account can sign in with a password
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// IsAdmin reports whether the user holds the ADMIN role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
