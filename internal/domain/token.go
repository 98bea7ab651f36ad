package domain

import "time"

// RefreshToken is the stored form of an issued refresh token. Only the SHA-256 digest is kept.
type RefreshToken struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	TokenHash string    `json:"-" db:"token_hash"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	Revoked   bool      `json:"revoked" db:"revoked"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// IsValid reports whether the token is neither revoked nor expired at now
func (t *RefreshToken) IsValid(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}

// TokenPair is what a successful sign-in or refresh hands back to the client
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
