package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const refreshTokenType = "refresh"

// ErrInvalidToken is returned for any token that fails parsing or verification
var ErrInvalidToken = errors.New("invalid token")

type claims struct {
	Type string `json:"typ,omitempty"`
	jwt.RegisteredClaims
}

// JWTManager signs and verifies HS512 tokens whose subject is the user's email
type JWTManager struct {
	secret             []byte
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
	now                func() time.Time
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secret string, accessTokenExpiry, refreshTokenExpiry time.Duration) *JWTManager {
	return &JWTManager{
		secret:             []byte(secret),
		accessTokenExpiry:  accessTokenExpiry,
		refreshTokenExpiry: refreshTokenExpiry,
		now:                time.Now,
	}
}

// IssueAccessToken mints a short-lived access token for subject
func (j *JWTManager) IssueAccessToken(subject string) (string, error) {
	token, err := j.sign(subject, "", j.accessTokenExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return token, nil
}

// IssueRefreshToken mints a long-lived refresh token for subject
func (j *JWTManager) IssueRefreshToken(subject string) (string, error) {
	token, err := j.sign(subject, refreshTokenType, j.refreshTokenExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return token, nil
}

func (j *JWTManager) sign(subject, typ string, ttl time.Duration) (string, error) {
	now := j.now()
	c := claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS512, c).SignedString(j.secret)
}

// ValidateAccessToken reports whether token is an unexpired access token signed with our key.
// Refresh tokens are rejected.
func (j *JWTManager) ValidateAccessToken(token string) bool {
	_, err := j.parseAccess(token)
	return err == nil
}

// GetAccessSubject returns the subject of a valid access token
func (j *JWTManager) GetAccessSubject(token string) (string, error) {
	c, err := j.parseAccess(token)
	if err != nil {
		return "", err
	}
	return c.Subject, nil
}

// RefreshTokenExpiry returns the configured refresh token lifetime
func (j *JWTManager) RefreshTokenExpiry() time.Duration {
	return j.refreshTokenExpiry
}

func (j *JWTManager) parseAccess(token string) (*claims, error) {
	c, err := j.parse(token)
	if err != nil {
		return nil, err
	}
	if c.Type != "" {
		return nil, fmt.Errorf("%w: %s token used as access token", ErrInvalidToken, c.Type)
	}
	return c, nil
}

func (j *JWTManager) parse(token string) (*claims, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	c := &claims{}
	parsed, err := jwt.ParseWithClaims(token, c, func(t *jwt.Token) (any, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || c.Subject == "" {
		return nil, ErrInvalidToken
	}

	return c, nil
}
