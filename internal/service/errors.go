package service

import "errors"

// Business errors. Handlers map them to HTTP responses with errors.Is.
var (
	ErrBadRequest              = errors.New("bad request")
	ErrInvalidCredentials      = errors.New("invalid email or password")
	ErrInvalidRefreshToken     = errors.New("invalid refresh token")
	ErrTokenExpired            = errors.New("refresh token expired")
	ErrUnauthorized            = errors.New("authentication required")
	ErrForbidden               = errors.New("access denied")
	ErrNotFound                = errors.New("resource not found")
	ErrDuplicateEmail          = errors.New("email already registered")
	ErrDuplicateNickname       = errors.New("nickname already taken")
	ErrDuplicateItemCode       = errors.New("item code already exists")
	ErrDuplicateOrderNumber    = errors.New("order number already exists")
	ErrInsufficientStock       = errors.New("insufficient inventory")
	ErrInvalidOrderTransition  = errors.New("invalid order status transition")
	ErrUnsupportedProvider     = errors.New("unsupported oauth2 provider")
	ErrInvalidProviderResponse = errors.New("invalid oauth2 provider response")
	ErrInvalidOAuthState       = errors.New("invalid or expired oauth2 state")
	ErrRateLimited             = errors.New("rate limit exceeded")
)
