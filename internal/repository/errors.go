package repository

import (
	"errors"

	"github.com/lib/pq"
)

// Common repository errors
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when trying to store a user with an existing email
	ErrDuplicateEmail = errors.New("user with this email already exists")

	// ErrDuplicateNickname is returned when trying to store a user with an existing nickname
	ErrDuplicateNickname = errors.New("user with this nickname already exists")

	// ErrDuplicateProvider is returned when a provider account is already bound to a user
	ErrDuplicateProvider = errors.New("provider account already registered")

	// ErrDuplicateToken is returned when trying to store a token with an existing hash
	ErrDuplicateToken = errors.New("token with this hash already exists")

	// ErrDuplicateItemCode is returned when an inventory item code is taken
	ErrDuplicateItemCode = errors.New("inventory item with this code already exists")

	// ErrDuplicateOrderNumber is returned when an order number is taken
	ErrDuplicateOrderNumber = errors.New("order with this number already exists")

	// ErrInsufficientQuantity is returned when a stock adjustment would go below zero
	ErrInsufficientQuantity = errors.New("insufficient inventory quantity")

	// ErrTokenConsumed is returned when a refresh token was revoked by a concurrent rotation
	ErrTokenConsumed = errors.New("refresh token already consumed")

	// ErrStatusChanged is returned when an order left the expected status before the update landed
	ErrStatusChanged = errors.New("order status changed concurrently")
)

const uniqueViolation = "23505"

// constraintErrors maps unique constraint names to sentinel errors
var constraintErrors = map[string]error{
	"users_email_key":                  ErrDuplicateEmail,
	"users_nickname_key":               ErrDuplicateNickname,
	"users_provider_key":               ErrDuplicateProvider,
	"refresh_tokens_token_hash_key":    ErrDuplicateToken,
	"inventory_item_code_key":          ErrDuplicateItemCode,
	"inbound_orders_order_number_key":  ErrDuplicateOrderNumber,
	"outbound_orders_order_number_key": ErrDuplicateOrderNumber,
}

// uniqueViolationError returns the sentinel for a pq unique_violation, or nil
func uniqueViolationError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return nil
	}
	if sentinel, ok := constraintErrors[pqErr.Constraint]; ok {
		return sentinel
	}
	return nil
}
