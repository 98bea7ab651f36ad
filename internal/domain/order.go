package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidTransition is returned when an order cannot move to the requested status
var ErrInvalidTransition = errors.New("invalid order status transition")

type OrderKind string

const (
	OrderInbound  OrderKind = "INBOUND"
	OrderOutbound OrderKind = "OUTBOUND"
)

// ParseOrderKind accepts "inbound"/"outbound" in any case
func ParseOrderKind(s string) (OrderKind, bool) {
	switch OrderKind(strings.ToUpper(s)) {
	case OrderInbound:
		return OrderInbound, true
	case OrderOutbound:
		return OrderOutbound, true
	}
	return "", false
}

// EntityType returns the audit entity type for orders of this kind
func (k OrderKind) EntityType() string {
	if k == OrderInbound {
		return EntityInboundOrder
	}
	return EntityOutboundOrder
}

type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusCompleted  OrderStatus = "COMPLETED"
	StatusCancelled  OrderStatus = "CANCELLED"
)

var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusCompleted, StatusCancelled},
}

// ParseOrderStatus accepts a status name in any case
func ParseOrderStatus(s string) (OrderStatus, bool) {
	status := OrderStatus(strings.ToUpper(s))
	switch status {
	case StatusPending, StatusProcessing, StatusCompleted, StatusCancelled:
		return status, true
	}
	return "", false
}

// IsTerminal reports whether no further transitions are possible
func (s OrderStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo reports whether s may move to next
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order is an inbound (from a supplier) or outbound (to a customer) order.
// PartyID holds the supplier id for inbound orders and the customer id for outbound ones.
type Order struct {
	ID            int64       `json:"id" db:"id"`
	Kind          OrderKind   `json:"kind"`
	OrderNumber   string      `json:"order_number" db:"order_number"`
	PartyID       int64       `json:"party_id"`
	Status        OrderStatus `json:"status" db:"status"`
	TotalQuantity int         `json:"total_quantity" db:"total_quantity"`
	UserID        int64       `json:"user_id" db:"user_id"`
	ProcessedAt   *time.Time  `json:"processed_at" db:"processed_at"`
	Deleted       bool        `json:"deleted" db:"deleted"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`
	CreatedBy     string      `json:"created_by" db:"created_by"`
	UpdatedBy     string      `json:"updated_by" db:"updated_by"`
}

// TransitionTo moves the order to next, stamping ProcessedAt on terminal states
func (o *Order) TransitionTo(next OrderStatus, now time.Time) error {
	if !o.Status.CanTransitionTo(next) {
		return fmt.Errorf("%s -> %s: %w", o.Status, next, ErrInvalidTransition)
	}

	o.Status = next
	if next.IsTerminal() {
		o.ProcessedAt = &now
	}
	return nil
}

// Process starts work on a pending order
func (o *Order) Process(now time.Time) error {
	if o.Status != StatusPending {
		return fmt.Errorf("only pending orders can be processed, order is %s: %w", o.Status, ErrInvalidTransition)
	}
	return o.TransitionTo(StatusProcessing, now)
}

// Complete finishes an order that is being processed
func (o *Order) Complete(now time.Time) error {
	if o.Status != StatusProcessing {
		return fmt.Errorf("only processing orders can be completed, order is %s: %w", o.Status, ErrInvalidTransition)
	}
	return o.TransitionTo(StatusCompleted, now)
}

// Cancel cancels any order that has not completed. Cancelling twice is a no-op.
func (o *Order) Cancel(now time.Time) error {
	switch o.Status {
	case StatusCompleted:
		return fmt.Errorf("completed orders cannot be cancelled: %w", ErrInvalidTransition)
	case StatusCancelled:
		return nil
	}
	return o.TransitionTo(StatusCancelled, now)
}
