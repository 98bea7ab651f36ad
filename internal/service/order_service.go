package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prperemyshlev/wms-server/internal/domain"
	"github.com/prperemyshlev/wms-server/internal/dto"
	"github.com/prperemyshlev/wms-server/internal/repository"
)

// orderService implements OrderService interface for both order kinds
type orderService struct {
	orderRepo repository.OrderRepository
	audit     AuditService
	now       func() time.Time
}

// NewOrderService creates a new order service
func NewOrderService(orderRepo repository.OrderRepository, audit AuditService) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		audit:     audit,
		now:       time.Now,
	}
}

// Create registers a pending order. Inbound orders need a supplier, outbound ones a customer.
func (s *orderService) Create(ctx context.Context, kind domain.OrderKind, req *dto.CreateOrderRequest, actor domain.Actor) (*domain.Order, error) {
	partyID, err := orderParty(kind, req)
	if err != nil {
		return nil, err
	}
	if req.TotalQuantity < 1 {
		return nil, fmt.Errorf("total quantity must be positive: %w", ErrBadRequest)
	}
	if actor.UserID == nil {
		return nil, fmt.Errorf("orders require an authenticated user: %w", ErrUnauthorized)
	}

	orderNumber := strings.TrimSpace(req.OrderNumber)
	exists, err := s.orderRepo.ExistsByOrderNumber(ctx, kind, orderNumber)
	if err != nil {
		return nil, translate(err, "failed to check order number")
	}
	if exists {
		return nil, fmt.Errorf("order %s: %w", orderNumber, ErrDuplicateOrderNumber)
	}

	order := &domain.Order{
		Kind:          kind,
		OrderNumber:   orderNumber,
		PartyID:       partyID,
		Status:        domain.StatusPending,
		TotalQuantity: req.TotalQuantity,
		UserID:        *actor.UserID,
		CreatedBy:     actor.Name,
		UpdatedBy:     actor.Name,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, translate(err, "failed to create order")
	}

	s.audit.Record(ctx, actor, domain.ActionCreate, kind.EntityType(), &order.ID,
		fmt.Sprintf("created %s order %s (quantity %d)", strings.ToLower(string(kind)), order.OrderNumber, order.TotalQuantity))

	return order, nil
}

func orderParty(kind domain.OrderKind, req *dto.CreateOrderRequest) (int64, error) {
	switch kind {
	case domain.OrderInbound:
		if req.SupplierID == nil {
			return 0, fmt.Errorf("supplierId is required for inbound orders: %w", ErrBadRequest)
		}
		return *req.SupplierID, nil
	case domain.OrderOutbound:
		if req.CustomerID == nil {
			return 0, fmt.Errorf("customerId is required for outbound orders: %w", ErrBadRequest)
		}
		return *req.CustomerID, nil
	}
	return 0, fmt.Errorf("unknown order kind %q: %w", kind, ErrBadRequest)
}

func (s *orderService) Get(ctx context.Context, kind domain.OrderKind, id int64) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, kind, id)
	if err != nil {
		return nil, translate(err, "failed to get order")
	}
	return order, nil
}

func (s *orderService) GetByOrderNumber(ctx context.Context, kind domain.OrderKind, orderNumber string) (*domain.Order, error) {
	order, err := s.orderRepo.GetByOrderNumber(ctx, kind, orderNumber)
	if err != nil {
		return nil, translate(err, "failed to get order")
	}
	return order, nil
}

// List returns live orders, optionally narrowed by status and owning user
func (s *orderService) List(ctx context.Context, kind domain.OrderKind, status domain.OrderStatus, userID *int64) ([]*domain.Order, error) {
	orders, err := s.orderRepo.List(ctx, kind, repository.OrderFilter{Status: status, UserID: userID})
	if err != nil {
		return nil, translate(err, "failed to list orders")
	}
	return orders, nil
}

func (s *orderService) CountByStatus(ctx context.Context, kind domain.OrderKind, status domain.OrderStatus) (int64, error) {
	n, err := s.orderRepo.CountByStatus(ctx, kind, status)
	if err != nil {
		return 0, translate(err, "failed to count orders")
	}
	return n, nil
}

func (s *orderService) Process(ctx context.Context, kind domain.OrderKind, id int64, actor domain.Actor) (*domain.Order, error) {
	return s.transition(ctx, kind, id, actor, func(o *domain.Order, now time.Time) error {
		return o.Process(now)
	})
}

func (s *orderService) Complete(ctx context.Context, kind domain.OrderKind, id int64, actor domain.Actor) (*domain.Order, error) {
	return s.transition(ctx, kind, id, actor, func(o *domain.Order, now time.Time) error {
		return o.Complete(now)
	})
}

func (s *orderService) Cancel(ctx context.Context, kind domain.OrderKind, id int64, actor domain.Actor) (*domain.Order, error) {
	return s.transition(ctx, kind, id, actor, func(o *domain.Order, now time.Time) error {
		return o.Cancel(now)
	})
}

// UpdateStatus moves the order along any allowed edge of the status graph
func (s *orderService) UpdateStatus(ctx context.Context, kind domain.OrderKind, id int64, status domain.OrderStatus, actor domain.Actor) (*domain.Order, error) {
	return s.transition(ctx, kind, id, actor, func(o *domain.Order, now time.Time) error {
		return o.TransitionTo(status, now)
	})
}

func (s *orderService) transition(
	ctx context.Context,
	kind domain.OrderKind,
	id int64,
	actor domain.Actor,
	apply func(*domain.Order, time.Time) error,
) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, kind, id)
	if err != nil {
		return nil, translate(err, "failed to get order")
	}

	previous := order.Status
	if err := apply(order, s.now()); err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			return nil, fmt.Errorf("order %s: %w: %w", order.OrderNumber, ErrInvalidOrderTransition, err)
		}
		return nil, err
	}
	if order.Status == previous {
		return order, nil
	}

	order.UpdatedBy = actor.Name
	if err := s.orderRepo.UpdateStatus(ctx, order, previous); err != nil {
		return nil, translate(err, "failed to update order status")
	}

	s.audit.Record(ctx, actor, domain.ActionStatusChange, kind.EntityType(), &order.ID,
		fmt.Sprintf("%s: %s -> %s", order.OrderNumber, previous, order.Status))

	return order, nil
}

// Delete soft-deletes an order
func (s *orderService) Delete(ctx context.Context, kind domain.OrderKind, id int64, actor domain.Actor) error {
	order, err := s.orderRepo.GetByID(ctx, kind, id)
	if err != nil {
		return translate(err, "failed to get order")
	}

	order.Deleted = true
	order.UpdatedBy = actor.Name
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return translate(err, "failed to delete order")
	}

	s.audit.Record(ctx, actor, domain.ActionDelete, kind.EntityType(), &order.ID, "deleted "+order.OrderNumber)

	return nil
}
