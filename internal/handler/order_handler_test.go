package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prperemyshlev/wms-server/internal/domain"
	"github.com/prperemyshlev/wms-server/internal/dto"
	"github.com/prperemyshlev/wms-server/internal/service"
)

// fakeOrderService keeps a single order and applies the domain state machine to it
type fakeOrderService struct {
	service.OrderService
	order      *domain.Order
	listUserID *int64
}

func (f *fakeOrderService) Create(_ context.Context, kind domain.OrderKind, req *dto.CreateOrderRequest, actor domain.Actor) (*domain.Order, error) {
	f.order = &domain.Order{
		ID:            1,
		Kind:          kind,
		OrderNumber:   req.OrderNumber,
		Status:        domain.StatusPending,
		TotalQuantity: req.TotalQuantity,
		UserID:        *actor.UserID,
		CreatedBy:     actor.Name,
	}
	if req.SupplierID != nil {
		f.order.PartyID = *req.SupplierID
	}
	return f.order, nil
}

func (f *fakeOrderService) find(kind domain.OrderKind, id int64) (*domain.Order, error) {
	if f.order == nil || f.order.Kind != kind || f.order.ID != id {
		return nil, fmt.Errorf("order %d: %w", id, service.ErrNotFound)
	}
	return f.order, nil
}

func (f *fakeOrderService) Get(_ context.Context, kind domain.OrderKind, id int64) (*domain.Order, error) {
	return f.find(kind, id)
}

func (f *fakeOrderService) Process(_ context.Context, kind domain.OrderKind, id int64, _ domain.Actor) (*domain.Order, error) {
	order, err := f.find(kind, id)
	if err != nil {
		return nil, err
	}
	if err := order.TransitionTo(domain.StatusProcessing, time.Now()); err != nil {
		return nil, fmt.Errorf("%w: %w", service.ErrInvalidOrderTransition, err)
	}
	return order, nil
}

func (f *fakeOrderService) Complete(_ context.Context, kind domain.OrderKind, id int64, _ domain.Actor) (*domain.Order, error) {
	order, err := f.find(kind, id)
	if err != nil {
		return nil, err
	}
	if err := order.TransitionTo(domain.StatusCompleted, time.Now()); err != nil {
		return nil, fmt.Errorf("%w: %w", service.ErrInvalidOrderTransition, err)
	}
	return order, nil
}

func (f *fakeOrderService) List(_ context.Context, _ domain.OrderKind, _ domain.OrderStatus, userID *int64) ([]*domain.Order, error) {
	f.listUserID = userID
	return nil, nil
}

func orderRouter(orders *fakeOrderService) *gin.Engine {
	h := NewOrderHandler(orders)
	r := gin.New()
	g := r.Group("/orders/:kind", AuthMiddleware(newFakeAuth()))
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/count", h.Count)
	g.GET("/:id", h.Get)
	g.POST("/:id/process", h.Process)
	g.POST("/:id/complete", h.Complete)
	return r
}

func TestOrderLifecycle(t *testing.T) {
	orders := &fakeOrderService{}
	r := orderRouter(orders)
	supplier := int64(4)

	w := perform(t, r, http.MethodPost, "/orders/inbound", "user-token", dto.CreateOrderRequest{
		OrderNumber: "IN-1", SupplierID: &supplier, TotalQuantity: 3,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created dto.OrderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "PENDING", created.Status)
	assert.Equal(t, "user@example.com", created.CreatedBy)

	w = perform(t, r, http.MethodPost, "/orders/inbound/1/complete", "user-token", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "INVALID_STATE_TRANSITION", decodeError(t, w).Code)

	w = perform(t, r, http.MethodPost, "/orders/inbound/1/process", "user-token", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = perform(t, r, http.MethodPost, "/orders/inbound/1/complete", "user-token", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var completed dto.OrderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &completed))
	assert.Equal(t, "COMPLETED", completed.Status)
	assert.NotNil(t, completed.ProcessedAt)

	w = perform(t, r, http.MethodGet, "/orders/outbound/1", "user-token", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderRequestErrors(t *testing.T) {
	r := orderRouter(&fakeOrderService{})

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"unknown kind", http.MethodGet, "/orders/sideways/1", nil, http.StatusNotFound, "RESOURCE_NOT_FOUND"},
		{"bad id", http.MethodGet, "/orders/inbound/abc", nil, http.StatusBadRequest, "BAD_REQUEST"},
		{"zero id", http.MethodGet, "/orders/inbound/0", nil, http.StatusBadRequest, "BAD_REQUEST"},
		{"count without status", http.MethodGet, "/orders/inbound/count", nil, http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown status", http.MethodGet, "/orders/inbound?status=LOST", nil, http.StatusBadRequest, "BAD_REQUEST"},
		{"zero quantity", http.MethodPost, "/orders/inbound", dto.CreateOrderRequest{OrderNumber: "IN-2"}, http.StatusBadRequest, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(t, r, tt.method, tt.path, "user-token", tt.body)
			require.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w).Code)
		})
	}
}

func TestOrderListMine(t *testing.T) {
	orders := &fakeOrderService{}
	r := orderRouter(orders)

	w := perform(t, r, http.MethodGet, "/orders/outbound?mine=true", "admin-token", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, orders.listUserID)
	assert.EqualValues(t, 2, *orders.listUserID)
}
