package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prperemyshlev/wms-server/internal/domain"
	"github.com/prperemyshlev/wms-server/internal/dto"
	"github.com/prperemyshlev/wms-server/internal/mapper"
	"github.com/prperemyshlev/wms-server/internal/service"
)

// OrderHandler serves /orders/:kind for both inbound and outbound orders
type OrderHandler struct {
	orderService service.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func orderKind(c *gin.Context) (domain.OrderKind, error) {
	kind, ok := domain.ParseOrderKind(c.Param("kind"))
	if !ok {
		return "", fmt.Errorf("unknown order kind %q: %w", c.Param("kind"), service.ErrNotFound)
	}
	return kind, nil
}

func orderStatus(raw string) (domain.OrderStatus, error) {
	if raw == "" {
		return "", nil
	}
	status, ok := domain.ParseOrderStatus(raw)
	if !ok {
		return "", fmt.Errorf("unknown order status %q: %w", raw, service.ErrBadRequest)
	}
	return status, nil
}

func (h *OrderHandler) Create(c *gin.Context) {
	kind, err := orderKind(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), kind, &req, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, mapper.ToOrderResponse(order))
}

// List returns orders of one kind. Supported query parameters: status, userId,
// mine=true (the caller's orders) and orderNumber (single lookup).
func (h *OrderHandler) List(c *gin.Context) {
	kind, err := orderKind(c)
	if err != nil {
		respondError(c, err)
		return
	}
	ctx := c.Request.Context()

	if number := c.Query("orderNumber"); number != "" {
		order, err := h.orderService.GetByOrderNumber(ctx, kind, number)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, mapper.ToOrderResponse(order))
		return
	}

	status, err := orderStatus(c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}

	var userID *int64
	if raw := c.Query("userId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(c, fmt.Errorf("invalid userId %q: %w", raw, service.ErrBadRequest))
			return
		}
		userID = &id
	}
	if c.Query("mine") == "true" {
		userID = actorFrom(c).UserID
	}

	orders, err := h.orderService.List(ctx, kind, status, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, mapper.ToOrderResponses(orders))
}

// Count returns the number of orders in ?status=
func (h *OrderHandler) Count(c *gin.Context) {
	kind, err := orderKind(c)
	if err != nil {
		respondError(c, err)
		return
	}

	status, err := orderStatus(c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	if status == "" {
		respondError(c, fmt.Errorf("status query parameter is required: %w", service.ErrBadRequest))
		return
	}

	n, err := h.orderService.CountByStatus(c.Request.Context(), kind, status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CountResponse{Count: n})
}

func (h *OrderHandler) Get(c *gin.Context) {
	h.withOrder(c, func(kind domain.OrderKind, id int64) (*domain.Order, error) {
		return h.orderService.Get(c.Request.Context(), kind, id)
	})
}

func (h *OrderHandler) Process(c *gin.Context) {
	h.withOrder(c, func(kind domain.OrderKind, id int64) (*domain.Order, error) {
		return h.orderService.Process(c.Request.Context(), kind, id, actorFrom(c))
	})
}

func (h *OrderHandler) Complete(c *gin.Context) {
	h.withOrder(c, func(kind domain.OrderKind, id int64) (*domain.Order, error) {
		return h.orderService.Complete(c.Request.Context(), kind, id, actorFrom(c))
	})
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	h.withOrder(c, func(kind domain.OrderKind, id int64) (*domain.Order, error) {
		return h.orderService.Cancel(c.Request.Context(), kind, id, actorFrom(c))
	})
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	h.withOrder(c, func(kind domain.OrderKind, id int64) (*domain.Order, error) {
		return h.orderService.UpdateStatus(c.Request.Context(), kind, id, domain.OrderStatus(req.Status), actorFrom(c))
	})
}

func (h *OrderHandler) Delete(c *gin.Context) {
	kind, err := orderKind(c)
	if err != nil {
		respondError(c, err)
		return
	}
	id, err := idParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.orderService.Delete(c.Request.Context(), kind, id, actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "order deleted"})
}

func (h *OrderHandler) withOrder(c *gin.Context, fn func(domain.OrderKind, int64) (*domain.Order, error)) {
	kind, err := orderKind(c)
	if err != nil {
		respondError(c, err)
		return
	}
	id, err := idParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	order, err := fn(kind, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, mapper.ToOrderResponse(order))
}
