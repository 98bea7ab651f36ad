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

// InventoryHandler handles stock item requests
type InventoryHandler struct {
	inventoryService service.InventoryService
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(inventoryService service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

func (h *InventoryHandler) Create(c *gin.Context) {
	var req dto.CreateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	item, err := h.inventoryService.Create(c.Request.Context(), &req, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, mapper.ToInventoryResponse(item))
}

// List returns live items. ?itemCode= or ?qrCode= look up a single item instead.
func (h *InventoryHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	if code := c.Query("itemCode"); code != "" {
		h.respondItem(c, func() (*domain.InventoryItem, error) {
			return h.inventoryService.GetByItemCode(ctx, code)
		})
		return
	}
	if qr := c.Query("qrCode"); qr != "" {
		h.respondItem(c, func() (*domain.InventoryItem, error) {
			return h.inventoryService.FindByQRCode(ctx, qr)
		})
		return
	}

	items, err := h.inventoryService.List(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, mapper.ToInventoryResponses(items))
}

// Search filters items by ?location= or ?name= (partial, case-insensitive)
func (h *InventoryHandler) Search(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		items []*domain.InventoryItem
		err   error
	)
	switch {
	case c.Query("location") != "":
		items, err = h.inventoryService.SearchByLocation(ctx, c.Query("location"))
	case c.Query("name") != "":
		items, err = h.inventoryService.SearchByName(ctx, c.Query("name"))
	default:
		err = fmt.Errorf("location or name query parameter is required: %w", service.ErrBadRequest)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, mapper.ToInventoryResponses(items))
}

// LowStock lists items at or below ?threshold= (default 10)
func (h *InventoryHandler) LowStock(c *gin.Context) {
	threshold := domain.DefaultLowStockThreshold
	if raw := c.Query("threshold"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, fmt.Errorf("invalid threshold %q: %w", raw, service.ErrBadRequest))
			return
		}
		threshold = n
	}

	items, err := h.inventoryService.LowStock(c.Request.Context(), threshold)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, mapper.ToInventoryResponses(items))
}

func (h *InventoryHandler) Count(c *gin.Context) {
	n, err := h.inventoryService.Count(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CountResponse{Count: n})
}

func (h *InventoryHandler) Get(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	h.respondItem(c, func() (*domain.InventoryItem, error) {
		return h.inventoryService.Get(c.Request.Context(), id)
	})
}

func (h *InventoryHandler) Update(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req dto.UpdateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	h.respondItem(c, func() (*domain.InventoryItem, error) {
		return h.inventoryService.Update(c.Request.Context(), id, &req, actorFrom(c))
	})
}

// AdjustQuantity adds a signed amount to the quantity
func (h *InventoryHandler) AdjustQuantity(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req dto.AdjustQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	h.respondItem(c, func() (*domain.InventoryItem, error) {
		return h.inventoryService.AdjustQuantity(c.Request.Context(), id, req.Adjustment, actorFrom(c))
	})
}

// SetQuantity replaces the quantity
func (h *InventoryHandler) SetQuantity(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req dto.SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	h.respondItem(c, func() (*domain.InventoryItem, error) {
		return h.inventoryService.SetQuantity(c.Request.Context(), id, *req.Quantity, actorFrom(c))
	})
}

func (h *InventoryHandler) Delete(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.inventoryService.Delete(c.Request.Context(), id, actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "inventory item deleted"})
}

func (h *InventoryHandler) respondItem(c *gin.Context, fetch func() (*domain.InventoryItem, error)) {
	item, err := fetch()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, mapper.ToInventoryResponse(item))
}
