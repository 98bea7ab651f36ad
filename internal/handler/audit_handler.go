package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prperemyshlev/wms-server/internal/domain"
	"github.com/prperemyshlev/wms-server/internal/dto"
	"github.com/prperemyshlev/wms-server/internal/mapper"
	"github.com/prperemyshlev/wms-server/internal/service"
)

// AuditHandler exposes the audit log to administrators
type AuditHandler struct {
	auditService service.AuditService
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// Search lists entries matching the query filters, newest first
func (h *AuditHandler) Search(c *gin.Context) {
	var query dto.AuditSearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindingError(c, err)
		return
	}

	entries, err := h.auditService.Search(c.Request.Context(), domain.AuditFilter{
		Action:     query.Action,
		EntityType: query.EntityType,
		EntityID:   query.EntityID,
		UserID:     query.UserID,
		From:       query.From,
		To:         query.To,
		Limit:      query.Limit,
		Offset:     query.Offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, mapper.ToAuditLogResponses(entries))
}

func (h *AuditHandler) Recent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	entries, err := h.auditService.Recent(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, mapper.ToAuditLogResponses(entries))
}

func (h *AuditHandler) Get(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	entry, err := h.auditService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, mapper.ToAuditLogResponse(entry))
}

// EntityHistory lists every entry about /logs/entity/:type/:id
func (h *AuditHandler) EntityHistory(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	entries, err := h.auditService.EntityHistory(c.Request.Context(), c.Param("type"), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, mapper.ToAuditLogResponses(entries))
}

func (h *AuditHandler) Count(c *gin.Context) {
	n, err := h.auditService.Count(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CountResponse{Count: n})
}

// Facets lists the distinct actions and entity types for filter dropdowns
func (h *AuditHandler) Facets(c *gin.Context) {
	actions, entityTypes, err := h.auditService.Facets(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AuditFacetsResponse{
		Actions:     actions,
		EntityTypes: entityTypes,
	})
}
