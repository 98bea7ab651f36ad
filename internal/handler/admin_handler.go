package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prperemyshlev/wms-server/internal/dto"
	"github.com/prperemyshlev/wms-server/internal/service"
)

// AdminHandler serves maintenance endpoints
type AdminHandler struct {
	maintenance *service.MaintenanceService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(maintenance *service.MaintenanceService) *AdminHandler {
	return &AdminHandler{maintenance: maintenance}
}

// PurgeRefreshTokens deletes expired and revoked refresh tokens on demand
func (h *AdminHandler) PurgeRefreshTokens(c *gin.Context) {
	result, err := h.maintenance.PurgeRefreshTokens(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PurgeResponse{
		Message: "refresh tokens purged",
		Expired: result.Expired,
		Revoked: result.Revoked,
	})
}
