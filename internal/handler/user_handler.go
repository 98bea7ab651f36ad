package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prperemyshlev/wms-server/internal/dto"
	"github.com/prperemyshlev/wms-server/internal/mapper"
	"github.com/prperemyshlev/wms-server/internal/service"
)

// UserHandler handles user account requests
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// List returns all users, or only active ones with ?active=true
func (h *UserHandler) List(c *gin.Context) {
	list := h.userService.List
	if c.Query("active") == "true" {
		list = h.userService.ListActive
	}

	users, err := list(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, mapper.ToUserResponses(users))
}

// Search finds a user by email
func (h *UserHandler) Search(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		respondError(c, fmt.Errorf("email query parameter is required: %w", service.ErrBadRequest))
		return
	}

	user, err := h.userService.GetByEmail(c.Request.Context(), email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, mapper.ToUserResponse(user))
}

// Count returns the number of active users
func (h *UserHandler) Count(c *gin.Context) {
	n, err := h.userService.CountActive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CountResponse{Count: n})
}

// Get returns one user. Users may read themselves; admins may read anyone.
func (h *UserHandler) Get(c *gin.Context) {
	id, err := h.selfOrAdmin(c)
	if err != nil {
		respondError(c, err)
		return
	}

	user, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, mapper.ToUserResponse(user))
}

// Update changes a user's profile. Role changes are checked by the service.
func (h *UserHandler) Update(c *gin.Context) {
	id, err := h.selfOrAdmin(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, err := h.userService.Update(c.Request.Context(), id, &req, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, mapper.ToUserResponse(user))
}

// Delete soft-deletes a user
func (h *UserHandler) Delete(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.userService.Delete(c.Request.Context(), id, actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "user deleted"})
}

// Restore undoes a soft delete
func (h *UserHandler) Restore(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	user, err := h.userService.Restore(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, mapper.ToUserResponse(user))
}

func (h *UserHandler) selfOrAdmin(c *gin.Context) (int64, error) {
	id, err := idParam(c, "id")
	if err != nil {
		return 0, err
	}

	actor := actorFrom(c)
	if !actor.Is(id) && !actor.IsAdmin() {
		return 0, fmt.Errorf("user %d: %w", id, service.ErrForbidden)
	}
	return id, nil
}
