package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/prperemyshlev/wms-server/internal/dto"
	"github.com/prperemyshlev/wms-server/internal/mapper"
	"github.com/prperemyshlev/wms-server/internal/service"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// SignUp handles user registration
// @Summary Register a new user
// @Description Register a password account with role USER
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SignUpRequest true "Sign-up request"
// @Success 201 {object} dto.SignUpResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req dto.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, err := h.authService.SignUp(c.Request.Context(), &req, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.SignUpResponse{
		Message: "sign-up completed",
		User:    mapper.ToUserResponse(user),
	})
}

// SignIn handles password sign-in
// @Summary Sign in
// @Description Authenticate with email and password and receive a token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SignInRequest true "Sign-in request"
// @Success 200 {object} dto.SignInResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/signin [post]
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req dto.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	result, err := h.authService.SignIn(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SignInResponse{
		Message:      "sign-in succeeded",
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		User:         mapper.ToUserResponse(result.User),
	})
}

// SignOut revokes the caller's refresh tokens
// @Summary Sign out
// @Description Always succeeds; the client must discard its tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SignOutRequest false "Sign-out request"
// @Success 200 {object} dto.MessageResponse
// @Router /auth/signout [post]
func (h *AuthHandler) SignOut(c *gin.Context) {
	var req dto.SignOutRequest
	_ = c.ShouldBindJSON(&req)

	token := req.AccessToken
	if token == "" {
		token = bearerToken(c)
	}

	h.authService.SignOut(c.Request.Context(), token)

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "signed out"})
}

// Refresh exchanges a refresh token for a new token pair
// @Summary Refresh tokens
// @Description The presented refresh token is single use
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshRequest true "Refresh request"
// @Success 200 {object} dto.RefreshResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.RefreshResponse{
		Message:      "tokens refreshed",
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Me returns the authenticated user
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := principal(c)
	if !ok {
		respondError(c, service.ErrUnauthorized)
		return
	}

	c.JSON(http.StatusOK, mapper.ToUserResponse(user))
}

func bearerToken(c *gin.Context) string {
	const prefix = "Bearer "
	header := c.GetHeader("Authorization")
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return ""
}
