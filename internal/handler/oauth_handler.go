package handler

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prperemyshlev/wms-server/internal/service"
)

// OAuthHandler drives social sign-in and hands the resulting tokens to the frontend
type OAuthHandler struct {
	oauthService service.OAuthService
	redirectURL  string
	logger       *zap.Logger
}

// NewOAuthHandler creates a new OAuth2 handler. redirectURL is the frontend page
// that receives the tokens as query parameters.
func NewOAuthHandler(oauthService service.OAuthService, redirectURL string, logger *zap.Logger) *OAuthHandler {
	return &OAuthHandler{
		oauthService: oauthService,
		redirectURL:  redirectURL,
		logger:       logger,
	}
}

// Authorize redirects the browser to the provider's consent page
func (h *OAuthHandler) Authorize(c *gin.Context) {
	authURL, err := h.oauthService.AuthorizeURL(c.Request.Context(), c.Param("provider"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Redirect(http.StatusFound, authURL)
}

// Callback completes the flow and redirects to the frontend with tokens or an error
func (h *OAuthHandler) Callback(c *gin.Context) {
	provider := c.Param("provider")

	if providerErr := c.Query("error"); providerErr != "" {
		h.fail(c, provider, fmt.Errorf("%s: %s: %w", providerErr, c.Query("error_description"), service.ErrInvalidProviderResponse))
		return
	}

	result, err := h.oauthService.Callback(c.Request.Context(), provider, c.Query("state"), c.Query("code"))
	if err != nil {
		h.fail(c, provider, err)
		return
	}

	query := url.Values{}
	query.Set("token", result.Tokens.AccessToken)
	query.Set("refreshToken", result.Tokens.RefreshToken)
	query.Set("email", result.User.Email)
	query.Set("nickname", result.User.Nickname)
	query.Set("provider", provider)

	c.Redirect(http.StatusFound, h.redirectURL+"?"+query.Encode())
}

func (h *OAuthHandler) fail(c *gin.Context, provider string, err error) {
	_, code, message := classify(err)
	h.logger.Warn("oauth2 sign-in failed",
		zap.String("provider", provider),
		zap.String("code", code),
		zap.Error(err),
	)

	query := url.Values{}
	query.Set("error", code)
	query.Set("message", message)

	c.Redirect(http.StatusFound, h.redirectURL+"?"+query.Encode())
}
