package handler

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prperemyshlev/wms-server/internal/domain"
	"github.com/prperemyshlev/wms-server/internal/service"
)

const principalKey = "principal"

// AuthMiddleware resolves the bearer token to an active user and stores it in the context
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			respondError(c, fmt.Errorf("authorization header is required: %w", service.ErrUnauthorized))
			return
		}

		token := bearerToken(c)
		if token == "" {
			respondError(c, fmt.Errorf("invalid authorization header format: %w", service.ErrUnauthorized))
			return
		}

		user, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			respondError(c, err)
			return
		}

		c.Set(principalKey, user)
		c.Next()
	}
}

// RequireAdmin rejects principals without the ADMIN role. It must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := principal(c)
		if !ok {
			respondError(c, service.ErrUnauthorized)
			return
		}
		if !user.IsAdmin() {
			respondError(c, fmt.Errorf("admin role required: %w", service.ErrForbidden))
			return
		}
		c.Next()
	}
}

// principal returns the authenticated user, if any
func principal(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok
}

// actorFrom returns the actor performing the current request
func actorFrom(c *gin.Context) domain.Actor {
	if user, ok := principal(c); ok {
		return domain.UserActor(user)
	}
	return domain.AnonymousActor
}

// idParam parses a positive int64 path parameter
func idParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q: %w", name, c.Param(name), service.ErrBadRequest)
	}
	return id, nil
}
