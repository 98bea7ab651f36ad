package handler

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
)

// headers the browser may read from cross-origin responses
var exposedHeaders = strings.Join([]string{
	requestIDHeader, "X-RateLimit-Limit", "Retry-After",
}, ", ")

// CORSMiddleware creates a CORS middleware
func CORSMiddleware(allowedOrigins, allowedMethods, allowedHeaders []string) gin.HandlerFunc {
	anyOrigin := slices.Contains(allowedOrigins, "*")
	methods := strings.Join(allowedMethods, ", ")
	headers := strings.Join(allowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		c.Writer.Header().Add("Vary", "Origin")

		if origin != "" && (anyOrigin || slices.Contains(allowedOrigins, origin)) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Expose-Headers", exposedHeaders)
		}

		if c.Request.Method == http.MethodOptions {
			c.Header("Access-Control-Allow-Headers", headers)
			c.Header("Access-Control-Allow-Methods", methods)
			c.Header("Access-Control-Max-Age", "600")
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
