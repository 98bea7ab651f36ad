package observability

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PrometheusHandler serves the metrics registry. A missing registry answers 503.
func PrometheusHandler(handler http.Handler) gin.HandlerFunc {
	if handler == nil {
		return func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": "metrics are not initialized",
			})
		}
	}
	return gin.WrapH(handler)
}
