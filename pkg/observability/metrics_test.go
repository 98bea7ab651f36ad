package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestPrometheusHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	provider, handler, err := InitTelemetry("wms-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(t.Context()) })

	counter, err := otel.Meter("wms-test").Int64Counter("wms_test_events_total")
	require.NoError(t, err)
	counter.Add(t.Context(), 3)

	r := gin.New()
	r.GET("/metrics", PrometheusHandler(handler))
	r.GET("/broken", PrometheusHandler(nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "wms_test_events_total")
	assert.Contains(t, w.Body.String(), "go_goroutines")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/broken", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
