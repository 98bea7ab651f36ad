package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/prperemyshlev/wms-server/internal/service"

// authMetrics counts authentication outcomes
type authMetrics struct {
	signIns     metric.Int64Counter
	refreshes   metric.Int64Counter
	cacheLookup metric.Int64Counter
}

func newAuthMetrics() *authMetrics {
	meter := otel.Meter(meterName)

	// errors here only flag invalid names and still come with a usable instrument
	signIns, _ := meter.Int64Counter("wms_auth_sign_ins_total",
		metric.WithDescription("Sign-in attempts by outcome"))
	refreshes, _ := meter.Int64Counter("wms_auth_refreshes_total",
		metric.WithDescription("Refresh token rotations by outcome"))
	cacheLookup, _ := meter.Int64Counter("wms_auth_principal_cache_lookups_total",
		metric.WithDescription("Principal cache lookups by result"))

	return &authMetrics{
		signIns:     signIns,
		refreshes:   refreshes,
		cacheLookup: cacheLookup,
	}
}

func (m *authMetrics) signIn(ctx context.Context, method, outcome string) {
	m.signIns.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("outcome", outcome),
	))
}

func (m *authMetrics) refresh(ctx context.Context, outcome string) {
	m.refreshes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *authMetrics) cache(ctx context.Context, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookup.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
