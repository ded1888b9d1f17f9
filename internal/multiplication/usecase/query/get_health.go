package query

import (
	"context"

	"github.com/tair/multiplication-service/internal/multiplication/domain"
	"github.com/tair/multiplication-service/pkg/telemetry"
)

// GetHealthHandler handles health check query
type GetHealthHandler struct {
	telemetry Telemetry
}

// NewGetHealthHandler creates a new get health handler
func NewGetHealthHandler(tel Telemetry) *GetHealthHandler {
	return &GetHealthHandler{telemetry: tel}
}

// Handle reports the service as healthy and counts the check
func (h *GetHealthHandler) Handle(ctx context.Context) domain.HealthCheck {
	h.telemetry.LogMetrics(ctx, telemetry.MetricsRecord{
		telemetry.MetricHealthCheck: 1,
		telemetry.MetricService:     domain.ServiceName,
	})

	return domain.NewHealthCheck()
}
