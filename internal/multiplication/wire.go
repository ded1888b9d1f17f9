//go:build wireinject
// +build wireinject

package multiplication

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/multiplication-service/internal/multiplication/delivery/http"
	"github.com/tair/multiplication-service/pkg/telemetry"
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies
func InitializeHTTPHandler(tel *telemetry.Telemetry, reg prometheus.Registerer) (*http.MultiplicationHandler, error) {
	wire.Build(
		AllHandlersSet,
		http.NewMultiplicationHandler,
	)
	return nil, nil
}
