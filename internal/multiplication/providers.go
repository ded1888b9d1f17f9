package multiplication

import (
	"github.com/google/wire"

	"github.com/tair/multiplication-service/internal/multiplication/domain"
	"github.com/tair/multiplication-service/internal/multiplication/usecase/query"
	"github.com/tair/multiplication-service/pkg/telemetry"
)

// ProvideCalculator provides the arithmetic implementation
func ProvideCalculator() domain.Calculator {
	return domain.NewStandardCalculator()
}

// Query Handlers Providers
func ProvideMultiplyHandler(calc domain.Calculator, tel query.Telemetry) *query.MultiplyHandler {
	return query.NewMultiplyHandler(calc, tel)
}

func ProvideGetHealthHandler(tel query.Telemetry) *query.GetHealthHandler {
	return query.NewGetHealthHandler(tel)
}

// Wire sets
var TelemetrySet = wire.NewSet(
	wire.Bind(new(query.Telemetry), new(*telemetry.Telemetry)),
)

var QueryHandlerSet = wire.NewSet(
	ProvideCalculator,
	ProvideMultiplyHandler,
	ProvideGetHealthHandler,
)

var AllHandlersSet = wire.NewSet(
	TelemetrySet,
	QueryHandlerSet,
)
