package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"
)

// TracingOperationName is the otelhttp operation every request is recorded under
const TracingOperationName = "multiplication-http-request"

// ServerOptions configures the HTTP handler returned by NewHTTPHandler
type ServerOptions struct {
	Middleware     *MiddlewareConfig
	TracerProvider trace.TracerProvider
	Gatherer       prometheus.Gatherer
}

// NewHTTPHandler builds the full service handler: routes, middlewares, CORS
// and the otelhttp instrumentation around all of it
func NewHTTPHandler(handler *MultiplicationHandler, opts ServerOptions) http.Handler {
	if opts.Middleware == nil {
		opts.Middleware = DefaultMiddlewareConfig()
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	router := mux.NewRouter()

	RegisterMiddlewares(router, opts.Middleware)

	handler.RegisterRoutes(router)
	RegisterSwaggerDocs(router)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})).Methods("GET")

	return TracingMiddleware(TracingOperationName, SetupCORS(opts.Middleware)(router), opts.TracerProvider)
}
