package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/multiplication-service/internal/multiplication/domain"
	"github.com/tair/multiplication-service/internal/multiplication/usecase/query"
	"github.com/tair/multiplication-service/pkg/logger"
)

const (
	paramFirstNumber  = "first_number"
	paramSecondNumber = "second_number"

	msgInternalError    = "Internal server error"
	msgFloatParsing     = "Input should be a valid number, unable to parse string as a number"
	errTypeFloatParsing = "float_parsing"
)

// ErrorResponse is the body of every non-validation error
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// ValidationError describes one rejected request parameter
type ValidationError struct {
	Type  string   `json:"type"`
	Loc   []string `json:"loc"`
	Msg   string   `json:"msg"`
	Input string   `json:"input"`
}

// ValidationErrorResponse is the 422 body listing every rejected parameter
type ValidationErrorResponse struct {
	Detail []ValidationError `json:"detail"`
}

// MultiplicationHandler handles HTTP requests for the multiplication service
type MultiplicationHandler struct {
	multiplyHandler *query.MultiplyHandler
	healthHandler   *query.GetHealthHandler

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	requestSummary *prometheus.SummaryVec
}

// NewMultiplicationHandler creates a new multiplication handler and registers
// its HTTP metrics on reg
func NewMultiplicationHandler(multiplyHandler *query.MultiplyHandler, healthHandler *query.GetHealthHandler, reg prometheus.Registerer) (*MultiplicationHandler, error) {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "multiplication_service_requests_total",
			Help: "Total number of requests to multiplication service",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "multiplication_service_request_duration_seconds",
			Help:    "Duration of multiplication service requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	requestSummary := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "multiplication_service_request_duration_summary_seconds",
			Help:       "Request duration quantiles of multiplication service",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"method", "endpoint"},
	)

	for _, c := range []prometheus.Collector{requestCounter, requestLatency, requestSummary} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return &MultiplicationHandler{
		multiplyHandler: multiplyHandler,
		healthHandler:   healthHandler,
		requestCounter:  requestCounter,
		requestLatency:  requestLatency,
		requestSummary:  requestSummary,
	}, nil
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware wraps handlers with Prometheus metrics
func (h *MultiplicationHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.requestSummary.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	}
}

// Multiply godoc
// @Summary Multiply two numbers
// @Description Multiply first_number by second_number. Missing parameters default to 0.
// @Tags Multiplication
// @Produce json
// @Param first_number query number false "First factor" default(0)
// @Param second_number query number false "Second factor" default(0)
// @Success 200 {object} domain.MultiplicationResult
// @Failure 422 {object} ValidationErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router / [get]
func (h *MultiplicationHandler) Multiply(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	var invalid []ValidationError
	first, verr := parseNumberParam(values, paramFirstNumber)
	if verr != nil {
		invalid = append(invalid, *verr)
	}
	second, verr := parseNumberParam(values, paramSecondNumber)
	if verr != nil {
		invalid = append(invalid, *verr)
	}
	if len(invalid) > 0 {
		respondJSON(w, http.StatusUnprocessableEntity, ValidationErrorResponse{Detail: invalid})
		return
	}

	result, err := h.multiplyHandler.Handle(r.Context(), query.MultiplyQuery{
		FirstNumber:  first,
		SecondNumber: second,
	})
	if err != nil {
		status := statusForError(err)
		logger.Error(r.Context()).
			Err(err).
			Int("status", status).
			Msg("Multiplication failed")
		respondError(w, status, detailForStatus(status))
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Health godoc
// @Summary Health check
// @Description Report service health
// @Tags Health
// @Produce json
// @Success 200 {object} domain.HealthCheck
// @Router /health [get]
func (h *MultiplicationHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.healthHandler.Handle(r.Context()))
}

// RegisterRoutes registers all multiplication routes
func (h *MultiplicationHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.metricsMiddleware("/health", h.Health)).Methods("GET")
	router.HandleFunc("/", h.metricsMiddleware("/", h.Multiply)).Methods("GET")

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "Not Found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
}

// parseNumberParam reads a float query parameter. An absent parameter is 0;
// when repeated, the last value wins. Values beyond float64 range become ±Inf.
func parseNumberParam(values url.Values, name string) (float64, *ValidationError) {
	vs, ok := values[name]
	if !ok || len(vs) == 0 {
		return 0, nil
	}

	raw := vs[len(vs)-1]
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, &ValidationError{
			Type:  errTypeFloatParsing,
			Loc:   []string{"query", name},
			Msg:   msgFloatParsing,
			Input: raw,
		}
	}
	return f, nil
}

// statusForError maps use case errors to HTTP status codes
func statusForError(err error) int {
	kind, ok := domain.ErrorKindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch kind {
	case domain.KindCanceled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func detailForStatus(status int) string {
	if status == http.StatusInternalServerError {
		return msgInternalError
	}
	return http.StatusText(status)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, ErrorResponse{Detail: detail})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
