package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/tair/multiplication-service/internal/multiplication/domain"
	"github.com/tair/multiplication-service/internal/multiplication/usecase/query"
	"github.com/tair/multiplication-service/pkg/logger"
	"github.com/tair/multiplication-service/pkg/telemetry"
)

func TestMain(m *testing.M) {
	logger.Logger = zerolog.Nop()
	os.Exit(m.Run())
}

type captureSink struct {
	mu      sync.Mutex
	records []telemetry.Record
}

func (s *captureSink) Name() string { return "capture" }

func (s *captureSink) Emit(_ context.Context, rec telemetry.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *captureSink) byKind(kind telemetry.RecordKind) []telemetry.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []telemetry.Record
	for _, r := range s.records {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

type failingSink struct {
	delay time.Duration
}

func (s failingSink) Name() string { return "failing" }

func (s failingSink) Emit(ctx context.Context, _ telemetry.Record) error {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return errors.New("sink unavailable")
}

type panickingCalculator struct{}

func (panickingCalculator) Multiply(a, b float64) float64 {
	panic("calculator failure")
}

type testServer struct {
	handler   http.Handler
	registry  *prometheus.Registry
	recorder  *tracetest.SpanRecorder
	telemetry *telemetry.Telemetry
}

func newTestServer(t *testing.T, calc domain.Calculator, sinks ...telemetry.Sink) *testServer {
	t.Helper()

	reg := prometheus.NewRegistry()
	promSink, err := telemetry.NewPrometheusSink(reg)
	require.NoError(t, err)

	tel := telemetry.New(telemetry.Config{
		ServiceName: domain.ServiceName,
		SinkTimeout: 50 * time.Millisecond,
	}, zerolog.Nop(), append([]telemetry.Sink{promSink}, sinks...)...)
	t.Cleanup(func() { tel.Close(context.Background()) })

	h, err := NewMultiplicationHandler(
		query.NewMultiplyHandler(calc, tel),
		query.NewGetHealthHandler(tel),
		reg,
	)
	require.NoError(t, err)

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { tp.Shutdown(context.Background()) })

	return &testServer{
		handler:   NewHTTPHandler(h, ServerOptions{TracerProvider: tp, Gatherer: reg}),
		registry:  reg,
		recorder:  recorder,
		telemetry: tel,
	}
}

func (s *testServer) do(method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	var total float64
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestMultiply_Scenarios(t *testing.T) {
	srv := newTestServer(t, domain.NewStandardCalculator())

	tests := []struct {
		query  string
		first  float64
		second float64
		want   float64
	}{
		{query: "?first_number=5&second_number=3", first: 5, second: 3, want: 15},
		{query: "?first_number=2.5&second_number=4", first: 2.5, second: 4, want: 10},
		{query: "?first_number=100&second_number=0", first: 100, second: 0, want: 0},
		{query: "?first_number=-5&second_number=3", first: -5, second: 3, want: -15},
		{query: "?first_number=-5&second_number=-3", first: -5, second: -3, want: 15},
		{query: "", first: 0, second: 0, want: 0},
		{query: "?first_number=7", first: 7, second: 0, want: 0},
		{query: "?second_number=7", first: 0, second: 7, want: 0},
		{query: "?first_number=1e2&second_number=%201.5%20", first: 100, second: 1.5, want: 150},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := srv.do(http.MethodGet, "/"+tt.query)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			body := decode(t, rec)
			assert.Equal(t, tt.want, body["result"])
			assert.Equal(t, tt.first, body["first_number"])
			assert.Equal(t, tt.second, body["second_number"])
			assert.Equal(t, "multiplication", body["operation"])
		})
	}
}

func TestMultiply_NonFiniteResult(t *testing.T) {
	srv := newTestServer(t, domain.NewStandardCalculator())

	rec := srv.do(http.MethodGet, "/?first_number=1e308&second_number=-10")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "-Infinity", decode(t, rec)["result"])

	rec = srv.do(http.MethodGet, "/?first_number=1e400&second_number=0")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Infinity", body["first_number"])
	assert.Equal(t, "NaN", body["result"])
}

func TestMultiply_ValidationError(t *testing.T) {
	srv := newTestServer(t, domain.NewStandardCalculator())

	rec := srv.do(http.MethodGet, "/?first_number=abc&second_number=2")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body ValidationErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Detail, 1)
	assert.Equal(t, ValidationError{
		Type:  "float_parsing",
		Loc:   []string{"query", "first_number"},
		Msg:   "Input should be a valid number, unable to parse string as a number",
		Input: "abc",
	}, body.Detail[0])

	rec = srv.do(http.MethodGet, "/?first_number=x&second_number=")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Detail, 2)
	assert.Equal(t, []string{"query", "first_number"}, body.Detail[0].Loc)
	assert.Equal(t, []string{"query", "second_number"}, body.Detail[1].Loc)
	assert.Equal(t, "", body.Detail[1].Input)

	// Validation failures never reach the telemetry error path
	require.NoError(t, srv.telemetry.Close(context.Background()))
	assert.Zero(t, counterValue(t, srv.registry, "multiplication_service_operation_errors_total"))
}

func TestMultiply_InternalError(t *testing.T) {
	sink := &captureSink{}
	srv := newTestServer(t, panickingCalculator{}, sink)

	rec := srv.do(http.MethodGet, "/?first_number=2&second_number=3")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail":"Internal server error"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "calculator failure")

	require.NoError(t, srv.telemetry.Close(context.Background()))
	errs := sink.byKind(telemetry.KindError)
	require.Len(t, errs, 1)
	assert.Equal(t, "multiplication", errs[0].Error.Operation)
	assert.Contains(t, errs[0].Error.Error, "calculator failure")
	assert.Equal(t, 2.0, errs[0].Error.Metadata["first_number"])
	assert.Equal(t, 1.0, counterValue(t, srv.registry, "multiplication_service_operation_errors_total"))
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, domain.NewStandardCalculator())

	// Interleaved traffic must not change the health response
	srv.do(http.MethodGet, "/?first_number=abc")
	for i := 0; i < 3; i++ {
		rec := srv.do(http.MethodGet, "/health")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"healthy","service":"multiplication-service"}`, rec.Body.String())
		srv.do(http.MethodGet, "/?first_number=2&second_number=2")
	}

	require.NoError(t, srv.telemetry.Close(context.Background()))
	assert.Equal(t, 3.0, counterValue(t, srv.registry, "multiplication_service_health_checks_total"))
}

func TestMultiply_Concurrent(t *testing.T) {
	srv := newTestServer(t, domain.NewStandardCalculator())

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, b := float64(i), float64(i+1)
			rec := srv.do(http.MethodGet, fmt.Sprintf("/?first_number=%v&second_number=%v", a, b))

			var body map[string]interface{}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				errs <- err
				return
			}
			if body["result"] != a*b || body["first_number"] != a || body["second_number"] != b {
				errs <- fmt.Errorf("request %d got %v", i, body)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestInstrumentation_SeparateFromManualTrace(t *testing.T) {
	sink := &captureSink{}
	srv := newTestServer(t, domain.NewStandardCalculator(), sink)

	rec := srv.do(http.MethodGet, "/?first_number=2&second_number=3")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, srv.telemetry.Close(context.Background()))

	var server, usecase sdktrace.ReadOnlySpan
	for _, s := range srv.recorder.Ended() {
		switch s.Name() {
		case "GET /":
			server = s
		case "usecase.Multiply":
			usecase = s
		}
	}
	require.NotNil(t, server, "server span")
	require.NotNil(t, usecase, "use case span")
	assert.Equal(t, server.SpanContext().TraceID(), usecase.SpanContext().TraceID())

	traces := sink.byKind(telemetry.KindTrace)
	require.Len(t, traces, 1)
	manual := traces[0].Trace
	assert.Len(t, manual.TraceID, 36)
	assert.NotEqual(t, server.SpanContext().TraceID().String(), manual.TraceID)
	assert.NotEqual(t, strings.ReplaceAll(manual.TraceID, "-", ""), server.SpanContext().TraceID().String())
	assert.Equal(t, 6.0, manual.Metadata["result"])
}

func TestInstrumentation_SpanForEveryRequest(t *testing.T) {
	srv := newTestServer(t, domain.NewStandardCalculator())

	srv.do(http.MethodGet, "/health")
	srv.do(http.MethodGet, "/?first_number=bad")
	srv.do(http.MethodGet, "/missing")

	names := map[string]bool{}
	for _, s := range srv.recorder.Ended() {
		names[s.Name()] = true
	}
	assert.True(t, names["GET /health"])
	assert.True(t, names["GET /"])
	assert.True(t, names["GET /missing"])
}

func TestTelemetrySinkFailureDoesNotAffectResponse(t *testing.T) {
	srv := newTestServer(t, domain.NewStandardCalculator(), failingSink{}, failingSink{delay: time.Second})

	for i := 0; i < 5; i++ {
		rec := srv.do(http.MethodGet, "/?first_number=3&second_number=3")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 9.0, decode(t, rec)["result"])

		rec = srv.do(http.MethodGet, "/health")
		require.Equal(t, http.StatusOK, rec.Code)
	}

	require.NoError(t, srv.telemetry.Close(context.Background()))
	assert.NotZero(t, srv.telemetry.Stats().Failed)
}

func TestRouting(t *testing.T) {
	srv := newTestServer(t, domain.NewStandardCalculator())

	rec := srv.do(http.MethodGet, "/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"Not Found"}`, rec.Body.String())

	rec = srv.do(http.MethodPost, "/")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"detail":"Method Not Allowed"}`, rec.Body.String())

	rec = srv.do(http.MethodGet, "/openapi.json")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := decode(t, rec)
	info := doc["info"].(map[string]interface{})
	assert.Equal(t, "Multiplication Service", info["title"])
	assert.Equal(t, "1.0.0", info["version"])

	srv.do(http.MethodGet, "/health")
	rec = srv.do(http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "multiplication_service_requests_total")
}

func TestMiddlewareHeaders(t *testing.T) {
	srv := newTestServer(t, domain.NewStandardCalculator())

	rec := srv.do(http.MethodGet, "/health")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	req.Header.Set("Origin", "http://example.com")
	rec = httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail":"Internal server error"}`, rec.Body.String())
}

func TestStatusForError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusForError(errors.New("x")))
	assert.Equal(t, http.StatusInternalServerError,
		statusForError(domain.NewOperationError(domain.OperationMultiplication, domain.KindInternal, nil)))
	assert.Equal(t, http.StatusServiceUnavailable,
		statusForError(domain.NewOperationError(domain.OperationMultiplication, domain.KindCanceled, context.Canceled)))
}
