package telemetry

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// RecordKind tells sinks which payload a Record carries
type RecordKind string

const (
	KindTrace   RecordKind = "trace"
	KindMetrics RecordKind = "metrics"
	KindError   RecordKind = "error"
)

// Well-known MetricsRecord keys
const (
	MetricOperation      = "operation"
	MetricSuccess        = "success"
	MetricResponseTimeMs = "response_time_ms"
	MetricHealthCheck    = "health_check"
	MetricService        = "service"
)

// TraceRecord is a manually timed unit of work. Its ids are random UUIDs and
// are not related to any OpenTelemetry span.
type TraceRecord struct {
	TraceID    string                 `json:"trace_id"`
	SpanID     string                 `json:"span_id"`
	Operation  string                 `json:"operation"`
	DurationMs float64                `json:"duration_ms"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// NewTraceRecord mints a trace record with fresh trace and span ids
func NewTraceRecord(operation string, duration time.Duration, metadata map[string]interface{}) TraceRecord {
	return TraceRecord{
		TraceID:    uuid.NewString(),
		SpanID:     uuid.NewString(),
		Operation:  operation,
		DurationMs: Milliseconds(duration),
		Metadata:   metadata,
	}
}

// MetricsRecord is a flat set of counters, gauges and labels
type MetricsRecord map[string]interface{}

// ErrorRecord captures a failed operation together with the trace ids minted for it
type ErrorRecord struct {
	TraceRecord
	Error string `json:"error"`
}

// Record is the envelope delivered to sinks
type Record struct {
	Kind      RecordKind    `json:"kind"`
	Service   string        `json:"service"`
	Timestamp time.Time     `json:"timestamp"`
	Trace     *TraceRecord  `json:"trace,omitempty"`
	Metrics   MetricsRecord `json:"metrics,omitempty"`
	Error     *ErrorRecord  `json:"error,omitempty"`
}

// Operation returns the operation the record is about, if any
func (r Record) Operation() string {
	switch {
	case r.Trace != nil:
		return r.Trace.Operation
	case r.Error != nil:
		return r.Error.Operation
	}
	if op, ok := r.Metrics[MetricOperation].(string); ok {
		return op
	}
	return ""
}

// Key is the partitioning key used by the Kafka sink
func (r Record) Key() string {
	switch {
	case r.Trace != nil:
		return r.Trace.TraceID
	case r.Error != nil:
		return r.Error.TraceID
	}
	if op := r.Operation(); op != "" {
		return op
	}
	return string(r.Kind)
}

// Encode renders the record as JSON. Non-finite floats, which JSON cannot
// represent, are written as the strings "Infinity", "-Infinity" and "NaN".
func (r Record) Encode() ([]byte, error) {
	out := r
	if r.Trace != nil {
		tr := *r.Trace
		tr.Metadata = sanitize(tr.Metadata)
		out.Trace = &tr
	}
	if r.Error != nil {
		er := *r.Error
		er.Metadata = sanitize(er.Metadata)
		out.Error = &er
	}
	out.Metrics = sanitize(r.Metrics)

	b, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s record: %w", r.Kind, err)
	}
	return b, nil
}

// Milliseconds converts d to fractional milliseconds
func Milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func sanitize(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		switch f := v.(type) {
		case float64:
			out[k] = finiteOrString(f)
		case float32:
			out[k] = finiteOrString(float64(f))
		default:
			out[k] = v
		}
	}
	return out
}

func finiteOrString(f float64) interface{} {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return f
}

// toFloat reads a numeric or boolean metrics value
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

// toBool reads a boolean metrics value, accepting 0/1 style numbers too
func toBool(v interface{}) (bool, bool) {
	if b, ok := v.(bool); ok {
		return b, true
	}
	if s, ok := v.(string); ok {
		if b, err := strconv.ParseBool(s); err == nil {
			return b, true
		}
	}
	if f, ok := toFloat(v); ok {
		return f != 0, true
	}
	return false, false
}
