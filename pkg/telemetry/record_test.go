package telemetry

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_EncodeNonFinite(t *testing.T) {
	tr := NewTraceRecord("multiplication", 0, map[string]interface{}{
		"first_number":  math.Inf(1),
		"second_number": math.Inf(-1),
		"result":        math.NaN(),
	})
	rec := Record{
		Kind:    KindTrace,
		Service: "svc",
		Trace:   &tr,
		Metrics: MetricsRecord{"ratio": float32(math.Inf(1))},
	}

	body, err := rec.Encode()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &decoded))

	meta := decoded["trace"].(map[string]interface{})["metadata"].(map[string]interface{})
	assert.Equal(t, "Infinity", meta["first_number"])
	assert.Equal(t, "-Infinity", meta["second_number"])
	assert.Equal(t, "NaN", meta["result"])
	assert.Equal(t, "Infinity", decoded["metrics"].(map[string]interface{})["ratio"])

	// The caller's record is left untouched.
	assert.True(t, math.IsInf(tr.Metadata["first_number"].(float64), 1))
}

func TestRecord_OperationAndKey(t *testing.T) {
	tr := NewTraceRecord("multiplication", time.Millisecond, nil)
	er := ErrorRecord{TraceRecord: NewTraceRecord("division", 0, nil), Error: "x"}

	tests := []struct {
		name      string
		rec       Record
		operation string
		key       string
	}{
		{name: "trace", rec: Record{Kind: KindTrace, Trace: &tr}, operation: "multiplication", key: tr.TraceID},
		{name: "error", rec: Record{Kind: KindError, Error: &er}, operation: "division", key: er.TraceID},
		{name: "operation metrics", rec: Record{Kind: KindMetrics, Metrics: MetricsRecord{MetricOperation: "multiplication"}}, operation: "multiplication", key: "multiplication"},
		{name: "health metrics", rec: Record{Kind: KindMetrics, Metrics: MetricsRecord{MetricHealthCheck: 1}}, operation: "", key: "metrics"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.operation, tt.rec.Operation())
			assert.Equal(t, tt.key, tt.rec.Key())
		})
	}
}

func TestMilliseconds(t *testing.T) {
	assert.Equal(t, 1.5, Milliseconds(1500*time.Microsecond))
	assert.Equal(t, 0.0, Milliseconds(0))
}

func TestToBool(t *testing.T) {
	tests := []struct {
		in     interface{}
		want   bool
		wantOK bool
	}{
		{in: true, want: true, wantOK: true},
		{in: false, want: false, wantOK: true},
		{in: "true", want: true, wantOK: true},
		{in: 1, want: true, wantOK: true},
		{in: 0.0, want: false, wantOK: true},
		{in: "nope", want: false, wantOK: false},
		{in: nil, want: false, wantOK: false},
	}

	for _, tt := range tests {
		got, ok := toBool(tt.in)
		assert.Equal(t, tt.wantOK, ok, "%v", tt.in)
		assert.Equal(t, tt.want, got, "%v", tt.in)
	}
}
