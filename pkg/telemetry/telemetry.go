package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tair/multiplication-service/pkg/logger"
)

// Sink receives telemetry records from the delivery worker. Emit must honour ctx.
type Sink interface {
	Name() string
	Emit(ctx context.Context, rec Record) error
}

// Config holds telemetry pipeline settings
type Config struct {
	ServiceName string
	BufferSize  int
	SinkTimeout time.Duration
}

// Stats is a snapshot of the delivery counters
type Stats struct {
	Enqueued  uint64
	Delivered uint64
	Dropped   uint64
	Failed    uint64
	Queued    int
}

// Telemetry writes structured log lines synchronously and hands trace, metrics
// and error records to its sinks without blocking the caller. A full buffer
// drops the record; sink failures are logged and never returned.
type Telemetry struct {
	service     string
	log         zerolog.Logger
	sinks       []Sink
	sinkTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan Record
	done   chan struct{}

	enqueued  atomic.Uint64
	delivered atomic.Uint64
	dropped   atomic.Uint64
	failed    atomic.Uint64
}

// New creates the telemetry component and starts its delivery worker
func New(cfg Config, log zerolog.Logger, sinks ...Sink) *Telemetry {
	if cfg.BufferSize < 1 {
		cfg.BufferSize = 1024
	}
	if cfg.SinkTimeout <= 0 {
		cfg.SinkTimeout = 2 * time.Second
	}

	t := &Telemetry{
		service:     cfg.ServiceName,
		log:         log,
		sinks:       sinks,
		sinkTimeout: cfg.SinkTimeout,
		queue:       make(chan Record, cfg.BufferSize),
		done:        make(chan struct{}),
	}

	go t.run()

	names := make([]string, 0, len(sinks))
	for _, s := range sinks {
		names = append(names, s.Name())
	}
	log.Info().
		Strs("sinks", names).
		Int("buffer_size", cfg.BufferSize).
		Dur("sink_timeout", cfg.SinkTimeout).
		Msg("Telemetry initialized")

	return t
}

// ServiceName returns the service every record is attributed to
func (t *Telemetry) ServiceName() string {
	return t.service
}

// Log writes a structured log line
func (t *Telemetry) Log(ctx context.Context, level zerolog.Level, msg string) {
	l := logger.WithTrace(ctx, t.log)
	l.WithLevel(level).Msg(msg)
}

// LogTrace logs a trace record and forwards it to the sinks
func (t *Telemetry) LogTrace(ctx context.Context, tr TraceRecord) {
	l := logger.WithTrace(ctx, t.log)
	l.Info().
		Str("trace_id", tr.TraceID).
		Str("span_id", tr.SpanID).
		Str("operation", tr.Operation).
		Float64("duration_ms", tr.DurationMs).
		Dict("metadata", zerolog.Dict().Fields(tr.Metadata)).
		Msg("Trace recorded")

	t.enqueue(Record{Kind: KindTrace, Trace: &tr})
}

// LogMetrics logs a metrics record and forwards it to the sinks
func (t *Telemetry) LogMetrics(ctx context.Context, m MetricsRecord) {
	l := logger.WithTrace(ctx, t.log)
	l.Debug().
		Dict("metrics", zerolog.Dict().Fields(map[string]interface{}(m))).
		Msg("Metrics recorded")

	t.enqueue(Record{Kind: KindMetrics, Metrics: m})
}

// LogErrorWithTrace logs err with a freshly minted trace context and forwards
// the resulting error record to the sinks. The "operation" and "duration_ms"
// metadata entries, when present, fill the record's matching fields.
func (t *Telemetry) LogErrorWithTrace(ctx context.Context, err error, metadata map[string]interface{}) ErrorRecord {
	op, _ := metadata[MetricOperation].(string)
	rec := ErrorRecord{
		TraceRecord: NewTraceRecord(op, 0, metadata),
		Error:       errorString(err),
	}
	if ms, ok := toFloat(metadata["duration_ms"]); ok {
		rec.DurationMs = ms
	}

	l := logger.WithTrace(ctx, t.log)
	l.Error().
		Err(err).
		Str("trace_id", rec.TraceID).
		Str("span_id", rec.SpanID).
		Str("operation", rec.Operation).
		Float64("duration_ms", rec.DurationMs).
		Dict("metadata", zerolog.Dict().Fields(metadata)).
		Msg("Operation failed")

	t.enqueue(Record{Kind: KindError, Error: &rec})
	return rec
}

// Stats returns the current delivery counters
func (t *Telemetry) Stats() Stats {
	return Stats{
		Enqueued:  t.enqueued.Load(),
		Delivered: t.delivered.Load(),
		Dropped:   t.dropped.Load(),
		Failed:    t.failed.Load(),
		Queued:    len(t.queue),
	}
}

// Close stops accepting records, drains the buffer until ctx expires and closes
// the sinks that implement io.Closer.
func (t *Telemetry) Close(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	close(t.queue)
	t.mu.Unlock()

	var errs []error
	select {
	case <-t.done:
	case <-ctx.Done():
		errs = append(errs, fmt.Errorf("telemetry drain interrupted with %d records queued: %w", len(t.queue), ctx.Err()))
	}

	for _, s := range t.sinks {
		c, ok := s.(interface{ Close() error })
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s sink: %w", s.Name(), err))
		}
	}

	stats := t.Stats()
	t.log.Info().
		Uint64("delivered", stats.Delivered).
		Uint64("dropped", stats.Dropped).
		Uint64("failed", stats.Failed).
		Msg("Telemetry closed")

	return errors.Join(errs...)
}

func (t *Telemetry) enqueue(rec Record) {
	rec.Service = t.service
	rec.Timestamp = time.Now().UTC()

	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.closed {
		t.dropped.Add(1)
		return
	}

	select {
	case t.queue <- rec:
		t.enqueued.Add(1)
	default:
		if t.dropped.Add(1) == 1 {
			t.log.Warn().Str("kind", string(rec.Kind)).Msg("Telemetry buffer full, dropping records")
		}
	}
}

func (t *Telemetry) run() {
	defer close(t.done)
	for rec := range t.queue {
		for _, s := range t.sinks {
			t.deliver(s, rec)
		}
	}
}

// deliver bounds a single sink call by the sink timeout even if the sink ignores ctx
func (t *Telemetry) deliver(s Sink, rec Record) {
	ctx, cancel := context.WithTimeout(context.Background(), t.sinkTimeout)
	defer cancel()

	result := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				result <- fmt.Errorf("sink panic: %v", r)
			}
		}()
		result <- s.Emit(ctx, rec)
	}()

	var err error
	select {
	case err = <-result:
	case <-ctx.Done():
		err = ctx.Err()
	}

	if err != nil {
		t.failed.Add(1)
		t.log.Warn().
			Err(err).
			Str("sink", s.Name()).
			Str("kind", string(rec.Kind)).
			Msg("Telemetry sink failed")
		return
	}
	t.delivered.Add(1)
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
