package telemetry

import (
	"context"
	"fmt"

	"github.com/tair/multiplication-service/kafka"
)

// KafkaSink publishes every record as a JSON message
type KafkaSink struct {
	publisher *kafka.Publisher
}

// NewKafkaSink creates a sink on top of a Kafka publisher
func NewKafkaSink(publisher *kafka.Publisher) *KafkaSink {
	return &KafkaSink{publisher: publisher}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Emit(ctx context.Context, rec Record) error {
	body, err := rec.Encode()
	if err != nil {
		return err
	}

	if err := s.publisher.Publish(ctx, kafka.Message{
		Key:       rec.Key(),
		Kind:      string(rec.Kind),
		Service:   rec.Service,
		Operation: rec.Operation(),
		Value:     body,
	}); err != nil {
		return fmt.Errorf("publish %s record: %w", rec.Kind, err)
	}
	return nil
}

func (s *KafkaSink) Close() error {
	return s.publisher.Close()
}
