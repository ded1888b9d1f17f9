package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"github.com/tair/multiplication-service/pkg/logger"
)

// Publisher wraps Kafka producer
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewProducerConfig returns the sarama configuration used for telemetry publishing
func NewProducerConfig(timeout time.Duration) *sarama.Config {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 1
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.MaxMessageBytes = 1000000
	config.Producer.Timeout = timeout
	config.Net.DialTimeout = timeout
	config.Net.WriteTimeout = timeout
	config.Net.ReadTimeout = timeout
	return config
}

// NewPublisher creates a new Kafka publisher
func NewPublisher(brokers []string, topic string, timeout time.Duration) (*Publisher, error) {
	producer, err := sarama.NewSyncProducer(brokers, NewProducerConfig(timeout))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Logger.Info().
		Strs("brokers", brokers).
		Str("topic", topic).
		Msg("Kafka publisher initialized")

	return NewPublisherWithProducer(producer, topic), nil
}

// NewPublisherWithProducer creates a publisher on top of an existing producer
func NewPublisherWithProducer(producer sarama.SyncProducer, topic string) *Publisher {
	if topic == "" {
		topic = TopicTelemetry
	}
	return &Publisher{
		producer: producer,
		topic:    topic,
	}
}

// Topic returns the topic messages are published to
func (p *Publisher) Topic() string {
	return p.topic
}

// Publish sends msg and waits for the broker acknowledgement
func (p *Publisher) Publish(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	headers := []sarama.RecordHeader{
		{
			Key:   []byte(HeaderRecordKind),
			Value: []byte(msg.Kind),
		},
		{
			Key:   []byte(HeaderService),
			Value: []byte(msg.Service),
		},
	}
	if msg.Operation != "" {
		headers = append(headers, sarama.RecordHeader{
			Key:   []byte(HeaderOperation),
			Value: []byte(msg.Operation),
		})
	}

	// Create Kafka message
	pm := &sarama.ProducerMessage{
		Topic:   p.topic,
		Key:     sarama.StringEncoder(msg.Key),
		Value:   sarama.ByteEncoder(msg.Value),
		Headers: headers,
	}

	// Send message
	partition, offset, err := p.producer.SendMessage(pm)
	if err != nil {
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	logger.Logger.Debug().
		Str("topic", p.topic).
		Str("record_kind", msg.Kind).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("Telemetry record published")

	return nil
}

// Close closes the Kafka producer
func (p *Publisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
