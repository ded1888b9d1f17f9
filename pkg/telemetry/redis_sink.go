package telemetry

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisSink appends every record to a capped Redis list, newest last
type RedisSink struct {
	client *redis.Client
	key    string
	maxLen int64
}

// RedisKey returns the list key records of a service are written to
func RedisKey(service string) string {
	return "telemetry:" + service
}

// NewRedisSink creates a sink writing to RedisKey(service), trimmed to maxLen entries
func NewRedisSink(client *redis.Client, service string, maxLen int64) *RedisSink {
	if maxLen < 1 {
		maxLen = 10000
	}
	return &RedisSink{
		client: client,
		key:    RedisKey(service),
		maxLen: maxLen,
	}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Emit(ctx context.Context, rec Record) error {
	body, err := rec.Encode()
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, s.key, body)
		pipe.LTrim(ctx, s.key, -s.maxLen, -1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("append %s record to %s: %w", rec.Kind, s.key, err)
	}
	return nil
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}
