package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Sink receives published events outside the process.
type Sink interface {
	Handle(ctx context.Context, event Event) error
}

// RedisStreamSink appends every event to a Redis stream so external consumers
// (mailers, chat bridges) can follow ticket activity.
type RedisStreamSink struct {
	client redis.Cmdable
	stream string
}

// NewRedisStreamSink returns a sink writing to stream.
func NewRedisStreamSink(client redis.Cmdable, stream string) *RedisStreamSink {
	return &RedisStreamSink{client: client, stream: stream}
}

// Handle is an EventHandler that XADDs the event.
func (s *RedisStreamSink) Handle(ctx context.Context, event Event) error {
	values, err := StreamValues(event)
	if err != nil {
		return err
	}
	if err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: values,
	}).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", s.stream, err)
	}
	return nil
}

// StreamValues flattens an event into ordered field/value pairs for XADD.
func StreamValues(event Event) ([]interface{}, error) {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return []interface{}{
		"event_id", event.ID,
		"event", string(event.Type),
		"ticket_id", event.TicketID,
		"actor", event.Actor.UserID,
		"created_at", event.Timestamp.UTC().Format(time.RFC3339),
		"payload", string(payload),
	}, nil
}
