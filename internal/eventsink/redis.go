package eventsink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alexanderramin/strategos/internal/domain"
	"github.com/redis/go-redis/v9"
)

const DefaultStream = "strategos:events"

// streamAdder is the slice of *redis.Client the sink uses.
type streamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// RedisStreamSink appends each event to a Redis stream with XADD. The
// stream is capped approximately at MaxLen entries when MaxLen > 0.
type RedisStreamSink struct {
	client streamAdder
	stream string
	maxLen int64
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Stream   string
	MaxLen   int64
}

// NewRedisStreamSink dials lazily; the first Publish surfaces connection
// errors.
func NewRedisStreamSink(opts RedisOptions) *RedisStreamSink {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return newRedisStreamSink(client, opts.Stream, opts.MaxLen)
}

func newRedisStreamSink(client streamAdder, stream string, maxLen int64) *RedisStreamSink {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisStreamSink{client: client, stream: stream, maxLen: maxLen}
}

func (s *RedisStreamSink) Publish(ctx context.Context, event domain.Event) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("encoding %s payload: %w", event.Type, err)
	}
	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{
			"type":            string(event.Type),
			"aggregate_id":    event.AggregateID,
			"organization_id": event.OrganizationID,
			"branch_id":       event.BranchID,
			"occurred_at":     event.OccurredAt.UTC().Format(time.RFC3339Nano),
			"payload":         string(payload),
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("publishing %s to stream %s: %w", event.Type, s.stream, err)
	}
	return nil
}
