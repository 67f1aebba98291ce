package publisher

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/sukhantharot/dividend-stocks/internal/dividend"
)

// streamField is the entry field carrying the encoded event batch
const streamField = "b64_dividends"

// RedisPublisher implements Publisher over a Redis stream
type RedisPublisher struct {
	client          *redis.Client
	ctx             context.Context
	stream          string
	streamMaxLength int
}

// NewRedisPublisher creates a new Redis stream publisher
func NewRedisPublisher(ctx context.Context, addr string, db int, stream string, streamMaxLength int) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisPublisher{
		client:          client,
		ctx:             ctx,
		stream:          stream,
		streamMaxLength: streamMaxLength,
	}
}

// PublishEvents publishes the batch as a single stream entry.
// The JSON payload is base64 encoded before publishing.
func (p *RedisPublisher) PublishEvents(events []dividend.Event) error {
	if len(events) == 0 {
		return nil
	}

	payload, err := json.Marshal(events)
	if err != nil {
		return err
	}
	encoded := base64.StdEncoding.EncodeToString(payload)

	return p.client.XAdd(p.ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			streamField: encoded,
		},
	}).Err()
}

// TrimStream trims the stream to the configured maximum length
func (p *RedisPublisher) TrimStream() error {
	if p.streamMaxLength <= 0 {
		return nil
	}
	return p.client.XTrimMaxLen(p.ctx, p.stream, int64(p.streamMaxLength)).Err()
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
