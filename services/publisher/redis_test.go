package publisher

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/sukhantharot/dividend-stocks/internal/dividend"
)

// This test requires a running Redis instance
// If Redis is not available, the test will be skipped
func TestRedisPublisher(t *testing.T) {
	ctx := context.Background()
	pub := NewRedisPublisher(ctx, "localhost:6379", 0, "test_dividend_stream", 100)
	defer pub.Close()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   0,
	})
	defer client.Close()

	_, err := client.Ping(ctx).Result()
	if err != nil {
		t.Skip("Redis is not available, skipping test")
	}
	defer client.Del(ctx, "test_dividend_stream")

	err = client.XGroupCreateMkStream(ctx, "test_dividend_stream", "test_group", "$").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		t.Fatal(err)
	}

	messages := make(chan string, 1)
	go func() {
		result, err := client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Streams:  []string{"test_dividend_stream", ">"},
			Group:    "test_group",
			Consumer: "test_consumer",
			Block:    0,
		}).Result()
		assert.NoError(t, err)
		messages <- result[0].Messages[0].Values[streamField].(string)
	}()

	time.Sleep(100 * time.Millisecond)

	exDate := time.Date(2024, 9, 10, 0, 0, 0, 0, time.UTC)
	events := []dividend.Event{
		{Symbol: "PTT", FiscalYear: 2024, Amount: "0.80", ExDate: &exDate, EventType: "เงินปันผล"},
	}
	assert.NoError(t, pub.PublishEvents(events))

	select {
	case msg := <-messages:
		payload, err := base64.StdEncoding.DecodeString(msg)
		assert.NoError(t, err)
		var decoded []dividend.Event
		assert.NoError(t, json.Unmarshal(payload, &decoded))
		assert.Len(t, decoded, 1)
		assert.Equal(t, "PTT", decoded[0].Symbol)
	case <-time.After(1 * time.Second):
		t.Error("Timed out waiting for message")
	}

	assert.NoError(t, pub.TrimStream())
}

func TestPublishEmptyBatchIsNoop(t *testing.T) {
	// never touches the network, safe without Redis
	pub := NewRedisPublisher(context.Background(), "localhost:1", 0, "unused", 0)
	defer pub.Close()
	assert.NoError(t, pub.PublishEvents(nil))
}
