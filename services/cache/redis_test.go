package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// This test requires a running Redis instance
// If Redis is not available, the test will be skipped
func TestRedisService(t *testing.T) {
	ctx := context.Background()
	rs := NewRedisService(ctx, "localhost:6379", 0, "", "")
	defer rs.Close()

	if err := rs.client.Ping(ctx).Err(); err != nil {
		t.Skip("Redis is not available, skipping test")
	}

	// Set a value with a TTL
	err := rs.Set("dividend:test", []byte(`{"symbol":"test"}`), 2*time.Second)
	assert.NoError(t, err)

	// Get the value
	value, err := rs.Get("dividend:test")
	assert.NoError(t, err)
	assert.Equal(t, `{"symbol":"test"}`, string(value))

	// Delete the value
	err = rs.Delete("dividend:test")
	assert.NoError(t, err)

	// A deleted key reads as a miss
	_, err = rs.Get("dividend:test")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
