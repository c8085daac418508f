package notifier

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"

	"sjsage522/jobworker/internal/search"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Requires a running Redis; skipped otherwise
func TestRedisNotifier(t *testing.T) {
	ctx := context.Background()

	client := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 0})
	defer client.Close()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Redis is not available, skipping test")
	}

	prefix := "test_jobs_notifier"
	client.Del(ctx, prefix+":0")
	defer client.Del(ctx, prefix+":0")

	n := NewRedisNotifier("localhost:6379", 0, prefix, 1, 2)
	defer n.Close()

	for _, id := range []string{"1", "2", "3"} {
		err := n.Notify(ctx, ForListing(search.Listing{ID: id, Title: "Job " + id}))
		require.NoError(t, err)
	}
	require.NoError(t, n.TrimStreams(ctx))

	messages, err := client.XRange(ctx, prefix+":0", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, messages, 2)

	last := messages[len(messages)-1]
	assert.Equal(t, "3", last.Values["key"])

	decoded, err := base64.StdEncoding.DecodeString(last.Values["b64_job"].(string))
	require.NoError(t, err)

	var got Notification
	require.NoError(t, json.Unmarshal(decoded, &got))
	require.NotNil(t, got.Listing)
	assert.Equal(t, "Job 3", got.Listing.Title)
}
