package notifier

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"math/rand/v2"
	"strconv"

	"sjsage522/jobworker/logger"
	"sjsage522/jobworker/pkg/errors"

	"github.com/redis/go-redis/v9"
)

// RedisNotifier appends notifications to sharded Redis streams
type RedisNotifier struct {
	client          *redis.Client
	streamPrefix    string
	streamCount     int
	streamMaxLength int
	log             *logger.Logger
}

// NewRedisNotifier creates a new Redis stream sink
func NewRedisNotifier(addr string, db int, streamPrefix string, streamCount int, streamMaxLength int) *RedisNotifier {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if streamCount <= 0 {
		streamCount = 1
	}

	return &RedisNotifier{
		client:          client,
		streamPrefix:    streamPrefix,
		streamCount:     streamCount,
		streamMaxLength: streamMaxLength,
		log:             logger.ForNotifier("redis"),
	}
}

// Ping checks the connection
func (p *RedisNotifier) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Notify publishes the JSON encoded notification to a random shard.
// The payload is base64 encoded before publishing.
func (p *RedisNotifier) Notify(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return errors.NewNotify("redis", "failed to encode notification", err)
	}
	encoded := base64.StdEncoding.EncodeToString(payload)

	// streamCount 10 gives prefix:0 ~ prefix:9
	stream := p.streamPrefix + ":" + strconv.Itoa(rand.IntN(p.streamCount))

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"key":     n.Key,
			"b64_job": encoded,
		},
	}).Err()
	if err != nil {
		return errors.NewNotify("redis", "xadd to "+stream+" failed", err)
	}
	return nil
}

// TrimStreams trims all streams to the configured maximum length
func (p *RedisNotifier) TrimStreams(ctx context.Context) error {
	if p.streamMaxLength <= 0 {
		return nil
	}
	for i := 0; i < p.streamCount; i++ {
		stream := p.streamPrefix + ":" + strconv.Itoa(i)
		if err := p.client.XTrimMaxLen(ctx, stream, int64(p.streamMaxLength)).Err(); err != nil {
			return errors.NewNotify("redis", "xtrim "+stream+" failed", err)
		}
	}
	return nil
}

// Close closes the Redis connection
func (p *RedisNotifier) Close() error {
	return p.client.Close()
}
