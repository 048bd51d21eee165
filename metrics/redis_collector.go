package metrics

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisCollector implements the InboxCollector interface for the Redis event inbox
type RedisCollector struct {
	client          *redis.Client
	stream          string
	group           string
	heartbeatPrefix string
}

var _ InboxCollector = (*RedisCollector)(nil)

// NewRedisCollector creates a collector for the given stream, consumer group and heartbeat key prefix
func NewRedisCollector(client *redis.Client, stream, group, heartbeatPrefix string) *RedisCollector {
	return &RedisCollector{
		client:          client,
		stream:          stream,
		group:           group,
		heartbeatPrefix: heartbeatPrefix,
	}
}

// Pending returns the number of events not yet acknowledged by the consumer group,
// whether or not they were already delivered to a worker
func (c *RedisCollector) Pending(ctx context.Context) (int64, error) {
	groups, err := c.client.XInfoGroups(ctx, c.stream).Result()
	if err != nil {
		return 0, fmt.Errorf("reading consumer groups: %w", err)
	}
	for _, g := range groups {
		if g.Name == c.group {
			return g.Pending + g.Lag, nil
		}
	}
	return 0, nil
}

// ActiveWorkers counts workers with a live heartbeat key
func (c *RedisCollector) ActiveWorkers(ctx context.Context) (int64, error) {
	var count int64

	// Scan for heartbeat keys
	var cursor uint64
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, c.heartbeatPrefix+":*", 100).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return 0, fmt.Errorf("scanning worker heartbeat keys: %w", err)
		}
		count += int64(len(keys))

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return count, nil
}
