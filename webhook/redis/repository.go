package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/com4-wkflws/shopify/webhook"
	"github.com/redis/go-redis/v9"
)

/* Redis Streams implementation of webhook.Bus
 * Uses a single stream with a consumer group for the event inbox
 * Uses SET NX keys to remember event identifiers for deduplication
 * Entries delivered to this consumer but not acknowledged are read again
 * from the pending list before new entries
 */

const (
	StreamKey     = "shopify:events"      // Stream holding encoded events
	ConsumerGroup = "shopify-dispatchers" // Consumer group shared by every worker
	eventPrefix   = "shopify:event"       // Keys: shopify:event:{identifier}:seen

	defaultDedupeTTL = 24 * time.Hour
	blockTimeout     = time.Second
	batchSize        = 10
)

var (
	_ webhook.Bus         = (*Repository)(nil)
	_ webhook.Deduper     = (*Repository)(nil)
	_ webhook.Heartbeater = (*Repository)(nil)
)

type Repository struct {
	client    *redis.Client
	consumer  string
	dedupeTTL time.Duration

	// set while this consumer may have unacknowledged entries
	recovering atomic.Bool
}

// Option configures a Repository
type Option func(*Repository)

// WithDedupeTTL sets how long event identifiers are remembered
func WithDedupeTTL(ttl time.Duration) Option {
	return func(r *Repository) {
		if ttl > 0 {
			r.dedupeTTL = ttl
		}
	}
}

// WithConsumerName sets the consumer name inside the group, the hostname by default
func WithConsumerName(name string) Option {
	return func(r *Repository) {
		if name != "" {
			r.consumer = name
		}
	}
}

// NewRepository creates a new Redis repository
func NewRepository(addr, password string, db int, opts ...Option) (*Repository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	consumer, err := os.Hostname()
	if err != nil || consumer == "" {
		consumer = "worker"
	}

	r := &Repository{
		client:    client,
		consumer:  consumer,
		dedupeTTL: defaultDedupeTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.recovering.Store(true)

	if err := r.ensureGroup(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// Publish appends an event to the stream
func (r *Repository) Publish(ctx context.Context, e webhook.Event) error {
	raw, err := webhook.EncodeEvent(e)
	if err != nil {
		return err
	}

	_, err = r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		Values: map[string]interface{}{
			"identifier": e.Identifier,
			"topic":      e.Topic(),
			"event":      raw,
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("adding to stream: %w", err)
	}
	return nil
}

// Consume returns this consumer's pending events first, then new ones
func (r *Repository) Consume(ctx context.Context) ([]webhook.Event, error) {
	if r.recovering.Load() {
		events, read, err := r.read(ctx, "0", -1)
		if err != nil {
			return nil, err
		}
		if read > 0 {
			return events, nil
		}
		r.recovering.Store(false)
	}

	events, _, err := r.read(ctx, ">", blockTimeout)
	return events, err
}

// Acknowledge removes the event's entry from the pending list
func (r *Repository) Acknowledge(ctx context.Context, e webhook.Event) error {
	if e.Position == "" {
		return fmt.Errorf("acknowledging event %s: no stream position", e.Identifier)
	}
	if err := r.client.XAck(ctx, StreamKey, ConsumerGroup, e.Position).Err(); err != nil {
		r.recovering.Store(true)
		return fmt.Errorf("acknowledging message %s: %w", e.Position, err)
	}
	return nil
}

// Claim records identifier, returning false if it was already seen within the TTL
func (r *Repository) Claim(ctx context.Context, identifier string) (bool, error) {
	ok, err := r.client.SetNX(ctx, seenKey(identifier), time.Now().Unix(), r.dedupeTTL).Result()
	if err != nil {
		return false, fmt.Errorf("claiming identifier: %w", err)
	}
	return ok, nil
}

// Release forgets a claimed identifier
func (r *Repository) Release(ctx context.Context, identifier string) error {
	if err := r.client.Del(ctx, seenKey(identifier)).Err(); err != nil {
		return fmt.Errorf("releasing identifier: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Close()
}

// GetClient returns the underlying Redis client for advanced operations
func (r *Repository) GetClient() *redis.Client {
	return r.client
}

func (r *Repository) ensureGroup(ctx context.Context) error {
	err := r.client.XGroupCreateMkStream(ctx, StreamKey, ConsumerGroup, "0").Err()
	if err != nil && !isBusyGroup(err) {
		return fmt.Errorf("creating consumer group: %w", err)
	}
	return nil
}

// read returns the decodable events from start and how many entries were read.
// A negative block does not block.
func (r *Repository) read(ctx context.Context, start string, block time.Duration) ([]webhook.Event, int, error) {
	streams, err := r.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    ConsumerGroup,
		Consumer: r.consumer,
		Streams:  []string{StreamKey, start},
		Count:    batchSize,
		Block:    block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		// No messages available
		return []webhook.Event{}, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("reading from stream: %w", err)
	}
	if len(streams) == 0 {
		return []webhook.Event{}, 0, nil
	}

	messages := streams[0].Messages
	events := make([]webhook.Event, 0, len(messages))
	for _, msg := range messages {
		e, err := decodeMessage(msg)
		if err != nil {
			// Unreadable entries would be redelivered forever
			if err := r.client.XAck(ctx, StreamKey, ConsumerGroup, msg.ID).Err(); err != nil {
				r.recovering.Store(true)
			}
			continue
		}
		e.Position = msg.ID
		events = append(events, e)
	}
	return events, len(messages), nil
}

// Helper functions

func decodeMessage(msg redis.XMessage) (webhook.Event, error) {
	raw, ok := msg.Values["event"].(string)
	if !ok {
		return webhook.Event{}, fmt.Errorf("message %s has no event field", msg.ID)
	}
	return webhook.DecodeEvent([]byte(raw))
}

func isBusyGroup(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP")
}

func seenKey(identifier string) string {
	return fmt.Sprintf("%s:%s:seen", eventPrefix, identifier)
}
