package kafka

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/com4-wkflws/shopify/webhook"
	"github.com/segmentio/kafka-go"
)

/* Kafka implementation of webhook.Bus
 * Events are keyed by identifier so redeliveries land on the same partition
 * Offsets are committed on Acknowledge, giving at-least-once dispatch
 */

const (
	kafkaMinBytes = 1        // deliver single events without waiting for a batch
	kafkaMaxBytes = 10 << 20 // 10MB
	pollTimeout   = time.Second

	identifierHeader = "identifier"
	topicHeader      = "shopify-topic"
)

var _ webhook.Bus = (*Bus)(nil)

type Bus struct {
	reader *kafka.Reader
	writer *kafka.Writer
}

// NewBus creates a bus producing to and consuming from topic with the given consumer group
func NewBus(brokers []string, topic, groupID string) (*Bus, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one kafka broker is required")
	}
	if topic == "" || groupID == "" {
		return nil, fmt.Errorf("kafka topic and group id are required")
	}

	return &Bus{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			GroupID:  groupID,
			Topic:    topic,
			MinBytes: kafkaMinBytes,
			MaxBytes: kafkaMaxBytes,
			MaxWait:  500 * time.Millisecond,
		}),
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 5 * time.Millisecond,
		},
	}, nil
}

// Publish writes an event synchronously
func (b *Bus) Publish(ctx context.Context, e webhook.Event) error {
	msg, err := Message(e)
	if err != nil {
		return err
	}
	if err := b.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing to kafka: %w", err)
	}
	return nil
}

// Consume fetches the next event, waiting at most one poll interval
func (b *Bus) Consume(ctx context.Context) ([]webhook.Event, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, pollTimeout)
	defer cancel()

	msg, err := b.reader.FetchMessage(fetchCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return []webhook.Event{}, nil
		}
		return nil, fmt.Errorf("fetching from kafka: %w", err)
	}

	e, err := Event(msg)
	if err != nil {
		// Unreadable messages would block the partition
		if cerr := b.reader.CommitMessages(ctx, msg); cerr != nil {
			return nil, fmt.Errorf("committing unreadable message: %w", cerr)
		}
		return []webhook.Event{}, nil
	}

	return []webhook.Event{e}, nil
}

// Acknowledge commits the offset of the event's message
func (b *Bus) Acknowledge(ctx context.Context, e webhook.Event) error {
	msg, err := parsePosition(e.Position)
	if err != nil {
		return fmt.Errorf("acknowledging event %s: %w", e.Identifier, err)
	}
	if err := b.reader.CommitMessages(ctx, msg); err != nil {
		return fmt.Errorf("committing offset: %w", err)
	}
	return nil
}

// Close closes the reader and the writer
func (b *Bus) Close(ctx context.Context) error {
	return errors.Join(b.reader.Close(), b.writer.Close())
}

// Message encodes an event as a kafka message keyed by identifier
func Message(e webhook.Event) (kafka.Message, error) {
	raw, err := webhook.EncodeEvent(e)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(e.Identifier),
		Value: raw,
		Headers: []kafka.Header{
			{Key: identifierHeader, Value: []byte(e.Identifier)},
			{Key: topicHeader, Value: []byte(e.Topic())},
		},
	}, nil
}

// Event decodes a message written by Message
func Event(msg kafka.Message) (webhook.Event, error) {
	e, err := webhook.DecodeEvent(msg.Value)
	if err != nil {
		return webhook.Event{}, fmt.Errorf("decoding message at offset %d: %w", msg.Offset, err)
	}
	e.Position = fmt.Sprintf("%s/%d/%d", msg.Topic, msg.Partition, msg.Offset)
	return e, nil
}

// parsePosition is the inverse of the Position set by Event: topic/partition/offset
func parsePosition(position string) (kafka.Message, error) {
	parts := strings.Split(position, "/")
	if len(parts) != 3 || parts[0] == "" {
		return kafka.Message{}, fmt.Errorf("invalid position %q", position)
	}
	partition, err := strconv.Atoi(parts[1])
	if err != nil {
		return kafka.Message{}, fmt.Errorf("invalid partition in position %q: %w", position, err)
	}
	offset, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("invalid offset in position %q: %w", position, err)
	}
	return kafka.Message{Topic: parts[0], Partition: partition, Offset: offset}, nil
}
