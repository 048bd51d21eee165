package webhook

import "fmt"

/* BusKind selects the event bus between ingress and dispatch
 * Redis uses a stream with a consumer group
 * Kafka uses a topic with a consumer group
 */
type BusKind int

const (
	RedisBus BusKind = iota + 1
	KafkaBus
)

// String returns the string representation of the bus kind
func (b BusKind) String() string {
	switch b {
	case RedisBus:
		return "redis"
	case KafkaBus:
		return "kafka"
	default:
		return "unknown"
	}
}

// NewBusKind creates a BusKind from a string
func NewBusKind(s string) BusKind {
	switch s {
	case "redis":
		return RedisBus
	case "kafka":
		return KafkaBus
	default:
		return RedisBus
	}
}

// Validate checks if the bus kind is valid
func (b BusKind) Validate() error {
	if b != RedisBus && b != KafkaBus {
		return fmt.Errorf("invalid event bus: %d", b)
	}
	return nil
}
