package webhook

import "fmt"

/* State represents where an event is in the dispatch lifecycle
 * Follows: Received -> Validated -> Dispatched, Received -> Rejected, Received -> Failed
 */
type State int

const (
	Received State = iota + 1
	Validated
	Dispatched
	Rejected
	Failed
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case Received:
		return "received"
	case Validated:
		return "validated"
	case Dispatched:
		return "dispatched"
	case Rejected:
		return "rejected"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Validate checks if the state is valid
func (s State) Validate() error {
	if s < Received || s > Failed {
		return fmt.Errorf("invalid state: %d", s)
	}
	return nil
}

// IsFinal returns true if the state is a terminal state
func (s State) IsFinal() bool {
	return s == Dispatched || s == Rejected || s == Failed
}

// CanTransition reports whether the dispatcher may move from s to next
func (s State) CanTransition(next State) bool {
	if s.IsFinal() || next.Validate() != nil {
		return false
	}
	switch s {
	case Received:
		return next == Validated || next == Rejected || next == Failed
	case Validated:
		return next == Dispatched
	default:
		return false
	}
}
