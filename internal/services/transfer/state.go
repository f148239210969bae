package transfer

import "go.uber.org/zap"

// State is a step of an operation's lifecycle.
type State string

const (
	StateValidated State = "validated"
	StateLocked    State = "locked"
	StateDebited   State = "debited"
	StateCredited  State = "credited"
	StateCommitted State = "committed"
	StateRejected  State = "rejected"
	StateFailed    State = "partial_failure"
	StateUnknown   State = "unknown"
)

var transitions = map[State][]State{
	StateValidated: {StateLocked, StateRejected},
	StateLocked:    {StateDebited, StateCredited, StateRejected, StateFailed, StateUnknown},
	StateDebited:   {StateCredited, StateCommitted, StateValidated, StateFailed, StateUnknown},
	StateCredited:  {StateCommitted, StateValidated, StateFailed, StateUnknown},
}

// CanMove reports whether next may follow s.
func (s State) CanMove(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no state may follow s.
func (s State) Terminal() bool {
	return len(transitions[s]) == 0
}

// tracker follows one operation through its states.
type tracker struct {
	log         *zap.Logger
	op          string
	correlation string
	state       State
	history     []State
}

func newTracker(log *zap.Logger, operation, correlationID string) *tracker {
	return &tracker{
		log: log.With(
			zap.String("operation", operation),
			zap.String("correlation_id", correlationID),
		),
		op:          operation,
		correlation: correlationID,
		state:       StateValidated,
		history:     []State{StateValidated},
	}
}

func (t *tracker) advance(next State) {
	if !t.state.CanMove(next) {
		t.log.Warn("unexpected state transition",
			zap.String("from", string(t.state)),
			zap.String("to", string(next)),
		)
	}
	t.log.Debug("state transition",
		zap.String("from", string(t.state)),
		zap.String("to", string(next)),
	)
	t.state = next
	t.history = append(t.history, next)
}

// reject moves an operation with discarded postings back to Validated
// before marking it rejected.
func (t *tracker) reject() {
	if t.state == StateDebited || t.state == StateCredited {
		t.advance(StateValidated)
	}
	t.advance(StateRejected)
}
