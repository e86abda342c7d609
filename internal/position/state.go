// internal/position/state.go
package position

import (
	"fmt"

	"go.uber.org/zap"
)

// State is a step of one /lp resolution.
type State int

const (
	StateStart State = iota
	StateMetaResolved
	StatePriceResolved
	StateAmountsResolved
	StateValued
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "START"
	case StateMetaResolved:
		return "META_RESOLVED"
	case StatePriceResolved:
		return "PRICE_RESOLVED"
	case StateAmountsResolved:
		return "AMOUNTS_RESOLVED"
	case StateValued:
		return "VALUED"
	case StateFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// FailedError records the last state reached before a resolution aborted.
type FailedError struct {
	At  State
	Err error
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("failed after %s: %v", e.At, e.Err)
}

func (e *FailedError) Unwrap() error {
	return e.Err
}

// machine enforces the strict forward order of a resolution.
type machine struct {
	state  State
	logger *zap.Logger
}

func newMachine(logger *zap.Logger) *machine {
	return &machine{state: StateStart, logger: logger}
}

func (m *machine) advance(next State) {
	if m.state == StateFailed || next != m.state+1 {
		panic(fmt.Sprintf("position: illegal transition %s -> %s", m.state, next))
	}
	m.logger.Debug("State transition", zap.Stringer("from", m.state), zap.Stringer("to", next))
	m.state = next
}

func (m *machine) fail(err error) error {
	at := m.state
	m.state = StateFailed
	m.logger.Debug("State transition", zap.Stringer("from", at), zap.Stringer("to", StateFailed), zap.Error(err))
	return &FailedError{At: at, Err: err}
}
