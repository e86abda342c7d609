// internal/upstream/backoff.go
package upstream

import "time"

// LinearBackOff waits attempt*step before each retry: step, 2*step, 3*step...
// It satisfies backoff.BackOff.
type LinearBackOff struct {
	step    time.Duration
	attempt int
}

func NewLinearBackOff(step time.Duration) *LinearBackOff {
	return &LinearBackOff{step: step}
}

func (b *LinearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return time.Duration(b.attempt) * b.step
}

func (b *LinearBackOff) Reset() {
	b.attempt = 0
}
