package channel

import (
	"sync"
	"time"
)

// Promise is a single-slot result awaited by one goroutine. A result is
// accepted only between Reset and the end of the following Wait, so late
// results of an abandoned request are dropped.
//
// A producer that needs to do work before the result is known claims the
// promise first. Once claimed, the promise rejects other producers and
// Wait keeps blocking past its timeout until the claimer calls Complete.
type Promise[T any] struct {
	mu        sync.Mutex
	done      chan struct{}
	result    T
	armed     bool
	claimed   bool
	hasResult bool
}

func NewPromise[T any]() *Promise[T] {
	return &Promise[T]{}
}

// Reset discards any previous result and starts accepting a new one.
func (p *Promise[T]) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	var zero T

	p.done = make(chan struct{})
	p.result = zero
	p.armed = true
	p.claimed = false
	p.hasResult = false
}

// Claim reserves the promise for the caller. It reports false when no
// result is awaited or another producer got there first.
func (p *Promise[T]) Claim() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.armed || p.claimed || p.hasResult {
		return false
	}

	p.claimed = true

	return true
}

// Complete resolves a promise reserved with Claim.
func (p *Promise[T]) Complete(v T) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.claimed || p.hasResult {
		return
	}

	p.result = v
	p.hasResult = true
	close(p.done)
}

// SetResult resolves the promise. It reports whether the result was
// accepted.
func (p *Promise[T]) SetResult(v T) bool {
	if !p.Claim() {
		return false
	}

	p.Complete(v)

	return true
}

// Pending reports whether a result is awaited and nobody has claimed it.
func (p *Promise[T]) Pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.armed && !p.claimed && !p.hasResult
}

func (p *Promise[T]) HasResult() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.hasResult
}

// Wait blocks until the result is set or the timeout elapses. A zero
// timeout waits forever. A claimed promise is waited for regardless of the
// timeout. The promise stops accepting results when Wait returns.
func (p *Promise[T]) Wait(timeout time.Duration) (T, bool) {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()

	var zero T

	if done == nil {
		return zero, false
	}

	var expired <-chan time.Time

	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()

		expired = timer.C
	}

	select {
	case <-done:
	case <-expired:
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.claimed && !p.hasResult {
		p.mu.Unlock()
		<-done
		p.mu.Lock()
	}

	p.armed = false

	if !p.hasResult {
		return zero, false
	}

	return p.result, true
}
