package session

import (
	"context"
	"sync"
)

// Lifecycle is the process wide "auth ready" signal.
// The zero value is usable and starts not ready.
type Lifecycle struct {
	mu    sync.Mutex
	ready bool
	done  chan struct{}
}

// NewLifecycle returns an initialised, not ready Lifecycle.
func NewLifecycle() *Lifecycle {
	l := &Lifecycle{}
	l.Init()

	return l
}

// Init prepares the wait channel. Calling it again is a no-op.
func (l *Lifecycle) Init() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.done == nil {
		l.done = make(chan struct{})
	}
}

// Reset returns to not ready. Waiters of the previous round stay released.
func (l *Lifecycle) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ready || l.done == nil {
		l.done = make(chan struct{})
	}

	l.ready = false
}

// MarkReady releases every waiter. It is idempotent.
func (l *Lifecycle) MarkReady() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.done == nil {
		l.done = make(chan struct{})
	}

	if !l.ready {
		l.ready = true
		close(l.done)
	}
}

// Ready reports whether the current round completed.
func (l *Lifecycle) Ready() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.ready
}

// Wait blocks until MarkReady or ctx is done.
func (l *Lifecycle) Wait(ctx context.Context) error {
	l.Init()

	l.mu.Lock()
	done := l.done
	l.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
