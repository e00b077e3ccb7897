package cancel

import "sync"

// Token is the per-session cancellation handle. It fires exactly once; after
// that IsCancelled reports true forever and Done() is closed. Tokens are
// created and owned by a Registry entry; external code only observes them.
type Token struct {
	mu        sync.Mutex
	done      chan struct{}
	reason    string
	cancelled bool
}

func newToken() *Token {
	return &Token{done: make(chan struct{})}
}

// Done returns a channel closed when the token fires. Select on it for a
// race-free way to observe cancellation alongside other channel operations.
func (t *Token) Done() <-chan struct{} { return t.done }

// IsCancelled reports whether the token has fired.
func (t *Token) IsCancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}

// Reason returns the advisory reason supplied at cancellation, or "" when the
// token has not fired or no reason was given. Reasons are propagated to
// listeners, never interpreted.
func (t *Token) Reason() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reason
}

// fire transitions the token to cancelled. It reports whether this call
// performed the transition; subsequent calls are no-ops.
func (t *Token) fire(reason string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancelled {
		return false
	}
	t.cancelled = true
	t.reason = reason
	close(t.done)
	return true
}
