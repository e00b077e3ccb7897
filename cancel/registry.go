package cancel

import (
	"sync"

	"github.com/hupe1980/agentrelay/logging"
)

// Callback runs when a session is cancelled. The reason is the advisory
// string passed to Cancel, possibly empty.
type Callback func(reason string)

// registration wraps a callback so unregistration can tombstone it without
// disturbing the registration order of the remaining callbacks.
type registration struct {
	fn      Callback
	removed bool
}

type entry struct {
	token     *Token
	callbacks []*registration
}

// Options configures a Registry.
type Options struct {
	// Logger receives registry lifecycle and callback-failure logs.
	Logger logging.Logger
}

// Registry is the process-local table of session cancellation state. All
// methods are safe for concurrent use; see the package documentation for the
// full contract.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	logger  logging.Logger
}

// NewRegistry constructs an empty registry with optional overrides.
func NewRegistry(optFns ...func(o *Options)) *Registry {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Registry{entries: make(map[string]*entry), logger: opts.Logger}
}

// WithLogger overrides the registry logger.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// CreateToken returns a fresh token for the session, guaranteeing exactly one
// live token per session. Any prior token is first cancelled (with no reason),
// firing its pending callbacks, then replaced. Callbacks registered before the
// first token for a session are retained and attach to the new token.
func (r *Registry) CreateToken(sessionID string) *Token {
	r.mu.Lock()
	e, ok := r.entries[sessionID]
	if !ok {
		e = &entry{}
		r.entries[sessionID] = e
	}
	prior := e.token
	tok := newToken()
	var pending []*registration
	if prior != nil {
		pending = e.callbacks
		e.callbacks = nil
	}
	e.token = tok
	r.mu.Unlock()

	if prior != nil && prior.fire("") {
		r.runCallbacks(sessionID, pending, "")
	}

	r.logger.Debug("cancel.token.created", "session_id", sessionID, "replaced", prior != nil)

	return tok
}

// GetToken returns the session's current token, or nil when the session has
// none registered.
func (r *Registry) GetToken(sessionID string) *Token {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[sessionID]; ok {
		return e.token
	}
	return nil
}

// IsCancelled reports whether the session's token has fired. An unknown
// session reads as not cancelled: absence of a session is not the same as
// cancellation.
func (r *Registry) IsCancelled(sessionID string) bool {
	tok := r.GetToken(sessionID)
	return tok != nil && tok.IsCancelled()
}

// Cancel fires the session's token with an advisory reason. It is idempotent:
// it reports true only when this call performed the transition; cancelling an
// already-cancelled or unknown session is a no-op returning false. The first
// call fires all registered callbacks synchronously in registration order,
// then evicts the callback list (the token itself stays registered so
// IsCancelled remains true until Cleanup).
func (r *Registry) Cancel(sessionID, reason string) bool {
	r.mu.Lock()
	e, ok := r.entries[sessionID]
	if !ok || e.token == nil {
		r.mu.Unlock()
		return false
	}
	tok := e.token
	pending := e.callbacks
	r.mu.Unlock()

	if !tok.fire(reason) {
		return false
	}

	r.mu.Lock()
	e.callbacks = nil
	r.mu.Unlock()

	r.logger.Info("cancel.session.cancelled", "session_id", sessionID, "reason", reason)
	r.runCallbacks(sessionID, pending, reason)

	return true
}

// CancelAll cancels every currently registered session and returns the count
// actually transitioned; already-cancelled sessions are not counted.
func (r *Registry) CancelAll(reason string) int {
	r.mu.Lock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	count := 0
	for _, id := range ids {
		if r.Cancel(id, reason) {
			count++
		}
	}
	return count
}

// OnCancel registers a callback to run on the session's cancellation and
// returns an unregistration function. Registering on an already-cancelled
// session is safe: the callback is stored but will never fire, since
// cancellation is one-shot per token and has already happened. Registering on
// a session with no token yet is also safe; the callback attaches to the
// session's first token.
func (r *Registry) OnCancel(sessionID string, cb Callback) func() {
	reg := &registration{fn: cb}

	r.mu.Lock()
	e, ok := r.entries[sessionID]
	if !ok {
		e = &entry{}
		r.entries[sessionID] = e
	}
	e.callbacks = append(e.callbacks, reg)
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		reg.removed = true
	}
}

// Cleanup removes all registry state for a session. Call it once the owning
// session has fully completed, to bound memory.
func (r *Registry) Cleanup(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, sessionID)
}

// CleanupAll removes all registry state for every session.
func (r *Registry) CleanupAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]*entry)
}

// Len returns the number of sessions currently registered.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// runCallbacks fires pending callbacks in registration order, skipping
// tombstoned ones. A panicking callback is recovered and logged so the
// remaining callbacks still run.
func (r *Registry) runCallbacks(sessionID string, regs []*registration, reason string) {
	for _, reg := range regs {
		r.mu.Lock()
		removed := reg.removed
		r.mu.Unlock()
		if removed {
			continue
		}
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					r.logger.Error("cancel.callback.panic", "session_id", sessionID, "panic", rec)
				}
			}()
			reg.fn(reason)
		}()
	}
}
