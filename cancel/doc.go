// Package cancel implements the per-session cancellation registry.
//
// A Registry maps session identifiers to one-shot cancellation Tokens plus
// ordered on-cancel callbacks. It is an explicitly constructed, injectable
// instance (never a package-level singleton) so tests and embedding
// applications can own isolated registries.
//
// Semantics:
//
//   - At most one live token per session; CreateToken cancels and replaces any
//     prior token for the same session
//   - All operations are total: unknown sessions are never errors, and an
//     unknown session reads as not-cancelled
//   - Cancellation is one-shot per token; the first Cancel fires all callbacks
//     registered before it, synchronously, in registration order, then evicts
//     the callback list (the token stays so IsCancelled remains true)
//   - Callbacks registered after cancellation are stored but never fire
//   - Callback panics are isolated; remaining callbacks still run
//   - Registry state for a completed session is released via Cleanup; callers
//     own that lifecycle
//
// Operations on different session keys never interfere with each other; the
// registry is safe for concurrent use across sessions, and cancellation may be
// signalled from a different goroutine than the one executing the session's
// agent. Waiting code observes cancellation race-free through Token.Done().
package cancel
