package advisor

import "sync/atomic"

// Tracker implements latest-request-wins for one UI surface. Begin issues
// a token for each new request; Commit reports whether that token is still
// the newest one. Callers discard results whose Commit returns false.
type Tracker struct {
	latest atomic.Uint64
}

// Begin registers a new request and returns its token.
func (t *Tracker) Begin() uint64 {
	return t.latest.Add(1)
}

// Commit reports whether token belongs to the most recent request.
func (t *Tracker) Commit(token uint64) bool {
	return t.latest.Load() == token
}
