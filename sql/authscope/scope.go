// Package authscope implements the internal-query scope from spec.md
// §4.6: a nestable, RAII-style window opened around the catalog-internal
// SQL issued by sql/authgateway and sql/principal. Disabled reports
// whether a window is open; no package in this module reads it, so
// sql/validator's checks run the same inside and outside a window.
//
// This mirrors the original engine's AU_DISABLE/AU_ENABLE pair, adapted
// to Go idiom: a depth counter plus a deferred teardown function instead
// of a save/restore local variable at every call site.
package authscope

import "sync/atomic"

// Scope tracks how many nested internal-query windows are currently
// open for one session. Each session (one goroutine, per spec.md §5)
// owns its own Scope; it is not meant to be shared across goroutines.
type Scope struct {
	depth int32
}

// New returns a Scope with authorization checks enabled (depth zero).
func New() *Scope {
	return &Scope{}
}

// Disabled reports whether authorization checks are currently suppressed
// for this session.
func (s *Scope) Disabled() bool {
	return atomic.LoadInt32(&s.depth) > 0
}

// Begin opens (or re-enters) the internal-query window and returns a
// teardown function. The teardown is guaranteed to run on every exit
// path when called via defer, including error returns, and nests
// correctly: the window only closes once every Begin has a matching
// teardown call.
//
//	end := scope.Begin()
//	defer end()
//	... issue internal catalog SQL ...
func (s *Scope) Begin() (end func()) {
	atomic.AddInt32(&s.depth, 1)
	closed := false
	return func() {
		if closed {
			return
		}
		closed = true
		atomic.AddInt32(&s.depth, -1)
	}
}
