package uevloop

import "sync/atomic"

// runState is the Context's running flag: spec.md §3 calls for "a
// running flag (atomic boolean)". A CAS-based transition is used for
// Run so two concurrent Run calls on the same Context can't both start
// the dispatch loop.
type runState struct {
	v atomic.Bool
}

// tryStart transitions false -> true, reporting whether this call won
// the race to become the running loop.
func (s *runState) tryStart() bool {
	return s.v.CompareAndSwap(false, true)
}

func (s *runState) stop() {
	s.v.Store(false)
}

func (s *runState) isRunning() bool {
	return s.v.Load()
}
