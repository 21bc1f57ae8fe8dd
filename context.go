package uevloop

import "sync/atomic"

// Context is one loop instance: a bit-group, a watcher registry, and
// the running/stop-requested flags that govern Run. Spec.md §3 calls
// this the loop's "Context" type; the reference implementation calls
// it uev_ctx_t. The zero value is not usable; construct with
// NewContext.
type Context struct {
	opts *contextOptions

	bg  *bitGroup
	reg registry

	run           runState
	stopRequested atomic.Bool

	metrics metricsCounters
}

// NewContext constructs a Context ready for watchers to be
// registered against it. Unless WithoutIOThread is passed, the first
// IOWatcher started against this (or any other) Context lazily starts
// the process-wide selector.
func NewContext(opts ...Option) (*Context, error) {
	c := &Context{
		opts: resolveOptions(opts),
		bg:   newBitGroup(),
	}
	return c, nil
}
