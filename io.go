package uevloop

import "sync/atomic"

// IOWatcher fires when a file descriptor becomes readable, writable,
// or errors, per spec.md §3's I/O watcher variant. The zero value is
// not usable; call Init before Start.
type IOWatcher struct {
	watcherBase

	fd      int
	want    EventMask
	pending atomic.Uint32 // EventMask bits posted by the selector, cleared after dispatch
}

// Init associates w with ctx, fd, and the set of events to watch for.
// w must not be active.
func (w *IOWatcher) Init(ctx *Context, cb Callback, arg any, fd int, events EventMask) error {
	if fd < 0 {
		return invalidArgument("IOWatcher.Init", "fd")
	}
	if events&(ReadEvent|WriteEvent) == 0 {
		return invalidArgument("IOWatcher.Init", "events")
	}
	if err := initWatcher(ctx, w, kindIO, cb, arg); err != nil {
		return err
	}
	w.fd = fd
	w.want = events
	return nil
}

// Set changes the descriptor and/or watched events of an inactive
// watcher. Returns ErrInvalidArgument if the watcher is active: the
// reference implementation requires stop-set-start to change an
// in-flight I/O watcher, since the selector's fd_set membership is
// keyed on (fd, events) at Start time.
func (w *IOWatcher) Set(fd int, events EventMask) error {
	if w.Active() {
		return invalidArgument("IOWatcher.Set", "watcher is active")
	}
	if fd < 0 {
		return invalidArgument("IOWatcher.Set", "fd")
	}
	if events&(ReadEvent|WriteEvent) == 0 {
		return invalidArgument("IOWatcher.Set", "events")
	}
	w.fd = fd
	w.want = events
	return nil
}

// Start registers w with its Context's selector.
func (w *IOWatcher) Start() error { return startWatcher(w) }

// Stop deregisters w. Safe to call from within its own callback.
func (w *IOWatcher) Stop() error { return stopWatcher(w) }

// Fd returns the watched descriptor.
func (w *IOWatcher) Fd() int { return w.fd }

// postReady is called by the selector when it observes readiness for
// w's descriptor. It only ORs bits in; the dispatch loop clears them
// once the callback for this sweep returns, which is the source of
// the documented I/O rearm race (spec.md §9): a watcher whose pending
// bits are still nonzero is excluded from the next select(2) fd_set
// build, so a slow callback can coalesce multiple readiness events but
// also delay the selector noticing new activity on the same fd.
func (w *IOWatcher) postReady(events EventMask) {
	for {
		old := w.pending.Load()
		next := old | uint32(events)
		if old == next {
			return
		}
		if w.pending.CompareAndSwap(old, next) {
			return
		}
	}
}
