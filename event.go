package uevloop

import "sync/atomic"

// EventWatcher is a software-posted, edge-triggered watcher: Post
// marks it pending and wakes the dispatch loop, which fires the
// callback once and clears the pending flag. Post is safe to call
// from any goroutine, including one standing in for an ISR — it never
// blocks and never allocates, matching spec.md §3's event variant.
type EventWatcher struct {
	watcherBase

	posted atomic.Bool
}

// Init associates w with ctx and cb, then registers and starts it:
// event_init's effect is "register and start" (spec.md §6) — there is
// no separate event_start operation, so Post works immediately after
// Init returns.
func (w *EventWatcher) Init(ctx *Context, cb Callback, arg any) error {
	if err := initWatcher(ctx, w, kindEvent, cb, arg); err != nil {
		return err
	}
	return startWatcher(w)
}

// Start is an idempotent no-op against a watcher Init already started.
// Kept for symmetry with IOWatcher, whose fd-based variant genuinely
// needs an explicit start.
func (w *EventWatcher) Start() error { return startWatcher(w) }

// Stop deregisters w. A pending, unfired Post is discarded.
func (w *EventWatcher) Stop() error {
	w.posted.Store(false)
	return stopWatcher(w)
}

// Post marks w pending and wakes its Context's dispatch loop. Posting
// to an inactive watcher returns ErrInvalidArgument and sets nothing.
// Posting to an already-pending watcher is a no-op beyond the flag
// set: events coalesce, they don't queue.
func (w *EventWatcher) Post() error {
	if !w.Active() {
		return invalidArgument("EventWatcher.Post", "watcher not started")
	}
	w.posted.Store(true)
	w.ctx.bg.setBits(BitEvent)
	return nil
}

// consume reports and clears the pending flag; the dispatch loop uses
// this to decide whether to fire w's callback this iteration.
func (w *EventWatcher) consume() bool {
	return w.posted.CompareAndSwap(true, false)
}
