package uevloop

import "sync"

// globalCS is the single global critical section guarding every
// Context's watcher list and the selector's watcher set, standing in
// for the reference implementation's portENTER_CRITICAL/
// portEXIT_CRITICAL pair (spec.md §5). It is intentionally one mutex
// for the whole package: watcher lists are tiny and mutations are
// rare compared to dispatch, so a single lock is simpler than
// per-Context locking and matches the reference's single critical
// section.
var globalCS sync.Mutex

// registry is a Context's intrusive doubly-linked list of watchers.
// Nodes are the watcherBase embedded in each concrete watcher value;
// nothing is heap-allocated by insert/remove beyond what the caller
// already owns, matching spec.md §5's "no allocation after Init".
type registry struct {
	head, tail *watcherBase
	count      int
}

// insert appends b to the list. Must be called with globalCS held.
func (r *registry) insert(b *watcherBase) {
	if b.next != nil || b.prev != nil || r.head == b {
		return // already linked
	}
	b.prev = r.tail
	b.next = nil
	if r.tail != nil {
		r.tail.next = b
	} else {
		r.head = b
	}
	r.tail = b
	r.count++
}

// remove unlinks b. Must be called with globalCS held. Safe to call
// on an already-unlinked node.
func (r *registry) remove(b *watcherBase) {
	if r.head != b && b.prev == nil && b.next == nil {
		return // not linked
	}
	if b.prev != nil {
		b.prev.next = b.next
	} else if r.head == b {
		r.head = b.next
	}
	if b.next != nil {
		b.next.prev = b.prev
	} else if r.tail == b {
		r.tail = b.prev
	}
	b.next, b.prev = nil, nil
	r.count--
}

// each snapshots the current head-to-tail sequence into fn, one
// watcher at a time. The dispatch loop uses this shape (rather than a
// plain range over a slice) so a callback invoked mid-sweep may Stop
// itself, Stop a different watcher, or register a brand-new one
// without corrupting the walk: the "next" pointer is captured before
// fn runs, per spec.md §4.D's traversal-safety requirement, and if fn
// unlinked that next node while b itself is still linked, the walk
// resumes from b's current successor instead.
func (r *registry) each(fn func(*watcherBase)) {
	globalCS.Lock()
	b := r.head
	globalCS.Unlock()

	for b != nil {
		globalCS.Lock()
		next := b.next
		globalCS.Unlock()

		fn(b)

		globalCS.Lock()
		if next != nil && next.prev == nil && r.head != next && (b.prev != nil || r.head == b) {
			next = b.next
		}
		globalCS.Unlock()
		b = next
	}
}

// initWatcher wires the common fields of any watcher variant. For
// every kind except threadsafe-timer, linking into the registry is
// left to Start; a threadsafe timer links immediately, matching
// spec.md §4.B's "for threadsafe-timer links into context list
// immediately" so a concurrent Set from another task always finds it
// in a consistent state even if the caller never calls Start.
func initWatcher(ctx *Context, w Watcher, kind watcherKind, cb Callback, arg any) error {
	if ctx == nil {
		return invalidArgument("Init", "ctx")
	}
	if cb == nil {
		return invalidArgument("Init", "cb")
	}
	b := w.base()
	b.initBase(ctx, w, kind, cb, arg)
	if kind == kindTimerThreadsafe {
		globalCS.Lock()
		ctx.reg.insert(b)
		globalCS.Unlock()
		b.active.Store(true)
	}
	return nil
}

// startWatcher validates and activates w, linking it into its
// Context's registry and, for I/O watchers, the process selector.
// Idempotent: starting an already-active watcher is a no-op success,
// matching _uev_watcher_start's behaviour in the reference.
func startWatcher(w Watcher) error {
	b := w.base()
	if b.ctx == nil {
		return invalidArgument("Start", "watcher not initialized")
	}
	if io, ok := w.(*IOWatcher); ok && io.fd < 0 {
		return invalidArgument("Start", "fd")
	}
	if b.active.Load() {
		return nil
	}

	globalCS.Lock()
	b.ctx.reg.insert(b)
	globalCS.Unlock()
	b.active.Store(true)

	if io, ok := w.(*IOWatcher); ok {
		sel, err := selectorFor(b.ctx)
		if err != nil {
			globalCS.Lock()
			b.ctx.reg.remove(b)
			globalCS.Unlock()
			b.active.Store(false)
			b.ctx.logWarn().Str("op", "IOWatcher.Start").Err(err).Log("selector unavailable")
			return err
		}
		if err := sel.add(io); err != nil {
			globalCS.Lock()
			b.ctx.reg.remove(b)
			globalCS.Unlock()
			b.active.Store(false)
			b.ctx.logWarn().Str("op", "IOWatcher.Start").Err(err).Log("selector add failed")
			return err
		}
	}
	return nil
}

// stopWatcher deactivates w and unlinks it, except for a threadsafe
// timer: it keeps its list linkage until the loop's own teardown path
// (destroyTimer) removes it, so a concurrent Set from another task
// never races against list mutation (spec.md §3 Lifecycle, §4.B
// "unlinks from context list unless threadsafe-timer"). Idempotent.
func stopWatcher(w Watcher) error {
	b := w.base()
	if !b.active.CompareAndSwap(true, false) {
		return nil
	}
	if io, ok := w.(*IOWatcher); ok {
		globalSelector.remove(io)
	}
	if b.kind == kindTimerThreadsafe {
		return nil
	}
	globalCS.Lock()
	b.ctx.reg.remove(b)
	globalCS.Unlock()
	return nil
}

// destroyTimer force-unlinks a threadsafe timer that stopWatcher
// deliberately left linked. Only Context.teardown calls this, as part
// of exit's full registry walk; no public operation reaches it.
func (c *Context) destroyTimer(b *watcherBase) {
	b.active.Store(false)
	globalCS.Lock()
	c.reg.remove(b)
	globalCS.Unlock()
}
