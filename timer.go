package uevloop

import (
	"sync"
	"time"
)

// TimerWatcher fires once after timeout, then every period thereafter
// (period == 0 makes it one-shot), per spec.md §3's timer variants.
// The zero value is not usable; call Init or InitThreadsafe.
//
// Two variants share this type: a plain timer, only ever touched from
// the goroutine running its Context's dispatch loop, and a
// thread-safe timer (InitThreadsafe), whose Set may be called from
// any goroutine — including one standing in for an ISR — while the
// loop is running. The thread-safe variant pays for a per-watcher
// mutex guarding the deadline/timeout/period fields; the plain
// variant has none.
type TimerWatcher struct {
	watcherBase

	mu *sync.Mutex // non-nil only for the thread-safe variant

	timeoutMS  int64
	periodMS   int64
	deadlineMS int64
}

func (w *TimerWatcher) init(ctx *Context, cb Callback, arg any, timeout, period time.Duration, kind watcherKind, threadsafe bool) error {
	if timeout < 0 {
		return outOfRange("TimerWatcher.Init", "timeout", int64(timeout))
	}
	if period < 0 {
		return outOfRange("TimerWatcher.Init", "period", int64(period))
	}
	if err := initWatcher(ctx, w, kind, cb, arg); err != nil {
		return err
	}
	if threadsafe {
		w.mu = new(sync.Mutex)
	} else {
		w.mu = nil
	}
	w.timeoutMS = timeout.Milliseconds()
	w.periodMS = period.Milliseconds()
	w.deadlineMS = 0
	if err := startWatcher(w); err != nil {
		return err
	}
	// Invariant: while the loop isn't running, a timer's deadline
	// stays zero; Run arms any still-dormant timer when it starts
	// (spec.md §3 invariant 4). A timer created from inside a callback,
	// with the loop already running, is armed here immediately so it
	// can fire on a later iteration of the same run (spec.md §8
	// scenario 5).
	if ctx.run.isRunning() {
		w.lock()
		w.deadlineMS = nowMillis(ctx.opts.clock) + w.timeoutMS
		w.unlock()
		ctx.bg.setBits(BitTimer)
	}
	return nil
}

// Init configures a plain (non-thread-safe) timer.
func (w *TimerWatcher) Init(ctx *Context, cb Callback, arg any, timeout, period time.Duration) error {
	return w.init(ctx, cb, arg, timeout, period, kindTimer, false)
}

// InitThreadsafe configures a timer whose Set may be called
// concurrently with the dispatch loop, e.g. from a goroutine standing
// in for an interrupt handler.
func (w *TimerWatcher) InitThreadsafe(ctx *Context, cb Callback, arg any, timeout, period time.Duration) error {
	return w.init(ctx, cb, arg, timeout, period, kindTimerThreadsafe, true)
}

func (w *TimerWatcher) lock() {
	if w.mu != nil {
		w.mu.Lock()
	}
}

func (w *TimerWatcher) unlock() {
	if w.mu != nil {
		w.mu.Unlock()
	}
}

// Set changes the timeout and period. If the timer is active, the
// deadline is recomputed relative to now and the owning Context's
// bit-group is nudged so the dispatch loop recalculates its wait
// deadline on this iteration rather than sleeping past the new one.
func (w *TimerWatcher) Set(timeout, period time.Duration) error {
	if timeout < 0 {
		return outOfRange("TimerWatcher.Set", "timeout", int64(timeout))
	}
	if period < 0 {
		return outOfRange("TimerWatcher.Set", "period", int64(period))
	}
	w.lock()
	w.timeoutMS = timeout.Milliseconds()
	w.periodMS = period.Milliseconds()
	active := w.active.Load()
	if active {
		w.deadlineMS = nowMillis(w.ctx.opts.clock) + w.timeoutMS
	}
	w.unlock()
	if active {
		w.ctx.bg.setBits(BitTimer)
	}
	return nil
}

// Start arms the timer: its first firing is timeout from now.
func (w *TimerWatcher) Start() error {
	if err := startWatcher(w); err != nil {
		return err
	}
	w.lock()
	w.deadlineMS = nowMillis(w.ctx.opts.clock) + w.timeoutMS
	w.unlock()
	w.ctx.bg.setBits(BitTimer)
	return nil
}

// Stop disarms the timer.
func (w *TimerWatcher) Stop() error { return stopWatcher(w) }

func (w *TimerWatcher) deadline() int64 {
	w.lock()
	defer w.unlock()
	return w.deadlineMS
}

// rearm advances the deadline by one period from now, or disarms a
// one-shot timer. Called by the dispatch loop immediately after
// firing. Advancing from now rather than from the missed deadline
// means a stall longer than one period coalesces to a single catch-up
// firing instead of bursting through every period that elapsed during
// the stall.
func (w *TimerWatcher) rearm(now int64) {
	w.lock()
	period := w.periodMS
	if period > 0 {
		w.deadlineMS = now + period
	}
	w.unlock()
	if period == 0 {
		_ = w.Stop()
	}
}
