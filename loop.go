package uevloop

import "time"

// RunFlags modifies a single call to Context.Run, mirroring the
// reference implementation's UEV_ONCE / UEV_NONBLOCK flags.
type RunFlags uint8

const (
	// RunOnce returns after a single dispatch iteration instead of
	// looping until Exit is called.
	RunOnce RunFlags = 1 << iota
	// RunNoWait polls the bit-group instead of blocking: an iteration
	// with nothing ready returns immediately rather than waiting for
	// the next timer deadline or I/O readiness.
	RunNoWait
)

// Run drives c's dispatch loop: wait for the bit-group, fire ready
// watchers, repeat, per spec.md §4.D. It returns when Exit is called,
// when RunOnce completes one iteration, or immediately with an error
// if c is already running on another goroutine.
func (c *Context) Run(flags RunFlags) error {
	if !c.run.tryStart() {
		return invalidArgument("Run", "context is already running")
	}
	defer c.run.stop()

	c.stopRequested.Store(false)
	c.armTimers()
	c.logDebug().Str("flags", flagsString(flags)).Log("run started")

	for {
		timeout := c.nextTimeout(flags)

		c.bg.waitBits(allBits, true, timeout)
		c.metrics.iterations.Add(1)

		c.dispatch()

		if c.stopRequested.Load() {
			c.teardown()
			c.logDebug().Log("run stopped by exit")
			return nil
		}
		if flags&RunOnce != 0 {
			return nil
		}
	}
}

func flagsString(flags RunFlags) string {
	switch flags & (RunOnce | RunNoWait) {
	case RunOnce | RunNoWait:
		return "once|nowait"
	case RunOnce:
		return "once"
	case RunNoWait:
		return "nowait"
	default:
		return "blocking"
	}
}

// armTimers arms every active timer still at its dormant deadline: a
// timer created (or Set) while the loop was already running keeps
// whatever deadline it already has, but one created before the loop
// ever started has deadline zero (spec.md §3 invariant 4) until this
// runs. This is a narrower reading of §4.D Entry's "re-arms every
// timer in the registry" than a literal unconditional reset: resetting
// every active timer's deadline on every Run call would clobber a
// deadline an explicit Set (or an Init made while already running)
// just computed, and would make the poll-by-repeated-RunOnce idiom
// this module's tests rely on impossible to schedule precisely.
// Skipping already-armed timers still closes the invariant-4 gap and
// still guarantees a timer initialized before the loop starts fires
// relative to when the loop actually begins running, not the wall
// clock at Init time.
func (c *Context) armTimers() {
	now := nowMillis(c.opts.clock)
	c.reg.each(func(b *watcherBase) {
		if (b.kind != kindTimer && b.kind != kindTimerThreadsafe) || !b.active.Load() {
			return
		}
		tw := b.self.(*TimerWatcher)
		tw.lock()
		if tw.deadlineMS <= 0 {
			tw.deadlineMS = now + tw.timeoutMS
		}
		tw.unlock()
	})
}

// teardown implements context_exit's registry walk (spec.md §4.D
// Cancellation & shutdown): stop every watcher, force-unlinking the
// threadsafe timers stopWatcher deliberately leaves linked, then
// reset the bit-group. Called only from Run, once it observes
// stopRequested, since the walk must run on the loop's own goroutine.
func (c *Context) teardown() {
	for {
		globalCS.Lock()
		b := c.reg.head
		globalCS.Unlock()
		if b == nil {
			break
		}
		if b.kind == kindTimerThreadsafe {
			c.destroyTimer(b)
		} else {
			_ = stopWatcher(b.self)
		}
	}
	c.bg.clearBits(allBits)
}

// nextTimeout computes how long Run should block this iteration: the
// time until the nearest active timer deadline, Forever if no timer
// is armed, or zero under RunNoWait.
func (c *Context) nextTimeout(flags RunFlags) time.Duration {
	if flags&RunNoWait != 0 {
		return 0
	}

	nextDeadline := int64(-1)
	c.reg.each(func(b *watcherBase) {
		if b.kind != kindTimer && b.kind != kindTimerThreadsafe {
			return
		}
		tw := b.self.(*TimerWatcher)
		if !tw.Active() {
			return
		}
		// Open question (spec.md §9): only a strictly positive
		// deadline is considered. Treating 0 as a real deadline
		// would make a timer that hasn't been armed yet (or fires
		// exactly at the clock's zero tick) win every race against
		// a genuinely pending one, turning the wait into a busy
		// spin. A zero deadline is therefore skipped, not clamped.
		if d := tw.deadline(); d > 0 && (nextDeadline < 0 || d < nextDeadline) {
			nextDeadline = d
		}
	})

	if nextDeadline < 0 {
		return Forever
	}
	remainMS := nextDeadline - nowMillis(c.opts.clock)
	if remainMS < 0 {
		remainMS = 0
	}
	return time.Duration(remainMS) * time.Millisecond
}

// dispatch walks the registry once, in insertion-relative order,
// handling each active watcher by variant: I/O, event, or timer.
// Merging the three into a single switch-on-kind pass (rather than one
// sweep per variant) preserves registration order across variants
// within an iteration, matching the reference uev_run's single
// _UEV_FOREACH; a watcher's own readiness state (pending bits, the
// posted flag, the deadline) still gates whether its callback actually
// fires, so nothing here depends on which bit-group line woke Run.
func (c *Context) dispatch() {
	nowMS := nowMillis(c.opts.clock)
	c.reg.each(func(b *watcherBase) {
		if !b.active.Load() {
			return
		}
		switch b.kind {
		case kindIO:
			io := b.self.(*IOWatcher)
			events := EventMask(io.pending.Load())
			if events == 0 {
				return
			}
			c.metrics.ioCallbacks.Add(1)
			b.cb(io, b.arg, events)
			// Clear only the delivered bits, and only now that the
			// callback has returned.
			for {
				old := io.pending.Load()
				if io.pending.CompareAndSwap(old, old&^uint32(events)) {
					break
				}
			}
			// Re-admit io to the next fd_set build: the selector
			// excludes a watcher with nonzero pending from its rebuild,
			// so clearing pending here without waking it could leave
			// it excluded until unrelated activity happens to wake the
			// selector on its own (spec.md §4.C, §4.D).
			globalSelector.wake()
		case kindEvent:
			ew := b.self.(*EventWatcher)
			if !ew.consume() {
				return
			}
			c.metrics.eventCallbacks.Add(1)
			b.cb(ew, b.arg, ReadEvent)
		case kindTimer, kindTimerThreadsafe:
			tw := b.self.(*TimerWatcher)
			d := tw.deadline()
			if d <= 0 || nowMS < d {
				return
			}
			c.metrics.timerCallbacks.Add(1)
			b.cb(tw, b.arg, ReadEvent)
			// The watcher may have been stopped from within its own
			// callback; rearm runs only while it is still active.
			if tw.Active() {
				tw.rearm(nowMS)
			}
		}
	})
}

// Exit requests that Run return after completing its current
// iteration. Safe to call from any goroutine, including from within a
// watcher callback running on the loop goroutine itself.
func (c *Context) Exit() error {
	c.stopRequested.Store(true)
	c.bg.setBits(allBits)
	return nil
}
