package uevloop

import "sync/atomic"

// Metrics tracks low-overhead, lock-free counters for a Context's
// dispatch loop. Every field is safe to read concurrently with the
// loop via Context.Metrics, which returns a point-in-time snapshot.
type Metrics struct {
	// Iterations counts completed dispatch loop passes.
	Iterations uint64
	// IOCallbacks, TimerCallbacks, EventCallbacks count fired
	// callbacks by watcher kind.
	IOCallbacks    uint64
	TimerCallbacks uint64
	EventCallbacks uint64
	// SelectorWakeups counts selector wake sends across the whole
	// process (registry mutations and the re-admission sent after each
	// I/O callback, not readiness events).
	SelectorWakeups uint64
	// SelectorErrors counts select(2) failures the selector observed.
	SelectorErrors uint64
}

type metricsCounters struct {
	iterations     atomic.Uint64
	ioCallbacks    atomic.Uint64
	timerCallbacks atomic.Uint64
	eventCallbacks atomic.Uint64
}

func (m *metricsCounters) snapshot() Metrics {
	return Metrics{
		Iterations:      m.iterations.Load(),
		IOCallbacks:     m.ioCallbacks.Load(),
		TimerCallbacks:  m.timerCallbacks.Load(),
		EventCallbacks:  m.eventCallbacks.Load(),
		SelectorWakeups: globalSelector.wakeCount.Load(),
		SelectorErrors:  globalSelector.errCount.Load(),
	}
}

// Metrics returns a snapshot of c's dispatch counters.
func (c *Context) Metrics() Metrics { return c.metrics.snapshot() }
