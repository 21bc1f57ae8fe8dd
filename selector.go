package uevloop

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/joeycumines/go-catrate"
)

// selector is the single process-wide I/O multiplexer described in
// spec.md §4.C: one selector serves every Context's IOWatchers, using
// select(2) over a UDP loopback "wake socket" the reference
// implementation (original_source/src/iothread.c) uses to interrupt a
// blocked select(2) whenever the watcher set changes.
type selector struct {
	startMu sync.Mutex // guards doStart's start-once sequencing only

	// watchers is the iolist: guarded by globalCS, the same critical
	// section the context registry uses, per spec.md §3 invariant 6
	// ("the I/O selector's private list ... is mutated only under the
	// global critical section").
	watchers map[int]*IOWatcher
	started  atomic.Bool
	wakeFD   int
	wakePort int

	errLimiter *catrate.Limiter
	wakeCount  atomic.Uint64
	errCount   atomic.Uint64
}

var globalSelector = &selector{
	watchers:   make(map[int]*IOWatcher),
	errLimiter: catrate.NewLimiter(map[time.Duration]int{time.Second: 1}),
}

// IOThreadInit starts the process-wide selector goroutine if it isn't
// already running. Contexts created without WithoutIOThread call this
// automatically the first time an IOWatcher is started; call it
// explicitly to control startup ordering, or when using
// WithoutIOThread.
func IOThreadInit() error {
	if globalSelector.started.Load() {
		return nil
	}
	return globalSelector.doStart()
}

func (s *selector) doStart() error {
	s.startMu.Lock()
	defer s.startMu.Unlock()
	if s.started.Load() {
		return nil
	}
	if err := s.openWake(); err != nil {
		return resourceExhausted("IOThreadInit", err)
	}
	s.started.Store(true)
	go s.runLoop()
	return nil
}

func selectorFor(ctx *Context) (*selector, error) {
	if ctx.opts.skipIOThread {
		if !globalSelector.started.Load() {
			return nil, invalidArgument("IOWatcher.Start", "selector not started: call IOThreadInit or drop WithoutIOThread")
		}
		return globalSelector, nil
	}
	if err := IOThreadInit(); err != nil {
		return nil, err
	}
	return globalSelector, nil
}

func (s *selector) add(w *IOWatcher) error {
	globalCS.Lock()
	s.watchers[w.fd] = w
	globalCS.Unlock()
	s.wake()
	return nil
}

func (s *selector) remove(w *IOWatcher) {
	globalCS.Lock()
	delete(s.watchers, w.fd)
	globalCS.Unlock()
	s.wake()
}

func (s *selector) wake() {
	if s.started.Load() {
		s.wakeCount.Add(1)
		s.signalWake()
	}
}

func logSelectorError(op string, err error) {
	globalSelector.errCount.Add(1)
	defaultLogger.Err().Str("op", op).Err(err).Log("selector error")
}
