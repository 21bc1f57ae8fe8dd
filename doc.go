// Package uevloop provides a micro event loop core for small, cooperative
// runtimes: one waitable bit-group per loop [Context] multiplexes
// descriptor I/O, millisecond timers, and software-posted events into a
// single dispatch loop.
//
// # Architecture
//
// A [Context] owns a bit-group ([BitIO], [BitEvent], [BitTimer]) and a
// registry of watchers. Three watcher kinds exist: [IOWatcher] (descriptor
// readiness), [TimerWatcher] (one-shot or periodic, optionally
// thread-safe), and [EventWatcher] (software-posted, ISR-safe). A single
// process-wide selector goroutine, started by [IOThreadInit], runs
// select(2) over every active I/O watcher's descriptor and posts
// readiness into the owning context's bit-group; [Context.Run] is the
// only other suspension point.
//
// # Platform Support
//
// The selector uses a UDP loopback socket and select(2), matching the
// wake protocol of the reference RTOS implementation this core is
// modeled on: registry mutations wake the selector by sending one byte
// to its own loopback address, forcing select(2) to return and rebuild
// its fd_sets. This is implemented for Linux and Darwin
// (selector_unix.go, fdset_linux.go, fdset_darwin.go); on Windows,
// [IOThreadInit] and [IOWatcher.Start] report [ErrResourceExhausted] —
// timers and events are unaffected.
//
// # Thread Safety
//
// [EventWatcher.Post], [TimerWatcher.Set] on a thread-safe timer, and
// the selector's readiness delivery are all safe to call from any
// goroutine, including one standing in for an ISR in tests. A single
// package-level critical section guards registry and selector-list
// mutation, mirroring the single global critical section of the
// reference implementation.
//
// # Usage
//
//	ctx, err := uevloop.NewContext()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ctx.Exit()
//
//	var t uevloop.TimerWatcher
//	t.Init(ctx, func(w uevloop.Watcher, arg any, events uevloop.EventMask) {
//	    fmt.Println("tick")
//	}, nil, 100*time.Millisecond, 100*time.Millisecond)
//
//	if err := ctx.Run(0); err != nil {
//	    log.Fatal(err)
//	}
//
// # Error Types
//
// Operations report failure via [ErrInvalidArgument], [ErrOutOfRange],
// and [ErrResourceExhausted], each matchable with [errors.Is].
package uevloop
