package uevloop

import "sync/atomic"

// EventMask describes which conditions a callback fired for, mirroring
// the reference implementation's UEV_READ/UEV_WRITE/UEV_ERROR flags.
type EventMask uint8

const (
	ErrorEvent EventMask = 1 << iota
	ReadEvent
	WriteEvent
)

// Callback is invoked by the dispatch loop when a watcher fires. w is
// the watcher that fired (safe to Stop, Set, or re-Start from within
// the callback); arg is the value passed to the watcher's Init call.
type Callback func(w Watcher, arg any, events EventMask)

// Watcher is implemented by IOWatcher, TimerWatcher, and EventWatcher.
// The unexported method seals the interface to this package's three
// concrete kinds, matching spec.md's closed watcher-variant set.
type Watcher interface {
	// Active reports whether the watcher is currently registered with
	// a Context and eligible to fire.
	Active() bool

	base() *watcherBase
}

type watcherKind uint8

const (
	kindIO watcherKind = iota
	kindTimer
	kindTimerThreadsafe
	kindEvent
)

// watcherBase is embedded by every concrete watcher type. It carries
// the fields common to all variants (spec.md §3's Watcher base
// fields) plus the intrusive doubly-linked list pointers the registry
// uses instead of a slice or map, so Stop is O(1) and allocation-free
// after Init.
type watcherBase struct {
	ctx  *Context
	self Watcher // back-pointer to the embedding concrete type
	kind watcherKind
	cb   Callback
	arg  any

	active atomic.Bool

	next, prev *watcherBase
}

func (b *watcherBase) Active() bool       { return b.active.Load() }
func (b *watcherBase) base() *watcherBase { return b }

func (b *watcherBase) initBase(ctx *Context, self Watcher, kind watcherKind, cb Callback, arg any) {
	b.ctx = ctx
	b.self = self
	b.kind = kind
	b.cb = cb
	b.arg = arg
}
