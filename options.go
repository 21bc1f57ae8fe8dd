// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package uevloop

import "github.com/joeycumines/logiface"

// contextOptions holds configuration resolved at Context construction.
type contextOptions struct {
	logger       *logiface.Logger[logiface.Event]
	clock        func() uint64
	skipIOThread bool
}

// Option configures a Context at construction time.
type Option interface {
	applyContext(*contextOptions)
}

type optionFunc func(*contextOptions)

func (f optionFunc) applyContext(o *contextOptions) { f(o) }

// WithLogger attaches a structured logger to a Context. The zero value
// (nil) leaves the default logger in place, which writes JSON to stderr
// at warning level and above. See NewJSONLogger for a ready-made
// logiface/stumpy logger.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return optionFunc(func(o *contextOptions) {
		o.logger = logger
	})
}

// WithClock overrides the monotonic-microsecond clock a Context uses
// for deadline arithmetic. Intended for deterministic tests; production
// callers should leave this unset to use the real monotonic clock.
func WithClock(now func() uint64) Option {
	return optionFunc(func(o *contextOptions) {
		if now != nil {
			o.clock = now
		}
	})
}

// WithoutIOThread prevents a Context from starting the process-wide I/O
// selector implicitly. Timers and events still work; starting an
// IOWatcher will fail until IOThreadInit is called explicitly. Intended
// for tests that don't need a loopback socket.
func WithoutIOThread() Option {
	return optionFunc(func(o *contextOptions) {
		o.skipIOThread = true
	})
}

func resolveOptions(opts []Option) *contextOptions {
	cfg := &contextOptions{
		clock: nowMicros,
	}
	for _, opt := range opts {
		if opt == nil {
			continue // skip nil options gracefully
		}
		opt.applyContext(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = defaultLogger
	}
	return cfg
}
