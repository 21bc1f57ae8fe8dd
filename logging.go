package uevloop

import (
	"io"
	"os"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// defaultLogger is the logger a Context uses when none is supplied
// via WithLogger, and the logger the process-wide selector uses for
// its own diagnostics (the selector predates and outlives any single
// Context, so it can't own a per-Context logger). It writes
// structured JSON to stderr at warning level and above, keeping
// normal dispatch silent.
var defaultLogger = NewJSONLogger(os.Stderr, logiface.LevelWarning)

// NewJSONLogger builds a logiface logger backed by stumpy, the
// zero-dependency JSON event encoder. Pass it to WithLogger to trace
// watcher lifecycle events and selector diagnostics; the returned
// logger is type-erased to logiface.Event so it fits Context's
// logger field regardless of which concrete Event type produced it.
func NewJSONLogger(w io.Writer, level logiface.Level) *logiface.Logger[logiface.Event] {
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(w)),
		stumpy.L.WithLevel(level),
	).Logger()
}

func (c *Context) logDebug() *logiface.Builder[logiface.Event] {
	return c.opts.logger.Debug()
}

func (c *Context) logWarn() *logiface.Builder[logiface.Event] {
	return c.opts.logger.Warning()
}
