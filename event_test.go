package uevloop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEventWatcherPostFiresOnNextIteration(t *testing.T) {
	fc := &fakeClock{}
	ctx := newTestContext(t, fc)

	var fired int
	var ew EventWatcher
	require.NoError(t, ew.Init(ctx, func(w Watcher, arg any, events EventMask) {
		fired++
	}, nil))
	require.NoError(t, ew.Start())

	require.NoError(t, ew.Post())
	require.NoError(t, ctx.Run(RunOnce))
	require.Equal(t, 1, fired)
}

func TestEventWatcherPostCoalesces(t *testing.T) {
	fc := &fakeClock{}
	ctx := newTestContext(t, fc)

	var fired int
	var ew EventWatcher
	require.NoError(t, ew.Init(ctx, func(w Watcher, arg any, events EventMask) {
		fired++
	}, nil))
	require.NoError(t, ew.Start())

	require.NoError(t, ew.Post())
	require.NoError(t, ew.Post())
	require.NoError(t, ew.Post())

	require.NoError(t, ctx.Run(RunOnce))
	require.Equal(t, 1, fired, "repeated posts before dispatch coalesce into a single firing")
}

func TestEventWatcherPostSucceedsWithoutExplicitStart(t *testing.T) {
	fc := &fakeClock{}
	ctx := newTestContext(t, fc)

	var fired int
	var ew EventWatcher
	require.NoError(t, ew.Init(ctx, func(Watcher, any, EventMask) {
		fired++
	}, nil))

	require.NoError(t, ew.Post())
	require.NoError(t, ctx.Run(RunOnce))
	require.Equal(t, 1, fired, "event_init registers and starts the watcher; there is no separate event_start op")
}

func TestEventWatcherPostFromAnotherGoroutineWakesRun(t *testing.T) {
	fc := &fakeClock{}
	ctx := newTestContext(t, fc)

	fired := make(chan struct{})
	var ew EventWatcher
	require.NoError(t, ew.Init(ctx, func(w Watcher, arg any, events EventMask) {
		close(fired)
		_ = ctx.Exit()
	}, nil))
	require.NoError(t, ew.Start())

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = ew.Post()
	}()

	done := make(chan error, 1)
	go func() { done <- ctx.Run(0) }()

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("event never fired")
	}
	require.NoError(t, <-done)
}
