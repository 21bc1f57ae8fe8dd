package uevloop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestContextRunOnceReturnsAfterOneIteration(t *testing.T) {
	fc := &fakeClock{}
	ctx := newTestContext(t, fc)

	require.NoError(t, ctx.Run(RunOnce|RunNoWait))
	require.Equal(t, uint64(1), ctx.Metrics().Iterations)
}

func TestContextRunRejectsConcurrentRun(t *testing.T) {
	fc := &fakeClock{}
	ctx := newTestContext(t, fc)

	started := make(chan struct{})
	stop := make(chan struct{})
	var tw TimerWatcher
	require.NoError(t, tw.Init(ctx, func(Watcher, any, EventMask) {}, nil, time.Hour, 0))
	require.NoError(t, tw.Start())

	go func() {
		close(started)
		_ = ctx.Run(0)
		close(stop)
	}()
	<-started
	time.Sleep(10 * time.Millisecond)

	require.ErrorIs(t, ctx.Run(RunOnce), ErrInvalidArgument)

	require.NoError(t, ctx.Exit())
	<-stop
}

func TestContextExitStopsRun(t *testing.T) {
	fc := &fakeClock{}
	ctx := newTestContext(t, fc)

	done := make(chan error, 1)
	go func() { done <- ctx.Run(0) }()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, ctx.Exit())

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Exit did not stop Run")
	}
}

func TestContextExitEmptiesRegistryAndClearsRunning(t *testing.T) {
	fc := &fakeClock{}
	ctx := newTestContext(t, fc)

	var tw TimerWatcher
	require.NoError(t, tw.Init(ctx, func(Watcher, any, EventMask) {}, nil, time.Hour, 0))

	var tsw TimerWatcher
	require.NoError(t, tsw.InitThreadsafe(ctx, func(Watcher, any, EventMask) {}, nil, time.Hour, 0))

	var ew EventWatcher
	require.NoError(t, ew.Init(ctx, func(Watcher, any, EventMask) {}, nil))

	done := make(chan error, 1)
	go func() { done <- ctx.Run(0) }()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, ctx.Exit())

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Exit did not stop Run")
	}

	require.Equal(t, 0, ctx.reg.count, "exit must leave the registry empty")
	require.False(t, ctx.run.isRunning())
	require.False(t, tw.Active())
	require.False(t, tsw.Active(), "exit force-unlinks threadsafe timers that Stop alone would leave linked")
	require.False(t, ew.Active())
}

func TestTimerStartedFromCallbackArmsImmediately(t *testing.T) {
	fc := &fakeClock{}
	ctx := newTestContext(t, fc)

	var second TimerWatcher
	var secondFired int
	var first TimerWatcher
	require.NoError(t, first.Init(ctx, func(Watcher, any, EventMask) {
		require.NoError(t, second.Init(ctx, func(Watcher, any, EventMask) {
			secondFired++
		}, nil, 10*time.Millisecond, 0))
	}, nil, 5*time.Millisecond, 0))
	require.NoError(t, first.Start())

	fc.advance(5 * time.Millisecond)
	require.NoError(t, ctx.Run(pollFlags))
	require.True(t, second.Active())

	fc.advance(10 * time.Millisecond)
	require.NoError(t, ctx.Run(pollFlags))
	require.Equal(t, 1, secondFired, "a timer started from within a running callback is armed immediately, not on the next Run entry")
}

func TestContextMetricsCountsCallbacksByKind(t *testing.T) {
	fc := &fakeClock{}
	ctx := newTestContext(t, fc)

	var tw TimerWatcher
	require.NoError(t, tw.Init(ctx, func(Watcher, any, EventMask) {}, nil, 10*time.Millisecond, 0))
	require.NoError(t, tw.Start())

	var ew EventWatcher
	require.NoError(t, ew.Init(ctx, func(Watcher, any, EventMask) {}, nil))
	require.NoError(t, ew.Start())
	require.NoError(t, ew.Post())

	fc.advance(10 * time.Millisecond)
	require.NoError(t, ctx.Run(RunOnce|RunNoWait))

	m := ctx.Metrics()
	require.Equal(t, uint64(1), m.TimerCallbacks)
	require.Equal(t, uint64(1), m.EventCallbacks)
	require.Equal(t, uint64(0), m.IOCallbacks)
}
