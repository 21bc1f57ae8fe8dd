package uevloop

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveOptionsDefaultsClockAndLogger(t *testing.T) {
	cfg := resolveOptions(nil)
	require.NotNil(t, cfg.clock)
	require.NotNil(t, cfg.logger)
	require.False(t, cfg.skipIOThread)
}

func TestResolveOptionsSkipsNilOptions(t *testing.T) {
	cfg := resolveOptions([]Option{nil, WithoutIOThread(), nil})
	require.True(t, cfg.skipIOThread)
}

func TestWithClockOverridesDefault(t *testing.T) {
	fc := &fakeClock{}
	fc.advance(1234)
	cfg := resolveOptions([]Option{WithClock(fc.now)})
	require.Equal(t, fc.now(), cfg.clock())
}

func TestWithClockNilIsIgnored(t *testing.T) {
	cfg := resolveOptions([]Option{WithClock(nil)})
	require.NotNil(t, cfg.clock)
}
