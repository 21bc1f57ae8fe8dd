package uevloop

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArgumentErrorWrapsSentinel(t *testing.T) {
	err := invalidArgument("Op", "field")
	require.ErrorIs(t, err, ErrInvalidArgument)
	require.Contains(t, err.Error(), "Op")
	require.Contains(t, err.Error(), "field")
}

func TestRangeErrorWrapsSentinel(t *testing.T) {
	err := outOfRange("Op", "timeout", -5)
	require.ErrorIs(t, err, ErrOutOfRange)
	require.Contains(t, err.Error(), "-5")
}

func TestResourceErrorWrapsSentinelAndCause(t *testing.T) {
	cause := errors.New("bind failed")
	err := resourceExhausted("IOThreadInit", cause)
	require.ErrorIs(t, err, ErrResourceExhausted)
	require.ErrorIs(t, err, cause)
}
