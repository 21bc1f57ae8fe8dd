package uevloop

import (
	"sync"
	"time"
)

// processEpoch is captured once, lazily, the first time the monotonic
// clock is read. Using time.Since against a fixed epoch (rather than
// time.Now().UnixNano()) keeps nowMicros() strictly monotonic even
// across wall-clock adjustments, matching spec.md §4.A's now_us()
// contract.
var processEpoch = sync.OnceValue(time.Now)

// nowMicros returns strictly monotonic microseconds since process
// start. It is the default clock a Context uses; override with
// WithClock for deterministic tests.
func nowMicros() uint64 {
	return uint64(time.Since(processEpoch()) / time.Microsecond)
}

// nowMillis converts a microsecond reading to whole milliseconds, the
// unit all deadline arithmetic in the dispatch loop uses (spec.md
// §4.A: "The loop uses now_us()/1000 everywhere").
func nowMillis(clock func() uint64) int64 {
	return int64(clock() / 1000)
}
