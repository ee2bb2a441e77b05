// x/ramp/linear.go
package ramp

import (
	"time"

	"lightcode-go/x/mathx"
)

// Step applies a new logical level in [0, top].
type Step func(level uint16)

// Tick sleeps for d and reports false when the ramp should stop early.
type Tick func(d time.Duration) bool

// StartLinear walks the level from cur to to across the given duration,
// spread over steps intermediate updates. Timing stays with the caller
// through tick, so cancellation needs no extra plumbing. Zero steps or a
// zero duration snap straight to the target; to is capped at top.
//
// set fires only when the level actually changes, plus once at the end to
// land exactly on the target.
func StartLinear(cur, to, top uint16, durationMs uint32, steps uint16, tick Tick, set Step) {
	if steps == 0 || durationMs == 0 {
		set(mathx.Min(to, top))
		return
	}

	stepDur := time.Duration(mathx.Max(durationMs/uint32(steps), 1)) * time.Millisecond
	delta := int32(to) - int32(cur)
	prev := int32(cur)
	for i := int32(1); i < int32(steps); i++ {
		if !tick(stepDur) {
			return
		}
		lvl := mathx.Clamp(int32(cur)+delta*i/int32(steps), 0, int32(top))
		if lvl != prev {
			set(uint16(lvl))
			prev = lvl
		}
	}
	set(mathx.Min(to, top))
}
