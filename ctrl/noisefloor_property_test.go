package ctrl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/rmja/linkiq/ctrl"
)

// noiseFloorSteadyStateSlack bounds how close NoiseFloor.Update's
// integer-truncated exponential moving average gets to a constant input it
// is driven towards indefinitely: one window-width short, see
// NoiseFloor.Update.
const noiseFloorSteadyStateSlack = 7

// TestNoiseFloorConvergesToConstantSignal checks that repeatedly feeding the
// same RSSI sample drives the tracked noise floor, starting from its initial
// value, to within noiseFloorSteadyStateSlack of it, whatever the constant
// value is.
func TestNoiseFloorConvergesToConstantSignal(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rssi := rapid.IntRange(-140, 0).Draw(t, "rssi")

		floor := ctrl.NewNoiseFloor()
		for i := 0; i < 200; i++ {
			floor.Update(rssi)
		}

		// The running average is integer-truncated each step, so it settles into
		// a steady state up to one window-width short of the target rather
		// than closing the gap exactly - see NoiseFloor.Update.
		assert.InDeltaf(t, rssi, floor.Value(), noiseFloorSteadyStateSlack, "noise floor should converge near the constant input %d, got %d", rssi, floor.Value())
	})
}

// TestNoiseFloorUpdateNeverOvershoots checks that a single Update always
// moves the estimate towards the new sample, never past it and never away
// from it.
func TestNoiseFloorUpdateNeverOvershoots(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		start := rapid.IntRange(-140, 0).Draw(t, "start")
		rssi := rapid.IntRange(-140, 0).Draw(t, "rssi")

		floor := ctrl.NewNoiseFloor()
		for i := 0; i < 200; i++ {
			floor.Update(start)
		}
		assert.InDelta(t, start, floor.Value(), noiseFloorSteadyStateSlack)

		before := floor.Value()
		floor.Update(rssi)
		after := floor.Value()

		if rssi >= before {
			assert.GreaterOrEqual(t, after, before)
			assert.LessOrEqual(t, after, rssi)
		} else {
			assert.LessOrEqual(t, after, before)
			assert.GreaterOrEqual(t, after, rssi)
		}
	})
}
