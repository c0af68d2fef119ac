// Package ctrl implements the LinkIQ receive controller: the component
// that cycles a radio transceiver across the four wM-Bus channels, tracks
// each channel's noise floor, and hands decoded packets to its caller.
package ctrl

// initialNoiseFloor is the starting estimate, in dBm, before any RSSI
// samples have been observed.
const initialNoiseFloor = -110

// noiseFloorWindow is the exponential moving average's effective window:
// each new sample is weighted 1/noiseFloorWindow.
const noiseFloorWindow = 8

// NoiseFloor tracks a channel's ambient RSSI level as a running
// exponential moving average, so that carrier sense can tell a real
// transmission apart from background noise.
type NoiseFloor struct {
	value int
}

// NewNoiseFloor returns a NoiseFloor seeded at initialNoiseFloor.
func NewNoiseFloor() *NoiseFloor {
	return &NoiseFloor{value: initialNoiseFloor}
}

// Update folds a new RSSI sample, in dBm, into the running average.
func (n *NoiseFloor) Update(rssi int) {
	n.value += (rssi - n.value) / noiseFloorWindow
}

// Value returns the current noise floor estimate, in dBm.
func (n *NoiseFloor) Value() int {
	return n.value
}
