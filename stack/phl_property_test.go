package stack_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/rmja/linkiq/codedheader"
	"github.com/rmja/linkiq/stack"
	"github.com/rmja/linkiq/turbo"
)

// TestPhlRoundTripsAnyPayload checks that Phl.Write followed by Phl.Read
// recovers the exact payload and code rate for every payload length and
// rate the physical layer claims to support, over a noiseless channel.
func TestPhlRoundTripsAnyPayload(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rate := rapid.SampledFrom([]turbo.CodeRate{turbo.OneHalf, turbo.OneThird}).Draw(t, "rate")
		length := rapid.IntRange(codedheader.MinDataLength, codedheader.MaxDataLength).Draw(t, "length")
		payload := rapid.SliceOfN(rapid.Byte(), length, length).Draw(t, "payload")

		var phl stack.Phl
		frame, err := phl.Write(rate, payload)
		require.NoError(t, err)
		assert.Equal(t, stack.FrameLength(rate, length), len(frame))

		decoded, gotRate, err := phl.Read(frame)
		require.NoError(t, err)
		assert.Equal(t, rate, gotRate)
		assert.Equal(t, payload, decoded)
	})
}

// TestFrameLengthFromHeaderAgreesWithWrite checks that the frame-length
// oracle, given only the coded header Phl.Write produced, always predicts
// the exact total frame length Write actually emitted.
func TestFrameLengthFromHeaderAgreesWithWrite(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rate := rapid.SampledFrom([]turbo.CodeRate{turbo.OneHalf, turbo.OneThird}).Draw(t, "rate")
		length := rapid.IntRange(codedheader.MinDataLength, codedheader.MaxDataLength).Draw(t, "length")
		payload := rapid.SliceOfN(rapid.Byte(), length, length).Draw(t, "payload")

		var phl stack.Phl
		frame, err := phl.Write(rate, payload)
		require.NoError(t, err)

		gotLength, gotRate, err := stack.FrameLengthFromHeader(frame[:stack.PhlHeaderSize])
		require.NoError(t, err)
		assert.Equal(t, len(frame), gotLength)
		assert.Equal(t, rate, gotRate)
	})
}
