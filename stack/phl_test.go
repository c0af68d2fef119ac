package stack_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmja/linkiq/stack"
	"github.com/rmja/linkiq/turbo"
)

func TestPhlRoundTrip(t *testing.T) {
	payload := make([]byte, 49)
	for i := range payload {
		payload[i] = byte(i * 7)
	}

	var phl stack.Phl
	frame, err := phl.Write(turbo.OneHalf, payload)
	require.NoError(t, err)
	assert.Equal(t, stack.FrameLength(turbo.OneHalf, len(payload)), len(frame))

	decoded, rate, err := phl.Read(frame)
	require.NoError(t, err)
	assert.Equal(t, turbo.OneHalf, rate)
	assert.Equal(t, payload, decoded)
}

func TestPhlRoundTripOneThird(t *testing.T) {
	payload := make([]byte, 60)
	for i := range payload {
		payload[i] = byte(255 - i)
	}

	var phl stack.Phl
	frame, err := phl.Write(turbo.OneThird, payload)
	require.NoError(t, err)

	decoded, rate, err := phl.Read(frame)
	require.NoError(t, err)
	assert.Equal(t, turbo.OneThird, rate)
	assert.Equal(t, payload, decoded)
}

func TestPhlWriteRejectsOutOfRangePayload(t *testing.T) {
	var phl stack.Phl
	_, err := phl.Write(turbo.OneHalf, make([]byte, 1000))
	assert.Error(t, err)
}

func TestPhlReadRejectsShortFrame(t *testing.T) {
	var phl stack.Phl
	_, _, err := phl.Read(make([]byte, 4))
	assert.ErrorIs(t, err, stack.ErrShortFrame)
}
