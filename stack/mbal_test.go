package stack_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmja/linkiq/stack"
	"github.com/rmja/linkiq/wmbus"
)

func TestMbalRoundTrip(t *testing.T) {
	frame := stack.Mbal{
		Control: stack.MbalControl{IsPrioritized: true},
		Address: wmbus.Address{
			ManufacturerCode: 0x1057,
			SerialNumber:     87654321,
			Version:          0x02,
			DeviceType:       0x70,
		},
		Command: stack.MbalCommand{FunctionCode: stack.SendInstallationRequest},
		Data:    []byte{0x01, 0x02, 0x03, 0x04},
	}

	b, err := frame.Bytes()
	require.NoError(t, err)

	got, err := stack.ParseMbal(b)
	require.NoError(t, err)
	assert.Equal(t, frame.Control, got.Control)
	assert.Equal(t, frame.Address, got.Address)
	assert.Equal(t, frame.Command, got.Command)
	assert.Equal(t, frame.Data, got.Data)
}

// TestMbalExample41Header checks the MBAL header against the literal bytes
// of the spec's Example 4.1 reference telegram.
func TestMbalExample41Header(t *testing.T) {
	frame := stack.Mbal{
		Control: stack.MbalControl{IsPrioritized: true},
		Address: wmbus.Address{
			ManufacturerCode: 0x2c37,
			SerialNumber:     12341234,
			Version:          27,
			DeviceType:       0x16,
		},
		Command: stack.MbalCommand{FunctionCode: stack.SendInstallationRequest},
	}

	b, err := frame.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0x01, 0x37, 0x2C, 0x34, 0x12, 0x34, 0x12, 0x1B, 0x16, 0x60, 0x16, 0x61,
	}, b)

	got, err := stack.ParseMbal(b)
	require.NoError(t, err)
	assert.True(t, got.Control.IsPrioritized)
	assert.Equal(t, stack.SendInstallationRequest, got.Command.FunctionCode)
}

func TestMbalParseRejectsBadCRC(t *testing.T) {
	frame := stack.Mbal{
		Control: stack.MbalControl{},
		Address: wmbus.Address{ManufacturerCode: 1, SerialNumber: 1},
	}
	b, err := frame.Bytes()
	require.NoError(t, err)
	b[len(b)-1] ^= 0xFF

	_, err = stack.ParseMbal(b)
	assert.ErrorIs(t, err, stack.ErrCRC)
}

func TestMbalParseRejectsShortFrame(t *testing.T) {
	_, err := stack.ParseMbal(make([]byte, 5))
	assert.ErrorIs(t, err, stack.ErrShortFrame)
}

func TestMbalBytesRejectsTooMuchData(t *testing.T) {
	frame := stack.Mbal{Data: make([]byte, stack.MbusDataMax+1)}
	_, err := frame.Bytes()
	assert.ErrorIs(t, err, stack.ErrTooLarge)
}
