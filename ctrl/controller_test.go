package ctrl_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmja/linkiq/ctrl"
	"github.com/rmja/linkiq/stack"
	"github.com/rmja/linkiq/turbo"
	"github.com/rmja/linkiq/wmbus"
)

type fakeToken struct {
	timestamp time.Time
}

func (t fakeToken) Timestamp() time.Time { return t.timestamp }

// fakeTransceiver only ever has a frame waiting on stack.ChannelC, letting
// the test observe the controller rotate through A, B before finding it. It
// also records every call it receives, in order, so tests can assert on
// call sequencing.
type fakeTransceiver struct {
	channel stack.Channel
	frame   []byte

	written []byte
	calls   []string

	pos       int
	blockRead bool // when set, Read suspends until ctx is done
}

func (f *fakeTransceiver) Init(ctx context.Context) error { return nil }

func (f *fakeTransceiver) SetChannel(ctx context.Context, channel stack.Channel) error {
	f.calls = append(f.calls, "set_channel")
	f.channel = channel
	return nil
}

func (f *fakeTransceiver) Write(ctx context.Context, data []byte) error {
	f.calls = append(f.calls, "write")
	f.written = append(f.written, data...)
	return nil
}

func (f *fakeTransceiver) Transmit(ctx context.Context) error {
	f.calls = append(f.calls, "transmit")
	return nil
}

func (f *fakeTransceiver) Listen(ctx context.Context) error {
	f.calls = append(f.calls, "listen")
	return nil
}

func (f *fakeTransceiver) Idle(ctx context.Context) error {
	f.calls = append(f.calls, "idle")
	return nil
}

func (f *fakeTransceiver) Rssi(ctx context.Context) (int, error) {
	if f.channel == stack.ChannelC {
		return -70, nil
	}
	return -112, nil
}

func (f *fakeTransceiver) Receive(ctx context.Context, minFrameLength int) (ctrl.RxToken, error) {
	if f.channel != stack.ChannelC {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	f.pos = 0
	return fakeToken{timestamp: time.Now()}, nil
}

func (f *fakeTransceiver) Read(ctx context.Context, token ctrl.RxToken, buf []byte) (int, error) {
	if f.blockRead {
		<-ctx.Done()
		return 0, ctx.Err()
	}
	n := copy(buf, f.frame[f.pos:])
	f.pos += n
	return n, nil
}

func (f *fakeTransceiver) Accept(ctx context.Context, token ctrl.RxToken, frameLength int) error {
	return nil
}

func buildFrame(t *testing.T) []byte {
	t.Helper()

	apl := stack.Apl{}
	data, err := apl.Write([]byte{0xAA, 0xBB})
	require.NoError(t, err)

	mbal := stack.Mbal{
		Address: wmbus.Address{ManufacturerCode: 0x1057, SerialNumber: 42, DeviceType: 0x70},
		Command: stack.MbalCommand{FunctionCode: stack.SendUnsolicitedApplicationData},
		Data:    data,
	}
	mbalBytes, err := mbal.Bytes()
	require.NoError(t, err)

	var phl stack.Phl
	frame, err := phl.Write(turbo.OneHalf, mbalBytes)
	require.NoError(t, err)
	return frame
}

func TestControllerDecodesFrameOnThirdChannel(t *testing.T) {
	frame := buildFrame(t)
	transceiver := &fakeTransceiver{frame: frame}
	controller := ctrl.NewController(transceiver, turbo.OneHalf)

	out := make(chan stack.Packet, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- controller.Run(ctx, out) }()

	select {
	case pkt := <-out:
		require.Equal(t, uint16(0x1057), pkt.Address.ManufacturerCode)
		require.Equal(t, []byte{0xAA, 0xBB}, pkt.Data)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a decoded packet")
	}

	cancel()
	<-errCh
}

// TestControllerTransmitSequencing is spec scenario 5: write, write,
// set_channel(C), transmit must be emitted in exactly that order, and the
// controller must not be left listening afterwards.
func TestControllerTransmitSequencing(t *testing.T) {
	transceiver := &fakeTransceiver{}
	controller := ctrl.NewController(transceiver, turbo.OneHalf)
	ctx := context.Background()

	require.NoError(t, controller.Write(ctx, []byte{0x01, 0x23}))
	require.NoError(t, controller.Write(ctx, []byte{0x45, 0x67}))
	require.NoError(t, controller.Transmit(ctx, stack.ChannelC))

	assert.Equal(t, []string{"write", "write", "set_channel", "transmit"}, transceiver.calls)
	assert.Equal(t, []byte{0x01, 0x23, 0x45, 0x67}, transceiver.written)
	assert.False(t, controller.IsListening())
}

// TestControllerIdleSemantics is spec scenario 6: a receive that is
// abandoned mid-flight (here, by a canceled context) must leave the
// controller listening; only an explicit Idle clears it.
func TestControllerIdleSemantics(t *testing.T) {
	transceiver := &fakeTransceiver{channel: stack.ChannelC, blockRead: true}
	controller := ctrl.NewController(transceiver, turbo.OneHalf)

	ctx, cancel := context.WithCancel(context.Background())

	// The controller's own SetChannel calls overwrite this field; Receive
	// succeeds once it has rotated past A and B to C, and Read then blocks
	// until cancel.
	transceiver.channel = stack.ChannelC
	done := make(chan struct{})
	go func() {
		defer close(done)
		out := make(chan stack.Packet, 1)
		_ = controller.Run(ctx, out)
	}()

	require.Eventually(t, controller.IsListening, time.Second, time.Millisecond, "controller should arm the receiver")

	cancel()
	<-done

	assert.True(t, controller.IsListening(), "a dropped receive must leave listening=true")

	require.NoError(t, controller.Idle(context.Background()))
	assert.False(t, controller.IsListening())
}
