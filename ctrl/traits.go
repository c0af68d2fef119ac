package ctrl

import (
	"context"
	"time"

	"github.com/rmja/linkiq/stack"
)

// RxToken represents one in-progress receive: Timestamp reports the
// instant the transceiver detected the frame's preamble (the start-of-frame
// instant), which is captured once, the first time Receive returns the
// token, and does not change across subsequent Read/Accept calls on it.
type RxToken interface {
	Timestamp() time.Time
}

// Transceiver is the hardware abstraction the Controller drives. It
// mirrors a half-duplex sub-GHz radio operated through a cooperative,
// suspend-at-every-IO protocol: one channel is programmed at a time, and
// every method may block (suspend) until its radio operation completes or
// ctx is done.
//
// write/transmit and listen/receive/read/accept/idle form two mutually
// exclusive paths: write+transmit is illegal while the receiver is
// listening, and the reverse.
type Transceiver interface {
	// Init returns the radio to a known idle state.
	Init(ctx context.Context) error
	// SetChannel programs the channel the next Listen or Transmit will use.
	SetChannel(ctx context.Context, channel stack.Channel) error
	// Write buffers data to be sent by the next Transmit. Successive Write
	// calls append; Transmit sends everything buffered since the last
	// Transmit.
	Write(ctx context.Context, data []byte) error
	// Transmit sends everything buffered by Write on the currently
	// programmed channel, blocking until it is on air, then returns the
	// radio to idle.
	Transmit(ctx context.Context) error
	// Listen arms the radio to receive on the currently programmed
	// channel.
	Listen(ctx context.Context) error
	// Rssi samples the instantaneous received signal strength, in dBm, on
	// the currently programmed channel.
	Rssi(ctx context.Context) (int, error)
	// Receive suspends until either minFrameLength bytes have been
	// captured or a preamble is detected, whichever the implementation
	// can report first, and returns a token identifying that in-progress
	// receive.
	Receive(ctx context.Context, minFrameLength int) (RxToken, error)
	// Read copies up to len(buf) newly captured bytes for token into buf,
	// suspending until at least one byte is available, and reports how
	// many bytes were copied.
	Read(ctx context.Context, token RxToken, buf []byte) (int, error)
	// Accept notifies the radio of token's now-known total frame length,
	// once the caller has decoded enough of the header to compute it via
	// the frame-length oracle.
	Accept(ctx context.Context, token RxToken, frameLength int) error
	// Idle disarms the radio, stopping any in-progress receive and
	// leaving the currently programmed channel untouched.
	Idle(ctx context.Context) error
}
