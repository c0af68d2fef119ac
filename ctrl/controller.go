package ctrl

import (
	"context"
	"time"

	"github.com/rmja/linkiq/stack"
	"github.com/rmja/linkiq/turbo"
)

// ListenTimeout bounds how long the Controller waits on a single channel
// for a frame before rotating to the next one.
const ListenTimeout = 12 * time.Millisecond

// MinSNR is the minimum margin, in dBm, an RSSI sample must clear above a
// channel's tracked noise floor before the controller arms a receive.
const MinSNR = 4

// Controller cycles a Transceiver across stack.NumChannels channels,
// decoding whatever frames arrive and forwarding them to a caller-owned
// channel.
type Controller struct {
	transceiver Transceiver
	noiseFloors [stack.NumChannels]*NoiseFloor
	rate        turbo.CodeRate

	// currentChannel is the channel Receive will next be asked to use.
	// setNextChannel only ever mutates this field: the transceiver itself
	// is not reprogrammed until the following call to SetChannel, so a
	// channel change only takes effect on the controller's next pass.
	currentChannel stack.Channel

	// listening is true from the moment Listen is armed on the
	// transceiver until Idle is explicitly called. Dropping a Receive
	// call (e.g. via context cancellation) does NOT clear it: the radio
	// remains armed until the caller awaits Idle.
	listening bool
}

// NewController returns a Controller starting on ChannelA. rate is stored
// but not used for decoding: each received frame is decoded at the rate its
// own coded header classifies.
func NewController(transceiver Transceiver, rate turbo.CodeRate) *Controller {
	c := &Controller{transceiver: transceiver, rate: rate}
	for i := range c.noiseFloors {
		c.noiseFloors[i] = NewNoiseFloor()
	}
	return c
}

// CurrentChannel returns the channel the controller is about to listen on.
func (c *Controller) CurrentChannel() stack.Channel {
	return c.currentChannel
}

// IsListening reports whether the transceiver is currently armed to
// receive: true from Listen until Idle is explicitly awaited.
func (c *Controller) IsListening() bool {
	return c.listening
}

// NoiseFloor returns the tracked noise floor for channel.
func (c *Controller) NoiseFloor(channel stack.Channel) *NoiseFloor {
	return c.noiseFloors[channel.Index()]
}

func (c *Controller) setNextChannel() {
	c.currentChannel = stack.Channel((c.currentChannel.Index() + 1) % stack.NumChannels)
}

// Write buffers data at the transceiver for the next Transmit. Write and
// Transmit are illegal while the controller is listening.
func (c *Controller) Write(ctx context.Context, data []byte) error {
	return c.transceiver.Write(ctx, data)
}

// Transmit switches the transceiver to channel and sends everything
// buffered by prior Write calls.
func (c *Controller) Transmit(ctx context.Context, channel stack.Channel) error {
	if err := c.transceiver.SetChannel(ctx, channel); err != nil {
		return err
	}
	return c.transceiver.Transmit(ctx)
}

// Idle disarms the transceiver and clears IsListening. It is the only
// thing that clears listening once Receive has armed the radio.
func (c *Controller) Idle(ctx context.Context) error {
	err := c.transceiver.Idle(ctx)
	c.listening = false
	return err
}

// Run drives the receive loop until ctx is done: each pass samples RSSI on
// the current channel, arms a receive if it clears the noise floor by
// MinSNR, and on a captured frame decodes it through the PHY before
// advancing to the next channel. Decoded packets are sent on out; Run
// blocks on that send, so a slow consumer back-pressures the whole receive
// loop.
func (c *Controller) Run(ctx context.Context, out chan<- stack.Packet) error {
	started := time.Now()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		pkt, err := c.receiveOne(ctx, started)
		channel := c.currentChannel
		c.setNextChannel()
		if err != nil {
			if err == errNoFrame {
				continue
			}
			return err
		}
		pkt.Channel = channel

		select {
		case out <- pkt:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

var errNoFrame = &noFrameError{}

type noFrameError struct{}

func (*noFrameError) Error() string { return "ctrl: no frame received before timeout" }

// receiveOne samples RSSI on the current channel, updates its noise-floor
// estimator when no carrier is present, and otherwise arms the receiver and
// reads a full frame off it. Idle is called only once a complete frame has
// been read: a carrier-sense miss never arms the radio, and a dropped or
// failed read returns without calling Idle, leaving the radio listening.
func (c *Controller) receiveOne(ctx context.Context, started time.Time) (stack.Packet, error) {
	if err := c.transceiver.SetChannel(ctx, c.currentChannel); err != nil {
		return stack.Packet{}, err
	}

	rssi, err := c.transceiver.Rssi(ctx)
	if err != nil {
		return stack.Packet{}, err
	}

	floor := c.NoiseFloor(c.currentChannel)
	if rssi <= floor.Value()+MinSNR {
		floor.Update(rssi)
		return stack.Packet{}, errNoFrame
	}

	frame, rate, timestamp, err := c.receiveFrame(ctx)
	if err != nil {
		return stack.Packet{}, errNoFrame
	}
	if err := c.Idle(ctx); err != nil {
		return stack.Packet{}, err
	}

	var phl stack.Phl
	payload, _, err := phl.Read(frame)
	if err != nil {
		return stack.Packet{}, errNoFrame
	}

	mbal, err := stack.ParseMbal(payload)
	if err != nil {
		return stack.Packet{}, errNoFrame
	}

	var apl stack.Apl
	data, err := apl.Read(mbal.Data)
	if err != nil {
		return stack.Packet{}, errNoFrame
	}

	return stack.Packet{
		Address:    mbal.Address,
		Rate:       rate,
		Rssi:       rssi,
		Data:       data,
		ReceivedAt: timestamp.Sub(started),
	}, nil
}

// receiveFrame arms the radio and reads a complete coded frame off it,
// applying the frame-length oracle (stack.FrameLengthFromHeader) once
// enough header bytes are buffered, per the receive controller's
// incremental read/accept protocol.
func (c *Controller) receiveFrame(ctx context.Context) (frame []byte, rate turbo.CodeRate, timestamp time.Time, err error) {
	if err := c.transceiver.Listen(ctx); err != nil {
		return nil, 0, time.Time{}, err
	}
	c.listening = true

	listenCtx, cancel := context.WithTimeout(ctx, ListenTimeout)
	defer cancel()

	token, err := c.transceiver.Receive(listenCtx, stack.PhlHeaderSize)
	if err != nil {
		return nil, 0, time.Time{}, err
	}

	var buf []byte
	chunk := make([]byte, 64)
	var frameLength int
	var accepted bool

	for {
		n, err := c.transceiver.Read(ctx, token, chunk)
		if err != nil {
			return nil, 0, time.Time{}, err
		}
		buf = append(buf, chunk[:n]...)

		if !accepted && len(buf) >= stack.PhlHeaderSize {
			length, r, err := stack.FrameLengthFromHeader(buf)
			if err != nil {
				return nil, 0, time.Time{}, err
			}
			frameLength = length
			rate = r
			if err := c.transceiver.Accept(ctx, token, frameLength); err != nil {
				return nil, 0, time.Time{}, err
			}
			accepted = true
		}

		if accepted && len(buf) >= frameLength {
			return buf[:frameLength], rate, token.Timestamp(), nil
		}
	}
}
