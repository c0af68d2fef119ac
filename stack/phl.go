package stack

import (
	"bytes"
	"fmt"

	"github.com/rmja/linkiq/bitio"
	"github.com/rmja/linkiq/codedheader"
	"github.com/rmja/linkiq/turbo"
)

// PhlHeaderSize is the size, in bytes, of the physical layer's coded
// header: 2 lead-in bits, the 82-bit coded (rate, data length) field, and
// the two 6-bit turbo terminations, rounded up to a byte boundary.
const PhlHeaderSize = 12

// crcPoly is the custom, non-reflected CRC-32 polynomial LinkIQ uses to
// protect each physical-layer block.
const crcPoly uint32 = 0xF4ACFB13

// SNR is the fixed channel LLR scale Phl.Read primes the turbo decoder
// with. LinkIQ does not estimate the channel's actual signal-to-noise
// ratio; every frame is decoded as if received at this fixed operating
// point.
const SNR = 4

// MaxDecodeIterations bounds how many turbo decoder rounds Phl.Read will
// run before giving up on a frame.
const MaxDecodeIterations = 10

// PhlFields carries the physical layer's per-frame decode diagnostics,
// alongside the code rate the coded header classified the frame as.
type PhlFields struct {
	CodeRate turbo.CodeRate

	// HeaderDistance is the Hamming distance, in bits, between the coded
	// header's received 82-bit field and the closest candidate codeword
	// the classifier chose.
	HeaderDistance int

	// DecodeIterations is the number of turbo decoder rounds it took to
	// reach a block whose CRC-32 checked out, or zero if the received
	// block's hard bits already passed the CRC without running the
	// decoder at all.
	DecodeIterations int

	// DecodeDistance is the Hamming distance, in bits, between the
	// originally received block (systematic payload plus CRC-32) and the
	// block Read ultimately returned.
	DecodeDistance int
}

// Phl is the physical layer: it turns an MBAL frame into a turbo-coded,
// CRC-32-protected radio frame, and back.
type Phl struct{}

// FrameLength returns the total size, in bytes, of the coded radio frame
// for a data payload of dataLength bytes at the given code rate: the coded
// header, the systematic block (payload plus trailing CRC-32), and the
// punctured parity.
func FrameLength(rate turbo.CodeRate, dataLength int) int {
	blockLength := dataLength + 4
	return PhlHeaderSize + blockLength + parityLength(rate, blockLength)
}

func parityLength(rate turbo.CodeRate, blockLength int) int {
	switch rate {
	case turbo.OneHalf:
		return blockLength
	case turbo.OneThird:
		return 2 * blockLength
	default:
		panic(fmt.Sprintf("stack: invalid code rate %v", rate))
	}
}

// FrameLengthFromHeader is the receive controller's frame-length oracle: it
// classifies the coded header carried in the first PhlHeaderSize bytes of
// header and returns the total on-air frame length implied by its (rate,
// data length). It never fails due to a CRC check - there is no CRC over
// the coded header itself - so a misclassified header simply produces a
// frame length that fails CRC or turbo decoding downstream.
func FrameLengthFromHeader(header []byte) (length int, rate turbo.CodeRate, err error) {
	if len(header) < PhlHeaderSize {
		return 0, 0, ErrShortFrame
	}
	r := bitio.NewReader(header[:PhlHeaderSize], bitio.Msb0)
	h, _, _, _, err := codedheader.Read(r)
	if err != nil {
		return 0, 0, fmt.Errorf("stack: frame length oracle: %w", err)
	}
	return FrameLength(h.Rate, h.DataLength), h.Rate, nil
}

// Write turbo-encodes payload (an MBAL frame) at the given rate and returns
// the complete coded radio frame.
func (Phl) Write(rate turbo.CodeRate, payload []byte) ([]byte, error) {
	if len(payload) < codedheader.MinDataLength || len(payload) > codedheader.MaxDataLength {
		return nil, fmt.Errorf("stack: phl payload length %d out of range: %w", len(payload), ErrTooLarge)
	}

	crc := crc32Custom(append([]byte{byte(len(payload))}, payload...))
	block := append(append([]byte{}, payload...), crc...)

	result, err := turbo.Encode(rate, block)
	if err != nil {
		return nil, fmt.Errorf("stack: phl encode: %w", err)
	}

	w := bitio.NewWriter(bitio.Msb0)
	h := codedheader.Header{Rate: rate, DataLength: len(payload)}
	term1 := uint8(result.Termination >> 6)
	term2 := uint8(result.Termination & 0x3F)
	if err := h.Write(w, term1, term2); err != nil {
		return nil, err
	}

	frame := w.Bytes()
	frame = append(frame, block...)
	frame = append(frame, result.Parity...)
	return frame, nil
}

// Read recovers the MBAL payload and code rate from a coded radio frame. It
// first checks the frame's CRC-32 directly against the received block's
// hard bits, with no turbo decoding at all; only if that check fails does
// it fall through to the iterative turbo decoder, up to MaxDecodeIterations
// rounds.
func (Phl) Read(frame []byte) (payload []byte, rate turbo.CodeRate, err error) {
	payload, fields, err := Phl{}.ReadFields(frame)
	if err != nil {
		return nil, 0, err
	}
	return payload, fields.CodeRate, nil
}

// ReadFields is Read, additionally reporting the frame's decode
// diagnostics.
func (Phl) ReadFields(frame []byte) (payload []byte, fields PhlFields, err error) {
	if len(frame) < PhlHeaderSize {
		return nil, PhlFields{}, ErrShortFrame
	}

	r := bitio.NewReader(frame[:PhlHeaderSize], bitio.Msb0)
	h, headerDistance, term1, term2, err := codedheader.Read(r)
	if err != nil {
		return nil, PhlFields{}, fmt.Errorf("stack: phl header: %w", err)
	}

	blockLength := h.DataLength + 4
	parityBytes := parityLength(h.Rate, blockLength)
	if len(frame) < PhlHeaderSize+blockLength+parityBytes {
		return nil, PhlFields{}, ErrShortFrame
	}

	block := frame[PhlHeaderSize : PhlHeaderSize+blockLength]
	parity := frame[PhlHeaderSize+blockLength : PhlHeaderSize+blockLength+parityBytes]

	crcOK := func(candidate []byte) bool {
		if len(candidate) != blockLength {
			return false
		}
		dataLen := len(candidate) - 4
		crc := crc32Custom(append([]byte{byte(dataLen)}, candidate[:dataLen]...))
		return bytes.Equal(crc, candidate[dataLen:])
	}

	fields = PhlFields{CodeRate: h.Rate, HeaderDistance: headerDistance}

	if crcOK(block) {
		return block[:blockLength-4], fields, nil
	}

	decoder := turbo.NewDecoder(h.Rate, MaxDecodeIterations)
	decoded, iterations, ok := decoder.Decode(blockLength*8, block, parity, SNR, term1, term2, crcOK)
	if !ok {
		return nil, PhlFields{}, ErrCRC
	}

	fields.DecodeIterations = iterations
	fields.DecodeDistance = hammingDistance(block, decoded)

	return decoded[:len(decoded)-4], fields, nil
}

// hammingDistance counts the number of differing bits between a and b,
// over their shared length.
func hammingDistance(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	d := 0
	for i := 0; i < n; i++ {
		x := a[i] ^ b[i]
		for x != 0 {
			d++
			x &= x - 1
		}
	}
	return d
}

// crc32Custom computes LinkIQ's block CRC-32: non-reflected input and
// output, zero initial value and xorout.
func crc32Custom(data []byte) []byte {
	crc := uint32(0)
	for _, b := range data {
		crc ^= uint32(b) << 24
		for i := 0; i < 8; i++ {
			if crc&0x80000000 != 0 {
				crc = (crc << 1) ^ crcPoly
			} else {
				crc <<= 1
			}
		}
	}
	return []byte{byte(crc >> 24), byte(crc >> 16), byte(crc >> 8), byte(crc)}
}
