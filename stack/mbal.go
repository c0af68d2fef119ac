package stack

import (
	"fmt"

	"github.com/rmja/linkiq/wmbus"
)

// MbalHeaderSize is the size, in bytes, of the MBAL fixed header: the
// control byte, the 8-byte wM-Bus address, the command byte, and the
// trailing 2-byte CRC-16/EN-13757 that protects all three.
const MbalHeaderSize = 12

// MbalMax is the largest complete MBAL frame, header and application data
// included.
const MbalMax = 251

// MbalControl is the MBAL control field. It carries a single bit: whether
// the telegram asks to be treated as a prioritized (high-priority) frame.
type MbalControl struct {
	IsPrioritized bool
}

// MbalFunctionCode is the command's function code, carried in the top
// nibble of the command byte.
type MbalFunctionCode byte

const (
	SendUnsolicitedApplicationData MbalFunctionCode = 4
	SendInstallationRequest       MbalFunctionCode = 6
)

// MbalCommand is the MBAL command field.
type MbalCommand struct {
	FunctionCode MbalFunctionCode
}

// Mbal is a decoded M-Bus adaption layer frame.
type Mbal struct {
	Control MbalControl
	Address wmbus.Address
	Command MbalCommand
	Data    []byte
}

// Bytes encodes f into its wire representation: a 12-byte header (control,
// address, command, then a CRC-16/EN-13757 over the first 10 header bytes)
// followed by the application data.
func (f Mbal) Bytes() ([]byte, error) {
	if len(f.Data) > MbusDataMax {
		return nil, ErrTooLarge
	}

	header := make([]byte, MbalHeaderSize)
	if f.Control.IsPrioritized {
		header[0] = 1
	}
	addr := f.Address.Bytes()
	copy(header[1:9], addr[:])
	header[9] = byte(f.Command.FunctionCode) << 4

	crc := crc16EN13757(header[:10])
	header[10] = byte(crc >> 8)
	header[11] = byte(crc)

	return append(header, f.Data...), nil
}

// ParseMbal decodes a wire-format MBAL frame, verifying the header's
// CRC-16/EN-13757 before parsing its fields.
func ParseMbal(frame []byte) (Mbal, error) {
	if len(frame) < MbalHeaderSize {
		return Mbal{}, ErrShortFrame
	}

	header := frame[:MbalHeaderSize]
	wantCRC := uint16(header[10])<<8 | uint16(header[11])
	if crc16EN13757(header[:10]) != wantCRC {
		return Mbal{}, ErrCRC
	}
	if header[0] > 1 {
		return Mbal{}, fmt.Errorf("stack: mbal control byte 0x%02x is neither 0 nor 1", header[0])
	}

	var addrBytes [wmbus.AddressSize]byte
	copy(addrBytes[:], header[1:9])
	addr, err := wmbus.Parse(addrBytes[:])
	if err != nil {
		return Mbal{}, fmt.Errorf("stack: mbal address: %w", err)
	}

	return Mbal{
		Control: MbalControl{IsPrioritized: header[0]&1 != 0},
		Address: addr,
		Command: MbalCommand{FunctionCode: MbalFunctionCode(header[9] >> 4)},
		Data:    append([]byte{}, frame[MbalHeaderSize:]...),
	}, nil
}

// crc16EN13757 computes the CRC-16/EN-13757 checksum (poly 0x3D65, init
// 0x0000, no reflection, xorout 0xFFFF) used by the M-Bus and wM-Bus
// standards for link-layer integrity checks.
func crc16EN13757(data []byte) uint16 {
	const poly = 0x3D65
	crc := uint16(0x0000)
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ poly
			} else {
				crc <<= 1
			}
		}
	}
	return ^crc
}
