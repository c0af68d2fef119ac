package stack

import "errors"

// ErrCRC is returned by a layer's Read when the layer's integrity check
// fails.
var ErrCRC = errors.New("stack: crc check failed")

// ErrTooLarge is returned by a layer's Write, and by Apl.Read, when the
// payload exceeds the layer's maximum frame size. Phl.Write also wraps it
// for a payload shorter than codedheader.MinDataLength.
var ErrTooLarge = errors.New("stack: payload too large for layer")

// ErrShortFrame is returned by a layer's Read when the frame is too short
// to contain the layer's header and trailer.
var ErrShortFrame = errors.New("stack: frame too short")
