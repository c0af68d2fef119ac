// Package turbo implements the 3GPP/UMTS rate 1/3 (and punctured rate 1/2)
// parallel-concatenated turbo code used by the LinkIQ physical layer: two
// 8-state recursive systematic convolutional (RSC) encoders separated by a
// QPP interleaver, and an iterative log-domain BCJR decoder.
package turbo

import "fmt"

// CodeRate selects how heavily the two constituent encoders' parity streams
// are punctured.
type CodeRate int

const (
	OneThird CodeRate = iota
	OneHalf
)

// N returns the code rate's denominator (the 3 in "1/3", the 2 in "1/2").
func (r CodeRate) N() int {
	switch r {
	case OneThird:
		return 3
	case OneHalf:
		return 2
	default:
		panic(fmt.Sprintf("turbo: invalid code rate %d", int(r)))
	}
}

// String implements fmt.Stringer.
func (r CodeRate) String() string {
	switch r {
	case OneThird:
		return "1/3"
	case OneHalf:
		return "1/2"
	default:
		return fmt.Sprintf("CodeRate(%d)", int(r))
	}
}

// Puncturer emits a cyclic keep/drop decision for a sequence of candidate
// bits. A period-1 pattern of 1 keeps everything, matching rate 1/3 (no
// puncturing); rate 1/2 uses a period-2 pattern so that the two constituent
// encoders keep complementary halves of their parity bits.
type Puncturer struct {
	period  int
	pattern uint
	pos     int
}

// NewPuncturer returns a Puncturer that cycles through a period-bit window
// of pattern, reading bits most-significant-first within the window.
func NewPuncturer(period int, pattern uint) *Puncturer {
	if period <= 0 {
		panic("turbo: puncturer period must be positive")
	}
	return &Puncturer{period: period, pattern: pattern}
}

// Next reports whether the next candidate bit is kept, advancing the
// puncturer's cyclic position.
func (p *Puncturer) Next() bool {
	shift := p.period - 1 - p.pos
	keep := (p.pattern>>uint(shift))&1 != 0
	p.pos = (p.pos + 1) % p.period
	return keep
}

// Reset returns the puncturer to the start of its cycle.
func (p *Puncturer) Reset() {
	p.pos = 0
}

// puncturers returns the first and second constituent encoders' puncturers
// for rate.
func puncturers(rate CodeRate) (first, second *Puncturer) {
	switch rate {
	case OneThird:
		return NewPuncturer(1, 0b1), NewPuncturer(1, 0b1)
	case OneHalf:
		return NewPuncturer(2, 0b10), NewPuncturer(2, 0b01)
	default:
		panic(fmt.Sprintf("turbo: invalid code rate %d", int(rate)))
	}
}
