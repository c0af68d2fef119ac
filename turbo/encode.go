package turbo

import (
	"fmt"

	"github.com/rmja/linkiq/qpp"
)

// EncodeResult holds the parity stream and packed terminations produced by
// Encode for one coded block. Systematic is not returned: it is always
// exactly the input block, unmodified.
type EncodeResult struct {
	Parity      []byte
	Termination uint16 // 12 bits: (first termination << 6) | second termination
}

// Encode runs block (whose bit length must be a supported turbo-code block
// length, see the qpp package) through the two-encoder turbo structure at
// rate, returning the combined, punctured parity stream and the two
// constituent encoders' packed terminations.
//
// The first encoder consumes block in natural order; the interleaver
// permutes the same bits before feeding the second encoder, so its parity
// stream lines up with the first encoder's loop index rather than the
// permuted index - this is what lets a decoder interleave/deinterleave only
// the extrinsic information passed between the two decoder halves, not the
// channel symbols themselves.
func Encode(rate CodeRate, block []byte) (EncodeResult, error) {
	blockBits := len(block) * 8
	interleaver, err := qpp.NewInterleaver(blockBits)
	if err != nil {
		return EncodeResult{}, fmt.Errorf("turbo: encode: %w", err)
	}

	first, second := puncturers(rate)

	var enc1, enc2 rscEncoder
	var parity []byte
	var parityBits int
	var parityAcc uint8
	var parity2 []int

	pushBit := func(acc *uint8, count *int, out *[]byte, bit int) {
		*acc = (*acc << 1) | uint8(bit&1)
		*count++
		if *count == 8 {
			*out = append(*out, *acc)
			*acc = 0
			*count = 0
		}
	}

	for i := 0; i < blockBits; i++ {
		x1 := bitAt(block, i)
		_, par1 := enc1.encodeBit(x1)

		x2 := bitAt(block, interleaver.Permute(i))
		_, par2 := enc2.encodeBit(x2)

		if first.Next() {
			pushBit(&parityAcc, &parityBits, &parity, par1)
		}
		if second.Next() {
			parity2 = append(parity2, par2)
		}
	}
	for _, bit := range parity2 {
		pushBit(&parityAcc, &parityBits, &parity, bit)
	}
	if parityBits != 0 {
		return EncodeResult{}, fmt.Errorf("turbo: encode: parity stream left %d bits past a byte boundary", parityBits)
	}

	var term1, term2 termination
	for i := 0; i < mem; i++ {
		sys, par := enc1.terminationBit()
		term1.append(sys, par)
	}
	for i := 0; i < mem; i++ {
		sys, par := enc2.terminationBit()
		term2.append(sys, par)
	}

	return EncodeResult{
		Parity:      parity,
		Termination: uint16(term1.value)<<6 | uint16(term2.value),
	}, nil
}

// bitAt returns bit i (MSB-first within each byte) of buf.
func bitAt(buf []byte, i int) int {
	b := buf[i/8]
	shift := 7 - (i % 8)
	return int(b>>shift) & 1
}
