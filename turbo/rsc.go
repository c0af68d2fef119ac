package turbo

// rscEncoder is the UMTS 8-state recursive systematic convolutional encoder:
// feedback polynomial 1 + D^2 + D^3, feedforward (parity) polynomial
// 1 + D + D^3. Its three-bit shift register is (s1, s2, s3), s1 being the
// most recently shifted-in bit.
type rscEncoder struct {
	s1, s2, s3 int
}

// mem is the encoder's memory order, and the number of termination steps
// needed to flush its shift register to all zeros.
const mem = 3

// encodeBit advances the encoder by one systematic data bit x, returning the
// transmitted systematic bit (always x) and the parity bit.
func (e *rscEncoder) encodeBit(x int) (sys, par int) {
	c := x ^ e.s2 ^ e.s3
	p := c ^ e.s1 ^ e.s3
	e.s3, e.s2, e.s1 = e.s2, e.s1, c
	return x, p
}

// terminationBit advances the encoder by one termination step: it feeds
// back exactly the bit that drives the shift register to zero (so no real
// data bit is transmitted), returning that bit as the termination
// "systematic" output alongside its parity bit.
func (e *rscEncoder) terminationBit() (sys, par int) {
	xt := e.s2 ^ e.s3
	p := e.s1 ^ e.s3
	e.s3, e.s2, e.s1 = e.s2, e.s1, 0
	return xt, p
}

// termination packs three (systematic, parity) termination bit pairs into a
// single 6-bit value, high nibble (bits 5..3) holding the systematic bits in
// emission order and low nibble (bits 2..0) holding the parity bits in
// emission order - the layout EncoderTermination::append_output produces.
type termination struct {
	value uint8
}

func (t *termination) append(sys, par int) {
	t.value <<= 1
	t.value |= uint8(sys&1) << 3
	t.value |= uint8(par & 1)
}
