package turbo

import (
	"math"

	"github.com/rmja/linkiq/qpp"
)

const numStates = 8

// transition describes, for a given state and input bit, the resulting next
// state and parity output bit of the 8-state UMTS RSC trellis.
type transition struct {
	nextState [2]int // indexed by input bit
	parity    [2]int // indexed by input bit
}

var trellis [numStates]transition

func init() {
	for state := 0; state < numStates; state++ {
		s1 := (state >> 2) & 1
		s2 := (state >> 1) & 1
		s3 := state & 1
		for x := 0; x <= 1; x++ {
			c := x ^ s2 ^ s3
			p := c ^ s1 ^ s3
			next := (c << 2) | (s1 << 1) | s2
			trellis[state].nextState[x] = next
			trellis[state].parity[x] = p
		}
	}
}

const negInf = math.MaxFloat64 * -0.5

// pm maps a bit (0/1) to its bipolar representation (-1/+1).
func pm(bit int) float64 {
	if bit == 1 {
		return 1
	}
	return -1
}

// terminationTransition returns the single forced transition a constituent
// encoder's trellis takes from state during one of its mem termination
// steps (see rscEncoder.terminationBit): the input bit is not free, it is
// whatever drives the shift register towards zero.
func terminationTransition(state int) (next, sysBit, parBit int) {
	s1 := (state >> 2) & 1
	s2 := (state >> 1) & 1
	s3 := state & 1
	sysBit = s2 ^ s3
	parBit = s1 ^ s3
	next = (s1 << 1) | s2
	return
}

// terminationLLRs unpacks a packed 6-bit termination value (see the
// termination type in rsc.go: the high 3 bits are the systematic
// termination bits in emission order, the low 3 bits are the parity
// termination bits) into per-step channel LLRs scaled by snr.
func terminationLLRs(t uint8, snr float64) (sysLLR, parLLR [mem]float64) {
	sys := [mem]int{int(t>>5) & 1, int(t>>4) & 1, int(t>>3) & 1}
	par := [mem]int{int(t>>2) & 1, int(t>>1) & 1, int(t) & 1}
	for i := 0; i < mem; i++ {
		sysLLR[i] = llrFromBit(sys[i], snr)
		parLLR[i] = llrFromBit(par[i], snr)
	}
	return
}

// terminatedBeta runs the mem termination steps' backward recursion,
// starting from the known final state (all-zero shift register) and
// returns the resulting beta values at the boundary between the data
// trellis and the termination trellis - this is bcjrHalf's beta[n].
func terminatedBeta(termSysLLR, termParLLR [mem]float64) [numStates]float64 {
	gamma := func(j, state int) (next int, g float64) {
		next, sysBit, parBit := terminationTransition(state)
		g = 0.5*pm(sysBit)*termSysLLR[j] + 0.5*pm(parBit)*termParLLR[j]
		return
	}

	var beta [numStates]float64
	// Step mem ends in the all-zero state.
	for s := 1; s < numStates; s++ {
		beta[s] = negInf
	}

	for j := mem - 1; j >= 0; j-- {
		var prev [numStates]float64
		for state := 0; state < numStates; state++ {
			next, g := gamma(j, state)
			if beta[next] <= negInf {
				prev[state] = negInf
				continue
			}
			prev[state] = beta[next] + g
		}
		beta = prev
	}
	return beta
}

// bcjrHalf runs one half-iteration of the max-log-MAP BCJR algorithm over a
// block of n bits, given per-bit systematic and parity channel LLRs, a
// priori LLRs, and the two termination LLR triples that close this
// constituent encoder's trellis, and returns the full posterior LLR and the
// extrinsic LLR (the posterior with the channel-systematic and a-priori
// contributions removed) for each bit.
func bcjrHalf(sysLLR, parLLR, apriori []float64, termSysLLR, termParLLR [mem]float64) (posterior, extrinsic []float64) {
	n := len(sysLLR)

	alpha := make([][numStates]float64, n+1)
	beta := make([][numStates]float64, n+1)
	for s := 1; s < numStates; s++ {
		alpha[0][s] = negInf
	}
	// The encoder is driven to the all-zero state by its mem termination
	// steps, so the data trellis's final beta is not uniform: it is seeded
	// from the termination LLRs via terminatedBeta.
	beta[n] = terminatedBeta(termSysLLR, termParLLR)

	gamma := func(k, state, bit int) float64 {
		par := trellis[state].parity[bit]
		x := pm(bit)
		p := pm(par)
		return 0.5*x*(sysLLR[k]+apriori[k]) + 0.5*p*parLLR[k]
	}

	for k := 0; k < n; k++ {
		var next [numStates]float64
		for s := range next {
			next[s] = negInf
		}
		for state := 0; state < numStates; state++ {
			if alpha[k][state] <= negInf {
				continue
			}
			for bit := 0; bit <= 1; bit++ {
				ns := trellis[state].nextState[bit]
				v := alpha[k][state] + gamma(k, state, bit)
				if v > next[ns] {
					next[ns] = v
				}
			}
		}
		alpha[k+1] = next
	}

	for k := n - 1; k >= 0; k-- {
		var prev [numStates]float64
		for s := range prev {
			prev[s] = negInf
		}
		for state := 0; state < numStates; state++ {
			for bit := 0; bit <= 1; bit++ {
				ns := trellis[state].nextState[bit]
				if beta[k+1][ns] <= negInf {
					continue
				}
				v := beta[k+1][ns] + gamma(k, state, bit)
				if v > prev[state] {
					prev[state] = v
				}
			}
		}
		beta[k] = prev
	}

	posterior = make([]float64, n)
	extrinsic = make([]float64, n)
	for k := 0; k < n; k++ {
		max0, max1 := negInf, negInf
		for state := 0; state < numStates; state++ {
			if alpha[k][state] <= negInf {
				continue
			}
			for bit := 0; bit <= 1; bit++ {
				ns := trellis[state].nextState[bit]
				if beta[k+1][ns] <= negInf {
					continue
				}
				v := alpha[k][state] + gamma(k, state, bit) + beta[k+1][ns]
				if bit == 1 {
					if v > max1 {
						max1 = v
					}
				} else {
					if v > max0 {
						max0 = v
					}
				}
			}
		}
		posterior[k] = max1 - max0
		extrinsic[k] = posterior[k] - sysLLR[k] - apriori[k]
	}
	return posterior, extrinsic
}

// Decoder is an iterative max-log-MAP turbo decoder.
type Decoder struct {
	rate          CodeRate
	maxIterations int
}

// NewDecoder returns a Decoder for rate that gives up after maxIterations
// decoder rounds without the caller's CRC check succeeding.
func NewDecoder(rate CodeRate, maxIterations int) *Decoder {
	return &Decoder{rate: rate, maxIterations: maxIterations}
}

// llrFromBit converts a hard-decision channel bit to a saturated LLR
// observation scaled by snr, matching the LlrMul convention used to prime
// the decoder with known (noiseless) values.
func llrFromBit(bit int, snr float64) float64 {
	return pm(bit) * snr
}

// Decode attempts to recover the blockBits-bit systematic block that
// produced the given received systematic block and parity bytes at this
// decoder's rate. snr scales hard channel bits into LLR inputs. term1 and
// term2 are the two constituent encoders' packed 6-bit termination values,
// as extracted verbatim from the coded header by codedheader.Read: each
// constituent decoder's trellis is closed using its own termination LLRs,
// rather than left with an unknown final state. crcOK is consulted after
// each iteration's hard decision; Decode returns as soon as it reports
// true, or after maxIterations rounds, whichever comes first.
func (d *Decoder) Decode(blockBits int, receivedBlock, receivedParity []byte, snr float64, term1, term2 uint8, crcOK func([]byte) bool) (data []byte, iterations int, ok bool) {
	interleaver, err := qpp.NewInterleaver(blockBits)
	if err != nil {
		return nil, 0, false
	}

	sysLLR := make([]float64, blockBits)
	for i := 0; i < blockBits; i++ {
		sysLLR[i] = llrFromBit(bitAt(receivedBlock, i), snr)
	}

	par1LLR, par2LLR := depuncture(d.rate, blockBits, receivedParity, snr)

	sysLLRInterleaved := make([]float64, blockBits)
	for i := 0; i < blockBits; i++ {
		sysLLRInterleaved[i] = sysLLR[interleaver.Permute(i)]
	}

	term1SysLLR, term1ParLLR := terminationLLRs(term1, snr)
	term2SysLLR, term2ParLLR := terminationLLRs(term2, snr)

	apriori1 := make([]float64, blockBits)
	var hardBits []int

	for iterations = 1; iterations <= d.maxIterations; iterations++ {
		_, extrinsic1 := bcjrHalf(sysLLR, par1LLR, apriori1, term1SysLLR, term1ParLLR)

		apriori2 := make([]float64, blockBits)
		for i := 0; i < blockBits; i++ {
			apriori2[i] = extrinsic1[interleaver.Permute(i)]
		}

		posterior2, extrinsic2 := bcjrHalf(sysLLRInterleaved, par2LLR, apriori2, term2SysLLR, term2ParLLR)

		deinterleavedExtrinsic2 := make([]float64, blockBits)
		deinterleavedPosterior2 := make([]float64, blockBits)
		for i := 0; i < blockBits; i++ {
			deinterleavedExtrinsic2[interleaver.Permute(i)] = extrinsic2[i]
			deinterleavedPosterior2[interleaver.Permute(i)] = posterior2[i]
		}
		apriori1 = deinterleavedExtrinsic2

		hardBits = make([]int, blockBits)
		for i := 0; i < blockBits; i++ {
			if deinterleavedPosterior2[i] > 0 {
				hardBits[i] = 1
			} else {
				hardBits[i] = 0
			}
		}

		data = bitsToByteSlice(hardBits)
		if crcOK(data) {
			return data, iterations, true
		}
	}

	return data, d.maxIterations, false
}

func bitsToByteSlice(bits []int) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, bit := range bits {
		if bit != 0 {
			out[i/8] |= 1 << uint(7-(i%8))
		}
	}
	return out
}

// depuncture expands a packed, punctured parity byte stream back into two
// per-bit LLR sequences (one per constituent encoder), filling punctured
// positions with a zero (unknown) LLR.
func depuncture(rate CodeRate, blockBits int, parity []byte, snr float64) (par1, par2 []float64) {
	first, second := puncturers(rate)
	par1 = make([]float64, blockBits)
	par2 = make([]float64, blockBits)

	r := newBitCursor(parity)
	for i := 0; i < blockBits; i++ {
		if first.Next() {
			par1[i] = llrFromBit(r.next(), snr)
		}
	}
	for i := 0; i < blockBits; i++ {
		if second.Next() {
			par2[i] = llrFromBit(r.next(), snr)
		}
	}
	return par1, par2
}

// bitCursor reads successive MSB0 bits from a byte slice.
type bitCursor struct {
	buf []byte
	pos int
}

func newBitCursor(buf []byte) *bitCursor {
	return &bitCursor{buf: buf}
}

func (c *bitCursor) next() int {
	bit := bitAt(c.buf, c.pos)
	c.pos++
	return bit
}
