package evaluate

import "fmt"

// Accumulator views a per-atom quantity with a fixed number of
// components per atom for boundary reduction. PackReverse serializes a
// contiguous atom range; UnpackReverse adds a buffer onto listed atoms.
// Addition is the only merge operation, so contributions may fold in
// any grouping.
type Accumulator struct {
	Width int
	Data  []float64
}

// PackReverse copies the entries of n atoms starting at first into buf
// and returns the number of values written.
func (a Accumulator) PackReverse(first, n int, buf []float64) int {
	m := n * a.Width
	if len(buf) < m {
		panic(fmt.Sprintf("evaluate: reverse pack buffer holds %d values, need %d", len(buf), m))
	}
	copy(buf[:m], a.Data[first*a.Width:(first+n)*a.Width])
	return m
}

// UnpackReverse adds consecutive buf entries onto the atoms named by
// indices.
func (a Accumulator) UnpackReverse(indices []int, buf []float64) {
	if len(buf) < len(indices)*a.Width {
		panic(fmt.Sprintf("evaluate: reverse unpack buffer holds %d values, need %d",
			len(buf), len(indices)*a.Width))
	}
	m := 0
	for _, j := range indices {
		base := j * a.Width
		for c := 0; c < a.Width; c++ {
			a.Data[base+c] += buf[m]
			m++
		}
	}
}

// foldGhosts drains ghost partials through the pack/unpack pair: the
// ghost segment is serialized, zeroed in place, and added onto the
// owning atoms. Returns the (possibly grown) staging buffer.
func foldGhosts(a Accumulator, nLocal int, owners []int, buf []float64) []float64 {
	n := len(owners)
	if n == 0 {
		return buf
	}
	need := n * a.Width
	if cap(buf) < need {
		buf = make([]float64, need)
	}
	buf = buf[:need]
	a.PackReverse(nLocal, n, buf)
	ghost := a.Data[nLocal*a.Width : (nLocal+n)*a.Width]
	for i := range ghost {
		ghost[i] = 0
	}
	a.UnpackReverse(owners, buf)
	return buf
}
