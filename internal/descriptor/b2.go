package descriptor

import (
	"fmt"

	"github.com/stevetorr/flare-pp/internal/basis"
)

// NumDescriptors returns the invariant descriptor length for the given
// hyperparameters: one entry per unordered pair of radial channels per
// angular momentum.
func NumDescriptors(nSpecies, nMax, lMax int) int {
	nRadial := nSpecies * nMax
	return nRadial * (nRadial + 1) / 2 * (lMax + 1)
}

// B2 evaluates the power-spectrum descriptor for one atomic environment
// at a time. An instance owns scratch sized by the hyperparameters and
// is not safe for concurrent use; evaluation loops give each worker its
// own engine.
type B2 struct {
	radial   *basis.Radial
	harm     *basis.Harmonics
	nSpecies int
	nMax     int
	lMax     int
	nRadial  int
	nHarm    int
	nDesc    int

	// per-neighbor basis scratch
	g, dg []float64
	y, dy []float64

	// single-bond sums and their per-neighbor gradient rows
	a  []float64
	da []float64
}

func NewB2(rk basis.RadialKind, ck basis.CutoffKind, cutoff float64, nSpecies, nMax, lMax int) *B2 {
	if nSpecies < 1 || nMax < 1 || lMax < 0 {
		panic(fmt.Sprintf("descriptor: bad hyperparameters n_species=%d n_max=%d l_max=%d", nSpecies, nMax, lMax))
	}
	nRadial := nSpecies * nMax
	nHarm := basis.NumHarmonics(lMax)
	return &B2{
		radial:   basis.NewRadial(rk, ck, nMax, cutoff),
		harm:     basis.NewHarmonics(lMax),
		nSpecies: nSpecies,
		nMax:     nMax,
		lMax:     lMax,
		nRadial:  nRadial,
		nHarm:    nHarm,
		nDesc:    NumDescriptors(nSpecies, nMax, lMax),
		g:        make([]float64, nMax),
		dg:       make([]float64, nMax),
		y:        make([]float64, nHarm),
		dy:       make([]float64, 3*nHarm),
	}
}

func (b *B2) NumDescriptors() int { return b.nDesc }
func (b *B2) Cutoff() float64     { return b.radial.Cutoff() }

// Result receives descriptor output. Buffers grow to the largest
// neighborhood seen and are overwritten on every Compute.
type Result struct {
	B      []float64 // invariant descriptor, length NumDescriptors
	Norm2  float64   // B dot B
	Dervs  []float64 // gradient rows: Dervs[(3q+c)*len(B)+d] for neighbor q
	DNorm2 []float64 // d(B dot B)/dx, one value per gradient row
}

// Compute fills res with the power spectrum of nb and its derivatives.
// An empty neighborhood yields all zeros.
func (b *B2) Compute(nb *Neighborhood, res *Result) {
	nn := len(nb.List)
	rows := 3 * nn
	res.B = grow(res.B, b.nDesc)
	res.Dervs = grow(res.Dervs, rows*b.nDesc)
	res.DNorm2 = grow(res.DNorm2, rows)
	res.Norm2 = 0
	if nn == 0 {
		return
	}

	b.singleBond(nb)

	// Contract pairs of radial channels at equal (l, m). The diagonal
	// n1 == n2 enters once; the descriptor index advances per (pair, l).
	lenA := b.nRadial * b.nHarm
	idx := 0
	for n1 := 0; n1 < b.nRadial; n1++ {
		c1Base := n1 * b.nHarm
		for n2 := n1; n2 < b.nRadial; n2++ {
			c2Base := n2 * b.nHarm
			for l := 0; l <= b.lMax; l++ {
				sum := 0.0
				for lm := l * l; lm < (l+1)*(l+1); lm++ {
					c1 := c1Base + lm
					c2 := c2Base + lm
					a1, a2 := b.a[c1], b.a[c2]
					sum += a1 * a2
					for row := 0; row < rows; row++ {
						res.Dervs[row*b.nDesc+idx] += a1*b.da[row*lenA+c2] + b.da[row*lenA+c1]*a2
					}
				}
				res.B[idx] = sum
				idx++
			}
		}
	}

	norm2 := 0.0
	for _, v := range res.B {
		norm2 += v * v
	}
	res.Norm2 = norm2

	for row := 0; row < rows; row++ {
		drow := res.Dervs[row*b.nDesc : (row+1)*b.nDesc]
		dot := 0.0
		for d, v := range drow {
			dot += v * res.B[d]
		}
		res.DNorm2[row] = 2 * dot
	}
}

// grow resizes buf to n zeroed entries, reusing capacity when possible.
func grow(buf []float64, n int) []float64 {
	if cap(buf) < n {
		return make([]float64, n)
	}
	buf = buf[:n]
	for i := range buf {
		buf[i] = 0
	}
	return buf
}
