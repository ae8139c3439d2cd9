package descriptor

import "fmt"

// singleBond accumulates the covariant neighbor sum
//
//	a[(s*nMax+n)*nHarm + lm] = sum_j g_n(r_j) * Y_lm(delta_j)
//
// over the neighborhood, together with the gradient of every entry with
// respect to each neighbor displacement, three rows per neighbor in da.
// A neighbor only touches the radial block of its own species, but rows
// are stored dense so the contraction below can stay index-free.
func (b *B2) singleBond(nb *Neighborhood) {
	nn := len(nb.List)
	lenA := b.nRadial * b.nHarm
	b.a = grow(b.a, lenA)
	b.da = grow(b.da, 3*nn*lenA)

	for q := range nb.List {
		nbr := &nb.List[q]
		if nbr.Species < 0 || nbr.Species >= b.nSpecies {
			panic(fmt.Sprintf("descriptor: neighbor species %d outside [0,%d)", nbr.Species, b.nSpecies))
		}
		b.radial.Eval(nbr.R, b.g, b.dg)
		b.harm.Eval(nbr.Delta[0], nbr.Delta[1], nbr.Delta[2], b.y, b.dy)

		ux := nbr.Delta[0] / nbr.R
		uy := nbr.Delta[1] / nbr.R
		uz := nbr.Delta[2] / nbr.R

		rowX := (3*q + 0) * lenA
		rowY := (3*q + 1) * lenA
		rowZ := (3*q + 2) * lenA
		base := nbr.Species * b.nMax
		for n := 0; n < b.nMax; n++ {
			gn, dgn := b.g[n], b.dg[n]
			colBase := (base + n) * b.nHarm
			for lm := 0; lm < b.nHarm; lm++ {
				col := colBase + lm
				yv := b.y[lm]
				b.a[col] += gn * yv
				b.da[rowX+col] = dgn*ux*yv + gn*b.dy[3*lm]
				b.da[rowY+col] = dgn*uy*yv + gn*b.dy[3*lm+1]
				b.da[rowZ+col] = dgn*uz*yv + gn*b.dy[3*lm+2]
			}
		}
	}
}
