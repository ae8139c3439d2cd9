package evaluate

import (
	"math"
	"sync"

	"github.com/stevetorr/flare-pp/internal/descriptor"
)

// isotropicVariance contracts the normalized descriptor against the
// covariance block of the central species. The sign of the quadratic
// form carries through to Vars; Stds take sqrt(abs(.)).
func (e *Evaluator) isotropicVariance(species int, res *descriptor.Result) float64 {
	blk := e.cov.Block(species, species)
	nd := e.nDesc
	q := 0.0
	for m := 0; m < nd; m++ {
		row := blk[m*nd : (m+1)*nd]
		dot := 0.0
		for n, b := range res.B {
			dot += row[n] * b
		}
		q += res.B[m] * dot
	}
	return q / res.Norm2
}

// jacOffset locates the per-(atom, component, species) Jacobian slot.
func jacOffset(atom, comp, species, nSpecies, nDesc int) int {
	return ((atom*3+comp)*nSpecies + species) * nDesc
}

// scatterJacobian accumulates the gradient of the normalized descriptor
// B/sqrt(B.B) into Jacobian slots keyed by the species of the central
// atom: positive on the central atom, negative on the contributing
// neighbor. The global sign cancels in the quadratic form; the split
// makes rigid translations contract to zero.
func (e *Evaluator) scatterJacobian(ws *workerState) {
	res := &ws.res
	nd := e.nDesc
	ns := e.pot.NSpecies
	sqrtN := math.Sqrt(res.Norm2)
	inv := 1 / sqrtN
	inv3 := 1 / (2 * res.Norm2 * sqrtN)

	center := ws.nb.Center
	species := ws.nb.Species
	for q := range ws.nb.List {
		nbr := &ws.nb.List[q]
		for c := 0; c < 3; c++ {
			row := res.Dervs[(3*q+c)*nd : (3*q+c+1)*nd]
			corr := res.DNorm2[3*q+c] * inv3
			cSlot := ws.jac[jacOffset(center, c, species, ns, nd):]
			nSlot := ws.jac[jacOffset(nbr.Index, c, species, ns, nd):]
			for d := 0; d < nd; d++ {
				g := row[d]*inv - res.B[d]*corr
				cSlot[d] += g
				nSlot[d] -= g
			}
		}
	}
}

// directionalPass contracts each owned atom's reduced Jacobian against
// the covariance blocks, one variance per Cartesian component. Runs
// after the Jacobian is group-complete.
func (e *Evaluator) directionalPass(nLocal, nWorkers int, ar *Arena) {
	nd := e.nDesc
	ns := e.pot.NSpecies

	contract := func(i, c int) float64 {
		v := 0.0
		for s1 := 0; s1 < ns; s1++ {
			j1 := ar.Jac[jacOffset(i, c, s1, ns, nd) : jacOffset(i, c, s1, ns, nd)+nd]
			for s2 := 0; s2 < ns; s2++ {
				blk := e.cov.Block(s1, s2)
				if blk == nil {
					continue
				}
				j2 := ar.Jac[jacOffset(i, c, s2, ns, nd) : jacOffset(i, c, s2, ns, nd)+nd]
				for d1 := 0; d1 < nd; d1++ {
					a := j1[d1]
					if a == 0 {
						continue
					}
					row := blk[d1*nd : (d1+1)*nd]
					dot := 0.0
					for d2, b := range row {
						dot += b * j2[d2]
					}
					v += a * dot
				}
			}
		}
		return v
	}

	chunk := (nLocal + nWorkers - 1) / nWorkers
	var wg sync.WaitGroup
	for w := 0; w < nWorkers; w++ {
		start := w * chunk
		end := start + chunk
		if end > nLocal {
			end = nLocal
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				if !e.Owns(i) {
					continue
				}
				for c := 0; c < 3; c++ {
					v := contract(i, c)
					ar.Vars[3*i+c] = v
					ar.Stds[3*i+c] = math.Sqrt(math.Abs(v))
				}
			}
		}(start, end)
	}
	wg.Wait()
}
