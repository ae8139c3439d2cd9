// Package evaluate contracts descriptor output against coefficient
// models to produce per-atom energies, forces, virials and
// uncertainties. One Evaluator serves one potential (with an optional
// covariance model); structures and neighbor lists arrive per step and
// all mutable state lives in the caller's Arena.
package evaluate

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/stevetorr/flare-pp/internal/atoms"
	"github.com/stevetorr/flare-pp/internal/comm"
	"github.com/stevetorr/flare-pp/internal/descriptor"
	"github.com/stevetorr/flare-pp/internal/potential"
)

// UncertaintyMode selects the per-atom uncertainty computed alongside
// energy and forces.
type UncertaintyMode int

const (
	// UncertaintyOff computes energy and forces only.
	UncertaintyOff UncertaintyMode = iota
	// UncertaintyIsotropic produces one scalar per atom from the
	// normalized descriptor and the central species' covariance block.
	UncertaintyIsotropic
	// UncertaintyDirectional produces one value per Cartesian component
	// from the normalized-descriptor Jacobian.
	UncertaintyDirectional
)

func (m UncertaintyMode) String() string {
	switch m {
	case UncertaintyOff:
		return "off"
	case UncertaintyIsotropic:
		return "isotropic"
	case UncertaintyDirectional:
		return "directional"
	}
	return fmt.Sprintf("UncertaintyMode(%d)", int(m))
}

// ParseUncertainty resolves a mode name from configuration.
func ParseUncertainty(name string) (UncertaintyMode, error) {
	switch name {
	case "off", "":
		return UncertaintyOff, nil
	case "isotropic":
		return UncertaintyIsotropic, nil
	case "directional":
		return UncertaintyDirectional, nil
	}
	return UncertaintyOff, fmt.Errorf("evaluate: unknown uncertainty mode %q (off, isotropic, directional)", name)
}

// Options configure an Evaluator.
type Options struct {
	Mode    UncertaintyMode
	Virial  bool
	Workers int // 0 means runtime.NumCPU()
}

// Summary is the step-level output of an evaluation, identical on every
// rank of the group.
type Summary struct {
	Energy float64    // total potential energy, eV
	Virial [6]float64 // xx yy zz xy xz yz, when Options.Virial is set
	MaxStd float64    // largest per-atom uncertainty of the step
}

// Evaluator computes per-atom quantities for the owned stripe of a
// replicated structure and reduces them group-wide. Instances reuse
// worker scratch between steps and are not safe for concurrent Steps.
type Evaluator struct {
	pot  *potential.Model
	cov  *potential.Model
	c    comm.Comm
	opts Options

	nDesc    int
	jacWidth int

	workers []*workerState
}

type workerState struct {
	engine *descriptor.B2
	nb     descriptor.Neighborhood
	res    descriptor.Result

	forces []float64
	jac    []float64
	virial [6]float64
	energy float64
}

// New validates the model pairing and builds an evaluator. The
// covariance model, when present, must share the potential's descriptor
// hyperparameters so one descriptor evaluation serves both
// contractions.
func New(pot, cov *potential.Model, c comm.Comm, opts Options) (*Evaluator, error) {
	if pot == nil {
		return nil, fmt.Errorf("evaluate: nil potential model")
	}
	if pot.Kind != potential.KindEnergy {
		return nil, fmt.Errorf("evaluate: potential model kind %v, want %v", pot.Kind, potential.KindEnergy)
	}
	if opts.Mode != UncertaintyOff {
		if cov == nil {
			return nil, fmt.Errorf("evaluate: uncertainty mode %v requires a covariance model", opts.Mode)
		}
		if cov.Kind != potential.KindVariance {
			return nil, fmt.Errorf("evaluate: covariance model kind %v, want %v", cov.Kind, potential.KindVariance)
		}
		if !pot.SameHyperparameters(cov) {
			return nil, fmt.Errorf("evaluate: potential vs covariance: %w", potential.ErrModelMismatch)
		}
	}
	if c == nil {
		c = comm.Single{}
	}
	e := &Evaluator{
		pot:   pot,
		cov:   cov,
		c:     c,
		opts:  opts,
		nDesc: pot.NumDescriptors(),
	}
	if opts.Mode == UncertaintyDirectional {
		e.jacWidth = 3 * pot.NSpecies * e.nDesc
	}
	return e, nil
}

func (e *Evaluator) Cutoff() float64 { return e.pot.CutoffRadius }

func (e *Evaluator) Mode() UncertaintyMode { return e.opts.Mode }

// StdWidth returns the number of uncertainty components per atom: 0
// when uncertainty is off, 1 isotropic, 3 directional.
func (e *Evaluator) StdWidth() int {
	switch e.opts.Mode {
	case UncertaintyIsotropic:
		return 1
	case UncertaintyDirectional:
		return 3
	}
	return 0
}

// ReverseCommSize reports how many uncertainty values per boundary atom
// take part in reverse reduction, so hosts can budget exchange buffers.
// Forces always exchange three per atom on top of this.
func (e *Evaluator) ReverseCommSize() int { return e.StdWidth() }

// Owns reports whether this rank computes the neighborhood of owned
// atom i. Atoms are striped round-robin across the group.
func (e *Evaluator) Owns(i int) bool { return i%e.c.Size() == e.c.Rank() }

// Step evaluates one configuration. The neighbor list supplies
// unfiltered candidates; the strict-cutoff subset is gathered once per
// atom and reused by every contraction. On return the owned prefixes of
// the arena's accumulators hold group-complete values.
func (e *Evaluator) Step(st *atoms.Structure, nl *atoms.NeighborList, ar *Arena) (Summary, error) {
	total := st.Total()
	nLocal := st.NLocal
	if nl.NumCenters() != nLocal {
		panic(fmt.Sprintf("evaluate: neighbor list covers %d centers, structure owns %d", nl.NumCenters(), nLocal))
	}
	for i := 0; i < total; i++ {
		if s := st.Species[i]; s < 0 || s >= e.pot.NSpecies {
			return Summary{}, fmt.Errorf("evaluate: atom %d has species %d outside the model's %d species",
				i, s, e.pot.NSpecies)
		}
	}
	ar.Reset(total, nLocal, e.StdWidth(), e.jacWidth)

	nWorkers := e.opts.Workers
	if nWorkers <= 0 {
		nWorkers = runtime.NumCPU()
	}
	if nWorkers > nLocal {
		nWorkers = nLocal
	}
	if nWorkers < 1 {
		nWorkers = 1
	}
	e.ensureWorkers(nWorkers, total)

	chunk := (nLocal + nWorkers - 1) / nWorkers
	var wg sync.WaitGroup
	for w := 0; w < nWorkers; w++ {
		start := w * chunk
		end := start + chunk
		if end > nLocal {
			end = nLocal
		}
		wg.Add(1)
		go func(ws *workerState, start, end int) {
			defer wg.Done()
			e.atomPass(ws, st, nl, ar, start, end)
		}(e.workers[w], start, end)
	}
	wg.Wait()

	// Fold worker-local scatter targets in worker order so results stay
	// reproducible for a fixed configuration.
	var sum Summary
	for _, ws := range e.workers[:nWorkers] {
		for i, v := range ws.forces {
			ar.Forces[i] += v
		}
		sum.Energy += ws.energy
		if e.opts.Virial {
			for k := 0; k < 6; k++ {
				sum.Virial[k] += ws.virial[k]
			}
		}
		if e.jacWidth > 0 {
			for i, v := range ws.jac {
				ar.Jac[i] += v
			}
		}
	}

	// Boundary reduction: ghost partials fold onto their owners, then
	// ranks merge their stripes.
	owners := st.GhostOwners()
	ar.commBuf = foldGhosts(Accumulator{Width: 3, Data: ar.Forces}, nLocal, owners, ar.commBuf)
	e.c.SumFloats(ar.Forces[:3*nLocal])
	e.c.SumFloats(ar.Energies[:nLocal])

	switch e.opts.Mode {
	case UncertaintyIsotropic:
		e.c.SumFloats(ar.Vars[:nLocal])
		e.c.SumFloats(ar.Stds[:nLocal])
		sum.MaxStd = maxVal(ar.Stds[:nLocal])
	case UncertaintyDirectional:
		ar.commBuf = foldGhosts(Accumulator{Width: e.jacWidth, Data: ar.Jac}, nLocal, owners, ar.commBuf)
		e.c.SumFloats(ar.Jac[:e.jacWidth*nLocal])
		e.directionalPass(nLocal, nWorkers, ar)
		e.c.SumFloats(ar.Vars[:3*nLocal])
		e.c.SumFloats(ar.Stds[:3*nLocal])
		sum.MaxStd = maxVal(ar.Stds[:3*nLocal])
	}

	scalars := append(ar.commBuf[:0], sum.Energy, sum.Virial[0], sum.Virial[1],
		sum.Virial[2], sum.Virial[3], sum.Virial[4], sum.Virial[5])
	e.c.SumFloats(scalars)
	sum.Energy = scalars[0]
	for k := 0; k < 6; k++ {
		sum.Virial[k] = scalars[k+1]
	}
	ar.commBuf = scalars[:0]

	return sum, nil
}

// atomPass runs the per-atom pipeline over [start, end) of the owned
// range, skipping atoms striped to other ranks.
func (e *Evaluator) atomPass(ws *workerState, st *atoms.Structure, nl *atoms.NeighborList, ar *Arena, start, end int) {
	rc := e.pot.CutoffRadius
	for i := start; i < end; i++ {
		if !e.Owns(i) {
			continue
		}
		ws.nb.Gather(i, st.Pos, st.Species, nl.Neighbors(i), rc)
		ws.engine.Compute(&ws.nb, &ws.res)
		if len(ws.nb.List) == 0 || ws.res.Norm2 == 0 {
			// Isolated atom: zero energy, force and uncertainty by
			// definition rather than a division by zero.
			continue
		}

		evdwl := e.localEnergy(ws.nb.Species, &ws.res)
		ar.Energies[i] = evdwl
		ws.energy += evdwl

		e.scatterForces(ws, i, evdwl)

		switch e.opts.Mode {
		case UncertaintyIsotropic:
			v := e.isotropicVariance(ws.nb.Species, &ws.res)
			ar.Vars[i] = v
			ar.Stds[i] = math.Sqrt(math.Abs(v))
		case UncertaintyDirectional:
			e.scatterJacobian(ws)
		}
	}
}

// localEnergy contracts the normalized descriptor against the packed
// symmetric coefficients of the central species.
func (e *Evaluator) localEnergy(species int, res *descriptor.Result) float64 {
	pk := e.pot.Packed(species)
	sum := 0.0
	k := 0
	for m := 0; m < e.nDesc; m++ {
		bm := res.B[m]
		for n := m; n < e.nDesc; n++ {
			sum += bm * res.B[n] * pk[k]
			k++
		}
	}
	return sum / res.Norm2
}

// scatterForces applies the quotient-rule force of the central atom's
// energy to the central atom and each contributing neighbor, tallying
// the pair virial along the way.
func (e *Evaluator) scatterForces(ws *workerState, center int, evdwl float64) {
	res := &ws.res
	pk := e.pot.Packed(ws.nb.Species)
	nd := e.nDesc
	invN := 1 / res.Norm2

	for q := range ws.nb.List {
		nbr := &ws.nb.List[q]
		var f [3]float64
		for c := 0; c < 3; c++ {
			row := res.Dervs[(3*q+c)*nd : (3*q+c+1)*nd]
			acc := 0.0
			k := 0
			for m := 0; m < nd; m++ {
				dm, bm := row[m], res.B[m]
				for n := m; n < nd; n++ {
					acc += (-dm*res.B[n] - bm*row[n]) * pk[k]
					k++
				}
			}
			acc += evdwl * res.DNorm2[3*q+c]
			f[c] = acc * invN
		}

		fi := ws.forces[3*center : 3*center+3]
		fj := ws.forces[3*nbr.Index : 3*nbr.Index+3]
		fi[0] -= f[0]
		fi[1] -= f[1]
		fi[2] -= f[2]
		fj[0] += f[0]
		fj[1] += f[1]
		fj[2] += f[2]

		if e.opts.Virial {
			// Pair tally with r from neighbor to center.
			dx, dy, dz := -nbr.Delta[0], -nbr.Delta[1], -nbr.Delta[2]
			ws.virial[0] += dx * f[0]
			ws.virial[1] += dy * f[1]
			ws.virial[2] += dz * f[2]
			ws.virial[3] += dx * f[1]
			ws.virial[4] += dx * f[2]
			ws.virial[5] += dy * f[2]
		}
	}
}

func (e *Evaluator) ensureWorkers(n, total int) {
	for len(e.workers) < n {
		e.workers = append(e.workers, &workerState{
			engine: descriptor.NewB2(e.pot.Basis, e.pot.Cutoff, e.pot.CutoffRadius,
				e.pot.NSpecies, e.pot.NMax, e.pot.LMax),
		})
	}
	for _, ws := range e.workers[:n] {
		ws.forces = grow(ws.forces, 3*total)
		ws.jac = grow(ws.jac, e.jacWidth*total)
		ws.virial = [6]float64{}
		ws.energy = 0
	}
}

func maxVal(vals []float64) float64 {
	m := 0.0
	for _, v := range vals {
		if v > m {
			m = v
		}
	}
	return m
}
