package evaluate

// Arena holds the per-step scratch of an evaluation: per-atom output
// accumulators sized to the owned plus ghost atom count. Buffers grow
// only and are reused across steps; Reset zeroes every active slot so
// nothing leaks from a previous step or from before a resize.
type Arena struct {
	total  int
	nLocal int

	Energies []float64 // one per atom, owned entries carry values
	Forces   []float64 // three per atom
	Vars     []float64 // StdWidth per atom, signed variance contractions
	Stds     []float64 // StdWidth per atom, sqrt(abs(variance))
	Jac      []float64 // normalized-descriptor Jacobian, directional mode only

	commBuf []float64 // staging for boundary reduction
}

// Reset prepares the arena for a step over total atoms (nLocal owned).
func (a *Arena) Reset(total, nLocal, stdWidth, jacWidth int) {
	a.total = total
	a.nLocal = nLocal
	a.Energies = grow(a.Energies, total)
	a.Forces = grow(a.Forces, 3*total)
	a.Vars = grow(a.Vars, stdWidth*total)
	a.Stds = grow(a.Stds, stdWidth*total)
	a.Jac = grow(a.Jac, jacWidth*total)
}

func (a *Arena) NumAtoms() int { return a.total }
func (a *Arena) NumLocal() int { return a.nLocal }

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
