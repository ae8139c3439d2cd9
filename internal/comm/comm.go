package comm

// Comm is a group of cooperating ranks. Collectives must be called by
// every rank of the group in the same order. Buffer lengths must agree
// across ranks; a mismatch is a programming defect and implementations
// panic on it.
type Comm interface {
	Rank() int
	Size() int

	// BcastInts copies root's vals into every other rank's slice.
	BcastInts(root int, vals []int)

	// BcastFloats copies root's vals into every other rank's slice.
	BcastFloats(root int, vals []float64)

	// SumFloats replaces vals on every rank with the elementwise sum
	// over the group. The result is bitwise identical on all ranks.
	SumFloats(vals []float64)
}

// Single is the one-process group. All collectives are no-ops.
type Single struct{}

func (Single) Rank() int { return 0 }

func (Single) Size() int { return 1 }

func (Single) BcastInts(int, []int) {}

func (Single) BcastFloats(int, []float64) {}

func (Single) SumFloats([]float64) {}
