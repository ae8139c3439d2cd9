package basis

import "fmt"

// RadialKind selects the radial basis set.
type RadialKind int

// RadialChebyshev evaluates the first nMax Chebyshev polynomials of the
// first kind on r mapped from [0, rc] onto [-1, 1].
const RadialChebyshev RadialKind = iota

func (k RadialKind) String() string {
	if k == RadialChebyshev {
		return "chebyshev"
	}
	return fmt.Sprintf("RadialKind(%d)", int(k))
}

// ParseRadial resolves a radial basis name as it appears in a model file.
func ParseRadial(name string) (RadialKind, error) {
	if name == "chebyshev" {
		return RadialChebyshev, nil
	}
	return 0, fmt.Errorf("basis: unknown radial basis %q", name)
}

// Radial evaluates the enveloped radial basis g_n(r) = T_n(x(r)) fc(r)
// together with dg_n/dr.
type Radial struct {
	kind   RadialKind
	cut    CutoffKind
	nMax   int
	cutoff float64
}

func NewRadial(kind RadialKind, cut CutoffKind, nMax int, cutoff float64) *Radial {
	if nMax < 1 {
		panic(fmt.Sprintf("basis: radial basis size %d", nMax))
	}
	if cutoff <= 0 {
		panic(fmt.Sprintf("basis: cutoff radius %v", cutoff))
	}
	return &Radial{kind: kind, cut: cut, nMax: nMax, cutoff: cutoff}
}

func (rb *Radial) NMax() int       { return rb.nMax }
func (rb *Radial) Cutoff() float64 { return rb.cutoff }

// Eval fills g and dg, each of length NMax, with the enveloped basis
// values and their derivatives with respect to r.
func (rb *Radial) Eval(r float64, g, dg []float64) {
	if len(g) < rb.nMax || len(dg) < rb.nMax {
		panic("basis: radial output buffers too short")
	}
	fc, dfc := rb.cut.Eval(r, rb.cutoff)

	// x in [-1, 1], dx/dr = 2/rc.
	x := 2*r/rb.cutoff - 1
	dxdr := 2 / rb.cutoff

	tPrev, tCur := 1.0, x
	dPrev, dCur := 0.0, 1.0
	for n := 0; n < rb.nMax; n++ {
		var t, dt float64
		switch n {
		case 0:
			t, dt = 1, 0
		case 1:
			t, dt = tCur, dCur
		default:
			t = 2*x*tCur - tPrev
			dt = 2*tCur + 2*x*dCur - dPrev
			tPrev, tCur = tCur, t
			dPrev, dCur = dCur, dt
		}
		g[n] = t * fc
		dg[n] = dt*dxdr*fc + t*dfc
	}
}
