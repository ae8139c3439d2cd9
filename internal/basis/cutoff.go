package basis

import (
	"fmt"
	"math"
)

// CutoffKind selects the smooth envelope applied to every radial basis
// function so neighbor contributions vanish, together with their first
// derivative, at the cutoff radius.
type CutoffKind int

const (
	// CutoffQuadratic is (r - rc)^2.
	CutoffQuadratic CutoffKind = iota
	// CutoffCosine is (1 + cos(pi r / rc)) / 2.
	CutoffCosine
)

func (k CutoffKind) String() string {
	switch k {
	case CutoffQuadratic:
		return "quadratic"
	case CutoffCosine:
		return "cosine"
	}
	return fmt.Sprintf("CutoffKind(%d)", int(k))
}

// ParseCutoff resolves a cutoff function name as it appears in a model file.
func ParseCutoff(name string) (CutoffKind, error) {
	switch name {
	case "quadratic":
		return CutoffQuadratic, nil
	case "cosine":
		return CutoffCosine, nil
	}
	return 0, fmt.Errorf("basis: unknown cutoff function %q", name)
}

// Eval returns the envelope value and its derivative with respect to r.
// Beyond rc both are zero.
func (k CutoffKind) Eval(r, rc float64) (f, df float64) {
	if r > rc {
		return 0, 0
	}
	switch k {
	case CutoffQuadratic:
		d := r - rc
		return d * d, 2 * d
	case CutoffCosine:
		arg := math.Pi * r / rc
		return 0.5 * (1 + math.Cos(arg)), -0.5 * math.Pi / rc * math.Sin(arg)
	}
	panic(fmt.Sprintf("basis: invalid cutoff kind %d", int(k)))
}
