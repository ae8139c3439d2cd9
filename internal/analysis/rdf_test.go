package analysis

import (
	"math"
	"testing"

	"github.com/stevetorr/flare-pp/internal/atoms"
)

func TestComputeRDFPerfectFCC(t *testing.T) {
	const a = 4.05
	st := atoms.FCC("Al", a, 3, 3, 3)

	rdf, err := ComputeRDF(st, 4.0, 80)
	if err != nil {
		t.Fatal(err)
	}

	first := a / math.Sqrt2

	// Nothing below the nearest-neighbor shell.
	for k, g := range rdf.G {
		if rdf.R[k] < first-0.2 && g != 0 {
			t.Fatalf("g(%g) = %g inside the excluded core", rdf.R[k], g)
		}
	}

	// The peak bin contains the first shell distance.
	peak := 0
	for k := range rdf.G {
		if rdf.G[k] > rdf.G[peak] {
			peak = k
		}
	}
	if math.Abs(rdf.R[peak]-first) > 0.05 {
		t.Errorf("peak at r = %g, want near %g", rdf.R[peak], first)
	}

	// Twelve nearest neighbors once the first shell is swept.
	probe := 0
	for k := range rdf.R {
		if rdf.R[k] < first+0.3 {
			probe = k
		}
	}
	if got := rdf.Coordination[probe]; math.Abs(got-12) > 1e-12 {
		t.Errorf("first shell coordination = %g, want 12", got)
	}
}

func TestComputeRDFClampsToHalfCell(t *testing.T) {
	st := atoms.FCC("Al", 4.05, 2, 2, 2) // 8.1 A cell

	rdf, err := ComputeRDF(st, 100, 10)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(rdf.RMax-4.05) > 1e-12 {
		t.Errorf("RMax = %g, want clamped to 4.05", rdf.RMax)
	}
}

func TestComputeRDFOpenBoundaries(t *testing.T) {
	st := atoms.New(2, []string{"H"}, []float64{1.008}, atoms.Cell{})
	st.Pos = []float64{0, 0, 0, 1.5, 0, 0}

	rdf, err := ComputeRDF(st, 2.0, 4)
	if err != nil {
		t.Fatal(err)
	}

	// One pair in the bin holding r = 1.5, raw counts for open cells.
	if rdf.G[3] != 1 {
		t.Errorf("pair count = %g, want 1", rdf.G[3])
	}
	if rdf.Coordination[3] != 1 {
		t.Errorf("coordination = %g, want 1", rdf.Coordination[3])
	}
}

func TestComputeRDFValidation(t *testing.T) {
	st := atoms.FCC("Al", 4.05, 2, 2, 2)

	if _, err := ComputeRDF(st, 4.0, 0); err == nil {
		t.Error("zero bins accepted")
	}
	if _, err := ComputeRDF(st, -1, 10); err == nil {
		t.Error("negative range accepted")
	}

	single := atoms.New(1, []string{"H"}, []float64{1.008}, atoms.Cell{})
	if _, err := ComputeRDF(single, 4.0, 10); err == nil {
		t.Error("single atom accepted")
	}
}
