package analysis

import (
	"errors"
	"math"

	"github.com/stevetorr/flare-pp/internal/atoms"
)

// RDF is a binned radial distribution function. R holds bin centers, G
// the distribution value per bin, and Coordination the running number
// of neighbors within the bin's outer edge.
//
// For periodic cells G is normalized against an ideal gas of the same
// density, so g(r) tends to 1 at large r. For open boundaries no
// volume normalization is meaningful and G holds raw pair counts per
// bin.
type RDF struct {
	RMax         float64
	R            []float64
	G            []float64
	Coordination []float64
}

// ComputeRDF bins all owned-atom pair distances up to rMax. Distances
// use the minimum image convention, which caps rMax at half the
// shortest cell axis; a larger request is clamped and the effective
// range recorded in the result.
func ComputeRDF(st *atoms.Structure, rMax float64, bins int) (*RDF, error) {
	if bins < 1 {
		return nil, errors.New("rdf: need at least one bin")
	}
	if rMax <= 0 {
		return nil, errors.New("rdf: rMax must be positive")
	}
	n := st.NLocal
	if n < 2 {
		return nil, errors.New("rdf: need at least two atoms")
	}

	periodic := st.Cell.Periodic()
	if periodic {
		half := math.Min(st.Cell.L[0], math.Min(st.Cell.L[1], st.Cell.L[2])) / 2
		if rMax > half {
			rMax = half
		}
	}

	dr := rMax / float64(bins)
	hist := make([]float64, bins)

	for i := 0; i < n; i++ {
		xi, yi, zi := st.Pos[3*i], st.Pos[3*i+1], st.Pos[3*i+2]
		for j := i + 1; j < n; j++ {
			dx := st.Pos[3*j] - xi
			dy := st.Pos[3*j+1] - yi
			dz := st.Pos[3*j+2] - zi
			if periodic {
				dx -= st.Cell.L[0] * math.Round(dx/st.Cell.L[0])
				dy -= st.Cell.L[1] * math.Round(dy/st.Cell.L[1])
				dz -= st.Cell.L[2] * math.Round(dz/st.Cell.L[2])
			}
			r := math.Sqrt(dx*dx + dy*dy + dz*dz)
			if r < rMax {
				hist[int(r/dr)]++
			}
		}
	}

	rdf := &RDF{
		RMax:         rMax,
		R:            make([]float64, bins),
		G:            make([]float64, bins),
		Coordination: make([]float64, bins),
	}

	density := 0.0
	if periodic {
		density = float64(n) / st.Cell.Volume()
	}

	coord := 0.0
	for k := 0; k < bins; k++ {
		lo := float64(k) * dr
		hi := lo + dr
		rdf.R[k] = lo + dr/2

		// Each unordered pair contributes a neighbor to both members.
		coord += 2 * hist[k] / float64(n)
		rdf.Coordination[k] = coord

		if periodic {
			shell := 4 * math.Pi / 3 * (hi*hi*hi - lo*lo*lo)
			rdf.G[k] = 2 * hist[k] / (float64(n) * shell * density)
		} else {
			rdf.G[k] = hist[k]
		}
	}
	return rdf, nil
}
