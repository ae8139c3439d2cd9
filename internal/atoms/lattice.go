package atoms

import "math/rand"

var latticeBases = map[string][][3]float64{
	"sc":  {{0, 0, 0}},
	"bcc": {{0, 0, 0}, {0.5, 0.5, 0.5}},
	"fcc": {{0, 0, 0}, {0, 0.5, 0.5}, {0.5, 0, 0.5}, {0.5, 0.5, 0}},
}

// LatticeTypes lists the supported single-species lattice builders.
func LatticeTypes() []string { return []string{"fcc", "bcc", "sc"} }

// Lattice builds an nx x ny x nz periodic supercell of the named cubic
// lattice with constant a, filled with one species.
func Lattice(kind, symbol string, a float64, nx, ny, nz int) (*Structure, bool) {
	basis, ok := latticeBases[kind]
	if !ok {
		return nil, false
	}
	n := len(basis) * nx * ny * nz
	st := New(n, []string{symbol}, []float64{MassOf(symbol)}, Cell{
		L: [3]float64{a * float64(nx), a * float64(ny), a * float64(nz)},
	})
	i := 0
	for cx := 0; cx < nx; cx++ {
		for cy := 0; cy < ny; cy++ {
			for cz := 0; cz < nz; cz++ {
				for _, b := range basis {
					st.Pos[3*i] = a * (float64(cx) + b[0])
					st.Pos[3*i+1] = a * (float64(cy) + b[1])
					st.Pos[3*i+2] = a * (float64(cz) + b[2])
					i++
				}
			}
		}
	}
	return st, true
}

// FCC builds a face-centered-cubic supercell.
func FCC(symbol string, a float64, nx, ny, nz int) *Structure {
	st, _ := Lattice("fcc", symbol, a, nx, ny, nz)
	return st
}

// BCC builds a body-centered-cubic supercell.
func BCC(symbol string, a float64, nx, ny, nz int) *Structure {
	st, _ := Lattice("bcc", symbol, a, nx, ny, nz)
	return st
}

// Rattle displaces every owned atom uniformly within [-amplitude,
// amplitude] per component. Perfect lattices sit on a symmetry point
// where forces vanish; a small rattle gives dynamics something to do.
func Rattle(st *Structure, amplitude float64, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < 3*st.NLocal; i++ {
		st.Pos[i] += amplitude * (2*rng.Float64() - 1)
	}
}
