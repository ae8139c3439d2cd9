// Package atoms holds the host-side representation of an atomic
// configuration: owned atoms, the periodic ghost shell, candidate
// neighbor lists and structure I/O. Positions are in angstroms, masses
// in amu.
package atoms

import (
	"fmt"
	"math"
)

// Cell is an orthorhombic simulation box with its origin at zero. A
// zero-length cell means open boundaries.
type Cell struct {
	L [3]float64
}

func (c Cell) Periodic() bool { return c.L[0] > 0 && c.L[1] > 0 && c.L[2] > 0 }
func (c Cell) Volume() float64 {
	return c.L[0] * c.L[1] * c.L[2]
}

// Structure is an atom container: owned atoms first, then the ghost
// shell appended by BuildGhosts. Species indices follow the order of
// Symbols and must match the coefficient model's species numbering.
type Structure struct {
	Symbols []string  // species index to chemical symbol
	Masses  []float64 // per species, amu
	Cell    Cell

	NLocal  int
	Pos     []float64 // three per atom, owned then ghost
	Vel     []float64 // three per owned atom
	Species []int     // owned then ghost
	Tags    []int     // stable ids; ghost copies repeat their owner's tag

	owners []int        // ghost index to owning local index
	shifts [][3]float64 // ghost index to periodic image shift
}

// New allocates a structure of n owned atoms with zeroed positions and
// velocities. Tags start at 1.
func New(n int, symbols []string, masses []float64, cell Cell) *Structure {
	st := &Structure{
		Symbols: symbols,
		Masses:  masses,
		Cell:    cell,
		NLocal:  n,
		Pos:     make([]float64, 3*n),
		Vel:     make([]float64, 3*n),
		Species: make([]int, n),
		Tags:    make([]int, n),
	}
	for i := range st.Tags {
		st.Tags[i] = i + 1
	}
	return st
}

func (s *Structure) Total() int { return len(s.Species) }

func (s *Structure) NGhost() int { return len(s.owners) }

// GhostOwners maps each ghost (in appended order) to the local index of
// the atom it mirrors.
func (s *Structure) GhostOwners() []int { return s.owners }

// Wrap folds owned positions back into the box.
func (s *Structure) Wrap() {
	if !s.Cell.Periodic() {
		return
	}
	for i := 0; i < s.NLocal; i++ {
		for c := 0; c < 3; c++ {
			L := s.Cell.L[c]
			x := math.Mod(s.Pos[3*i+c], L)
			if x < 0 {
				x += L
			}
			s.Pos[3*i+c] = x
		}
	}
}

// DropGhosts removes the ghost shell, keeping owned atoms only.
func (s *Structure) DropGhosts() {
	s.Pos = s.Pos[:3*s.NLocal]
	s.Species = s.Species[:s.NLocal]
	s.Tags = s.Tags[:s.NLocal]
	s.owners = s.owners[:0]
	s.shifts = s.shifts[:0]
}

// BuildGhosts appends a periodic image copy of every owned atom that
// lies within rc of a box face, so neighborhood sums near the boundary
// are complete. Owned positions must already be wrapped into the box.
func (s *Structure) BuildGhosts(rc float64) error {
	s.DropGhosts()
	if !s.Cell.Periodic() {
		return nil
	}
	for c := 0; c < 3; c++ {
		if s.Cell.L[c] < 2*rc {
			return fmt.Errorf("atoms: cell axis %d length %g is shorter than twice the cutoff %g",
				c, s.Cell.L[c], rc)
		}
	}

	Lx, Ly, Lz := s.Cell.L[0], s.Cell.L[1], s.Cell.L[2]
	for i := 0; i < s.NLocal; i++ {
		x, y, z := s.Pos[3*i], s.Pos[3*i+1], s.Pos[3*i+2]
		for dx := -1; dx <= 1; dx++ {
			px := x + float64(dx)*Lx
			if px <= -rc || px >= Lx+rc {
				continue
			}
			for dy := -1; dy <= 1; dy++ {
				py := y + float64(dy)*Ly
				if py <= -rc || py >= Ly+rc {
					continue
				}
				for dz := -1; dz <= 1; dz++ {
					if dx == 0 && dy == 0 && dz == 0 {
						continue
					}
					pz := z + float64(dz)*Lz
					if pz <= -rc || pz >= Lz+rc {
						continue
					}
					s.Pos = append(s.Pos, px, py, pz)
					s.Species = append(s.Species, s.Species[i])
					s.Tags = append(s.Tags, s.Tags[i])
					s.owners = append(s.owners, i)
					s.shifts = append(s.shifts, [3]float64{
						float64(dx) * Lx, float64(dy) * Ly, float64(dz) * Lz,
					})
				}
			}
		}
	}
	return nil
}

// RefreshGhosts recomputes ghost positions from their owners after owned
// atoms moved, without rebuilding the shell. Valid while no owned atom
// has drifted far enough to change the shell membership, which the
// neighbor skin guards.
func (s *Structure) RefreshGhosts() {
	for g, owner := range s.owners {
		j := s.NLocal + g
		s.Pos[3*j] = s.Pos[3*owner] + s.shifts[g][0]
		s.Pos[3*j+1] = s.Pos[3*owner+1] + s.shifts[g][1]
		s.Pos[3*j+2] = s.Pos[3*owner+2] + s.shifts[g][2]
	}
}
