package descriptor

import "math"

// Neighbor is one member of a cutoff-filtered neighborhood.
type Neighbor struct {
	Index   int // index of the neighbor in the caller's position array
	Species int
	Delta   [3]float64 // displacement from the central atom
	R       float64
}

// Neighborhood holds the in-cutoff neighbors of one central atom, in the
// order every evaluation pass visits them.
type Neighborhood struct {
	Center  int
	Species int
	List    []Neighbor
}

// Gather rebuilds the neighborhood of atom center from candidate
// indices, keeping those strictly inside the cutoff sphere. The backing
// array of List is reused across calls.
func (nb *Neighborhood) Gather(center int, pos []float64, species []int, candidates []int, cutoff float64) {
	nb.Center = center
	nb.Species = species[center]
	nb.List = nb.List[:0]

	cut2 := cutoff * cutoff
	cx, cy, cz := pos[3*center], pos[3*center+1], pos[3*center+2]
	for _, j := range candidates {
		if j == center {
			continue
		}
		dx := pos[3*j] - cx
		dy := pos[3*j+1] - cy
		dz := pos[3*j+2] - cz
		r2 := dx*dx + dy*dy + dz*dz
		if r2 >= cut2 {
			continue
		}
		nb.List = append(nb.List, Neighbor{
			Index:   j,
			Species: species[j],
			Delta:   [3]float64{dx, dy, dz},
			R:       math.Sqrt(r2),
		})
	}
}
