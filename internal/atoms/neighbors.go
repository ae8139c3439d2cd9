package atoms

// NeighborList holds candidate neighbors of every owned atom in
// compressed form. Candidates are gathered within a radius, normally
// the interaction cutoff plus a skin, and are not cutoff-filtered;
// consumers apply the strict cutoff themselves.
type NeighborList struct {
	Radius  float64
	offsets []int
	list    []int
}

func (nl *NeighborList) NumCenters() int { return len(nl.offsets) - 1 }

// Neighbors returns the candidate indices of owned atom i. The slice
// aliases internal storage and is valid until the next build.
func (nl *NeighborList) Neighbors(i int) []int {
	return nl.list[nl.offsets[i]:nl.offsets[i+1]]
}

// BuildNeighbors scans every owned atom against all owned and ghost
// positions. The quadratic scan is plenty for the system sizes this
// engine targets.
func BuildNeighbors(st *Structure, radius float64) *NeighborList {
	total := st.Total()
	r2 := radius * radius
	nl := &NeighborList{
		Radius:  radius,
		offsets: make([]int, 1, st.NLocal+1),
	}
	for i := 0; i < st.NLocal; i++ {
		xi, yi, zi := st.Pos[3*i], st.Pos[3*i+1], st.Pos[3*i+2]
		for j := 0; j < total; j++ {
			if j == i {
				continue
			}
			dx := st.Pos[3*j] - xi
			dy := st.Pos[3*j+1] - yi
			dz := st.Pos[3*j+2] - zi
			if dx*dx+dy*dy+dz*dz < r2 {
				nl.list = append(nl.list, j)
			}
		}
		nl.offsets = append(nl.offsets, len(nl.list))
	}
	return nl
}
