package comm

import (
	"fmt"
	"sync"
)

// Local is one rank of an in-process group. NewGroup hands out all ranks;
// each goroutine of a multi-rank run owns exactly one.
type Local struct {
	rank  int
	group *group
}

type group struct {
	size   int
	mu     sync.Mutex
	cond   *sync.Cond
	count  int
	gen    int
	floats [][]float64
	ints   [][]int
}

// NewGroup creates an n-rank in-process communicator.
func NewGroup(n int) []*Local {
	if n < 1 {
		panic(fmt.Sprintf("comm: group size %d", n))
	}
	g := &group{
		size:   n,
		floats: make([][]float64, n),
		ints:   make([][]int, n),
	}
	g.cond = sync.NewCond(&g.mu)
	ranks := make([]*Local, n)
	for i := range ranks {
		ranks[i] = &Local{rank: i, group: g}
	}
	return ranks
}

func (l *Local) Rank() int { return l.rank }
func (l *Local) Size() int { return l.group.size }

// await blocks until every rank of the group has arrived.
func (g *group) await() {
	g.mu.Lock()
	gen := g.gen
	g.count++
	if g.count == g.size {
		g.count = 0
		g.gen++
		g.cond.Broadcast()
		g.mu.Unlock()
		return
	}
	for gen == g.gen {
		g.cond.Wait()
	}
	g.mu.Unlock()
}

func (l *Local) BcastInts(root int, vals []int) {
	g := l.group
	if l.rank == root {
		g.ints[root] = append(g.ints[root][:0], vals...)
	}
	g.await()
	if l.rank != root {
		src := g.ints[root]
		if len(src) != len(vals) {
			panic(fmt.Sprintf("comm: bcast length mismatch: root holds %d ints, rank %d expects %d",
				len(src), l.rank, len(vals)))
		}
		copy(vals, src)
	}
	g.await()
}

func (l *Local) BcastFloats(root int, vals []float64) {
	g := l.group
	if l.rank == root {
		g.floats[root] = append(g.floats[root][:0], vals...)
	}
	g.await()
	if l.rank != root {
		src := g.floats[root]
		if len(src) != len(vals) {
			panic(fmt.Sprintf("comm: bcast length mismatch: root holds %d floats, rank %d expects %d",
				len(src), l.rank, len(vals)))
		}
		copy(vals, src)
	}
	g.await()
}

func (l *Local) SumFloats(vals []float64) {
	g := l.group
	g.floats[l.rank] = append(g.floats[l.rank][:0], vals...)
	g.await()
	// Every rank sums the contributions in rank order so the result is
	// bitwise identical everywhere.
	for i := range vals {
		vals[i] = 0
	}
	for r := 0; r < g.size; r++ {
		part := g.floats[r]
		if len(part) != len(vals) {
			panic(fmt.Sprintf("comm: sum length mismatch: rank %d holds %d floats, rank %d expects %d",
				r, len(part), l.rank, len(vals)))
		}
		for i, v := range part {
			vals[i] += v
		}
	}
	g.await()
}
