package metrics

import (
	"math"

	"github.com/stevetorr/flare-pp/internal/md"
)

// NetMomentum tracks the largest magnitude of the total momentum seen
// during a run. A drifting value signals a force imbalance.
type NetMomentum struct {
	name    string
	max     float64
	samples int
}

func NewNetMomentum() *NetMomentum {
	return &NetMomentum{
		name: "net_momentum",
	}
}

func (n *NetMomentum) Name() string {
	return n.name
}

func (n *NetMomentum) Observe(th md.Thermo) {
	p := th.Momentum
	norm := math.Sqrt(p[0]*p[0] + p[1]*p[1] + p[2]*p[2])
	n.max = math.Max(n.max, norm)
	n.samples++
}

func (n *NetMomentum) Value() float64 {
	return n.max
}

func (n *NetMomentum) Reset() {
	n.max = 0
	n.samples = 0
}
