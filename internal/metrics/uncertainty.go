package metrics

import (
	"math"

	"github.com/stevetorr/flare-pp/internal/md"
)

// MaxUncertainty tracks the largest per-atom prediction uncertainty
// seen during a run.
type MaxUncertainty struct {
	name    string
	max     float64
	samples int
}

func NewMaxUncertainty() *MaxUncertainty {
	return &MaxUncertainty{
		name: "max_std",
	}
}

func (m *MaxUncertainty) Name() string {
	return m.name
}

func (m *MaxUncertainty) Observe(th md.Thermo) {
	m.max = math.Max(m.max, th.MaxStd)
	m.samples++
}

func (m *MaxUncertainty) Value() float64 {
	return m.max
}

func (m *MaxUncertainty) Reset() {
	m.max = 0
	m.samples = 0
}

// UncertaintyStability scores a run by the fraction of samples whose
// worst uncertainty stayed below a threshold. 1 means the model was
// confident for the whole trajectory.
type UncertaintyStability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewUncertaintyStability(threshold float64) *UncertaintyStability {
	return &UncertaintyStability{
		name:      "uq_stability",
		threshold: threshold,
	}
}

func (s *UncertaintyStability) Name() string {
	return s.name
}

func (s *UncertaintyStability) Observe(th md.Thermo) {
	s.samples++
	if th.MaxStd > s.threshold {
		s.violations++
	}
}

func (s *UncertaintyStability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *UncertaintyStability) Reset() {
	s.violations = 0
	s.samples = 0
}
