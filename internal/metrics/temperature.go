package metrics

import (
	"github.com/stevetorr/flare-pp/internal/md"
)

// MeanTemperature averages the instantaneous temperature over all
// observed samples.
type MeanTemperature struct {
	name    string
	sum     float64
	samples int
}

func NewMeanTemperature() *MeanTemperature {
	return &MeanTemperature{
		name: "mean_temp",
	}
}

func (m *MeanTemperature) Name() string { return m.name }

func (m *MeanTemperature) Observe(th md.Thermo) {
	m.sum += th.Temp
	m.samples++
}

func (m *MeanTemperature) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanTemperature) Reset() {
	m.sum = 0
	m.samples = 0
}
