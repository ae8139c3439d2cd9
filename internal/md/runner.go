// Package md drives constant-energy molecular dynamics over an
// evaluator. The integration is velocity Verlet; neighbor lists carry a
// skin and rebuild only when an atom has drifted half of it.
package md

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stevetorr/flare-pp/internal/atoms"
	"github.com/stevetorr/flare-pp/internal/evaluate"
)

// Thermo is one sampled row of run diagnostics.
type Thermo struct {
	Step      int
	Time      float64 // ps
	Temp      float64 // K
	Potential float64 // eV
	Kinetic   float64 // eV
	Total     float64 // eV
	MaxStd    float64
	Momentum  [3]float64
}

// Metric consumes thermo samples and reduces them to a single number at
// the end of a run.
type Metric interface {
	Name() string
	Observe(th Thermo)
	Value() float64
	Reset()
}

// Result collects a finished (or cancelled) run.
type Result struct {
	Thermo   []Thermo
	Metrics  map[string]float64
	StepsRun int

	// Final per-atom state, copied from the last evaluation.
	Energies []float64
	Forces   []float64
	Stds     []float64
}

// Runner advances one structure under one evaluator. It owns the
// evaluation arena and the neighbor list; the structure is the caller's
// and reflects the current phase point between calls.
type Runner struct {
	st      *atoms.Structure
	ev      *evaluate.Evaluator
	arena   evaluate.Arena
	nl      *atoms.NeighborList
	dt      float64
	skin    float64
	metrics []Metric

	refPos   []float64
	summary  evaluate.Summary
	step     int
	rebuilds int
}

// NewRunner validates the setup, builds the initial ghost shell and
// neighbor list, and computes starting forces so the first Step has a
// complete half-kick.
func NewRunner(st *atoms.Structure, ev *evaluate.Evaluator, dt, skin float64) (*Runner, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("md: timestep %g ps", dt)
	}
	if skin < 0 {
		return nil, fmt.Errorf("md: negative neighbor skin %g", skin)
	}
	r := &Runner{st: st, ev: ev, dt: dt, skin: skin}
	if err := r.rebuild(); err != nil {
		return nil, err
	}
	if err := r.force(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Runner) AddMetric(m Metric) { r.metrics = append(r.metrics, m) }

func (r *Runner) Structure() *atoms.Structure { return r.st }

func (r *Runner) Arena() *evaluate.Arena { return &r.arena }

func (r *Runner) Summary() evaluate.Summary { return r.summary }

func (r *Runner) StepCount() int { return r.step }

func (r *Runner) Rebuilds() int { return r.rebuilds }

func (r *Runner) Dt() float64 { return r.dt }

// rebuild wraps positions, reconstructs the ghost shell and candidate
// list, and records reference positions for drift tracking.
func (r *Runner) rebuild() error {
	r.st.Wrap()
	// The shell must cover the candidate radius, not just the force
	// cutoff, or a pair entering the cutoff between rebuilds could lack
	// its periodic image.
	if err := r.st.BuildGhosts(r.ev.Cutoff() + r.skin); err != nil {
		return err
	}
	r.nl = atoms.BuildNeighbors(r.st, r.ev.Cutoff()+r.skin)
	r.refPos = append(r.refPos[:0], r.st.Pos[:3*r.st.NLocal]...)
	r.rebuilds++
	return nil
}

func (r *Runner) force() error {
	sum, err := r.ev.Step(r.st, r.nl, &r.arena)
	if err != nil {
		return err
	}
	r.summary = sum
	return nil
}

// drifted reports whether any owned atom moved more than half the skin
// since the last rebuild, which would invalidate the candidate list.
func (r *Runner) drifted() bool {
	if r.skin == 0 {
		return true
	}
	lim := r.skin * r.skin / 4
	for i := 0; i < r.st.NLocal; i++ {
		dx := r.st.Pos[3*i] - r.refPos[3*i]
		dy := r.st.Pos[3*i+1] - r.refPos[3*i+1]
		dz := r.st.Pos[3*i+2] - r.refPos[3*i+2]
		if dx*dx+dy*dy+dz*dz > lim {
			return true
		}
	}
	return false
}

// Step advances one velocity-Verlet step.
func (r *Runner) Step() error {
	st := r.st
	n := st.NLocal

	f := r.arena.Forces
	for i := 0; i < n; i++ {
		fac := 0.5 * r.dt * Ftm2V / st.Masses[st.Species[i]]
		st.Vel[3*i] += fac * f[3*i]
		st.Vel[3*i+1] += fac * f[3*i+1]
		st.Vel[3*i+2] += fac * f[3*i+2]
		st.Pos[3*i] += r.dt * st.Vel[3*i]
		st.Pos[3*i+1] += r.dt * st.Vel[3*i+1]
		st.Pos[3*i+2] += r.dt * st.Vel[3*i+2]
	}

	if r.drifted() {
		if err := r.rebuild(); err != nil {
			return err
		}
	} else {
		st.RefreshGhosts()
	}

	if err := r.force(); err != nil {
		return err
	}

	f = r.arena.Forces
	for i := 0; i < n; i++ {
		fac := 0.5 * r.dt * Ftm2V / st.Masses[st.Species[i]]
		st.Vel[3*i] += fac * f[3*i]
		st.Vel[3*i+1] += fac * f[3*i+1]
		st.Vel[3*i+2] += fac * f[3*i+2]
	}

	r.step++
	return nil
}

// Thermo samples the current phase point.
func (r *Runner) Thermo() Thermo {
	ke := KineticEnergy(r.st)
	return Thermo{
		Step:      r.step,
		Time:      float64(r.step) * r.dt,
		Temp:      Temperature(r.st),
		Potential: r.summary.Energy,
		Kinetic:   ke,
		Total:     r.summary.Energy + ke,
		MaxStd:    r.summary.MaxStd,
		Momentum:  NetMomentum(r.st),
	}
}

// Run advances steps, sampling thermo at step zero, every sampleEvery
// steps, and at the final step. Metrics observe every sample. The
// context is honored between steps; a cancelled run returns what it
// gathered alongside ctx.Err().
func (r *Runner) Run(ctx context.Context, steps, sampleEvery int, onSample func(Thermo)) (*Result, error) {
	if sampleEvery < 1 {
		sampleEvery = 1
	}
	for _, m := range r.metrics {
		m.Reset()
	}
	res := &Result{Metrics: make(map[string]float64)}

	sample := func() {
		th := r.Thermo()
		res.Thermo = append(res.Thermo, th)
		for _, m := range r.metrics {
			m.Observe(th)
		}
		if onSample != nil {
			onSample(th)
		}
	}
	sample()

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			for _, m := range r.metrics {
				res.Metrics[m.Name()] = m.Value()
			}
			slog.Debug("run cancelled", slog.Int("step", r.step))
			return res, ctx.Err()
		default:
		}
		if err := r.Step(); err != nil {
			return res, err
		}
		res.StepsRun++
		if (i+1)%sampleEvery == 0 || i == steps-1 {
			sample()
		}
	}

	for _, m := range r.metrics {
		res.Metrics[m.Name()] = m.Value()
	}
	n := r.st.NLocal
	res.Energies = append([]float64(nil), r.arena.Energies[:n]...)
	res.Forces = append([]float64(nil), r.arena.Forces[:3*n]...)
	if w := r.ev.StdWidth(); w > 0 {
		res.Stds = append([]float64(nil), r.arena.Stds[:w*n]...)
	}
	return res, nil
}
