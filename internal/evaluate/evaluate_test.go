package evaluate

import (
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stevetorr/flare-pp/internal/atoms"
	"github.com/stevetorr/flare-pp/internal/basis"
	"github.com/stevetorr/flare-pp/internal/comm"
	"github.com/stevetorr/flare-pp/internal/descriptor"
	"github.com/stevetorr/flare-pp/internal/potential"
)

func randomCoeffs(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	c := make([]float64, n)
	for i := range c {
		c[i] = 0.2 * (2*rng.Float64() - 1)
	}
	return c
}

func energyModel(t *testing.T, nSpecies, nMax, lMax int, rc float64, seed int64) *potential.Model {
	t.Helper()
	nDesc := descriptor.NumDescriptors(nSpecies, nMax, lMax)
	n := potential.BetaSize(potential.KindEnergy, nDesc) * nSpecies
	m, err := potential.New(potential.KindEnergy, potential.BlocksPerSpecies,
		basis.RadialChebyshev, basis.CutoffQuadratic, rc, nSpecies, nMax, lMax, randomCoeffs(n, seed))
	require.NoError(t, err)
	return m
}

// identityCovariance builds a per-species variance model whose blocks
// are scale times the identity.
func identityCovariance(t *testing.T, nSpecies, nMax, lMax int, rc, scale float64) *potential.Model {
	t.Helper()
	nDesc := descriptor.NumDescriptors(nSpecies, nMax, lMax)
	coeffs := make([]float64, nDesc*nDesc*nSpecies)
	for s := 0; s < nSpecies; s++ {
		for d := 0; d < nDesc; d++ {
			coeffs[s*nDesc*nDesc+d*nDesc+d] = scale
		}
	}
	m, err := potential.New(potential.KindVariance, potential.BlocksPerSpecies,
		basis.RadialChebyshev, basis.CutoffQuadratic, rc, nSpecies, nMax, lMax, coeffs)
	require.NoError(t, err)
	return m
}

// openCluster is a small two-species configuration with pair distances
// safely away from the cutoff shell, so finite differences never change
// neighborhood membership.
func openCluster() *atoms.Structure {
	st := atoms.New(5, []string{"Si", "C"}, []float64{28.085, 12.011}, atoms.Cell{})
	copy(st.Pos, []float64{
		0, 0, 0,
		2.1, 0.3, -0.2,
		-0.4, 2.2, 0.5,
		0.6, -0.5, 2.3,
		2.0, 2.1, -0.4,
	})
	copy(st.Species, []int{0, 1, 0, 1, 0})
	return st
}

func stepOnce(t *testing.T, ev *Evaluator, st *atoms.Structure) (Summary, *Arena) {
	t.Helper()
	require.NoError(t, st.BuildGhosts(ev.Cutoff()))
	nl := atoms.BuildNeighbors(st, ev.Cutoff())
	ar := &Arena{}
	sum, err := ev.Step(st, nl, ar)
	require.NoError(t, err)
	return sum, ar
}

func TestTwoAtomIdentityModel(t *testing.T) {
	// With one descriptor entry and beta = 1 the normalized quadratic
	// form is exactly 1 per atom, independent of geometry, so forces
	// vanish identically.
	const rc = 5.0
	pot, err := potential.New(potential.KindEnergy, potential.BlocksPerSpecies,
		basis.RadialChebyshev, basis.CutoffQuadratic, rc, 1, 1, 0, []float64{1})
	require.NoError(t, err)

	ev, err := New(pot, nil, comm.Single{}, Options{Workers: 1})
	require.NoError(t, err)

	st := atoms.New(2, []string{"H"}, []float64{1.008}, atoms.Cell{})
	copy(st.Pos, []float64{0, 0, 0, 1.9, 0.4, -0.3})

	sum, ar := stepOnce(t, ev, st)
	assert.InDelta(t, 2.0, sum.Energy, 1e-13)
	assert.InDelta(t, 1.0, ar.Energies[0], 1e-14)
	assert.InDelta(t, 1.0, ar.Energies[1], 1e-14)
	for i, f := range ar.Forces {
		assert.InDelta(t, 0.0, f, 1e-13, "force component %d", i)
	}
}

func TestForcesMatchFiniteDifferences(t *testing.T) {
	const (
		rc = 4.5
		h  = 1e-5
	)
	pot := energyModel(t, 2, 2, 1, rc, 11)
	ev, err := New(pot, nil, comm.Single{}, Options{Workers: 1})
	require.NoError(t, err)

	st := openCluster()
	_, ar := stepOnce(t, ev, st)
	forces := append([]float64(nil), ar.Forces[:3*st.NLocal]...)

	total := func(s *atoms.Structure) float64 {
		sum, _ := stepOnce(t, ev, s)
		return sum.Energy
	}

	for i := 0; i < st.NLocal; i++ {
		for c := 0; c < 3; c++ {
			plus := openCluster()
			plus.Pos[3*i+c] += h
			minus := openCluster()
			minus.Pos[3*i+c] -= h
			fd := -(total(plus) - total(minus)) / (2 * h)
			got := forces[3*i+c]
			assert.InDelta(t, fd, got, 1e-6*math.Max(1, math.Abs(fd)),
				"force on atom %d component %d", i, c)
		}
	}
}

func TestMomentumConservation(t *testing.T) {
	const rc = 3.8
	pot := energyModel(t, 1, 3, 2, rc, 3)
	ev, err := New(pot, nil, comm.Single{}, Options{})
	require.NoError(t, err)

	st := atoms.FCC("Al", 4.05, 3, 3, 3)
	atoms.Rattle(st, 0.12, 5)
	st.Wrap()
	_, ar := stepOnce(t, ev, st)

	var net [3]float64
	for i := 0; i < st.NLocal; i++ {
		for c := 0; c < 3; c++ {
			net[c] += ar.Forces[3*i+c]
		}
	}
	for c := 0; c < 3; c++ {
		assert.InDelta(t, 0.0, net[c], 1e-9, "net force component %d", c)
	}
}

func TestVirialMatchesForceMoment(t *testing.T) {
	// For an open cluster the pair tally satisfies
	// W = -sum_k x_k (outer) F_k.
	const rc = 4.5
	pot := energyModel(t, 2, 2, 1, rc, 17)
	ev, err := New(pot, nil, comm.Single{}, Options{Virial: true, Workers: 1})
	require.NoError(t, err)

	st := openCluster()
	sum, ar := stepOnce(t, ev, st)

	moment := func(c1, c2 int) float64 {
		m := 0.0
		for i := 0; i < st.NLocal; i++ {
			m -= st.Pos[3*i+c1] * ar.Forces[3*i+c2]
		}
		return m
	}
	pairs := [6][2]int{{0, 0}, {1, 1}, {2, 2}, {0, 1}, {0, 2}, {1, 2}}
	for k, p := range pairs {
		want := moment(p[0], p[1])
		assert.InDelta(t, want, sum.Virial[k], 1e-9*math.Max(1, math.Abs(want)),
			"virial component %d", k)
	}
}

func TestIsolatedAtomIsZero(t *testing.T) {
	const rc = 4.0
	pot := energyModel(t, 1, 2, 1, rc, 23)
	cov := identityCovariance(t, 1, 2, 1, rc, 1)
	ev, err := New(pot, cov, comm.Single{}, Options{Mode: UncertaintyIsotropic})
	require.NoError(t, err)

	st := atoms.New(1, []string{"Cu"}, []float64{63.546}, atoms.Cell{})
	sum, ar := stepOnce(t, ev, st)

	assert.Zero(t, sum.Energy)
	assert.Zero(t, sum.MaxStd)
	assert.Zero(t, ar.Energies[0])
	assert.Zero(t, ar.Stds[0])
	for _, f := range ar.Forces[:3] {
		assert.Zero(t, f)
	}
	assert.False(t, math.IsNaN(ar.Stds[0]))
}

func TestNewValidation(t *testing.T) {
	const rc = 4.0
	pot := energyModel(t, 1, 2, 1, rc, 29)
	cov := identityCovariance(t, 1, 2, 1, rc, 1)

	_, err := New(nil, nil, comm.Single{}, Options{})
	assert.Error(t, err, "nil potential")

	_, err = New(cov, nil, comm.Single{}, Options{})
	assert.Error(t, err, "variance model in the potential slot")

	_, err = New(pot, nil, comm.Single{}, Options{Mode: UncertaintyIsotropic})
	assert.Error(t, err, "uncertainty without a covariance model")

	_, err = New(pot, pot, comm.Single{}, Options{Mode: UncertaintyIsotropic})
	assert.Error(t, err, "energy model in the covariance slot")

	mismatched := identityCovariance(t, 1, 3, 1, rc, 1)
	_, err = New(pot, mismatched, comm.Single{}, Options{Mode: UncertaintyIsotropic})
	require.ErrorIs(t, err, potential.ErrModelMismatch)
}

func TestStepRejectsForeignSpecies(t *testing.T) {
	const rc = 4.0
	pot := energyModel(t, 1, 2, 1, rc, 31)
	ev, err := New(pot, nil, comm.Single{}, Options{})
	require.NoError(t, err)

	st := atoms.New(2, []string{"Al", "Cu"}, []float64{26.982, 63.546}, atoms.Cell{})
	copy(st.Pos, []float64{0, 0, 0, 2, 0, 0})
	st.Species[1] = 1 // model only knows species 0

	nl := atoms.BuildNeighbors(st, rc)
	_, err = ev.Step(st, nl, &Arena{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "species")
}

func TestWorkerCountInvariance(t *testing.T) {
	const rc = 3.8
	pot := energyModel(t, 1, 2, 2, rc, 37)
	st := atoms.FCC("Al", 4.05, 2, 2, 2)
	atoms.Rattle(st, 0.1, 7)
	st.Wrap()

	run := func(workers int) (*Arena, Summary) {
		ev, err := New(pot, nil, comm.Single{}, Options{Workers: workers})
		require.NoError(t, err)
		sum, ar := stepOnce(t, ev, st)
		return ar, sum
	}

	ar1, sum1 := run(1)
	ar4, sum4 := run(4)

	assert.InDelta(t, sum1.Energy, sum4.Energy, 1e-10*math.Abs(sum1.Energy))
	for i := 0; i < 3*st.NLocal; i++ {
		assert.InDelta(t, ar1.Forces[i], ar4.Forces[i], 1e-10, "force %d", i)
	}
}

func TestMultiRankMatchesSingle(t *testing.T) {
	const rc = 3.8
	pot := energyModel(t, 1, 2, 1, rc, 41)
	cov := identityCovariance(t, 1, 2, 1, rc, 0.5)

	st := atoms.FCC("Al", 4.05, 2, 2, 2)
	atoms.Rattle(st, 0.1, 11)
	st.Wrap()
	require.NoError(t, st.BuildGhosts(rc))
	nl := atoms.BuildNeighbors(st, rc)

	single, err := New(pot, cov, comm.Single{}, Options{Mode: UncertaintyIsotropic, Virial: true})
	require.NoError(t, err)
	refArena := &Arena{}
	refSum, err := single.Step(st, nl, refArena)
	require.NoError(t, err)

	group := comm.NewGroup(3)
	arenas := make([]*Arena, len(group))
	sums := make([]Summary, len(group))
	errs := make([]error, len(group))

	var wg sync.WaitGroup
	for i, c := range group {
		wg.Add(1)
		go func(i int, c comm.Comm) {
			defer wg.Done()
			ev, err := New(pot, cov, c, Options{Mode: UncertaintyIsotropic, Virial: true, Workers: 2})
			if err != nil {
				errs[i] = err
				return
			}
			arenas[i] = &Arena{}
			sums[i], errs[i] = ev.Step(st, nl, arenas[i])
		}(i, c)
	}
	wg.Wait()
	for i := range group {
		require.NoError(t, errs[i], "rank %d", i)
	}

	for r := range group {
		assert.InDelta(t, refSum.Energy, sums[r].Energy, 1e-10*math.Abs(refSum.Energy), "rank %d energy", r)
		assert.InDelta(t, refSum.MaxStd, sums[r].MaxStd, 1e-10, "rank %d max std", r)
		for k := 0; k < 6; k++ {
			assert.InDelta(t, refSum.Virial[k], sums[r].Virial[k], 1e-9, "rank %d virial %d", r, k)
		}
		for i := 0; i < st.NLocal; i++ {
			assert.InDelta(t, refArena.Energies[i], arenas[r].Energies[i], 1e-10, "rank %d atom %d energy", r, i)
			assert.InDelta(t, refArena.Stds[i], arenas[r].Stds[i], 1e-10, "rank %d atom %d std", r, i)
			for c := 0; c < 3; c++ {
				assert.InDelta(t, refArena.Forces[3*i+c], arenas[r].Forces[3*i+c], 1e-9,
					"rank %d atom %d force %d", r, i, c)
			}
		}
	}
}
