package potential

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stevetorr/flare-pp/internal/comm"
)

func writeTestModel(t *testing.T, m *Model) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.flare")
	require.NoError(t, WriteFile(path, m, "fixture"))
	return path
}

func TestLoadRoundTrip(t *testing.T) {
	want := newTestModel(t, KindEnergy, BlocksPerSpecies, 2, 3, 2)
	path := writeTestModel(t, want)

	got, err := Load(path, KindEnergy, BlocksPerSpecies, comm.Single{})
	require.NoError(t, err)

	assert.Equal(t, want.Basis, got.Basis)
	assert.Equal(t, want.Cutoff, got.Cutoff)
	assert.Equal(t, want.CutoffRadius, got.CutoffRadius)
	assert.Equal(t, want.NSpecies, got.NSpecies)
	assert.Equal(t, want.NMax, got.NMax)
	assert.Equal(t, want.LMax, got.LMax)
	require.Equal(t, want.NumBlocks(), got.NumBlocks())
	for s := 0; s < want.NSpecies; s++ {
		assert.Equal(t, want.Packed(s), got.Packed(s), "species %d coefficients", s)
	}
}

func TestLoadVariancePerPair(t *testing.T) {
	want := newTestModel(t, KindVariance, BlocksPerPair, 2, 2, 1)
	path := writeTestModel(t, want)

	got, err := Load(path, KindVariance, BlocksPerPair, comm.Single{})
	require.NoError(t, err)
	require.Equal(t, 4, got.NumBlocks())
	for s1 := 0; s1 < 2; s1++ {
		for s2 := 0; s2 < 2; s2++ {
			assert.Equal(t, want.Block(s1, s2), got.Block(s1, s2))
		}
	}
}

func TestLoadDimensionMismatch(t *testing.T) {
	// An energy file opened as a variance model has the wrong beta_size.
	m := newTestModel(t, KindEnergy, BlocksPerSpecies, 1, 2, 1)
	path := writeTestModel(t, m)

	_, err := Load(path, KindVariance, BlocksPerSpecies, comm.Single{})
	require.ErrorIs(t, err, ErrDimension)
	assert.Contains(t, err.Error(), path, "errors carry the offending filename")
}

func TestLoadHeaderErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		return path
	}

	cases := []struct {
		name string
		body string
	}{
		{"unknown_basis.flare", "c\ngaussian\n1 1 0 1\nquadratic\n4.0\n1.0\n"},
		{"unknown_cutoff.flare", "c\nchebyshev\n1 1 0 1\nhard\n4.0\n1.0\n"},
		{"short_header.flare", "c\nchebyshev\n"},
		{"bad_ints.flare", "c\nchebyshev\n1 x 0 1\nquadratic\n4.0\n1.0\n"},
		{"empty.flare", ""},
	}
	for _, c := range cases {
		_, err := Load(write(c.name, c.body), KindEnergy, BlocksPerSpecies, comm.Single{})
		assert.Error(t, err, c.name)
	}
}

func TestLoadTruncatedCoefficients(t *testing.T) {
	body := "c\nchebyshev\n1 2 1 21\nquadratic\n4.0\n1 2 3 4\n"
	path := filepath.Join(t.TempDir(), "short.flare")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	_, err := Load(path, KindEnergy, BlocksPerSpecies, comm.Single{})
	require.ErrorIs(t, err, ErrCoefficients)
}

func TestLoadBadToken(t *testing.T) {
	body := "c\nchebyshev\n1 1 0 1\nquadratic\n4.0\nnotanumber\n"
	path := filepath.Join(t.TempDir(), "token.flare")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	_, err := Load(path, KindEnergy, BlocksPerSpecies, comm.Single{})
	require.ErrorIs(t, err, ErrCoefficients)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.flare"), KindEnergy, BlocksPerSpecies, comm.Single{})
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestLoadBroadcast(t *testing.T) {
	want := newTestModel(t, KindEnergy, BlocksPerSpecies, 2, 2, 2)
	path := writeTestModel(t, want)

	group := comm.NewGroup(3)
	models := make([]*Model, len(group))
	errs := make([]error, len(group))

	var wg sync.WaitGroup
	for i, c := range group {
		wg.Add(1)
		go func(i int, c comm.Comm) {
			defer wg.Done()
			p := path
			if c.Rank() != 0 {
				// Ranks other than 0 must never open the file.
				p = filepath.Join("nonexistent", "dir", "model.flare")
			}
			models[i], errs[i] = Load(p, KindEnergy, BlocksPerSpecies, c)
		}(i, c)
	}
	wg.Wait()

	for i := range group {
		require.NoError(t, errs[i], "rank %d", i)
	}
	for i := 1; i < len(group); i++ {
		assert.Equal(t, models[0].CutoffRadius, models[i].CutoffRadius)
		for s := 0; s < models[0].NSpecies; s++ {
			assert.Equal(t, models[0].Packed(s), models[i].Packed(s), "rank %d species %d", i, s)
		}
	}
}

func TestLoadAbortPropagates(t *testing.T) {
	group := comm.NewGroup(2)
	errs := make([]error, len(group))

	var wg sync.WaitGroup
	for i, c := range group {
		wg.Add(1)
		go func(i int, c comm.Comm) {
			defer wg.Done()
			_, errs[i] = Load(filepath.Join("nonexistent", "model.flare"), KindEnergy, BlocksPerSpecies, c)
		}(i, c)
	}
	wg.Wait()

	require.Error(t, errs[0])
	assert.True(t, os.IsNotExist(errs[0]), "reading rank sees the original error")
	require.ErrorIs(t, errs[1], ErrAborted)
}
