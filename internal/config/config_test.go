package config

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stevetorr/flare-pp/internal/evaluate"
	"github.com/stevetorr/flare-pp/internal/potential"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Steps <= 0 {
		t.Error("steps should be positive")
	}
	if cfg.Lattice.Type != "fcc" {
		t.Errorf("expected fcc lattice, got %s", cfg.Lattice.Type)
	}
	if cfg.Uncertainty != "off" {
		t.Errorf("expected uncertainty off, got %s", cfg.Uncertainty)
	}
	if cfg.Ranks != 1 {
		t.Errorf("expected 1 rank, got %d", cfg.Ranks)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	body := `
potential: models/al.flare
uncertainty: isotropic
steps: 50
lattice:
  type: bcc
  element: Fe
  a: 2.87
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Potential != "models/al.flare" {
		t.Errorf("potential = %s", cfg.Potential)
	}
	if cfg.Steps != 50 {
		t.Errorf("steps = %d, want 50", cfg.Steps)
	}
	if cfg.Lattice.Type != "bcc" || cfg.Lattice.Element != "Fe" {
		t.Errorf("lattice = %+v", cfg.Lattice)
	}
	// Untouched keys keep their defaults.
	if cfg.Dt != DefaultDt {
		t.Errorf("dt = %g, want default %g", cfg.Dt, DefaultDt)
	}
	if cfg.SampleEvery != DefaultSampleEvery {
		t.Errorf("sample_every = %d, want default %d", cfg.SampleEvery, DefaultSampleEvery)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := DefaultConfig()
	cfg.Potential = "m.flare"
	cfg.Temperature = 450
	cfg.Virial = true

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if *got != *cfg {
		t.Errorf("round trip changed config:\n got %+v\nwant %+v", got, cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("uq-demo")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Uncertainty != "isotropic" {
		t.Errorf("expected isotropic uncertainty, got %s", cfg.Uncertainty)
	}

	// Returned copies never write back into the table.
	cfg.Steps = 1
	if Presets["uq-demo"].Steps == 1 {
		t.Error("preset table mutated through returned copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) == 0 {
		t.Fatal("expected presets")
	}
	if !sort.StringsAreSorted(names) {
		t.Errorf("presets not sorted: %v", names)
	}
}

func TestMode(t *testing.T) {
	cfg := DefaultConfig()

	mode, err := cfg.Mode()
	if err != nil || mode != evaluate.UncertaintyOff {
		t.Errorf("mode = %v, %v", mode, err)
	}

	cfg.Uncertainty = "directional"
	mode, err = cfg.Mode()
	if err != nil || mode != evaluate.UncertaintyDirectional {
		t.Errorf("mode = %v, %v", mode, err)
	}

	cfg.Uncertainty = "bogus"
	if _, err := cfg.Mode(); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestLayout(t *testing.T) {
	cfg := DefaultConfig()

	layout, err := cfg.Layout()
	if err != nil || layout != potential.BlocksPerSpecies {
		t.Errorf("layout = %v, %v", layout, err)
	}

	cfg.BlockLayout = "pair"
	layout, err = cfg.Layout()
	if err != nil || layout != potential.BlocksPerPair {
		t.Errorf("layout = %v, %v", layout, err)
	}

	cfg.BlockLayout = "diagonal"
	if _, err := cfg.Layout(); err == nil {
		t.Error("expected error for unknown layout")
	}
}

func TestBuildStructureLattice(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Lattice = Lattice{Type: "bcc", Element: "Fe", A: 2.87, Nx: 2, Ny: 2, Nz: 2}

	st, err := cfg.BuildStructure()
	if err != nil {
		t.Fatal(err)
	}
	if st.NLocal != 16 {
		t.Errorf("bcc 2x2x2 has %d atoms, want 16", st.NLocal)
	}
	if st.Symbols[0] != "Fe" {
		t.Errorf("symbol = %s, want Fe", st.Symbols[0])
	}
}

func TestBuildStructureUnknownLattice(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Lattice.Type = "hcp"

	if _, err := cfg.BuildStructure(); err == nil {
		t.Error("expected error for unknown lattice")
	}
}

func TestBuildStructureRattle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Lattice = Lattice{Type: "sc", Element: "Al", A: 3.0, Nx: 2, Ny: 2, Nz: 2}
	cfg.Rattle = 0.1
	cfg.Seed = 5

	a, err := cfg.BuildStructure()
	if err != nil {
		t.Fatal(err)
	}
	b, err := cfg.BuildStructure()
	if err != nil {
		t.Fatal(err)
	}

	for i := range a.Pos {
		if a.Pos[i] != b.Pos[i] {
			t.Fatal("rattle not deterministic for a fixed seed")
		}
	}

	cfg.Rattle = 0
	pristine, err := cfg.BuildStructure()
	if err != nil {
		t.Fatal(err)
	}
	moved := false
	for i := range a.Pos {
		if a.Pos[i] != pristine.Pos[i] {
			moved = true
			break
		}
	}
	if !moved {
		t.Error("rattle left the lattice untouched")
	}
}

func TestBuildStructureFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dimer.xyz")
	body := "2\ncell 10 10 10\nH 0 0 0\nH 0.75 0 0\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.Structure = path

	st, err := cfg.BuildStructure()
	if err != nil {
		t.Fatal(err)
	}
	if st.NLocal != 2 {
		t.Errorf("read %d atoms, want 2", st.NLocal)
	}
}
