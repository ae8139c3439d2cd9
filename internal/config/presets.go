package config

import "sort"

var Presets = map[string]*Config{
	"nve-quick": {
		Uncertainty: "off", BlockLayout: "species",
		Lattice: Lattice{Type: "fcc", Element: "Al", A: 4.05, Nx: 2, Ny: 2, Nz: 2},
		Dt: 0.001, Steps: 200, Temperature: 300, Seed: 1,
		Skin: 0.5, Ranks: 1, SampleEvery: 10,
	},
	"bulk-al": {
		Uncertainty: "off", BlockLayout: "species",
		Lattice: Lattice{Type: "fcc", Element: "Al", A: 4.05, Nx: 4, Ny: 4, Nz: 4},
		Dt: 0.001, Steps: 2000, Temperature: 300, Seed: 1,
		Skin: 0.5, Ranks: 1, SampleEvery: 20, Virial: true,
	},
	"uq-demo": {
		Uncertainty: "isotropic", BlockLayout: "species",
		Lattice: Lattice{Type: "fcc", Element: "Al", A: 4.05, Nx: 3, Ny: 3, Nz: 3},
		Dt: 0.001, Steps: 500, Temperature: 600, Seed: 7,
		Skin: 0.5, Ranks: 1, SampleEvery: 10, Rattle: 0.05,
	},
	"hot-start": {
		Uncertainty: "off", BlockLayout: "species",
		Lattice: Lattice{Type: "fcc", Element: "Al", A: 4.05, Nx: 3, Ny: 3, Nz: 3},
		Dt: 0.0005, Steps: 4000, Temperature: 1200, Seed: 11,
		Skin: 0.8, Ranks: 1, SampleEvery: 40, Rattle: 0.1,
	},
}

// GetPreset returns a copy of the named preset, so callers can layer
// flag overrides without touching the shared table.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	cp := *cfg
	return &cp
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
