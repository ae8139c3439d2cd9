package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/stevetorr/flare-pp/internal/atoms"
	"github.com/stevetorr/flare-pp/internal/evaluate"
	"github.com/stevetorr/flare-pp/internal/potential"
)

const (
	DefaultDt          = 0.001
	DefaultSteps       = 1000
	DefaultTemperature = 300.0
	DefaultSkin        = 0.5
	DefaultSampleEvery = 10
	DefaultLatticeA    = 4.05
)

type Config struct {
	Potential   string  `yaml:"potential"`
	Covariance  string  `yaml:"covariance"`
	Uncertainty string  `yaml:"uncertainty"`
	BlockLayout string  `yaml:"block_layout"`
	Structure   string  `yaml:"structure"`
	Lattice     Lattice `yaml:"lattice"`
	Dt          float64 `yaml:"dt"`
	Steps       int     `yaml:"steps"`
	Temperature float64 `yaml:"temperature"`
	Seed        int64   `yaml:"seed"`
	Skin        float64 `yaml:"skin"`
	Workers     int     `yaml:"workers"`
	Ranks       int     `yaml:"ranks"`
	Virial      bool    `yaml:"virial"`
	SampleEvery int     `yaml:"sample_every"`
	Rattle      float64 `yaml:"rattle"`
}

// Lattice describes a generated starting crystal, used when no
// structure file is given.
type Lattice struct {
	Type    string  `yaml:"type"`
	Element string  `yaml:"element"`
	A       float64 `yaml:"a"`
	Nx      int     `yaml:"nx"`
	Ny      int     `yaml:"ny"`
	Nz      int     `yaml:"nz"`
}

func DefaultConfig() *Config {
	return &Config{
		Uncertainty: "off",
		BlockLayout: "species",
		Lattice: Lattice{
			Type:    "fcc",
			Element: "Al",
			A:       DefaultLatticeA,
			Nx:      3,
			Ny:      3,
			Nz:      3,
		},
		Dt:          DefaultDt,
		Steps:       DefaultSteps,
		Temperature: DefaultTemperature,
		Seed:        1,
		Skin:        DefaultSkin,
		Ranks:       1,
		SampleEvery: DefaultSampleEvery,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Mode() (evaluate.UncertaintyMode, error) {
	return evaluate.ParseUncertainty(c.Uncertainty)
}

func (c *Config) Layout() (potential.BlockLayout, error) {
	return potential.ParseLayout(c.BlockLayout)
}

// BuildStructure loads the configured structure file, or generates and
// optionally rattles the configured lattice when no file is given.
func (c *Config) BuildStructure() (*atoms.Structure, error) {
	if c.Structure != "" {
		return atoms.ReadXYZFile(c.Structure)
	}

	st, ok := atoms.Lattice(c.Lattice.Type, c.Lattice.Element, c.Lattice.A, c.Lattice.Nx, c.Lattice.Ny, c.Lattice.Nz)
	if !ok {
		return nil, fmt.Errorf("unknown lattice type %q", c.Lattice.Type)
	}
	if c.Rattle > 0 {
		atoms.Rattle(st, c.Rattle, c.Seed)
	}
	return st, nil
}
