// Package potential holds the immutable coefficient models of a fitted
// machine-learned potential: the energy model contracted for energies
// and forces, and the covariance model contracted for per-atom
// uncertainty. Models are loaded once, shared read-only by every
// evaluation worker, and never mutated afterwards.
package potential

import (
	"fmt"

	"github.com/stevetorr/flare-pp/internal/basis"
	"github.com/stevetorr/flare-pp/internal/descriptor"
)

// Kind distinguishes the two persisted model variants.
type Kind int

const (
	// KindEnergy is the energy/force model: one packed symmetric
	// coefficient matrix per species, beta_size = n(n+1)/2 over the
	// descriptor dimension n.
	KindEnergy Kind = iota
	// KindVariance is the covariance model: dense square blocks,
	// beta_size = n*n.
	KindVariance
)

func (k Kind) String() string {
	switch k {
	case KindEnergy:
		return "energy"
	case KindVariance:
		return "variance"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// BlockLayout states how many dense blocks a KindVariance model carries.
// The file format does not encode it; the caller states the layout as a
// format version and it is never guessed from the coefficient count.
type BlockLayout int

const (
	// BlocksPerSpecies stores one block per species. Cross-species
	// covariance is zero by construction.
	BlocksPerSpecies BlockLayout = iota
	// BlocksPerPair stores one block per ordered species pair,
	// row-major in (s1, s2).
	BlocksPerPair
)

func (l BlockLayout) String() string {
	switch l {
	case BlocksPerSpecies:
		return "species"
	case BlocksPerPair:
		return "pair"
	}
	return fmt.Sprintf("BlockLayout(%d)", int(l))
}

// ParseLayout maps a layout name to its BlockLayout. The empty string
// selects the per-species default.
func ParseLayout(name string) (BlockLayout, error) {
	switch name {
	case "species", "":
		return BlocksPerSpecies, nil
	case "pair":
		return BlocksPerPair, nil
	}
	return 0, fmt.Errorf("unknown block layout %q", name)
}

// BetaSize returns the per-block coefficient count of kind at descriptor
// dimension nDesc.
func BetaSize(kind Kind, nDesc int) int {
	if kind == KindEnergy {
		return nDesc * (nDesc + 1) / 2
	}
	return nDesc * nDesc
}

// NumBlocks returns how many coefficient blocks a model carries.
func NumBlocks(kind Kind, layout BlockLayout, nSpecies int) int {
	if kind == KindVariance && layout == BlocksPerPair {
		return nSpecies * nSpecies
	}
	return nSpecies
}

// Model is an immutable coefficient model.
type Model struct {
	Kind   Kind
	Layout BlockLayout

	Basis        basis.RadialKind
	Cutoff       basis.CutoffKind
	CutoffRadius float64

	NSpecies int
	NMax     int
	LMax     int

	nDesc  int
	blocks [][]float64
}

// New builds a model from raw coefficients, consumed block by block in
// file order: packed upper triangle (j <= k, row-major) for KindEnergy,
// dense row-major squares for KindVariance. The coefficient count must
// match the hyperparameters exactly.
func New(kind Kind, layout BlockLayout, rk basis.RadialKind, ck basis.CutoffKind,
	cutoffRadius float64, nSpecies, nMax, lMax int, coeffs []float64) (*Model, error) {

	if nSpecies < 1 || nMax < 1 || lMax < 0 {
		return nil, fmt.Errorf("%w: n_species=%d n_max=%d l_max=%d", ErrHeader, nSpecies, nMax, lMax)
	}
	if cutoffRadius <= 0 {
		return nil, fmt.Errorf("%w: cutoff radius %g", ErrHeader, cutoffRadius)
	}
	nDesc := descriptor.NumDescriptors(nSpecies, nMax, lMax)
	betaSize := BetaSize(kind, nDesc)
	nBlocks := NumBlocks(kind, layout, nSpecies)
	if len(coeffs) != betaSize*nBlocks {
		return nil, fmt.Errorf("%w: want %d coefficients (%d blocks of %d), got %d",
			ErrCoefficients, betaSize*nBlocks, nBlocks, betaSize, len(coeffs))
	}

	blocks := make([][]float64, nBlocks)
	for i := range blocks {
		blk := make([]float64, betaSize)
		copy(blk, coeffs[i*betaSize:(i+1)*betaSize])
		blocks[i] = blk
	}
	return &Model{
		Kind:         kind,
		Layout:       layout,
		Basis:        rk,
		Cutoff:       ck,
		CutoffRadius: cutoffRadius,
		NSpecies:     nSpecies,
		NMax:         nMax,
		LMax:         lMax,
		nDesc:        nDesc,
		blocks:       blocks,
	}, nil
}

func (m *Model) NumDescriptors() int { return m.nDesc }

func (m *Model) BetaSize() int { return BetaSize(m.Kind, m.nDesc) }

func (m *Model) NumBlocks() int { return len(m.blocks) }

// Packed returns the packed symmetric coefficient matrix of species s in
// a KindEnergy model, indexed by unordered descriptor pairs j <= k.
func (m *Model) Packed(s int) []float64 {
	if m.Kind != KindEnergy {
		panic("potential: Packed called on a variance model")
	}
	return m.blocks[s]
}

// Block returns the dense covariance block of an ordered species pair.
// Under BlocksPerSpecies cross-species blocks do not exist and Block
// returns nil for s1 != s2.
func (m *Model) Block(s1, s2 int) []float64 {
	if m.Kind != KindVariance {
		panic("potential: Block called on an energy model")
	}
	if m.Layout == BlocksPerSpecies {
		if s1 != s2 {
			return nil
		}
		return m.blocks[s1]
	}
	return m.blocks[s1*m.NSpecies+s2]
}

// SameHyperparameters reports whether two models describe the same
// descriptor space and cutoff, so their contractions may share one
// descriptor evaluation.
func (m *Model) SameHyperparameters(o *Model) bool {
	return m.Basis == o.Basis &&
		m.Cutoff == o.Cutoff &&
		m.CutoffRadius == o.CutoffRadius &&
		m.NSpecies == o.NSpecies &&
		m.NMax == o.NMax &&
		m.LMax == o.LMax
}
