package potential

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/stevetorr/flare-pp/internal/basis"
	"github.com/stevetorr/flare-pp/internal/comm"
	"github.com/stevetorr/flare-pp/internal/descriptor"
)

type fileHeader struct {
	basis    basis.RadialKind
	cutoff   basis.CutoffKind
	radius   float64
	nSpecies int
	nMax     int
	lMax     int
	betaSize int
}

// Load reads a persisted model on rank 0 of c and broadcasts it so every
// rank returns an identical Model. Only rank 0 touches the filesystem.
// kind and layout are stated by the caller; the file does not encode
// them. On a read failure every rank returns an error: the original on
// rank 0, ErrAborted elsewhere.
func Load(path string, kind Kind, layout BlockLayout, c comm.Comm) (*Model, error) {
	var (
		hdr     fileHeader
		coeffs  []float64
		loadErr error
	)
	if c.Rank() == 0 {
		hdr, coeffs, loadErr = readFile(path, kind, layout)
	}

	// Fixed-size status exchange first, then the payload.
	head := make([]int, 7)
	if c.Rank() == 0 && loadErr == nil {
		head[0] = 1
		head[1] = int(hdr.basis)
		head[2] = int(hdr.cutoff)
		head[3] = hdr.nSpecies
		head[4] = hdr.nMax
		head[5] = hdr.lMax
		head[6] = hdr.betaSize
	}
	c.BcastInts(0, head)
	if head[0] == 0 {
		if c.Rank() == 0 {
			return nil, loadErr
		}
		return nil, fmt.Errorf("%w: %s", ErrAborted, path)
	}

	radius := []float64{hdr.radius}
	c.BcastFloats(0, radius)

	nBlocks := NumBlocks(kind, layout, head[3])
	if c.Rank() != 0 {
		coeffs = make([]float64, head[6]*nBlocks)
	}
	c.BcastFloats(0, coeffs)

	m, err := New(kind, layout, basis.RadialKind(head[1]), basis.CutoffKind(head[2]),
		radius[0], head[3], head[4], head[5], coeffs)
	if err != nil {
		return nil, fmt.Errorf("model file %s: %w", path, err)
	}
	slog.Debug("loaded coefficient model",
		slog.String("file", path),
		slog.String("kind", m.Kind.String()),
		slog.Int("species", m.NSpecies),
		slog.Int("descriptors", m.NumDescriptors()),
		slog.Float64("cutoff", m.CutoffRadius))
	return m, nil
}

// readFile parses the text model format: a comment line, the radial
// basis name, four header integers (n_species n_max l_max beta_size),
// the cutoff function name, the cutoff radius, then the coefficient
// block as whitespace-separated tokens spanning arbitrary lines.
func readFile(path string, kind Kind, layout BlockLayout) (fileHeader, []float64, error) {
	var hdr fileHeader

	f, err := os.Open(path)
	if err != nil {
		return hdr, nil, err
	}
	defer f.Close()

	rd := bufio.NewReader(f)
	line := func(what string) (string, error) {
		s, err := rd.ReadString('\n')
		s = strings.TrimSpace(s)
		if err != nil && (err != io.EOF || s == "") {
			return "", fmt.Errorf("%w: %s: missing %s", ErrHeader, path, what)
		}
		return s, nil
	}
	word := func(what string) (string, error) {
		s, err := line(what)
		if err != nil {
			return "", err
		}
		fields := strings.Fields(s)
		if len(fields) == 0 {
			return "", fmt.Errorf("%w: %s: empty %s", ErrHeader, path, what)
		}
		return fields[0], nil
	}

	if _, err := line("comment line"); err != nil {
		return hdr, nil, err
	}

	s, err := word("radial basis name")
	if err != nil {
		return hdr, nil, err
	}
	if hdr.basis, err = basis.ParseRadial(s); err != nil {
		return hdr, nil, fmt.Errorf("%s: %w", path, err)
	}

	s, err = line("hyperparameter line")
	if err != nil {
		return hdr, nil, err
	}
	fields := strings.Fields(s)
	if len(fields) != 4 {
		return hdr, nil, fmt.Errorf("%w: %s: want 4 hyperparameters, got %q", ErrHeader, path, s)
	}
	ints := make([]int, 4)
	for i, fld := range fields {
		if ints[i], err = strconv.Atoi(fld); err != nil {
			return hdr, nil, fmt.Errorf("%w: %s: hyperparameter %q", ErrHeader, path, fld)
		}
	}
	hdr.nSpecies, hdr.nMax, hdr.lMax, hdr.betaSize = ints[0], ints[1], ints[2], ints[3]

	s, err = word("cutoff function name")
	if err != nil {
		return hdr, nil, err
	}
	if hdr.cutoff, err = basis.ParseCutoff(s); err != nil {
		return hdr, nil, fmt.Errorf("%s: %w", path, err)
	}

	s, err = word("cutoff radius")
	if err != nil {
		return hdr, nil, err
	}
	if hdr.radius, err = strconv.ParseFloat(s, 64); err != nil {
		return hdr, nil, fmt.Errorf("%w: %s: cutoff radius %q", ErrHeader, path, s)
	}

	// Validate beta_size against the derived descriptor dimension before
	// touching the coefficient block.
	nDesc := descriptor.NumDescriptors(hdr.nSpecies, hdr.nMax, hdr.lMax)
	if want := BetaSize(kind, nDesc); hdr.betaSize != want {
		return hdr, nil, fmt.Errorf("%w: %s: beta_size %d, derived %d for %d descriptors (%v)",
			ErrDimension, path, hdr.betaSize, want, nDesc, kind)
	}

	// Greedy token scan; values come several to a line.
	want := hdr.betaSize * NumBlocks(kind, layout, hdr.nSpecies)
	coeffs := make([]float64, 0, want)
	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	sc.Split(bufio.ScanWords)
	for len(coeffs) < want && sc.Scan() {
		v, err := strconv.ParseFloat(sc.Text(), 64)
		if err != nil {
			return hdr, nil, fmt.Errorf("%w: %s: token %q", ErrCoefficients, path, sc.Text())
		}
		coeffs = append(coeffs, v)
	}
	if err := sc.Err(); err != nil {
		return hdr, nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(coeffs) != want {
		return hdr, nil, fmt.Errorf("%w: %s: want %d values, got %d", ErrCoefficients, path, want, len(coeffs))
	}
	return hdr, coeffs, nil
}
