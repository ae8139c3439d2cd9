package atoms

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// atomicMasses covers the elements that show up in our fixtures.
// Unknown symbols fall back to 1; callers may overwrite Masses directly.
var atomicMasses = map[string]float64{
	"H": 1.008, "He": 4.0026, "Li": 6.94, "B": 10.81, "C": 12.011,
	"N": 14.007, "O": 15.999, "F": 18.998, "Na": 22.99, "Mg": 24.305,
	"Al": 26.982, "Si": 28.085, "P": 30.974, "S": 32.06, "Cl": 35.45,
	"K": 39.098, "Ca": 40.078, "Ti": 47.867, "Cr": 51.996, "Fe": 55.845,
	"Ni": 58.693, "Cu": 63.546, "Zn": 65.38, "Ag": 107.87, "W": 183.84,
	"Au": 196.97,
}

// MassOf returns the atomic mass of a chemical symbol in amu, or 1 for
// symbols outside the table.
func MassOf(symbol string) float64 {
	if m, ok := atomicMasses[symbol]; ok {
		return m
	}
	return 1
}

// ReadXYZ parses the XYZ dialect used by the tooling: an atom count, a
// comment line optionally carrying "cell Lx Ly Lz", then one
// "Symbol x y z" line per atom. Species indices are assigned by first
// appearance of each symbol.
func ReadXYZ(r io.Reader) (*Structure, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)

	next := func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}
		return sc.Text(), true
	}

	head, ok := next()
	if !ok {
		return nil, fmt.Errorf("atoms: empty xyz input")
	}
	n, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil || n < 0 {
		return nil, fmt.Errorf("atoms: bad atom count %q", head)
	}

	comment, ok := next()
	if !ok {
		return nil, fmt.Errorf("atoms: missing xyz comment line")
	}
	var cell Cell
	if fields := strings.Fields(comment); len(fields) >= 4 && fields[0] == "cell" {
		for c := 0; c < 3; c++ {
			if cell.L[c], err = strconv.ParseFloat(fields[c+1], 64); err != nil {
				return nil, fmt.Errorf("atoms: bad cell entry %q", fields[c+1])
			}
		}
	}

	st := New(n, nil, nil, cell)
	index := map[string]int{}
	for i := 0; i < n; i++ {
		line, ok := next()
		if !ok {
			return nil, fmt.Errorf("atoms: xyz ends after %d of %d atoms", i, n)
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return nil, fmt.Errorf("atoms: bad xyz atom line %q", line)
		}
		sym := fields[0]
		s, seen := index[sym]
		if !seen {
			s = len(st.Symbols)
			index[sym] = s
			st.Symbols = append(st.Symbols, sym)
			st.Masses = append(st.Masses, MassOf(sym))
		}
		st.Species[i] = s
		for c := 0; c < 3; c++ {
			if st.Pos[3*i+c], err = strconv.ParseFloat(fields[c+1], 64); err != nil {
				return nil, fmt.Errorf("atoms: bad coordinate %q", fields[c+1])
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return st, nil
}

// ReadXYZFile reads a structure from path.
func ReadXYZFile(path string) (*Structure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	st, err := ReadXYZ(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return st, nil
}

// WriteXYZ writes the owned atoms of s, including the cell comment when
// the structure is periodic.
func WriteXYZ(w io.Writer, s *Structure) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n", s.NLocal)
	if s.Cell.Periodic() {
		fmt.Fprintf(bw, "cell %.17g %.17g %.17g\n", s.Cell.L[0], s.Cell.L[1], s.Cell.L[2])
	} else {
		fmt.Fprintln(bw, "open boundaries")
	}
	for i := 0; i < s.NLocal; i++ {
		fmt.Fprintf(bw, "%s %.17g %.17g %.17g\n",
			s.Symbols[s.Species[i]], s.Pos[3*i], s.Pos[3*i+1], s.Pos[3*i+2])
	}
	return bw.Flush()
}

// WriteXYZFile writes the owned atoms of s to path.
func WriteXYZFile(path string, s *Structure) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteXYZ(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
