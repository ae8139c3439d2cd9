package potential

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Write serializes m in the text format read by Load. Fitted models are
// normally produced offline; this is the round-trip counterpart used by
// tooling and tests.
func Write(w io.Writer, m *Model, comment string) error {
	if comment == "" {
		comment = "flare coefficient model"
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, comment)
	fmt.Fprintln(bw, m.Basis)
	fmt.Fprintf(bw, "%d %d %d %d\n", m.NSpecies, m.NMax, m.LMax, m.BetaSize())
	fmt.Fprintln(bw, m.Cutoff)
	fmt.Fprintf(bw, "%.17g\n", m.CutoffRadius)

	col := 0
	for _, blk := range m.blocks {
		for _, v := range blk {
			fmt.Fprintf(bw, "%.17g", v)
			col++
			if col%5 == 0 {
				bw.WriteByte('\n')
			} else {
				bw.WriteByte(' ')
			}
		}
	}
	if col%5 != 0 {
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteFile writes m to path, truncating any existing file.
func WriteFile(path string, m *Model, comment string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, m, comment); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
