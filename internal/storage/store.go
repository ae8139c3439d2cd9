// Package storage persists finished runs under a base directory, one
// subdirectory per run: metadata.json, a thermo time series, the final
// per-atom state and the final structure in xyz form.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/stevetorr/flare-pp/internal/atoms"
	"github.com/stevetorr/flare-pp/internal/md"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Timestamp   time.Time          `json:"timestamp"`
	Potential   string             `json:"potential"`
	Covariance  string             `json:"covariance,omitempty"`
	Uncertainty string             `json:"uncertainty"`
	Atoms       int                `json:"atoms"`
	Species     []string           `json:"species"`
	Dt          float64            `json:"dt"`
	Steps       int                `json:"steps"`
	Temperature float64            `json:"temperature"`
	Seed        int64              `json:"seed"`
	Metrics     map[string]float64 `json:"metrics"`
}

var seriesHeader = []string{"step", "time", "temp", "pe", "ke", "etot", "max_std", "px", "py", "pz"}

// Save writes one run directory and returns its id. The metadata's ID
// and Timestamp fields are filled in here; the structure provides the
// final positions and velocities matching res.
func (s *Store) Save(meta RunMetadata, st *atoms.Structure, res *md.Result) (string, error) {
	runID := fmt.Sprintf("md_%d", time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()
	meta.Atoms = st.NLocal
	meta.Species = st.Symbols
	if meta.Metrics == nil {
		meta.Metrics = res.Metrics
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := s.writeSeries(filepath.Join(runDir, "series.csv"), res); err != nil {
		return "", err
	}
	if err := s.writeAtoms(filepath.Join(runDir, "atoms.csv"), st, res); err != nil {
		return "", err
	}
	if err := atoms.WriteXYZFile(filepath.Join(runDir, "final.xyz"), st); err != nil {
		return "", err
	}

	return runID, nil
}

func (s *Store) writeSeries(path string, res *md.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(seriesHeader); err != nil {
		return err
	}
	for _, th := range res.Thermo {
		row := []string{
			strconv.Itoa(th.Step),
			num(th.Time), num(th.Temp), num(th.Potential), num(th.Kinetic),
			num(th.Total), num(th.MaxStd),
			num(th.Momentum[0]), num(th.Momentum[1]), num(th.Momentum[2]),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

func (s *Store) writeAtoms(path string, st *atoms.Structure, res *md.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	n := st.NLocal
	stdWidth := 0
	if n > 0 {
		stdWidth = len(res.Stds) / n
	}

	header := []string{"id", "symbol", "x", "y", "z", "vx", "vy", "vz", "fx", "fy", "fz", "energy"}
	switch stdWidth {
	case 1:
		header = append(header, "std")
	case 3:
		header = append(header, "std_x", "std_y", "std_z")
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		row := []string{
			strconv.Itoa(st.Tags[i]),
			st.Symbols[st.Species[i]],
			num(st.Pos[3*i]), num(st.Pos[3*i+1]), num(st.Pos[3*i+2]),
			num(st.Vel[3*i]), num(st.Vel[3*i+1]), num(st.Vel[3*i+2]),
			num(res.Forces[3*i]), num(res.Forces[3*i+1]), num(res.Forces[3*i+2]),
			num(res.Energies[i]),
		}
		for c := 0; c < stdWidth; c++ {
			row = append(row, num(res.Stds[stdWidth*i+c]))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadSeries reads a run's thermo series back as a column header and
// one float row per sample.
func (s *Store) LoadSeries(runID string) ([]string, [][]float64, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "series.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("storage: %s has an empty series", runID)
	}

	header := records[0]
	rows := make([][]float64, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make([]float64, len(record))
		for j, field := range record {
			if row[j], err = strconv.ParseFloat(field, 64); err != nil {
				return nil, nil, fmt.Errorf("storage: bad series value %q: %w", field, err)
			}
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

// FinalStructurePath points at the final xyz snapshot of a saved run.
func (s *Store) FinalStructurePath(runID string) string {
	return filepath.Join(s.baseDir, runID, "final.xyz")
}
