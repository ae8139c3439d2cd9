package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	Metadata RunMetadata `json:"metadata"`
	Header   []string    `json:"header"`
	Series   [][]float64 `json:"series"`
}

// ExportJSON streams a saved run as one indented JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	header, rows, err := s.LoadSeries(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		Metadata: *meta,
		Header:   header,
		Series:   rows,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
