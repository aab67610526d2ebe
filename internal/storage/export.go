package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/hmcsim/internal/sim"
)

type ExportData struct {
	Run     RunMetadata            `json:"run"`
	Traces  map[string][][]float64 `json:"traces"`
	Stats   *sim.Stats             `json:"stats"`
	Metrics map[string]float64     `json:"metrics"`
}

// Export loads a stored run into a single document.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	traces, err := s.LoadSamples(runID)
	if err != nil {
		return nil, err
	}
	stats, err := s.LoadStats(runID)
	if err != nil {
		return nil, err
	}

	data := &ExportData{
		Run:     *meta,
		Traces:  make(map[string][][]float64, len(traces)),
		Stats:   stats,
		Metrics: meta.Metrics,
	}
	for _, tr := range traces {
		data.Traces[tr.Name] = tr.Values
	}
	return data, nil
}

func WriteJSON(w io.Writer, data *ExportData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func ExportJSON(path string, data *ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, data)
}

func ExportJSONStdout(data *ExportData) error {
	return WriteJSON(os.Stdout, data)
}
