package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/hmcsim/internal/config"
	"github.com/san-kum/hmcsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	configFile   = "config.yaml"
	samplesFile  = "samples.csv"
	statsFile    = "stats.csv"
)

// Store keeps one directory per run under baseDir.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Target     string             `json:"target"`
	Sampler    string             `json:"sampler"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Dim        int                `json:"dim"`
	StepSize   float64            `json:"step_size"`
	Samples    int                `json:"samples"`
	Divergent  int                `json:"divergent"`
	Integrator string             `json:"integrator"`
	Metrics    map[string]float64 `json:"metrics"`
}

func newMetadata(runID string, cfg *config.Config, result *sim.Result) RunMetadata {
	// JSON has no NaN, undefined metrics are left out
	metrics := make(map[string]float64, len(result.Metrics))
	for k, v := range result.Metrics {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			metrics[k] = v
		}
	}
	return RunMetadata{
		ID:         runID,
		Target:     cfg.Target,
		Sampler:    cfg.Sampler,
		Timestamp:  time.Now(),
		Seed:       cfg.Seed,
		Dim:        cfg.Dim,
		StepSize:   cfg.StepSize,
		Samples:    len(result.Stats.Hamiltonian),
		Divergent:  result.Stats.NumDivergent(),
		Integrator: cfg.Integrator,
		Metrics:    metrics,
	}
}

// Save writes the configuration, metadata, recorded traces and chain
// statistics of a run and returns its id.
func (s *Store) Save(cfg *config.Config, result *sim.Result) (string, error) {
	runID := fmt.Sprintf("%s_%s_%d", cfg.Target, cfg.Sampler, time.Now().UnixNano())
	runDir := s.Dir(runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), newMetadata(runID, cfg, result)); err != nil {
		return "", err
	}
	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return "", err
	}
	if err := writeSamples(filepath.Join(runDir, samplesFile), result.Traces); err != nil {
		return "", err
	}
	if err := writeStats(filepath.Join(runDir, statsFile), result.Stats); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeCSV(path string, header []string, rows func(w *csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := rows(w); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// samples.csv has one column per trace component, named "pos[0]" and so on.
func writeSamples(path string, traces []sim.Trace) error {
	header := []string{"iter"}
	n := 0
	for _, tr := range traces {
		n = len(tr.Values)
		if n == 0 {
			continue
		}
		for i := range tr.Values[0] {
			header = append(header, fmt.Sprintf("%s[%d]", tr.Name, i))
		}
	}

	return writeCSV(path, header, func(w *csv.Writer) error {
		for s := 0; s < n; s++ {
			row := []string{strconv.Itoa(s)}
			for _, tr := range traces {
				for _, v := range tr.Values[s] {
					row = append(row, formatFloat(v))
				}
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// stats.csv has one row per sample; the transition columns of row 0 are
// empty.
func writeStats(path string, st *sim.Stats) error {
	header := []string{"iter", "hamiltonian", "n_step", "accept_prob"}
	dynamic := st.TreeDepth != nil
	if dynamic {
		header = append(header, "tree_depth", "divergent")
	}

	return writeCSV(path, header, func(w *csv.Writer) error {
		for s, h := range st.Hamiltonian {
			row := []string{strconv.Itoa(s), formatFloat(h), "", ""}
			if dynamic {
				row = append(row, "", "")
			}
			if s > 0 {
				row[2] = strconv.Itoa(st.NumSteps[s-1])
				row[3] = formatFloat(st.AcceptProb[s-1])
				if dynamic {
					row[4] = strconv.Itoa(st.TreeDepth[s-1])
					row[5] = strconv.FormatBool(st.Divergent[s-1])
				}
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// List returns the metadata of all stored runs, newest first.
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
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.Dir(runID), configFile))
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

// LoadSamples reads the recorded traces of a run.
func (s *Store) LoadSamples(runID string) ([]sim.Trace, error) {
	records, err := readCSV(filepath.Join(s.Dir(runID), samplesFile))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: missing header", samplesFile)
	}

	// map columns to traces in header order
	header := records[0][1:]
	var traces []sim.Trace
	owner := make([]int, len(header))
	for c, col := range header {
		name, _, ok := strings.Cut(col, "[")
		if !ok {
			return nil, fmt.Errorf("%s: bad column %q", samplesFile, col)
		}
		if len(traces) == 0 || traces[len(traces)-1].Name != name {
			traces = append(traces, sim.Trace{Name: name})
		}
		owner[c] = len(traces) - 1
	}

	for i := range traces {
		traces[i].Values = make([][]float64, 0, len(records)-1)
	}
	for _, rec := range records[1:] {
		if len(rec) != len(header)+1 {
			return nil, fmt.Errorf("%s: row has %d fields, want %d", samplesFile, len(rec), len(header)+1)
		}
		row := make([][]float64, len(traces))
		for c, field := range rec[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", samplesFile, err)
			}
			row[owner[c]] = append(row[owner[c]], v)
		}
		for i := range traces {
			traces[i].Values = append(traces[i].Values, row[i])
		}
	}
	return traces, nil
}

// LoadStats reads the chain statistics of a run.
func (s *Store) LoadStats(runID string) (*sim.Stats, error) {
	records, err := readCSV(filepath.Join(s.Dir(runID), statsFile))
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s: no samples", statsFile)
	}
	dynamic := len(records[0]) == 6
	n := len(records) - 1

	st := &sim.Stats{
		Hamiltonian: make([]float64, n),
		NumSteps:    make([]int, n-1),
		AcceptProb:  make([]float64, n-1),
	}
	if dynamic {
		st.TreeDepth = make([]int, n-1)
		st.Divergent = make([]bool, n-1)
	}

	for s, rec := range records[1:] {
		if st.Hamiltonian[s], err = strconv.ParseFloat(rec[1], 64); err != nil {
			return nil, fmt.Errorf("%s row %d: %w", statsFile, s, err)
		}
		if s == 0 {
			continue
		}
		if st.NumSteps[s-1], err = strconv.Atoi(rec[2]); err != nil {
			return nil, fmt.Errorf("%s row %d: %w", statsFile, s, err)
		}
		if st.AcceptProb[s-1], err = strconv.ParseFloat(rec[3], 64); err != nil {
			return nil, fmt.Errorf("%s row %d: %w", statsFile, s, err)
		}
		if dynamic {
			if st.TreeDepth[s-1], err = strconv.Atoi(rec[4]); err != nil {
				return nil, fmt.Errorf("%s row %d: %w", statsFile, s, err)
			}
			if st.Divergent[s-1], err = strconv.ParseBool(rec[5]); err != nil {
				return nil, fmt.Errorf("%s row %d: %w", statsFile, s, err)
			}
		}
	}
	return st, nil
}
