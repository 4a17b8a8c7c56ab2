package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/glasskit/mctsim/internal/solver"
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
	ID        string    `json:"id"`
	Model     string    `json:"model"`
	Timestamp time.Time `json:"timestamp"`

	Dt        float64 `json:"dt"`
	TMax      float64 `json:"t_max"`
	BlockSize int     `json:"block_size"`

	Couplings    map[string]float64 `json:"couplings,omitempty"`
	Coefficients map[string]float64 `json:"coefficients,omitempty"`

	// RelaxationTime is the 1/e decay time of the first component, zero
	// when the correlator never decays within the grid.
	RelaxationTime float64 `json:"relaxation_time,omitempty"`

	Samples         int     `json:"samples"`
	Components      int     `json:"components"`
	Blocks          int     `json:"blocks"`
	KernelCalls     int     `json:"kernel_calls"`
	TotalIterations int     `json:"total_iterations"`
	FinalTime       float64 `json:"final_time"`
}

func (s *Store) Save(meta RunMetadata, series *solver.Series, stats solver.Stats) (string, error) {
	if series == nil || series.Len() == 0 {
		return "", fmt.Errorf("storage: empty series")
	}

	runID := fmt.Sprintf("%s_%d", meta.Model, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	dim := len(series.F(0).Flatten())

	meta.ID = runID
	meta.Timestamp = time.Now()
	meta.Samples = series.Len()
	meta.Components = dim
	meta.Blocks = stats.Blocks
	meta.KernelCalls = stats.KernelCalls
	meta.TotalIterations = stats.TotalIterations
	meta.FinalTime = series.Time(series.Len() - 1)

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

	csvFile, err := os.Create(filepath.Join(runDir, "series.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	header := []string{"time"}
	for i := 0; i < dim; i++ {
		header = append(header, fmt.Sprintf("f%d", i))
	}
	for i := 0; i < dim; i++ {
		header = append(header, fmt.Sprintf("k%d", i))
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for i := 0; i < series.Len(); i++ {
		row := []string{strconv.FormatFloat(series.Time(i), 'g', 17, 64)}
		for _, v := range series.F(i).Flatten() {
			row = append(row, strconv.FormatFloat(v, 'g', 17, 64))
		}
		for _, v := range series.K(i).Flatten() {
			row = append(row, strconv.FormatFloat(v, 'g', 17, 64))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
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
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
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

// LoadSamples reads the raw columns back: times, one slice per
// correlator component, one slice per kernel component.
func (s *Store) LoadSamples(runID string) ([]float64, [][]float64, [][]float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "series.csv"))
	if err != nil {
		return nil, nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(records) < 2 {
		return []float64{}, nil, nil, nil
	}

	dim := (len(records[0]) - 1) / 2
	times := make([]float64, 0, len(records)-1)
	f := make([][]float64, dim)
	k := make([][]float64, dim)

	for _, record := range records[1:] {
		if len(record) != 1+2*dim {
			return nil, nil, nil, fmt.Errorf("storage: ragged row in %s/series.csv", runID)
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, nil, err
		}
		times = append(times, t)
		for j := 0; j < dim; j++ {
			fv, err := strconv.ParseFloat(record[1+j], 64)
			if err != nil {
				return nil, nil, nil, err
			}
			kv, err := strconv.ParseFloat(record[1+dim+j], 64)
			if err != nil {
				return nil, nil, nil, err
			}
			f[j] = append(f[j], fv)
			k[j] = append(k[j], kv)
		}
	}
	return times, f, k, nil
}

// LoadSeries reconstructs a scalar run as a Series, suitable for feeding
// back into analysis or as the base correlator of a coupled kernel.
// Multi-component runs report an error; use LoadSamples for those.
func (s *Store) LoadSeries(runID string) (*solver.Series, error) {
	times, f, k, err := s.LoadSamples(runID)
	if err != nil {
		return nil, err
	}
	if len(f) != 1 {
		return nil, fmt.Errorf("storage: run %s has %d components, want 1", runID, len(f))
	}
	return solver.NewSeriesFromSamples(times, f[0], k[0])
}
