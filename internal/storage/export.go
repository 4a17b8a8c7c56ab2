package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/glasskit/mctsim/internal/solver"
)

type ExportData struct {
	Model        string             `json:"model"`
	Couplings    map[string]float64 `json:"couplings,omitempty"`
	Coefficients map[string]float64 `json:"coefficients,omitempty"`
	Dt           float64            `json:"dt"`
	Samples      int                `json:"samples"`
	Times        []float64          `json:"times"`
	F            [][]float64        `json:"f"`
	K            [][]float64        `json:"k"`
}

func buildExport(meta *RunMetadata, times []float64, f, k [][]float64) ExportData {
	return ExportData{
		Model:        meta.Model,
		Couplings:    meta.Couplings,
		Coefficients: meta.Coefficients,
		Dt:           meta.Dt,
		Samples:      len(times),
		Times:        times,
		F:            f,
		K:            k,
	}
}

func exportTo(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportJSON writes a stored run to a standalone JSON file.
func (s *Store) ExportJSON(path, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	times, f, k, err := s.LoadSamples(runID)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return exportTo(file, buildExport(meta, times, f, k))
}

// ExportJSONStdout prints a stored run to standard output.
func (s *Store) ExportJSONStdout(runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	times, f, k, err := s.LoadSamples(runID)
	if err != nil {
		return err
	}
	return exportTo(os.Stdout, buildExport(meta, times, f, k))
}

// ExportSeriesJSON writes an in-memory series directly, without going
// through the store.
func ExportSeriesJSON(path string, meta RunMetadata, series *solver.Series) error {
	dim := 0
	if series.Len() > 0 {
		dim = len(series.F(0).Flatten())
	}
	f := make([][]float64, dim)
	k := make([][]float64, dim)
	for j := 0; j < dim; j++ {
		f[j] = series.Component(j)
		k[j] = series.KernelComponent(j)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return exportTo(file, buildExport(&meta, series.Times(), f, k))
}
