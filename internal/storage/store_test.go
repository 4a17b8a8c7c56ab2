package storage

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/glasskit/mctsim/internal/solver"
)

func testSeries(t *testing.T) *solver.Series {
	t.Helper()
	series, err := solver.NewSeriesFromSamples(
		[]float64{0, 0.5, 1.0, 2.0},
		[]float64{1.0, 0.7, 0.5, 0.3},
		[]float64{2.0, 0.98, 0.5, 0.18},
	)
	if err != nil {
		t.Fatal(err)
	}
	return series
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	series := testSeries(t)
	stats := solver.Stats{Blocks: 3, KernelCalls: 120, TotalIterations: 90}
	meta := RunMetadata{
		Model:     "f12",
		Dt:        1e-4,
		TMax:      10,
		BlockSize: 32,
		Couplings: map[string]float64{"v1": 0.5, "v2": 2.0},
	}

	runID, err := st.Save(meta, series, stats)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	loaded, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Model != "f12" {
		t.Errorf("expected model 'f12', got '%s'", loaded.Model)
	}
	if loaded.Couplings["v2"] != 2.0 {
		t.Errorf("expected coupling v2 2.0, got %f", loaded.Couplings["v2"])
	}
	if loaded.Samples != 4 || loaded.Components != 1 {
		t.Errorf("expected 4 samples of 1 component, got %d of %d", loaded.Samples, loaded.Components)
	}
	if loaded.Blocks != 3 || loaded.KernelCalls != 120 {
		t.Errorf("stats not preserved: %+v", loaded)
	}
	if loaded.FinalTime != 2.0 {
		t.Errorf("expected final time 2.0, got %f", loaded.FinalTime)
	}
}

func TestStoreRoundTripSeries(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	series := testSeries(t)
	runID, err := st.Save(RunMetadata{Model: "f2"}, series, solver.Stats{})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	back, err := st.LoadSeries(runID)
	if err != nil {
		t.Fatalf("load series failed: %v", err)
	}
	if back.Len() != series.Len() {
		t.Fatalf("expected %d samples, got %d", series.Len(), back.Len())
	}
	for i := 0; i < series.Len(); i++ {
		if back.Time(i) != series.Time(i) {
			t.Errorf("sample %d: time %v != %v", i, back.Time(i), series.Time(i))
		}
		if math.Abs(back.Component(0)[i]-series.Component(0)[i]) > 0 {
			t.Errorf("sample %d: f %v != %v", i, back.Component(0)[i], series.Component(0)[i])
		}
		if math.Abs(back.KernelComponent(0)[i]-series.KernelComponent(0)[i]) > 0 {
			t.Errorf("sample %d: k %v != %v", i, back.KernelComponent(0)[i], series.KernelComponent(0)[i])
		}
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if _, err := st.Save(RunMetadata{Model: "f12"}, testSeries(t), solver.Stats{}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(RunMetadata{Model: "f12"}, testSeries(t), solver.Stats{})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	if _, err := os.Stat(filepath.Join(runDir, "metadata.json")); os.IsNotExist(err) {
		t.Error("metadata.json not created")
	}
	if _, err := os.Stat(filepath.Join(runDir, "series.csv")); os.IsNotExist(err) {
		t.Error("series.csv not created")
	}
}

func TestStoreRejectsEmptySeries(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if _, err := st.Save(RunMetadata{Model: "f12"}, nil, solver.Stats{}); err == nil {
		t.Error("expected error for nil series")
	}
}

func TestExportJSON(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(RunMetadata{Model: "f12"}, testSeries(t), solver.Stats{})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	outPath := filepath.Join(tmpDir, "out.json")
	if err := st.ExportJSON(outPath, runID); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	var exported ExportData
	if err := json.Unmarshal(data, &exported); err != nil {
		t.Fatalf("exported file is not valid JSON: %v", err)
	}
	if exported.Model != "f12" || exported.Samples != 4 {
		t.Errorf("unexpected export payload: %+v", exported)
	}
	if len(exported.F) != 1 || len(exported.F[0]) != 4 {
		t.Errorf("expected one 4-sample component, got %v", exported.F)
	}
}
