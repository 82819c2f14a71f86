package automation

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/mandelscope/internal/compute"
	"github.com/san-kum/mandelscope/internal/config"
	"github.com/san-kum/mandelscope/internal/export"
	"github.com/san-kum/mandelscope/internal/fractal"
)

const scenarioYAML = `
name: tour
description: two stops
width: 24
height: 16
max_iterations: 30
steps:
  - preset: seahorse
    max_iterations: 60
    save_as: seahorse
  - zoom: 2
    pan_x: 0.5
    pan_y: 0
    color_scheme: grayscale
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if s.Name != "tour" || len(s.Steps) != 2 {
		t.Fatalf("unexpected scenario: %+v", s)
	}

	p, err := s.Params(0)
	if err != nil {
		t.Fatal(err)
	}
	seahorse := config.GetPreset("seahorse")
	if p.Zoom != seahorse.Zoom || p.PanX != seahorse.PanX || p.PanY != seahorse.PanY {
		t.Errorf("step 1 should use the preset view: %s", p)
	}
	if p.MaxIterations != 60 || p.Width != 24 || p.Height != 16 {
		t.Errorf("step 1 overrides: %s", p)
	}

	p, err = s.Params(1)
	if err != nil {
		t.Fatal(err)
	}
	want := fractal.RenderParameters{Width: 24, Height: 16, Zoom: 2, PanX: 0.5, MaxIterations: 30, ColorScheme: fractal.Grayscale}
	if p != want {
		t.Errorf("step 2: %s, want %s", p, want)
	}
}

func TestLoadScenario_Errors(t *testing.T) {
	if _, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
	if _, err := LoadScenario(writeScenario(t, "name: empty\n")); err == nil {
		t.Error("scenario without steps should fail")
	}
	if _, err := LoadScenario(writeScenario(t, "steps: [oops")); err == nil {
		t.Error("malformed yaml should fail")
	}
}

func TestRunScenario(t *testing.T) {
	s, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}
	out := t.TempDir()

	results, err := RunScenario(context.Background(), s, compute.NewSerialBackend(), out)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	if filepath.Base(results[0].Path) != "seahorse.png" || filepath.Base(results[1].Path) != "step_002.png" {
		t.Errorf("paths: %s, %s", results[0].Path, results[1].Path)
	}
	meta, err := export.LoadMetadata(filepath.Join(out, "step_002.json"))
	if err != nil {
		t.Fatal(err)
	}
	if meta.Params != results[1].Params {
		t.Errorf("sidecar %s, want %s", meta.Params, results[1].Params)
	}
}

func TestRunScenario_StopsAtBadStep(t *testing.T) {
	s := &Scenario{
		Width: 8, Height: 8,
		Steps: []ScenarioStep{{Zoom: 1}, {Preset: "nowhere"}, {Zoom: 2}},
	}
	results, err := RunScenario(context.Background(), s, compute.NewSerialBackend(), t.TempDir())
	if err == nil {
		t.Fatal("expected error")
	}
	if len(results) != 1 {
		t.Errorf("expected the first step to finish, got %d results", len(results))
	}
}

func TestZoomSweep_Frames(t *testing.T) {
	s := &ZoomSweep{
		Base:            fractal.RenderParameters{Width: 8, Height: 8, Zoom: 1, MaxIterations: 50},
		ZoomStart:       1,
		ZoomEnd:         8,
		NumFrames:       4,
		IterationGrowth: 10,
	}

	wantZoom := []float64{1, 2, 4, 8}
	wantIter := []int{50, 60, 70, 80}
	for i := range wantZoom {
		p := s.Frame(i)
		if math.Abs(p.Zoom-wantZoom[i]) > 1e-9 {
			t.Errorf("frame %d zoom %g, want %g", i, p.Zoom, wantZoom[i])
		}
		if p.MaxIterations != wantIter[i] {
			t.Errorf("frame %d iterations %d, want %d", i, p.MaxIterations, wantIter[i])
		}
	}
}

func TestRunSweep(t *testing.T) {
	s := &ZoomSweep{
		Base:      fractal.RenderParameters{Width: 10, Height: 6, PanX: 0.75, PanY: -0.1, MaxIterations: 40},
		ZoomStart: 1,
		ZoomEnd:   4,
		NumFrames: 3,
	}
	out := t.TempDir()
	results, err := RunSweep(context.Background(), s, compute.NewSerialBackend(), out)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d frames", len(results))
	}
	for i := 0; i < 3; i++ {
		if _, err := os.Stat(filepath.Join(out, "frame_000"+string(rune('0'+i))+".png")); err != nil {
			t.Errorf("frame %d missing: %v", i, err)
		}
	}

	bad := *s
	bad.ZoomEnd = -1
	if _, err := RunSweep(context.Background(), &bad, compute.NewSerialBackend(), out); !errors.Is(err, fractal.ErrInvalidZoom) {
		t.Errorf("negative zoom: got %v", err)
	}
	bad = *s
	bad.NumFrames = 0
	if _, err := RunSweep(context.Background(), &bad, compute.NewSerialBackend(), out); err == nil {
		t.Error("zero frames should fail")
	}
}

func TestRunMonteCarlo(t *testing.T) {
	res, err := RunMonteCarlo(context.Background(), &MonteCarloConfig{Samples: 200000, MaxIterations: 200, Seed: 7})
	if err != nil {
		t.Fatal(err)
	}
	// The area of the set is about 1.5066; a finite iteration cap overestimates it.
	if res.Area < 1.45 || res.Area > 1.62 {
		t.Errorf("area %.4f outside the expected range", res.Area)
	}
	if res.StdErr <= 0 || res.StdErr > 0.01 {
		t.Errorf("std err %.5f", res.StdErr)
	}

	again, _ := RunMonteCarlo(context.Background(), &MonteCarloConfig{Samples: 200000, MaxIterations: 200, Seed: 7})
	if again.Inside != res.Inside {
		t.Error("same seed should give the same estimate")
	}
}

func TestRunMonteCarlo_Errors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := RunMonteCarlo(ctx, &MonteCarloConfig{Samples: 10, MaxIterations: 10, Seed: 1}); !errors.Is(err, fractal.ErrCanceled) {
		t.Errorf("canceled: got %v", err)
	}
	if _, err := RunMonteCarlo(context.Background(), &MonteCarloConfig{Samples: 0, MaxIterations: 10}); err == nil {
		t.Error("zero samples should fail")
	}
	if _, err := RunMonteCarlo(context.Background(), &MonteCarloConfig{Samples: 10}); !errors.Is(err, fractal.ErrInvalidIterationBound) {
		t.Errorf("zero iterations: got %v", err)
	}
}
