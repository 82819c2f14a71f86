package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/mandelscope/internal/compute"
	"github.com/san-kum/mandelscope/internal/config"
	"github.com/san-kum/mandelscope/internal/export"
	"github.com/san-kum/mandelscope/internal/fractal"
	"github.com/san-kum/mandelscope/internal/render"
)

// Scenario defines a scripted sequence of renders
type Scenario struct {
	Name          string         `yaml:"name"`
	Description   string         `yaml:"description"`
	Width         int            `yaml:"width"`
	Height        int            `yaml:"height"`
	MaxIterations int            `yaml:"max_iterations"`
	ColorScheme   string         `yaml:"color_scheme"`
	Steps         []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single view in a scenario. A preset supplies the view;
// explicit fields override it, and unset fields fall back to the scenario.
type ScenarioStep struct {
	Preset        string   `yaml:"preset"`
	Zoom          float64  `yaml:"zoom"`
	PanX          *float64 `yaml:"pan_x"`
	PanY          *float64 `yaml:"pan_y"`
	MaxIterations int      `yaml:"max_iterations"`
	ColorScheme   string   `yaml:"color_scheme"`
	SaveAs        string   `yaml:"save_as"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}
	return &scenario, nil
}

// Params resolves step i of s into render parameters.
func (s *Scenario) Params(i int) (fractal.RenderParameters, error) {
	step := s.Steps[i]

	cfg := config.DefaultConfig()
	if s.Width > 0 {
		cfg.Width = s.Width
	}
	if s.Height > 0 {
		cfg.Height = s.Height
	}
	if s.MaxIterations > 0 {
		cfg.MaxIterations = s.MaxIterations
	}
	if s.ColorScheme != "" {
		cfg.ColorScheme = s.ColorScheme
	}

	if step.Preset != "" {
		p := config.GetPreset(step.Preset)
		if p == nil {
			return fractal.RenderParameters{}, fmt.Errorf("unknown preset: %s", step.Preset)
		}
		cfg.ApplyPreset(p)
	}
	if step.Zoom != 0 {
		cfg.Zoom = step.Zoom
	}
	if step.PanX != nil {
		cfg.PanX = *step.PanX
	}
	if step.PanY != nil {
		cfg.PanY = *step.PanY
	}
	if step.MaxIterations > 0 {
		cfg.MaxIterations = step.MaxIterations
	}
	if step.ColorScheme != "" {
		cfg.ColorScheme = step.ColorScheme
	}
	return cfg.Params()
}

// Result records one rendered step.
type Result struct {
	Step    int
	Params  fractal.RenderParameters
	Path    string
	Elapsed time.Duration
}

// RunScenario renders every step of a scenario into outDir. It stops at the
// first failing step and returns the steps finished so far.
func RunScenario(ctx context.Context, scenario *Scenario, backend compute.Backend, outDir string) ([]Result, error) {
	results := make([]Result, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		p, err := scenario.Params(i)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		name := step.SaveAs
		if name == "" {
			name = fmt.Sprintf("step_%03d", i+1)
		}
		logx.Infof("running step %d/%d: %s", i+1, len(scenario.Steps), p)

		res, err := renderTo(ctx, backend, p, filepath.Join(outDir, name))
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		res.Step = i + 1
		results = append(results, res)
	}

	return results, nil
}

func renderTo(ctx context.Context, backend compute.Backend, p fractal.RenderParameters, path string) (Result, error) {
	frame, err := render.Render(ctx, backend, p)
	if err != nil {
		return Result{}, err
	}
	imgPath, _, err := export.SavePNG(path, frame.Pixels, export.Metadata{
		Params:    p,
		Bounds:    fractal.Bounds(p),
		Backend:   backend.Name(),
		ElapsedMs: frame.Elapsed.Milliseconds(),
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Params: p, Path: imgPath, Elapsed: frame.Elapsed}, nil
}

// ZoomSweep renders a zoom sequence towards a fixed centre. Zoom grows
// geometrically so that every frame magnifies by the same factor.
type ZoomSweep struct {
	Base      fractal.RenderParameters
	ZoomStart float64
	ZoomEnd   float64
	NumFrames int
	// IterationGrowth adds this many iterations per doubling of zoom.
	IterationGrowth int
}

// Frame returns the parameters of frame i.
func (s *ZoomSweep) Frame(i int) fractal.RenderParameters {
	p := s.Base
	if s.NumFrames <= 1 {
		p.Zoom = s.ZoomStart
		return p
	}
	ratio := math.Log(s.ZoomEnd / s.ZoomStart)
	p.Zoom = s.ZoomStart * math.Exp(ratio*float64(i)/float64(s.NumFrames-1))
	if s.IterationGrowth > 0 {
		doublings := math.Log2(p.Zoom / s.ZoomStart)
		p.MaxIterations = s.Base.MaxIterations + int(math.Round(doublings*float64(s.IterationGrowth)))
	}
	return p
}

func (s *ZoomSweep) validate() error {
	if s.NumFrames <= 0 {
		return fmt.Errorf("sweep needs at least one frame, got %d", s.NumFrames)
	}
	if !(s.ZoomStart > 0) || !(s.ZoomEnd > 0) || math.IsInf(s.ZoomStart, 0) || math.IsInf(s.ZoomEnd, 0) {
		return &fractal.ParamError{Field: "zoom", Value: fmt.Sprintf("%g..%g", s.ZoomStart, s.ZoomEnd), Wrapped: fractal.ErrInvalidZoom}
	}
	return nil
}

// RunSweep renders every frame of a sweep as frame_NNNN.png in outDir.
func RunSweep(ctx context.Context, sweep *ZoomSweep, backend compute.Backend, outDir string) ([]Result, error) {
	if err := sweep.validate(); err != nil {
		return nil, err
	}

	results := make([]Result, 0, sweep.NumFrames)
	for i := 0; i < sweep.NumFrames; i++ {
		p := sweep.Frame(i)
		res, err := renderTo(ctx, backend, p, filepath.Join(outDir, fmt.Sprintf("frame_%04d", i)))
		if err != nil {
			return results, fmt.Errorf("frame %d: %w", i, err)
		}
		res.Step = i
		results = append(results, res)

		logx.Infof("sweep %d/%d: zoom=%.4g iter=%d", i+1, sweep.NumFrames, p.Zoom, p.MaxIterations)
	}

	return results, nil
}

// MonteCarloConfig defines a random-sampling estimate of the area of the set
type MonteCarloConfig struct {
	Samples       int
	MaxIterations int
	Seed          int64
}

// Sampling region: the set lies within re [-2, 0.5], im [-1.25, 1.25].
var sampleRegion = fractal.Rect{
	Min: fractal.Point{Re: -2, Im: -1.25},
	Max: fractal.Point{Re: 0.5, Im: 1.25},
}

// MonteCarloResult holds the area estimate and its standard error
type MonteCarloResult struct {
	Samples int
	Inside  int
	Area    float64
	StdErr  float64
}

// RunMonteCarlo samples points uniformly over a box containing the set and
// counts those that never escape.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) (*MonteCarloResult, error) {
	if cfg.Samples <= 0 {
		return nil, fmt.Errorf("samples must be positive, got %d", cfg.Samples)
	}
	if cfg.MaxIterations <= 0 {
		return nil, &fractal.ParamError{Field: "max_iterations", Value: cfg.MaxIterations, Wrapped: fractal.ErrInvalidIterationBound}
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	inside := 0
	for i := 0; i < cfg.Samples; i++ {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("%w after %d samples: %w", fractal.ErrCanceled, i, err)
			}
		}
		re := sampleRegion.Min.Re + rng.Float64()*sampleRegion.Dx()
		im := sampleRegion.Min.Im + rng.Float64()*sampleRegion.Dy()
		if fractal.Escape(re, im, cfg.MaxIterations) >= cfg.MaxIterations {
			inside++
		}
	}

	box := sampleRegion.Dx() * sampleRegion.Dy()
	frac := float64(inside) / float64(cfg.Samples)
	return &MonteCarloResult{
		Samples: cfg.Samples,
		Inside:  inside,
		Area:    frac * box,
		StdErr:  box * math.Sqrt(frac*(1-frac)/float64(cfg.Samples)),
	}, nil
}
