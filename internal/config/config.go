package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/mandelscope/internal/fractal"
	"github.com/san-kum/mandelscope/internal/view"
)

const (
	DefaultWidth      = fractal.DefaultWidth
	DefaultHeight     = fractal.DefaultHeight
	DefaultZoom       = fractal.DefaultZoom
	DefaultIterations = fractal.DefaultMaxIterations
	DefaultScheme     = "default"
	DefaultBackend    = "auto"
	DefaultLogLevel   = "info"
	DefaultEncoding   = "plain"
)

type Config struct {
	Width         int            `yaml:"width"`
	Height        int            `yaml:"height"`
	Zoom          float64        `yaml:"zoom"`
	PanX          float64        `yaml:"pan_x"`
	PanY          float64        `yaml:"pan_y"`
	MaxIterations int            `yaml:"max_iterations"`
	ColorScheme   string         `yaml:"color_scheme"`
	Backend       string         `yaml:"backend"`
	Workers       int            `yaml:"workers"`
	Viewport      ViewportConfig `yaml:"viewport"`
	Log           LogConfig      `yaml:"log"`
}

type ViewportConfig struct {
	ZoomFactor    float64 `yaml:"zoom_factor"`
	PanStep       float64 `yaml:"pan_step"`
	MinIterations int     `yaml:"min_iterations"`
	MaxIterations int     `yaml:"max_iterations"`
	IterationStep int     `yaml:"iteration_step"`
}

type LogConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

func DefaultConfig() *Config {
	return &Config{
		Width:         DefaultWidth,
		Height:        DefaultHeight,
		Zoom:          DefaultZoom,
		MaxIterations: DefaultIterations,
		ColorScheme:   DefaultScheme,
		Backend:       DefaultBackend,
		Viewport: ViewportConfig{
			ZoomFactor:    view.DefaultZoomFactor,
			PanStep:       view.DefaultPanStep,
			MinIterations: view.DefaultMinIterations,
			MaxIterations: view.DefaultMaxIterations,
			IterationStep: view.DefaultIterationStep,
		},
		Log: LogConfig{
			Level:    DefaultLogLevel,
			Encoding: DefaultEncoding,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Params converts the config into engine parameters and validates them.
func (c *Config) Params() (fractal.RenderParameters, error) {
	scheme, err := fractal.ParseColorScheme(c.ColorScheme)
	if err != nil {
		return fractal.RenderParameters{}, err
	}
	p := fractal.RenderParameters{
		Width:         c.Width,
		Height:        c.Height,
		Zoom:          c.Zoom,
		PanX:          c.PanX,
		PanY:          c.PanY,
		MaxIterations: c.MaxIterations,
		ColorScheme:   scheme,
	}
	if err := p.Validate(); err != nil {
		return fractal.RenderParameters{}, err
	}
	return p, nil
}

// ApplyPreset copies a preset's view onto the config, keeping the surface
// size and backend settings.
func (c *Config) ApplyPreset(p *Preset) {
	c.Zoom = p.Zoom
	c.PanX = p.PanX
	c.PanY = p.PanY
	if p.MaxIterations > 0 {
		c.MaxIterations = p.MaxIterations
	}
	if p.ColorScheme != "" {
		c.ColorScheme = p.ColorScheme
	}
}

func (c *Config) ViewSettings() view.Settings {
	return view.Settings{
		ZoomFactor:    c.Viewport.ZoomFactor,
		PanStep:       c.Viewport.PanStep,
		MinIterations: c.Viewport.MinIterations,
		MaxIterations: c.Viewport.MaxIterations,
		IterationStep: c.Viewport.IterationStep,
	}
}
