package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/gops/agent"
	"github.com/spf13/cobra"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/san-kum/mandelscope/internal/compute"
	"github.com/san-kum/mandelscope/internal/config"
	"github.com/san-kum/mandelscope/internal/fractal"
)

const (
	defaultConfigFile = "mandelscope.yaml"
	defaultLogDir     = ".mandelscope/logs"
	defaultDataDir    = ".mandelscope/gallery"

	// Commands carrying this annotation own the terminal, so logs go to
	// files instead of the console.
	annotInteractive = "interactive"
)

// options holds everything the persistent flags can set. Flags win over the
// config file only when given explicitly.
type options struct {
	configFile string
	logLevel   string
	logDir     string
	dataDir    string
	gops       bool
	preset     string

	width      int
	height     int
	zoom       float64
	panX       float64
	panY       float64
	iterations int
	scheme     string
	backend    string
	workers    int

	cfg *config.Config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:          "mandelscope",
		Short:        "mandelbrot set renderer and explorer",
		SilenceUsage: true,
		Annotations:  map[string]string{annotInteractive: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default to the terminal explorer when no command given
			return runExplore(opts)
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.gops {
				agent.Close()
			}
			logx.Close()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.configFile, "config", "", "config file path (yaml, default ./"+defaultConfigFile+" if present)")
	pf.StringVar(&opts.logLevel, "log-level", config.DefaultLogLevel, "log level: debug, info, error, severe")
	pf.StringVar(&opts.logDir, "log-dir", defaultLogDir, "log directory for interactive modes")
	pf.StringVar(&opts.dataDir, "data", defaultDataDir, "gallery directory for saved renders")
	pf.BoolVar(&opts.gops, "gops", false, "start a gops diagnostics agent")
	pf.StringVar(&opts.preset, "preset", "", "start from a named view (see presets)")
	pf.IntVar(&opts.width, "width", config.DefaultWidth, "image width in pixels")
	pf.IntVar(&opts.height, "height", config.DefaultHeight, "image height in pixels")
	pf.Float64Var(&opts.zoom, "zoom", config.DefaultZoom, "zoom factor (visible width is 1/zoom)")
	pf.Float64Var(&opts.panX, "pan-x", 0, "real offset, subtracted from every coordinate")
	pf.Float64Var(&opts.panY, "pan-y", 0, "imaginary offset, subtracted from every coordinate")
	pf.IntVar(&opts.iterations, "iterations", config.DefaultIterations, "maximum iterations per point")
	pf.StringVar(&opts.scheme, "scheme", config.DefaultScheme, "colour scheme: default, grayscale, rainbow, classic")
	pf.StringVar(&opts.backend, "backend", config.DefaultBackend, "compute backend: auto, cpu, serial")
	pf.IntVar(&opts.workers, "workers", 0, "cpu backend workers (0 = one per CPU)")

	rootCmd.AddCommand(
		newRenderCmd(opts),
		newExploreCmd(opts),
		newGUICmd(opts),
		newPresetsCmd(),
		newListCmd(opts),
		newStatsCmd(opts),
		newBenchCmd(opts),
		newScenarioCmd(opts),
		newZoomCmd(opts),
		newAreaCmd(),
		newOrbitCmd(),
		newBifurcationCmd(),
		newConfigCmd(),
	)
	return rootCmd
}

// setup resolves the effective config and starts logging and diagnostics.
func (o *options) setup(cmd *cobra.Command) error {
	cfg, err := o.resolve(cmd)
	if err != nil {
		return err
	}
	o.cfg = cfg

	logConf := logx.LogConf{
		ServiceName: "mandelscope",
		Mode:        "console",
		Encoding:    cfg.Log.Encoding,
		Level:       cfg.Log.Level,
	}
	if cmd.Annotations[annotInteractive] == "true" {
		logConf.Mode = "file"
		logConf.Path = o.logDir
	}
	logx.MustSetup(logConf)

	if o.gops {
		if err := agent.Listen(agent.Options{ShutdownCleanup: true}); err != nil {
			return fmt.Errorf("start gops agent: %w", err)
		}
		logx.Info("gops agent listening")
	}
	return nil
}

// resolve layers defaults, the config file, the preset and explicit flags,
// in that order.
func (o *options) resolve(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	path := o.configFile
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if o.preset != "" {
		p := config.GetPreset(o.preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", o.preset, config.ListPresets())
		}
		cfg.ApplyPreset(p)
	}

	flags := cmd.Flags()
	if flags.Changed("width") {
		cfg.Width = o.width
	}
	if flags.Changed("height") {
		cfg.Height = o.height
	}
	if flags.Changed("zoom") {
		cfg.Zoom = o.zoom
	}
	if flags.Changed("pan-x") {
		cfg.PanX = o.panX
	}
	if flags.Changed("pan-y") {
		cfg.PanY = o.panY
	}
	if flags.Changed("iterations") {
		cfg.MaxIterations = o.iterations
	}
	if flags.Changed("scheme") {
		cfg.ColorScheme = o.scheme
	}
	if flags.Changed("backend") {
		cfg.Backend = o.backend
	}
	if flags.Changed("workers") {
		cfg.Workers = o.workers
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}

	if _, err := cfg.Params(); err != nil {
		return nil, fmt.Errorf("invalid view: %w", err)
	}
	return cfg, nil
}

// params returns the resolved render parameters and backend.
func (o *options) params() (fractal.RenderParameters, compute.Backend, error) {
	if o.cfg == nil {
		return fractal.RenderParameters{}, nil, errors.New("config not resolved")
	}
	p, err := o.cfg.Params()
	if err != nil {
		return fractal.RenderParameters{}, nil, err
	}
	backend, err := compute.Lookup(o.cfg.Backend, o.cfg.Workers)
	if err != nil {
		return fractal.RenderParameters{}, nil, err
	}
	compute.SetBackend(backend)
	return p, backend, nil
}
