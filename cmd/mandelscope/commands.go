package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/san-kum/mandelscope/internal/analysis"
	"github.com/san-kum/mandelscope/internal/automation"
	"github.com/san-kum/mandelscope/internal/compute"
	"github.com/san-kum/mandelscope/internal/config"
	"github.com/san-kum/mandelscope/internal/export"
	"github.com/san-kum/mandelscope/internal/fractal"
	"github.com/san-kum/mandelscope/internal/gui"
	"github.com/san-kum/mandelscope/internal/metrics"
	"github.com/san-kum/mandelscope/internal/render"
	"github.com/san-kum/mandelscope/internal/storage"
	"github.com/san-kum/mandelscope/internal/tui"
)

type renderOptions struct {
	save bool
	name string
}

func newRenderCmd(opts *options) *cobra.Command {
	ro := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render [output.png]",
		Short: "render the view to a PNG with a JSON sidecar",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := "mandelbrot.png"
			if len(args) == 1 {
				out = args[0]
			}
			return runRender(cmd, opts, ro, out)
		},
	}
	cmd.Flags().BoolVar(&ro.save, "save", false, "also store the render in the gallery")
	cmd.Flags().StringVar(&ro.name, "name", "", "gallery name (default: preset name or \"render\")")
	return cmd
}

func runRender(cmd *cobra.Command, opts *options, ro *renderOptions, out string) error {
	p, backend, err := opts.params()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	frame, err := render.Render(ctx, backend, p)
	if err != nil {
		if errors.Is(err, fractal.ErrCanceled) {
			return fmt.Errorf("render interrupted: %w", err)
		}
		return fmt.Errorf("render: %w", err)
	}

	imgPath, metaPath, err := export.SavePNG(out, frame.Pixels, export.Metadata{
		Params:    p,
		Bounds:    fractal.Bounds(p),
		Backend:   backend.Name(),
		ElapsedMs: frame.Elapsed.Milliseconds(),
	})
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}

	logx.Infow("render complete",
		logx.Field("params", p.String()),
		logx.Field("backend", backend.Name()),
		logx.Field("elapsed_ms", frame.Elapsed.Milliseconds()))

	fmt.Fprintf(cmd.OutOrStdout(), "rendered %s in %v (%s)\n", p, frame.Elapsed.Round(time.Millisecond), backend.Name())
	fmt.Fprintf(cmd.OutOrStdout(), "  image:    %s\n", imgPath)
	fmt.Fprintf(cmd.OutOrStdout(), "  metadata: %s\n", metaPath)

	if ro.save {
		name := ro.name
		if name == "" {
			name = opts.preset
		}
		st := storage.New(opts.dataDir)
		if err := st.Init(); err != nil {
			return fmt.Errorf("gallery: %w", err)
		}
		runID, err := st.Save(name, frame, backend.Name())
		if err != nil {
			return fmt.Errorf("gallery: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  gallery:  %s\n", runID)
	}
	return nil
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list renders saved in the gallery",
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := storage.New(opts.dataDir).List()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no saved renders in %s\n", opts.dataDir)
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTIME\tSIZE\tCENTER\tZOOM\tITER\tSCHEME\tINTERIOR")
			for _, run := range runs {
				p := run.Params
				c := run.Bounds.Center()
				fmt.Fprintf(w, "%s\t%s\t%dx%d\t%.6g%+.6gi\t%.4g\t%d\t%s\t%.3f\n",
					run.ID,
					run.Timestamp.Format("2006-01-02 15:04:05"),
					p.Width, p.Height,
					c.Re, c.Im,
					p.Zoom,
					p.MaxIterations,
					p.ColorScheme,
					run.Metrics["interior_fraction"],
				)
			}
			return w.Flush()
		},
	}
}

func newExploreCmd(opts *options) *cobra.Command {
	var theme, snapDir string
	cmd := &cobra.Command{
		Use:         "explore",
		Short:       "interactive terminal explorer",
		Annotations: map[string]string{annotInteractive: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExploreWith(opts, theme, snapDir)
		},
	}
	cmd.Flags().StringVar(&theme, "theme", "cyberpunk", "status bar theme: cyberpunk, minimal")
	cmd.Flags().StringVar(&snapDir, "snapshots", ".", "directory for snapshots taken with 's'")
	return cmd
}

func runExplore(opts *options) error {
	return runExploreWith(opts, "", ".")
}

func runExploreWith(opts *options, theme, snapDir string) error {
	p, backend, err := opts.params()
	if err != nil {
		return err
	}
	logx.Infof("explorer starting with %s on %s", p, backend.Name())
	return tui.Run(tui.Options{
		Backend:     backend,
		Initial:     p,
		Settings:    opts.cfg.ViewSettings(),
		Theme:       theme,
		SnapshotDir: snapDir,
	})
}

func newGUICmd(opts *options) *cobra.Command {
	var resizable bool
	cmd := &cobra.Command{
		Use:   "gui",
		Short: "interactive window",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, backend, err := opts.params()
			if err != nil {
				return err
			}
			return gui.Run(gui.Options{
				Backend:   backend,
				Initial:   p,
				Settings:  opts.cfg.ViewSettings(),
				Resizable: resizable,
			})
		},
	}
	cmd.Flags().BoolVar(&resizable, "resizable", false, "re-render at the window size when it changes")
	return cmd
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list named views",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tCENTER\tZOOM\tITER\tSCHEME\tDESCRIPTION")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				scheme := p.ColorScheme
				if scheme == "" {
					scheme = "-"
				}
				fmt.Fprintf(w, "%s\t%.6g%+.6gi\t%.4g\t%d\t%s\t%s\n",
					name, -p.PanX, -p.PanY, p.Zoom, p.MaxIterations, scheme, p.Description)
			}
			return w.Flush()
		},
	}
}

func newStatsCmd(opts *options) *cobra.Command {
	var bins int
	var runID string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "iteration statistics and histogram for the view",
		RunE: func(cmd *cobra.Command, args []string) error {
			if bins <= 0 {
				return fmt.Errorf("bins must be positive, got %d", bins)
			}

			var (
				p   fractal.RenderParameters
				buf fractal.IterationBuffer
			)
			out := cmd.OutOrStdout()

			if runID != "" {
				st := storage.New(opts.dataDir)
				meta, err := st.Load(runID)
				if err != nil {
					return fmt.Errorf("gallery: %w", err)
				}
				if buf, err = st.LoadCounts(runID); err != nil {
					return fmt.Errorf("gallery: %w", err)
				}
				p = meta.Params
				fmt.Fprintf(out, "%s from gallery run %s\n", p, runID)
			} else {
				var backend compute.Backend
				var err error
				p, backend, err = opts.params()
				if err != nil {
					return err
				}

				start := time.Now()
				buf, err = backend.Evaluate(cmd.Context(), p)
				if err != nil {
					return fmt.Errorf("evaluate: %w", err)
				}
				fmt.Fprintf(out, "%s on %s in %v\n", p, backend.Name(), time.Since(start).Round(time.Millisecond))
			}

			b := fractal.Bounds(p)
			fmt.Fprintf(out, "region: re [%.6g, %.6g]  im [%.6g, %.6g]\n\n", b.Min.Re, b.Max.Re, b.Min.Im, b.Max.Im)

			summary := metrics.Summarize(buf)
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "METRIC\tVALUE")
			for _, name := range metrics.Names(summary) {
				fmt.Fprintf(w, "%s\t%.4f\n", name, summary[name])
			}
			if err := w.Flush(); err != nil {
				return err
			}

			hist := metrics.Histogram(buf, bins)
			fmt.Fprintln(out)
			fmt.Fprintln(out, asciigraph.Plot(hist,
				asciigraph.Height(12),
				asciigraph.Width(80),
				asciigraph.Caption(fmt.Sprintf("pixels per escape bucket (%d bins, then interior)", bins)),
			))
			return nil
		},
	}
	cmd.Flags().IntVar(&bins, "bins", 32, "histogram buckets")
	cmd.Flags().StringVar(&runID, "run", "", "read counts from a gallery run instead of rendering")
	return cmd
}

func newBenchCmd(opts *options) *cobra.Command {
	var runs int
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "time every backend on the view",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := opts.params()
			if err != nil {
				return err
			}
			if runs <= 0 {
				runs = 1
			}
			return runBench(cmd.Context(), cmd, p, opts.cfg.Workers, runs)
		},
	}
	cmd.Flags().IntVar(&runs, "runs", 3, "runs per backend")
	return cmd
}

func runBench(ctx context.Context, cmd *cobra.Command, p fractal.RenderParameters, workers, runs int) error {
	fmt.Fprintf(cmd.OutOrStdout(), "benchmarking %s, %d runs\n\n", p, runs)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BACKEND\tBEST\tMEAN\tMPIXELS/SEC\tMATCHES")

	var reference []int
	for _, name := range compute.Names() {
		backend, err := compute.Lookup(name, workers)
		if err != nil {
			logx.Errorf("skipping backend %s: %v", name, err)
			continue
		}

		var best, total time.Duration
		var buf fractal.IterationBuffer
		for i := 0; i < runs; i++ {
			start := time.Now()
			buf, err = backend.Evaluate(ctx, p)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			d := time.Since(start)
			total += d
			if best == 0 || d < best {
				best = d
			}
		}
		backend.Cleanup()

		match := "ref"
		if reference == nil {
			reference = buf.Counts
		} else {
			match = fmt.Sprintf("%t", sameCounts(reference, buf.Counts))
		}

		mean := total / time.Duration(runs)
		rate := float64(p.Pixels()) / best.Seconds() / 1e6
		fmt.Fprintf(w, "%s\t%v\t%v\t%.2f\t%s\n",
			backend.Name(), best.Round(time.Microsecond), mean.Round(time.Microsecond), rate, match)
	}
	return w.Flush()
}

func sameCounts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage the config file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a config file with default values",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultConfigFile
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.Save(path, config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	configCmd.AddCommand(initCmd)
	return configCmd
}

func newScenarioCmd(opts *options) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "scenario [file.yaml]",
		Short: "render every view listed in a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}
			_, backend, err := opts.params()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "scenario %q: %d steps\n", scenario.Name, len(scenario.Steps))
			results, err := automation.RunScenario(cmd.Context(), scenario, backend, outDir)
			printResults(cmd, results)
			return err
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	return cmd
}

func newZoomCmd(opts *options) *cobra.Command {
	var (
		outDir     string
		zoomEnd    float64
		frames     int
		iterGrowth int
	)
	cmd := &cobra.Command{
		Use:   "zoom",
		Short: "render a zoom sequence from the current view",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, backend, err := opts.params()
			if err != nil {
				return err
			}
			sweep := &automation.ZoomSweep{
				Base:            p,
				ZoomStart:       p.Zoom,
				ZoomEnd:         zoomEnd,
				NumFrames:       frames,
				IterationGrowth: iterGrowth,
			}
			results, err := automation.RunSweep(cmd.Context(), sweep, backend, outDir)
			printResults(cmd, results)
			return err
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "frames", "output directory")
	cmd.Flags().Float64Var(&zoomEnd, "to", 1000, "final zoom")
	cmd.Flags().IntVar(&frames, "frames", 30, "number of frames")
	cmd.Flags().IntVar(&iterGrowth, "iter-growth", 20, "extra iterations per zoom doubling")
	return cmd
}

func printResults(cmd *cobra.Command, results []automation.Result) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tZOOM\tITER\tTIME\tFILE")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%.4g\t%d\t%v\t%s\n",
			r.Step, r.Params.Zoom, r.Params.MaxIterations, r.Elapsed.Round(time.Millisecond), r.Path)
	}
	w.Flush()
}

func newAreaCmd() *cobra.Command {
	cfg := &automation.MonteCarloConfig{}
	cmd := &cobra.Command{
		Use:   "area",
		Short: "estimate the area of the set by random sampling",
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			res, err := automation.RunMonteCarlo(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d/%d samples inside after %d iterations\n", res.Inside, res.Samples, cfg.MaxIterations)
			fmt.Fprintf(cmd.OutOrStdout(), "area ~ %.5f +/- %.5f (%v)\n", res.Area, res.StdErr, time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().IntVar(&cfg.Samples, "samples", 1_000_000, "random points to test")
	cmd.Flags().IntVar(&cfg.MaxIterations, "iter-cap", 1000, "iteration cap per point")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", 0, "random seed (0 = time based)")
	return cmd
}

func newOrbitCmd() *cobra.Command {
	var (
		steps   int
		maxIter int
	)
	cmd := &cobra.Command{
		Use:   "orbit RE IM",
		Short: "follow the orbit of a single point",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var c fractal.Point
			if _, err := fmt.Sscanf(args[0]+" "+args[1], "%g %g", &c.Re, &c.Im); err != nil {
				return fmt.Errorf("parse point: %w", err)
			}
			if maxIter <= 0 {
				return &fractal.ParamError{Field: "max_iterations", Value: maxIter, Wrapped: fractal.ErrInvalidIterationBound}
			}

			out := cmd.OutOrStdout()
			n := fractal.Escape(c.Re, c.Im, maxIter)
			if n >= maxIter {
				fmt.Fprintf(out, "c = %g%+gi stays bounded for %d iterations\n", c.Re, c.Im, maxIter)
			} else {
				fmt.Fprintf(out, "c = %g%+gi escapes after %d iterations\n", c.Re, c.Im, n)
			}
			if period := analysis.Period(c, maxIter, 256, 1e-9); period > 0 {
				fmt.Fprintf(out, "attracting cycle of period %d\n", period)
			}
			if c.Im == 0 {
				if l := analysis.LyapunovExponent(c.Re, maxIter, maxIter); !math.IsInf(l, 1) {
					fmt.Fprintf(out, "lyapunov exponent %.4f\n", l)
				}
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "\nN\tRE\tIM\t|Z|")
			for i, z := range analysis.Orbit(c, steps) {
				fmt.Fprintf(w, "%d\t%.8f\t%.8f\t%.6f\n", i, z.Re, z.Im, math.Hypot(z.Re, z.Im))
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 16, "orbit points to print")
	cmd.Flags().IntVar(&maxIter, "iter-cap", 1000, "iteration cap for the escape test")
	return cmd
}

func newBifurcationCmd() *cobra.Command {
	var (
		cMin, cMax float64
		width      int
		height     int
	)
	cmd := &cobra.Command{
		Use:   "bifurcation",
		Short: "attractor and lyapunov exponent along the real axis",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cMin >= cMax {
				return fmt.Errorf("empty range [%g, %g]", cMin, cMax)
			}
			out := cmd.OutOrStdout()

			data := analysis.BifurcationDiagram(cMin, cMax, width, 1000, 200)
			fmt.Fprintf(out, "attractor of x -> x^2 + c for c in [%g, %g]\n\n", cMin, cMax)
			fmt.Fprintln(out, analysis.BifurcationToASCII(data, width, height))

			_, lambdas := analysis.LyapunovCurve(cMin, cMax, width, 1000, 2000)
			for i, l := range lambdas {
				// asciigraph cannot plot NaN gaps
				if math.IsNaN(l) {
					lambdas[i] = 0
				}
				lambdas[i] = math.Max(lambdas[i], -3)
			}
			fmt.Fprintln(out, asciigraph.Plot(lambdas,
				asciigraph.Height(height),
				asciigraph.Width(width),
				asciigraph.Caption("lyapunov exponent (clamped at -3)"),
			))
			return nil
		},
	}
	cmd.Flags().Float64Var(&cMin, "from", -2, "smallest c")
	cmd.Flags().Float64Var(&cMax, "to", 0.25, "largest c")
	cmd.Flags().IntVar(&width, "cols", 100, "plot width")
	cmd.Flags().IntVar(&height, "rows", 24, "plot height")
	return cmd
}
