package compute

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/mandelscope/internal/fractal"
)

// Below this many rows the fan-out costs more than it saves.
const minParallelRows = 16

type CPUBackend struct {
	workers  int
	bandRows int
}

// NewCPUBackend returns a backend using the given number of workers;
// workers <= 0 means one per CPU.
func NewCPUBackend(workers int) *CPUBackend {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &CPUBackend{
		workers:  workers,
		bandRows: 8,
	}
}

func (c *CPUBackend) Name() string    { return fmt.Sprintf("cpu (%d workers)", c.workers) }
func (c *CPUBackend) Available() bool { return c.workers > 0 }
func (c *CPUBackend) Cleanup()        {}

func (c *CPUBackend) Workers() int { return c.workers }

func (c *CPUBackend) Evaluate(ctx context.Context, p fractal.RenderParameters) (fractal.IterationBuffer, error) {
	if err := p.Validate(); err != nil {
		return fractal.IterationBuffer{}, err
	}

	if p.Height < minParallelRows || c.workers == 1 {
		return fractal.EvaluateContext(ctx, p)
	}

	buf := fractal.NewIterationBuffer(p.Width, p.Height, p.MaxIterations)
	if err := c.evaluateParallel(ctx, p, buf.Counts); err != nil {
		return fractal.IterationBuffer{}, err
	}
	return buf, nil
}

// evaluateParallel hands out small row bands so that rows through the set,
// which cost maxIterations per pixel, spread across workers instead of
// landing on one contiguous chunk.
func (c *CPUBackend) evaluateParallel(ctx context.Context, p fractal.RenderParameters, counts []int) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for start := 0; start < p.Height; start += c.bandRows {
		end := start + c.bandRows
		if end > p.Height {
			end = p.Height
		}

		if gctx.Err() != nil {
			break
		}
		start := start // per-iteration copy for go < 1.22 loop semantics
		g.Go(func() error {
			return fractal.EvaluateRows(gctx, p, counts, start, end)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	// A cancel that lands between bands stops the loop without any band
	// reporting it.
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", fractal.ErrCanceled, err)
	}
	return nil
}
