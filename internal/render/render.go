package render

import (
	"context"
	"time"

	"github.com/san-kum/mandelscope/internal/compute"
	"github.com/san-kum/mandelscope/internal/fractal"
)

// Frame is one finished render ready for a raster surface.
type Frame struct {
	Seq        uint64
	Params     fractal.RenderParameters
	Iterations fractal.IterationBuffer
	Pixels     fractal.PixelBuffer
	Elapsed    time.Duration
}

// Render runs the evaluator on backend and colorizes the result. Either the
// whole frame is returned or an error; there are no partial frames.
func Render(ctx context.Context, backend compute.Backend, p fractal.RenderParameters) (*Frame, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}

	start := time.Now()
	iters, err := backend.Evaluate(ctx, p)
	if err != nil {
		return nil, err
	}
	pix, err := fractal.Colorize(iters, p.MaxIterations, p.ColorScheme)
	if err != nil {
		return nil, err
	}

	return &Frame{
		Params:     p,
		Iterations: iters,
		Pixels:     pix,
		Elapsed:    time.Since(start),
	}, nil
}

// Validate checks p for both stages, so an unknown scheme is rejected
// before any evaluation work is spent on it.
func Validate(p fractal.RenderParameters) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if !p.ColorScheme.Valid() {
		return &fractal.ParamError{Field: "color_scheme", Value: int(p.ColorScheme), Wrapped: fractal.ErrUnknownColorScheme}
	}
	return nil
}
