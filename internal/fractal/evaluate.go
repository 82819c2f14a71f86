package fractal

import (
	"context"
	"fmt"
)

// EscapeRadiusSq is |z|^2 past which a point is considered escaped.
const EscapeRadiusSq = 4.0

// Point is a complex-plane coordinate.
type Point struct {
	Re, Im float64
}

// Rect is the region of the complex plane covered by a render.
// Min maps from pixel (0, 0); Max maps from the far edge (width, height).
type Rect struct {
	Min, Max Point
}

func (r Rect) Dx() float64 { return r.Max.Re - r.Min.Re }
func (r Rect) Dy() float64 { return r.Max.Im - r.Min.Im }

// Center is the point the view is centred on, which is (-panX, -panY).
func (r Rect) Center() Point {
	return Point{Re: (r.Min.Re + r.Max.Re) / 2, Im: (r.Min.Im + r.Max.Im) / 2}
}

// MapPixel maps pixel (x, y) to its complex coordinate. Pan is subtracted
// after scaling, so increasing PanX moves the view towards negative reals.
func MapPixel(p RenderParameters, x, y float64) (re, im float64) {
	re = (x/float64(p.Width)-0.5)/p.Zoom - p.PanX
	im = (y/float64(p.Height)-0.5)/p.Zoom - p.PanY
	return re, im
}

// Bounds returns the region covered by p.
func Bounds(p RenderParameters) Rect {
	minRe, minIm := MapPixel(p, 0, 0)
	maxRe, maxIm := MapPixel(p, float64(p.Width), float64(p.Height))
	return Rect{
		Min: Point{Re: minRe, Im: minIm},
		Max: Point{Re: maxRe, Im: maxIm},
	}
}

// Escape iterates z = z^2 + c starting from z = c and returns the number of
// iterations taken before |z|^2 exceeded 4, capped at maxIter.
func Escape(cr, ci float64, maxIter int) int {
	zr, zi := cr, ci
	n := 0
	for n < maxIter {
		zr2, zi2 := zr*zr, zi*zi
		if zr2+zi2 > EscapeRadiusSq {
			break
		}
		zi = 2*zr*zi + ci
		zr = zr2 - zi2 + cr
		n++
	}
	return n
}

// Evaluate computes the iteration buffer for p in a single pass.
func Evaluate(p RenderParameters) (IterationBuffer, error) {
	return EvaluateContext(context.Background(), p)
}

// EvaluateContext is Evaluate with cooperative cancellation, checked once
// per row. A canceled render returns no buffer.
func EvaluateContext(ctx context.Context, p RenderParameters) (IterationBuffer, error) {
	if err := p.Validate(); err != nil {
		return IterationBuffer{}, err
	}
	buf := NewIterationBuffer(p.Width, p.Height, p.MaxIterations)
	if err := EvaluateRows(ctx, p, buf.Counts, 0, p.Height); err != nil {
		return IterationBuffer{}, err
	}
	return buf, nil
}

// EvaluateRows fills counts for rows [y0, y1). counts must hold the whole
// image; disjoint row ranges may be filled concurrently. Parameters are
// assumed valid.
func EvaluateRows(ctx context.Context, p RenderParameters, counts []int, y0, y1 int) error {
	if len(counts) != p.Pixels() {
		return fmt.Errorf("fractal: buffer holds %d counts, want %d: %w", len(counts), p.Pixels(), ErrInvalidDimension)
	}
	if y0 < 0 {
		y0 = 0
	}
	if y1 > p.Height {
		y1 = p.Height
	}

	for y := y0; y < y1; y++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w at row %d: %w", ErrCanceled, y, ctx.Err())
		default:
		}

		row := counts[y*p.Width : (y+1)*p.Width]
		for x := range row {
			cr, ci := MapPixel(p, float64(x), float64(y))
			row[x] = Escape(cr, ci, p.MaxIterations)
		}
	}
	return nil
}
