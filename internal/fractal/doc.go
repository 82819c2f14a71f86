// Package fractal provides the Mandelbrot escape-time engine.
//
// The package is split into two pure stages:
//
//   - [Evaluate]: maps every pixel to a point in the complex plane and
//     counts escape-time iterations into an [IterationBuffer]
//   - [Colorize]: maps iteration counts to RGBA through a [ColorScheme]
//     into a [PixelBuffer]
//
// # Example
//
//	p := fractal.DefaultParameters()
//	buf, err := fractal.Evaluate(p)
//	if err != nil {
//		return err
//	}
//	pix, err := fractal.Colorize(buf, p.MaxIterations, p.ColorScheme)
//
// # Thread Safety
//
// Both stages hold no state. Buffers are allocated per call and never
// shared, so concurrent renders with different parameters are safe.
// [EvaluateRows] lets callers split one buffer into disjoint row bands.
package fractal
