package fractal

import (
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// colorFunc maps an escape fraction to a colour. interior is set for points
// that reached the iteration cap.
type colorFunc func(t float64, interior bool) color.RGBA

var palettes = map[ColorScheme]colorFunc{
	Default:   linearGray,
	Grayscale: invertedGray,
	Rainbow:   rainbow,
	Classic:   classic,
}

// Colorize maps every count in buf to RGBA using scheme. It allocates a new
// PixelBuffer and never touches buf.
func Colorize(buf IterationBuffer, maxIter int, scheme ColorScheme) (PixelBuffer, error) {
	fn, err := lookup(scheme)
	if err != nil {
		return PixelBuffer{}, err
	}
	if maxIter <= 0 {
		return PixelBuffer{}, paramErr("max_iterations", maxIter, ErrInvalidIterationBound)
	}
	if buf.Width <= 0 || buf.Height <= 0 || len(buf.Counts) != buf.Width*buf.Height {
		return PixelBuffer{}, paramErr("buffer", len(buf.Counts), ErrInvalidDimension)
	}

	out := NewPixelBuffer(buf.Width, buf.Height)
	for i, n := range buf.Counts {
		out.set(i, fn(fraction(n, maxIter), n >= maxIter))
	}
	return out, nil
}

// ColorAt colours a single count.
func ColorAt(n, maxIter int, scheme ColorScheme) (color.RGBA, error) {
	fn, err := lookup(scheme)
	if err != nil {
		return color.RGBA{}, err
	}
	if maxIter <= 0 {
		return color.RGBA{}, paramErr("max_iterations", maxIter, ErrInvalidIterationBound)
	}
	return fn(fraction(n, maxIter), n >= maxIter), nil
}

func lookup(scheme ColorScheme) (colorFunc, error) {
	fn, ok := palettes[scheme]
	if !ok {
		return nil, paramErr("color_scheme", int(scheme), ErrUnknownColorScheme)
	}
	return fn, nil
}

func fraction(n, maxIter int) float64 {
	t := float64(n) / float64(maxIter)
	return math.Max(0, math.Min(1, t))
}

// channel quantizes v in [0, 255] to a byte, clamping out-of-range input.
// Ties round to even, as a clamped byte array store does.
func channel(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.RoundToEven(v))
}

// linearGray is a linear intensity ramp. Interior points come out white.
func linearGray(t float64, _ bool) color.RGBA {
	v := channel(t * 255)
	return color.RGBA{R: v, G: v, B: v, A: 255}
}

// invertedGray is linearGray flipped, so the interior is black.
func invertedGray(t float64, _ bool) color.RGBA {
	v := 255 - channel(t*255)
	return color.RGBA{R: v, G: v, B: v, A: 255}
}

func rainbow(t float64, _ bool) color.RGBA {
	return hue(t)
}

func classic(t float64, interior bool) color.RGBA {
	if interior {
		return color.RGBA{A: 255}
	}
	return hue(t)
}

// hue cycles once around the colour wheel; t=0 and t=1 share hue 0.
func hue(t float64) color.RGBA {
	h := math.Mod(t*360, 360)
	c := colorful.Hsv(h, 1, 1).Clamped()
	return color.RGBA{R: channel(c.R * 255), G: channel(c.G * 255), B: channel(c.B * 255), A: 255}
}
