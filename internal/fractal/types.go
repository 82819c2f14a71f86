package fractal

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"
)

// ColorScheme selects how iteration counts become colours.
// The zero value is Default, which is what an unset scheme means.
type ColorScheme int

const (
	Default ColorScheme = iota
	Grayscale
	Rainbow
	Classic
)

var schemeNames = map[ColorScheme]string{
	Default:   "default",
	Grayscale: "grayscale",
	Rainbow:   "rainbow",
	Classic:   "classic",
}

// ColorSchemes returns every recognised scheme in declaration order.
func ColorSchemes() []ColorScheme {
	return []ColorScheme{Default, Grayscale, Rainbow, Classic}
}

func (s ColorScheme) String() string {
	if name, ok := schemeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("ColorScheme(%d)", int(s))
}

// Valid reports whether s is one of the recognised schemes.
func (s ColorScheme) Valid() bool {
	_, ok := schemeNames[s]
	return ok
}

// ParseColorScheme resolves a scheme by name. An empty name means no scheme
// was specified and yields Default; any other unknown name is an error.
func ParseColorScheme(name string) (ColorScheme, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Default, nil
	}
	for s, n := range schemeNames {
		if n == name {
			return s, nil
		}
	}
	return 0, paramErr("color_scheme", name, ErrUnknownColorScheme)
}

func (s ColorScheme) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, paramErr("color_scheme", int(s), ErrUnknownColorScheme)
	}
	return []byte(s.String()), nil
}

func (s *ColorScheme) UnmarshalText(text []byte) error {
	parsed, err := ParseColorScheme(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// RenderParameters is the full input of one render pass. It is a value:
// callers build a new one for every change instead of mutating a shared one.
type RenderParameters struct {
	Width         int         `json:"width"`
	Height        int         `json:"height"`
	Zoom          float64     `json:"zoom"`
	PanX          float64     `json:"pan_x"`
	PanY          float64     `json:"pan_y"`
	MaxIterations int         `json:"max_iterations"`
	ColorScheme   ColorScheme `json:"color_scheme"`
}

// Reference surface used by the interactive front ends.
const (
	DefaultWidth         = 800
	DefaultHeight        = 600
	DefaultZoom          = 1.0
	DefaultMaxIterations = 50
)

func DefaultParameters() RenderParameters {
	return RenderParameters{
		Width:         DefaultWidth,
		Height:        DefaultHeight,
		Zoom:          DefaultZoom,
		MaxIterations: DefaultMaxIterations,
		ColorScheme:   Default,
	}
}

// Validate checks everything the evaluator needs. The colour scheme is not
// checked here; it is rejected at the colorize stage.
func (p RenderParameters) Validate() error {
	if p.Width <= 0 {
		return paramErr("width", p.Width, ErrInvalidDimension)
	}
	if p.Height <= 0 {
		return paramErr("height", p.Height, ErrInvalidDimension)
	}
	// Four bytes per pixel must still fit in an int.
	if p.Width > math.MaxInt/p.Height/4 {
		return paramErr("width", fmt.Sprintf("%dx%d", p.Width, p.Height), ErrInvalidDimension)
	}
	if !(p.Zoom > 0) || math.IsInf(p.Zoom, 0) {
		return paramErr("zoom", p.Zoom, ErrInvalidZoom)
	}
	if math.IsNaN(p.PanX) || math.IsInf(p.PanX, 0) {
		return paramErr("pan_x", p.PanX, ErrInvalidPan)
	}
	if math.IsNaN(p.PanY) || math.IsInf(p.PanY, 0) {
		return paramErr("pan_y", p.PanY, ErrInvalidPan)
	}
	if p.MaxIterations <= 0 {
		return paramErr("max_iterations", p.MaxIterations, ErrInvalidIterationBound)
	}
	return nil
}

// Pixels returns width*height.
func (p RenderParameters) Pixels() int {
	return p.Width * p.Height
}

func (p RenderParameters) String() string {
	return fmt.Sprintf("%dx%d zoom=%g pan=(%g,%g) iter=%d scheme=%s",
		p.Width, p.Height, p.Zoom, p.PanX, p.PanY, p.MaxIterations, p.ColorScheme)
}

// IterationBuffer holds one escape count per pixel in row-major order.
// A count equal to MaxIterations marks a point that never escaped.
type IterationBuffer struct {
	Width         int
	Height        int
	MaxIterations int
	Counts        []int
}

func NewIterationBuffer(width, height, maxIter int) IterationBuffer {
	return IterationBuffer{
		Width:         width,
		Height:        height,
		MaxIterations: maxIter,
		Counts:        make([]int, width*height),
	}
}

func (b IterationBuffer) Len() int { return len(b.Counts) }

func (b IterationBuffer) At(x, y int) int {
	return b.Counts[y*b.Width+x]
}

// Interior reports whether the pixel at index i never escaped.
func (b IterationBuffer) Interior(i int) bool {
	return b.Counts[i] >= b.MaxIterations
}

// PixelBuffer holds RGBA quadruplets in the same order as IterationBuffer.
type PixelBuffer struct {
	Width  int
	Height int
	Pix    []uint8
}

func NewPixelBuffer(width, height int) PixelBuffer {
	return PixelBuffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*4),
	}
}

// Len returns the number of pixels.
func (b PixelBuffer) Len() int { return len(b.Pix) / 4 }

func (b PixelBuffer) RGBAAt(x, y int) color.RGBA {
	i := (y*b.Width + x) * 4
	return color.RGBA{R: b.Pix[i], G: b.Pix[i+1], B: b.Pix[i+2], A: b.Pix[i+3]}
}

func (b PixelBuffer) set(i int, c color.RGBA) {
	j := i * 4
	b.Pix[j] = c.R
	b.Pix[j+1] = c.G
	b.Pix[j+2] = c.B
	b.Pix[j+3] = c.A
}

// Image wraps the buffer as an *image.RGBA without copying.
func (b PixelBuffer) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    b.Pix,
		Stride: b.Width * 4,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}
