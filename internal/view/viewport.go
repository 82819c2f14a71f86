// Package view holds the mutable interaction state of a front end and turns
// it into immutable render parameters.
package view

import (
	"math"

	"github.com/san-kum/mandelscope/internal/fractal"
)

// Interaction defaults of the reference UI.
const (
	DefaultZoomFactor    = 1.5
	DefaultPanStep       = 10.0
	DefaultMinIterations = 10
	DefaultMaxIterations = 200
	DefaultIterationStep = 10
)

type Settings struct {
	ZoomFactor    float64
	PanStep       float64
	MinIterations int
	MaxIterations int
	IterationStep int
}

func DefaultSettings() Settings {
	return Settings{
		ZoomFactor:    DefaultZoomFactor,
		PanStep:       DefaultPanStep,
		MinIterations: DefaultMinIterations,
		MaxIterations: DefaultMaxIterations,
		IterationStep: DefaultIterationStep,
	}
}

func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.ZoomFactor <= 1 {
		s.ZoomFactor = d.ZoomFactor
	}
	if s.PanStep <= 0 {
		s.PanStep = d.PanStep
	}
	if s.MinIterations <= 0 {
		s.MinIterations = d.MinIterations
	}
	if s.MaxIterations <= 0 {
		s.MaxIterations = d.MaxIterations
	}
	if s.MaxIterations < s.MinIterations {
		s.MaxIterations = s.MinIterations
	}
	if s.IterationStep <= 0 {
		s.IterationStep = d.IterationStep
	}
	return s
}

// Viewport is not safe for concurrent use; it belongs to the UI goroutine.
// Each mutation leaves the viewport holding a new parameter value that the
// caller hands to the renderer through Params.
type Viewport struct {
	settings Settings
	initial  fractal.RenderParameters
	params   fractal.RenderParameters
}

func New(initial fractal.RenderParameters, settings Settings) *Viewport {
	return &Viewport{
		settings: settings.withDefaults(),
		initial:  initial,
		params:   initial,
	}
}

// Params returns the current parameters by value.
func (v *Viewport) Params() fractal.RenderParameters { return v.params }

func (v *Viewport) Settings() Settings { return v.settings }

func (v *Viewport) ZoomIn() fractal.RenderParameters {
	v.params.Zoom *= v.settings.ZoomFactor
	return v.params
}

func (v *Viewport) ZoomOut() fractal.RenderParameters {
	v.params.Zoom /= v.settings.ZoomFactor
	return v.params
}

// Pan moves the view by dx, dy steps. One step is PanStep pixels of the
// current surface, converted to complex-plane units at the current zoom, and
// added to the pan offset with the engine's sign convention: a negative dx
// (the "left" button) increases the real part of the view centre.
func (v *Viewport) Pan(dx, dy int) fractal.RenderParameters {
	if v.params.Width > 0 && v.params.Zoom > 0 {
		v.params.PanX += float64(dx) * v.settings.PanStep / (float64(v.params.Width) * v.params.Zoom)
	}
	if v.params.Height > 0 && v.params.Zoom > 0 {
		v.params.PanY += float64(dy) * v.settings.PanStep / (float64(v.params.Height) * v.params.Zoom)
	}
	return v.params
}

// SetIterations applies the UI range; the engine itself accepts any
// positive bound.
func (v *Viewport) SetIterations(n int) fractal.RenderParameters {
	if n < v.settings.MinIterations {
		n = v.settings.MinIterations
	}
	if n > v.settings.MaxIterations {
		n = v.settings.MaxIterations
	}
	v.params.MaxIterations = n
	return v.params
}

func (v *Viewport) MoreIterations() fractal.RenderParameters {
	return v.stepIterations(v.settings.IterationStep)
}

func (v *Viewport) FewerIterations() fractal.RenderParameters {
	return v.stepIterations(-v.settings.IterationStep)
}

// stepIterations moves the bound by delta. A bound that starts outside the
// UI range, as preset bounds can, steps freely on that side instead of
// snapping to the range edge.
func (v *Viewport) stepIterations(delta int) fractal.RenderParameters {
	cur := v.params.MaxIterations
	lo, hi := v.settings.MinIterations, v.settings.MaxIterations
	if hi < lo {
		hi = lo
	}
	if cur > hi {
		lo, hi = hi, math.MaxInt
	}
	if cur < lo {
		lo = max(cur, 1)
	}

	n := cur + delta
	if n < lo {
		n = lo
	}
	if n > hi {
		n = hi
	}
	v.params.MaxIterations = n
	return v.params
}

func (v *Viewport) SetScheme(s fractal.ColorScheme) fractal.RenderParameters {
	v.params.ColorScheme = s
	return v.params
}

// CycleScheme steps to the next recognised scheme, wrapping around.
func (v *Viewport) CycleScheme() fractal.RenderParameters {
	schemes := fractal.ColorSchemes()
	next := schemes[0]
	for i, s := range schemes {
		if s == v.params.ColorScheme {
			next = schemes[(i+1)%len(schemes)]
			break
		}
	}
	v.params.ColorScheme = next
	return v.params
}

func (v *Viewport) Resize(width, height int) fractal.RenderParameters {
	v.params.Width = width
	v.params.Height = height
	return v.params
}

// Reset returns to the initial view, keeping the current surface size.
func (v *Viewport) Reset() fractal.RenderParameters {
	w, h := v.params.Width, v.params.Height
	v.params = v.initial
	v.params.Width, v.params.Height = w, h
	return v.params
}

// Center returns the complex coordinate at the middle of the view.
func (v *Viewport) Center() fractal.Point {
	return fractal.Point{Re: -v.params.PanX, Im: -v.params.PanY}
}
