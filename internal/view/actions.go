package view

import "github.com/san-kum/mandelscope/internal/fractal"

// Action is a single user interaction with the viewport, independent of the
// front end that produced it.
type Action int

const (
	ActionNone Action = iota
	ActionZoomIn
	ActionZoomOut
	ActionPanLeft
	ActionPanRight
	ActionPanUp
	ActionPanDown
	ActionMoreIterations
	ActionFewerIterations
	ActionCycleScheme
	ActionReset
)

var actionNames = map[Action]string{
	ActionNone:            "none",
	ActionZoomIn:          "zoom in",
	ActionZoomOut:         "zoom out",
	ActionPanLeft:         "pan left",
	ActionPanRight:        "pan right",
	ActionPanUp:           "pan up",
	ActionPanDown:         "pan down",
	ActionMoreIterations:  "more iterations",
	ActionFewerIterations: "fewer iterations",
	ActionCycleScheme:     "next colour scheme",
	ActionReset:           "reset",
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return "unknown"
}

// Apply performs a and returns the resulting parameters. ok is false for
// ActionNone and unknown actions, which leave the view untouched.
func (v *Viewport) Apply(a Action) (p fractal.RenderParameters, ok bool) {
	switch a {
	case ActionZoomIn:
		return v.ZoomIn(), true
	case ActionZoomOut:
		return v.ZoomOut(), true
	case ActionPanLeft:
		return v.Pan(-1, 0), true
	case ActionPanRight:
		return v.Pan(1, 0), true
	case ActionPanUp:
		return v.Pan(0, -1), true
	case ActionPanDown:
		return v.Pan(0, 1), true
	case ActionMoreIterations:
		return v.MoreIterations(), true
	case ActionFewerIterations:
		return v.FewerIterations(), true
	case ActionCycleScheme:
		return v.CycleScheme(), true
	case ActionReset:
		return v.Reset(), true
	}
	return v.params, false
}
