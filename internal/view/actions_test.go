package view

import (
	"testing"

	"github.com/san-kum/mandelscope/internal/fractal"
)

func TestViewport_Apply(t *testing.T) {
	tests := []struct {
		action Action
		check  func(before, after fractal.RenderParameters) bool
	}{
		{ActionZoomIn, func(b, a fractal.RenderParameters) bool { return a.Zoom > b.Zoom }},
		{ActionZoomOut, func(b, a fractal.RenderParameters) bool { return a.Zoom < b.Zoom }},
		{ActionPanLeft, func(b, a fractal.RenderParameters) bool { return a.PanX < b.PanX && a.PanY == b.PanY }},
		{ActionPanRight, func(b, a fractal.RenderParameters) bool { return a.PanX > b.PanX && a.PanY == b.PanY }},
		{ActionPanUp, func(b, a fractal.RenderParameters) bool { return a.PanY < b.PanY && a.PanX == b.PanX }},
		{ActionPanDown, func(b, a fractal.RenderParameters) bool { return a.PanY > b.PanY && a.PanX == b.PanX }},
		{ActionMoreIterations, func(b, a fractal.RenderParameters) bool { return a.MaxIterations == b.MaxIterations+10 }},
		{ActionFewerIterations, func(b, a fractal.RenderParameters) bool { return a.MaxIterations == b.MaxIterations-10 }},
		{ActionCycleScheme, func(b, a fractal.RenderParameters) bool { return a.ColorScheme != b.ColorScheme }},
	}

	for _, tt := range tests {
		t.Run(tt.action.String(), func(t *testing.T) {
			v := newTestViewport()
			before := v.Params()
			after, ok := v.Apply(tt.action)
			if !ok {
				t.Fatal("action not applied")
			}
			if !tt.check(before, after) {
				t.Errorf("%s: %s -> %s", tt.action, before, after)
			}
			if after != v.Params() {
				t.Error("returned parameters differ from viewport state")
			}
		})
	}
}

func TestViewport_ApplyResetAndNone(t *testing.T) {
	v := newTestViewport()
	start := v.Params()

	v.Apply(ActionZoomIn)
	v.Apply(ActionPanRight)
	if p, _ := v.Apply(ActionReset); p != start {
		t.Errorf("reset gave %s, want %s", p, start)
	}

	v.Apply(ActionZoomIn)
	zoomed := v.Params()
	for _, a := range []Action{ActionNone, Action(99)} {
		p, ok := v.Apply(a)
		if ok {
			t.Errorf("%v should not apply", a)
		}
		if p != zoomed {
			t.Errorf("%v changed the view", a)
		}
	}
	if Action(99).String() != "unknown" {
		t.Error("unknown action name")
	}
}
