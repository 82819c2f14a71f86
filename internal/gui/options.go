package gui

import (
	"github.com/san-kum/mandelscope/internal/compute"
	"github.com/san-kum/mandelscope/internal/fractal"
	"github.com/san-kum/mandelscope/internal/view"
)

type Options struct {
	Backend  compute.Backend
	Initial  fractal.RenderParameters
	Settings view.Settings
	// Resizable lets the window change the render surface.
	Resizable bool
}
