package config

import "sort"

// Preset is a named view of the set. Zoom is 1/width of the visible region
// and the pan is the negated centre.
type Preset struct {
	Description   string
	Zoom          float64
	PanX          float64
	PanY          float64
	MaxIterations int
	ColorScheme   string
}

var Presets = map[string]*Preset{
	"origin": {
		Description: "unit view centred on the origin",
		Zoom:        1, MaxIterations: 50,
	},
	"full": {
		Description: "whole set",
		Zoom:        0.3, PanX: 0.5, MaxIterations: 100, ColorScheme: "classic",
	},
	// Seahorse Valley: dense filaments and repeating curls
	"seahorse": {
		Description: "seahorse valley",
		Zoom:        10, PanX: 0.75, PanY: -0.10, MaxIterations: 200, ColorScheme: "rainbow",
	},
	// Elephant Valley: large bulb with trunk-like tendrils
	"elephant": {
		Description: "elephant valley",
		Zoom:        10, PanX: 1.80, PanY: 0.06, MaxIterations: 200, ColorScheme: "rainbow",
	},
	"spiral": {
		Description: "spiral minibrot",
		Zoom:        1 / 0.0015, PanX: 0.74275, PanY: -0.13175, MaxIterations: 1000, ColorScheme: "classic",
	},
	"triple-spiral": {
		Description: "threefold symmetric spiral",
		Zoom:        1 / 0.003, PanX: 0.7465, PanY: -0.0965, MaxIterations: 800, ColorScheme: "classic",
	},
	"dragon": {
		Description: "valley of the dragon",
		Zoom:        200, PanX: 0.7375, PanY: -0.1825, MaxIterations: 800, ColorScheme: "rainbow",
	},
	"minibrot": {
		Description: "minibrot in a mini-spiral",
		Zoom:        1 / 0.0015, PanX: 1.73825, PanY: 0.02275, MaxIterations: 1000, ColorScheme: "classic",
	},
}

func GetPreset(name string) *Preset {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p
}

// ListPresets returns preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
