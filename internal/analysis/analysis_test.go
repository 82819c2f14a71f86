package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/mandelscope/internal/fractal"
)

func TestOrbit(t *testing.T) {
	orbit := Orbit(fractal.Point{Re: -1}, 5)
	want := []float64{-1, 0, -1, 0, -1}
	if len(orbit) != len(want) {
		t.Fatalf("got %d points, want %d", len(orbit), len(want))
	}
	for i, p := range orbit {
		if p.Re != want[i] || p.Im != 0 {
			t.Errorf("point %d: %v, want %g", i, p, want[i])
		}
	}

	escaped := Orbit(fractal.Point{Re: 1}, 10)
	// 1, 2, 5: stops on the first point past the radius
	if len(escaped) != 3 || escaped[2].Re != 5 {
		t.Errorf("escaping orbit: %v", escaped)
	}
	if Orbit(fractal.Point{}, 0) != nil {
		t.Error("n=0 should give no points")
	}
}

func TestOrbit_AgreesWithEscape(t *testing.T) {
	points := []fractal.Point{{Re: 0.3, Im: 0.5}, {Re: -0.75, Im: 0.1}, {Re: 0.26}, {Re: -2.1}}
	for _, c := range points {
		n := fractal.Escape(c.Re, c.Im, 100)
		orbit := Orbit(c, 101)
		// Escape counts iterations before escaping, the orbit also holds the
		// escaping point.
		if n < 100 && len(orbit) != n+1 {
			t.Errorf("%v: escape %d, orbit length %d", c, n, len(orbit))
		}
	}
}

func TestPeriod(t *testing.T) {
	tests := []struct {
		c    fractal.Point
		want int
	}{
		{fractal.Point{Re: 0}, 1},
		{fractal.Point{Re: -0.5}, 1},
		{fractal.Point{Re: -1}, 2},
		{fractal.Point{Re: -1.3}, 4},
		{fractal.Point{Re: -1.755}, 3},
		{fractal.Point{Re: -0.1226, Im: 0.7449}, 3},
		{fractal.Point{Re: 1}, 0},
		{fractal.Point{Re: 0.3, Im: 0.6}, 0},
	}
	for _, tt := range tests {
		if got := Period(tt.c, 2000, 64, 1e-6); got != tt.want {
			t.Errorf("Period(%v) = %d, want %d", tt.c, got, tt.want)
		}
	}
}

func TestLyapunovExponent(t *testing.T) {
	tests := []struct {
		name    string
		c       float64
		chaotic bool
	}{
		{"fixed point", -0.5, false},
		{"period two", -1.1, false},
		{"period three window", -1.76, false},
		{"chaos", -1.9, true},
		{"antenna tip", -2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := LyapunovExponent(tt.c, 1000, 20000)
			if (l > 0) != tt.chaotic {
				t.Errorf("lambda(%g) = %.4f, chaotic=%v", tt.c, l, tt.chaotic)
			}
		})
	}

	if !math.IsInf(LyapunovExponent(0.5, 100, 100), 1) {
		t.Error("escaping orbit should give +Inf")
	}
	if l := LyapunovExponent(0, 10, 10); l > -20 {
		t.Errorf("superstable orbit should be strongly negative, got %g", l)
	}
}

func TestLyapunovCurve(t *testing.T) {
	cs, ls := LyapunovCurve(-2.2, 0, 12, 100, 200)
	if len(cs) != 12 || len(ls) != 12 {
		t.Fatalf("lengths %d, %d", len(cs), len(ls))
	}
	if cs[0] != -2.2 || math.Abs(cs[11]) > 1e-12 {
		t.Errorf("range %g..%g", cs[0], cs[11])
	}
	if !math.IsNaN(ls[0]) {
		t.Errorf("c=-2.2 escapes, got %g", ls[0])
	}
}

func TestBifurcationDiagram(t *testing.T) {
	data := BifurcationDiagram(-1.0, -0.5, 3, 2000, 200)
	if len(data) != 3 {
		t.Fatalf("got %d points", len(data))
	}
	// c=-1 is a 2-cycle, c=-0.5 a fixed point
	if got := len(data[0].Values); got != 2 {
		t.Errorf("c=-1: %d values, want 2", got)
	}
	if got := len(data[2].Values); got != 1 {
		t.Errorf("c=-0.5: %d values, want 1", got)
	}

	escaped := BifurcationDiagram(0.3, 0.4, 2, 100, 10)
	for _, p := range escaped {
		if len(p.Values) != 0 {
			t.Errorf("c=%g escapes but recorded %v", p.Param, p.Values)
		}
	}
}

func TestBifurcationToASCII(t *testing.T) {
	data := BifurcationDiagram(-2, 0.25, 40, 500, 100)
	art := BifurcationToASCII(data, 40, 10)
	lines := strings.Split(strings.TrimRight(art, "\n"), "\n")
	if len(lines) != 10 {
		t.Fatalf("%d lines, want 10", len(lines))
	}
	if !strings.Contains(art, "•") {
		t.Error("no points plotted")
	}

	if BifurcationToASCII(nil, 10, 10) != "" {
		t.Error("empty data should give empty output")
	}
	if BifurcationToASCII(BifurcationDiagram(0.3, 0.4, 2, 10, 10), 10, 10) != "" {
		t.Error("all-escaped data should give empty output")
	}
}
