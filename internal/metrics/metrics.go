package metrics

import (
	"sort"

	"github.com/san-kum/mandelscope/internal/fractal"
)

// Metric accumulates one statistic over the pixels of an iteration buffer.
type Metric interface {
	Name() string
	Observe(n, maxIter int)
	Value() float64
	Reset()
}

func DefaultMetrics() []Metric {
	return []Metric{
		NewInterior(),
		NewMeanEscape(),
		NewMaxEscape(),
	}
}

// Summarize feeds every pixel of buf through ms and returns their values
// keyed by name.
func Summarize(buf fractal.IterationBuffer, ms ...Metric) map[string]float64 {
	if len(ms) == 0 {
		ms = DefaultMetrics()
	}
	for _, m := range ms {
		m.Reset()
	}
	for _, n := range buf.Counts {
		for _, m := range ms {
			m.Observe(n, buf.MaxIterations)
		}
	}

	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

// Names returns the keys of a summary in sorted order.
func Names(summary map[string]float64) []string {
	names := make([]string, 0, len(summary))
	for name := range summary {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
