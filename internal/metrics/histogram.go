package metrics

import "github.com/san-kum/mandelscope/internal/fractal"

// Histogram counts pixels per iteration band. Bin i < bins covers escaped
// counts in [i*max/bins, (i+1)*max/bins); the extra bin at index bins holds
// interior pixels only.
func Histogram(buf fractal.IterationBuffer, bins int) []float64 {
	if bins <= 0 || buf.MaxIterations <= 0 {
		return nil
	}
	out := make([]float64, bins+1)
	for _, n := range buf.Counts {
		if n >= buf.MaxIterations {
			out[bins]++
			continue
		}
		b := n * bins / buf.MaxIterations
		if b < 0 {
			b = 0
		}
		out[b]++
	}
	return out
}
