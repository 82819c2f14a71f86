package analysis

import "math"

// Floor for |f'(x)| so a superstable orbit through 0 yields a large negative
// exponent instead of -Inf.
const minDerivative = 1e-12

// LyapunovExponent estimates the Lyapunov exponent of x -> x^2 + c for real
// c as the mean of ln|2x| over n iterations after a transient. Negative
// values mean a stable cycle, positive values chaos. Escaping orbits return
// +Inf.
//
// Algorithm:
// 1. Iterate the transient away
// 2. Average ln|f'(x_k)| = ln|2 x_k| along the orbit
func LyapunovExponent(c float64, transient, n int) float64 {
	if n <= 0 {
		return 0
	}

	x := c
	for i := 0; i < transient; i++ {
		x = x*x + c
		if math.Abs(x) > 2 {
			return math.Inf(1)
		}
	}

	sumLog := 0.0
	for i := 0; i < n; i++ {
		sumLog += math.Log(math.Max(math.Abs(2*x), minDerivative))
		x = x*x + c
		if math.Abs(x) > 2 {
			return math.Inf(1)
		}
	}
	return sumLog / float64(n)
}

// LyapunovCurve samples the exponent at steps evenly spaced c in
// [cMin, cMax]. Escaping samples are reported as NaN.
func LyapunovCurve(cMin, cMax float64, steps, transient, n int) (cs, lambdas []float64) {
	if steps <= 1 {
		steps = 2
	}
	cs = make([]float64, steps)
	lambdas = make([]float64, steps)
	step := (cMax - cMin) / float64(steps-1)

	for i := range cs {
		c := cMin + float64(i)*step
		l := LyapunovExponent(c, transient, n)
		if math.IsInf(l, 1) {
			l = math.NaN()
		}
		cs[i], lambdas[i] = c, l
	}
	return cs, lambdas
}
