package analysis

import (
	"math/cmplx"

	"github.com/san-kum/mandelscope/internal/fractal"
)

// Orbit returns up to n iterates of z -> z^2 + c starting from z = c, the
// same start the renderer uses. It stops early, including the first point
// outside the escape radius, when the orbit escapes.
func Orbit(c fractal.Point, n int) []fractal.Point {
	if n <= 0 {
		return nil
	}
	cc := complex(c.Re, c.Im)
	z := cc
	out := make([]fractal.Point, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, fractal.Point{Re: real(z), Im: imag(z)})
		if real(z)*real(z)+imag(z)*imag(z) > fractal.EscapeRadiusSq {
			break
		}
		z = z*z + cc
	}
	return out
}

// Period returns the length of the cycle the orbit of c settles into, or 0
// when the orbit escapes or no cycle up to maxPeriod is found within tol
// after transient iterations.
func Period(c fractal.Point, transient, maxPeriod int, tol float64) int {
	cc := complex(c.Re, c.Im)
	z := cc
	for i := 0; i < transient; i++ {
		z = z*z + cc
		if cmplx.Abs(z) > 2 {
			return 0
		}
	}

	ref := z
	for p := 1; p <= maxPeriod; p++ {
		z = z*z + cc
		if cmplx.Abs(z) > 2 {
			return 0
		}
		if cmplx.Abs(z-ref) < tol {
			return p
		}
	}
	return 0
}
