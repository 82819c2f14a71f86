// Package analysis studies single orbits of z -> z^2 + c.
//
// The escape-time renderer only answers "does it escape, and when". This
// package looks at what bounded orbits settle into:
//
//   - [Orbit]: the iterates of one point
//   - [Period]: the length of the attracting cycle, if any
//   - [LyapunovExponent]: stability of the orbit for real c
//   - [BifurcationDiagram]: attractor values swept along the real axis
//
// # Period doubling
//
// Along the real axis the attractor doubles its period at c = -0.75,
// -1.25, -1.3680... and turns chaotic near c = -1.4012:
//
//	lambda := analysis.LyapunovExponent(-1.5, 1000, 5000)
//	if lambda > 0 {
//	    // orbit is chaotic
//	}
package analysis
