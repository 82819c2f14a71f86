// Package compute provides the backends that run the escape-time evaluator.
//
// The package automatically selects the best available backend:
//
//   - cpu: row bands fanned out over a bounded worker group
//   - serial: one pass on the calling goroutine
//
// # Backends
//
// Every backend produces bit-identical iteration buffers for the same
// parameters, so switching backends never changes a rendered frame:
//
//	backend := compute.GetBackend()
//	buf, err := backend.Evaluate(ctx, params)
//
// A hardware backend only has to satisfy [Backend] and be added to the
// table behind [Lookup].
package compute
