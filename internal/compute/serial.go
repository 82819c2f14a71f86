package compute

import (
	"context"

	"github.com/san-kum/mandelscope/internal/fractal"
)

type SerialBackend struct{}

func NewSerialBackend() *SerialBackend { return &SerialBackend{} }

func (s *SerialBackend) Name() string    { return "serial" }
func (s *SerialBackend) Available() bool { return true }
func (s *SerialBackend) Cleanup()        {}

func (s *SerialBackend) Evaluate(ctx context.Context, p fractal.RenderParameters) (fractal.IterationBuffer, error) {
	return fractal.EvaluateContext(ctx, p)
}
