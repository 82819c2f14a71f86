package fractal

import (
	"errors"
	"fmt"
)

// Domain errors for render requests.
var (
	// ErrInvalidDimension indicates a non-positive width or height.
	ErrInvalidDimension = errors.New("fractal: width and height must be positive")

	// ErrInvalidZoom indicates a zoom that is zero, negative or not finite.
	ErrInvalidZoom = errors.New("fractal: zoom must be positive and finite")

	// ErrInvalidPan indicates a pan offset that is NaN or infinite.
	ErrInvalidPan = errors.New("fractal: pan must be finite")

	// ErrInvalidIterationBound indicates a non-positive iteration cap.
	ErrInvalidIterationBound = errors.New("fractal: max iterations must be positive")

	// ErrUnknownColorScheme indicates a scheme value outside the enum.
	ErrUnknownColorScheme = errors.New("fractal: unknown color scheme")

	// ErrCanceled indicates the render was abandoned through its context.
	ErrCanceled = errors.New("fractal: render canceled")
)

// ParamError wraps a domain error with the offending parameter.
type ParamError struct {
	Field   string
	Value   any
	Wrapped error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s (%s=%v)", e.Wrapped.Error(), e.Field, e.Value)
}

func (e *ParamError) Unwrap() error {
	return e.Wrapped
}

func paramErr(field string, value any, err error) error {
	return &ParamError{Field: field, Value: value, Wrapped: err}
}
