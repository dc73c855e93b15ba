package simulator

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidParameter   = errors.New("invalid welding parameter")
	ErrSingularEvaluation = errors.New("temperature evaluated at the heat source")
	ErrInvalidGrid        = errors.New("invalid evaluation grid")
)

// ParameterError reports which welding parameter broke its constraint.
type ParameterError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%v: %s = %g %s", ErrInvalidParameter, e.Field, e.Value, e.Reason)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}
