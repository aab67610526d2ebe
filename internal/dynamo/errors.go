package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for sampling operations.
var (
	// ErrIntegration indicates the integrator produced a numerically invalid step.
	ErrIntegration = errors.New("dynamo: integration failure (state diverged)")

	// ErrInvalidConfig indicates a sampler was constructed with invalid settings.
	ErrInvalidConfig = errors.New("dynamo: invalid sampler configuration")

	// ErrDimensionMismatch indicates mismatched position/momentum dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")

	// ErrNoMomentum indicates a state without momentum where one is required.
	ErrNoMomentum = errors.New("dynamo: state has no momentum")
)

// IntegrationError wraps an integration failure with the offending state.
type IntegrationError struct {
	State   *ChainState
	Wrapped error
}

func (e *IntegrationError) Error() string {
	if e.State == nil {
		return e.Wrapped.Error()
	}
	return fmt.Sprintf("%v (dir=%d)", e.Wrapped, e.State.Dir)
}

func (e *IntegrationError) Unwrap() error {
	return e.Wrapped
}

// ConfigError returns an error wrapping ErrInvalidConfig.
func ConfigError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
