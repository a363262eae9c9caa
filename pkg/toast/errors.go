package toast

import (
	"errors"
	"fmt"
)

// ErrEmptyTitle is returned by Add when the input has no title.
var ErrEmptyTitle = errors.New("toast: title is required")

// ErrUnknownKind is returned by Add for a kind other than info, error or success.
var ErrUnknownKind = errors.New("toast: unknown kind")

// ConfigurationError reports use of the distributor outside the scope of a
// live Provider. It indicates an integration mistake and should be
// propagated, not swallowed.
type ConfigurationError struct {
	// Op is the attempted operation ("add", "remove", "lookup").
	Op string

	// Reason explains what is missing.
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("toast: %s: distributor used outside its provisioning scope (%s)", e.Op, e.Reason)
}

// IsConfigurationError reports whether err is, or wraps, a *ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
