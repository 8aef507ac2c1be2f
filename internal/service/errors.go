package service

import (
	"errors"
	"fmt"
)

// ErrValidation marks input rejected before reaching storage. Wrap it with
// a human-readable reason; callers match with errors.Is.
var ErrValidation = errors.New("validation failed")

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}
