package evidence

import (
	"errors"
	"fmt"
)

// ErrInsufficientData is the root of every horizon-level failure.
var ErrInsufficientData = errors.New("insufficient data")

func insufficient(horizon, format string, args ...any) error {
	return fmt.Errorf("%w for %s horizon: %s", ErrInsufficientData, horizon, fmt.Sprintf(format, args...))
}
