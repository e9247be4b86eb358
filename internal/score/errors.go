package score

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ogulcanaydogan/llm-output-eval/pkg/types"
)

// ErrOutOfRange is matched by every *ValidationError.
var ErrOutOfRange = errors.New("score out of range")

// ValidationError reports a sub-score outside [0, 1].
type ValidationError struct {
	Metric types.Metric
	Value  float64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s must be between 0 and 1. Got %s.", e.Metric, strconv.FormatFloat(e.Value, 'g', -1, 64))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrOutOfRange
}

// IsValidationError reports whether err wraps a *ValidationError and returns it.
func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
