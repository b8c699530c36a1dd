package product

import (
	"fmt"

	"github.com/go-faster/errors"
)

// ErrAdResult marks a raw catalog entry that is an advertisement placement
// rather than a product. It is an expected, silently-skipped case, not a
// conversion failure.
var ErrAdResult = errors.New("advertisement result")

// ConversionError indicates a raw catalog item could not be turned into a
// canonical snapshot: an unparseable size string, a missing required field,
// or a batch whose failure rate exceeded the tolerated threshold.
type ConversionError struct {
	Reason string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("conversion error: %s", e.Reason)
}

// NewConversionError builds a ConversionError with a formatted reason.
func NewConversionError(format string, args ...any) *ConversionError {
	return &ConversionError{Reason: fmt.Sprintf(format, args...)}
}
