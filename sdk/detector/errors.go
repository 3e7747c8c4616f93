package detector

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrTextTooShort is returned when the input has fewer than MinTextLength
// characters after trimming surrounding whitespace.
var ErrTextTooShort = errors.New("text is too short, please enter at least one complete sentence")

// ValidateText checks the input is long enough to be analyzed.
func ValidateText(text string) error {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinTextLength {
		return ErrTextTooShort
	}

	return nil
}

// =============================================================================

// LoadError is returned when the classifier could not be loaded. A load
// failure is remembered for the life of the provider.
type LoadError struct {
	ModelID string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load-model: %s: %v", e.ModelID, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// =============================================================================

// Set of inference stages reported by an InferenceError.
const (
	StageEncode  = "encode"
	StageForward = "forward"
	StageDecode  = "decode"
)

// InferenceError is returned when a loaded model fails to produce a
// probability pair for an input.
type InferenceError struct {
	Stage string
	Err   error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("infer: %s: %v", e.Stage, e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}
