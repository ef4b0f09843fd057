package domain

import "fmt"

// ErrorKind classifies a ResolutionError.
type ErrorKind string

const (
	KindInvalidInput  ErrorKind = "invalid_input"   // rejected before any provider call
	KindProvider      ErrorKind = "provider"        // fatal provider failure
	KindNoUsableUsage ErrorKind = "no_usable_usage" // no usage to probe
	KindExhausted     ErrorKind = "exhausted"       // every usage probed, none matched
	KindNoLastName    ErrorKind = "no_last_name"    // chaotic mode returned a single name
)

// ResolutionError describes why a resolution, or its last-name search, failed.
//
// Attempts == 0 means no usable usage was found; Attempts > 0 means candidates
// were tried and exhausted.
type ResolutionError struct {
	Kind     ErrorKind
	Message  string
	Attempts uint

	cause error
}

// NewResolutionError creates a ResolutionError wrapping cause (which may be nil).
func NewResolutionError(kind ErrorKind, attempts uint, message string, cause error) *ResolutionError {
	return &ResolutionError{Kind: kind, Message: message, Attempts: attempts, cause: cause}
}

func (e *ResolutionError) Error() string {
	if e.Attempts > 0 {
		return fmt.Sprintf("%s after %d attempts: %s", e.Kind, e.Attempts, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ResolutionError) Unwrap() error {
	return e.cause
}

// IsFatal reports whether the error aborted the whole resolution, as opposed
// to only the last-name search.
func (e *ResolutionError) IsFatal() bool {
	return e.Kind == KindInvalidInput || e.Kind == KindProvider
}
