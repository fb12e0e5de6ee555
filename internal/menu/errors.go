package menu

import "fmt"

// LoadError signals that a menu source was unavailable or produced a
// malformed document. The cache absorbs it: the previous tree keeps serving,
// or an empty root when nothing was ever loaded.
type LoadError struct {
	Source string
	Cause  error
}

// Error returns the error message.
func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("menu source %s: %v", e.Source, e.Cause)
	}
	return fmt.Sprintf("menu source %s: load failed", e.Source)
}

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// NewLoadError wraps cause as a LoadError for the named source.
func NewLoadError(source string, cause error) *LoadError {
	return &LoadError{Source: source, Cause: cause}
}
