package policy

import "fmt"

// PackNotFoundError indicates an evaluation referenced a pack id that is
// not registered. There is no implicit fallback pack; the caller must name
// a known pack.
type PackNotFoundError struct {
	PackID string
}

// Error returns the error message.
func (e *PackNotFoundError) Error() string {
	return fmt.Sprintf("policy pack not found: %q", e.PackID)
}

// RegistryError indicates a registry operation failure.
type RegistryError struct {
	PackID    string
	Operation string
	Message   string
}

// Error returns the error message.
func (e *RegistryError) Error() string {
	if e.PackID != "" {
		return fmt.Sprintf("pack registry %s: pack %q: %s", e.Operation, e.PackID, e.Message)
	}
	return fmt.Sprintf("pack registry %s: %s", e.Operation, e.Message)
}

// LoadError indicates a pack file could not be loaded or parsed.
type LoadError struct {
	Path  string
	Cause error
}

// Error returns the error message.
func (e *LoadError) Error() string {
	return fmt.Sprintf("pack load failed for %q: %v", e.Path, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error {
	return e.Cause
}
