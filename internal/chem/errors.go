package chem

import (
	"errors"
	"fmt"
)

var (
	// ErrDomain indicates input outside the physical or structural domain.
	ErrDomain = errors.New("chem: value outside valid domain")

	// ErrLookup indicates an unknown ion name or object.
	ErrLookup = errors.New("chem: ion not found")

	// ErrConvergence indicates an iteration budget was exhausted.
	ErrConvergence = errors.New("chem: solver did not converge")
)

// DomainError describes which input was rejected and why.
type DomainError struct {
	Op     string
	Field  string
	Reason string
}

func (e *DomainError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Field, e.Reason)
}

func (e *DomainError) Unwrap() error {
	return ErrDomain
}

// Domainf builds a DomainError with a formatted reason.
func Domainf(op, field, format string, args ...any) *DomainError {
	return &DomainError{Op: op, Field: field, Reason: fmt.Sprintf(format, args...)}
}

// LookupError reports a name that could not be resolved.
type LookupError struct {
	Name  string
	Where string
}

func (e *LookupError) Error() string {
	if e.Where == "" {
		return fmt.Sprintf("ion %q not found", e.Name)
	}
	return fmt.Sprintf("ion %q not found in %s", e.Name, e.Where)
}

func (e *LookupError) Unwrap() error {
	return ErrLookup
}
