package loans

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError via errors.Is.
	ErrValidation = errors.New("invalid loan terms")

	// ErrConfiguration matches every *ConfigurationError via errors.Is.
	ErrConfiguration = errors.New("payment count table misconfigured")

	// ErrTermsNotValidated is returned when a zero-value LoanTerms reaches the
	// generator without going through NewLoanTerms.
	ErrTermsNotValidated = errors.New("loan terms were not built with NewLoanTerms")
)

// ValidationError identifies a loan term field rejected at construction.
type ValidationError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ConfigurationError reports a (term, frequency) pair absent from the payment
// count table.
type ConfigurationError struct {
	TermMonths int
	Frequency  Frequency
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("no payment count configured for %d months at %s frequency", e.TermMonths, e.Frequency)
}

// Is lets errors.Is(err, ErrConfiguration) match.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}
