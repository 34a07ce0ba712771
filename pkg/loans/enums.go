package loans

import (
	"fmt"
	"strings"

	"github.com/iwvelando/loan-schedule/pkg/constants"
)

// Frequency is how often a payment falls due.
type Frequency int

const (
	Daily Frequency = iota + 1
	Weekly
)

var frequencyNames = map[Frequency]string{
	Daily:  "daily",
	Weekly: "weekly",
}

// ParseFrequency maps "daily" or "weekly" (case-insensitive) to a Frequency.
func ParseFrequency(s string) (Frequency, error) {
	for f, name := range frequencyNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return f, nil
		}
	}
	return 0, &ValidationError{Field: "frequency", Value: s, Reason: "expected daily or weekly"}
}

// Days is the raw calendar step between two payments.
func (f Frequency) Days() int {
	switch f {
	case Daily:
		return 1
	case Weekly:
		return constants.DaysPerWeek
	}
	return 0
}

func (f Frequency) String() string {
	if name, ok := frequencyNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Frequency(%d)", int(f))
}

// MarshalText implements encoding.TextMarshaler.
func (f Frequency) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Frequency) UnmarshalText(text []byte) error {
	parsed, err := ParseFrequency(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// InterestMethod selects how interest is computed for each period.
type InterestMethod int

const (
	// Simple recomputes interest every period from the outstanding balance.
	Simple InterestMethod = iota + 1
	// Precomputed fixes total interest upfront and spreads it evenly.
	Precomputed
)

var interestMethodNames = map[InterestMethod]string{
	Simple:      "simple",
	Precomputed: "precomputed",
}

// ParseInterestMethod maps "simple" or "precomputed" to an InterestMethod.
func ParseInterestMethod(s string) (InterestMethod, error) {
	for m, name := range interestMethodNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return m, nil
		}
	}
	return 0, &ValidationError{Field: "interest method", Value: s, Reason: "expected simple or precomputed"}
}

func (m InterestMethod) String() string {
	if name, ok := interestMethodNames[m]; ok {
		return name
	}
	return fmt.Sprintf("InterestMethod(%d)", int(m))
}

// MarshalText implements encoding.TextMarshaler.
func (m InterestMethod) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *InterestMethod) UnmarshalText(text []byte) error {
	parsed, err := ParseInterestMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// FeeTreatment decides how the additional fee is charged.
type FeeTreatment int

const (
	// Distributed spreads the fee evenly over every scheduled payment.
	Distributed FeeTreatment = iota + 1
	// AddToPrincipal rolls the fee into the financed principal.
	AddToPrincipal
	// SeparatePayment charges the fee as a single row before the payments.
	SeparatePayment
)

var feeTreatmentNames = map[FeeTreatment]string{
	Distributed:     "distributed",
	AddToPrincipal:  "add_to_principal",
	SeparatePayment: "separate_payment",
}

// ParseFeeTreatment accepts distributed, add_to_principal and separate_payment.
// Dashes are accepted in place of underscores.
func ParseFeeTreatment(s string) (FeeTreatment, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(s), "-", "_")
	for t, name := range feeTreatmentNames {
		if strings.EqualFold(normalized, name) {
			return t, nil
		}
	}
	return 0, &ValidationError{Field: "additional fee treatment", Value: s,
		Reason: "expected distributed, add_to_principal or separate_payment"}
}

func (t FeeTreatment) String() string {
	if name, ok := feeTreatmentNames[t]; ok {
		return name
	}
	return fmt.Sprintf("FeeTreatment(%d)", int(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t FeeTreatment) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *FeeTreatment) UnmarshalText(text []byte) error {
	parsed, err := ParseFeeTreatment(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// PaymentType tags each row of a schedule.
type PaymentType int

const (
	GracePeriod PaymentType = iota + 1
	AdditionalFeePayment
	InterestOnly
	Regular
)

var paymentTypeNames = map[PaymentType]string{
	GracePeriod:          "grace_period",
	AdditionalFeePayment: "additional_fee_payment",
	InterestOnly:         "interest_only",
	Regular:              "regular",
}

func (p PaymentType) String() string {
	if name, ok := paymentTypeNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PaymentType(%d)", int(p))
}

// MarshalText implements encoding.TextMarshaler.
func (p PaymentType) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *PaymentType) UnmarshalText(text []byte) error {
	for t, name := range paymentTypeNames {
		if name == string(text) {
			*p = t
			return nil
		}
	}
	return fmt.Errorf("unknown payment type %q", string(text))
}
