// Package loans generates amortization schedules for short-term daily and
// weekly loans.
package loans

import (
	"time"

	"github.com/iwvelando/loan-schedule/pkg/datetime"
	"github.com/shopspring/decimal"
)

// TermsInput carries the raw loan parameters handed to NewLoanTerms.
type TermsInput struct {
	StartDate              time.Time
	Principal              decimal.Decimal
	TermMonths             int
	AnnualRate             decimal.Decimal // fraction, e.g. 0.1775
	Frequency              Frequency
	OriginationFee         decimal.Decimal
	AdditionalFee          decimal.Decimal
	AdditionalFeeTreatment FeeTreatment
	BankDaysOnly           bool
	InterestOnlyPeriods    int
	GracePeriodDays        int
	InterestMethod         InterestMethod
}

// LoanTerms is a validated, read-only set of loan parameters.
type LoanTerms struct {
	in            TermsInput
	totalPayments int
}

// NewLoanTerms validates the input and derives the payment count. It returns a
// *ValidationError for the first offending field, or a *ConfigurationError
// when the payment count table lacks the term and frequency pair.
func NewLoanTerms(in TermsInput) (LoanTerms, error) {
	if in.StartDate.IsZero() {
		return LoanTerms{}, &ValidationError{Field: "start date", Value: "", Reason: "must be set"}
	}
	in.StartDate = datetime.Truncate(in.StartDate)

	if !in.Principal.IsPositive() {
		return LoanTerms{}, &ValidationError{Field: "principal", Value: in.Principal, Reason: "must be greater than zero"}
	}
	if !supportedTerm(in.TermMonths) {
		return LoanTerms{}, &ValidationError{Field: "term months", Value: in.TermMonths,
			Reason: "expected one of 6, 9, 12, 15 or 18"}
	}
	if in.AnnualRate.IsNegative() {
		return LoanTerms{}, &ValidationError{Field: "annual rate", Value: in.AnnualRate, Reason: "must not be negative"}
	}
	if _, ok := frequencyNames[in.Frequency]; !ok {
		return LoanTerms{}, &ValidationError{Field: "frequency", Value: in.Frequency, Reason: "expected daily or weekly"}
	}
	if in.OriginationFee.IsNegative() {
		return LoanTerms{}, &ValidationError{Field: "origination fee", Value: in.OriginationFee, Reason: "must not be negative"}
	}
	if in.AdditionalFee.IsNegative() {
		return LoanTerms{}, &ValidationError{Field: "additional fee", Value: in.AdditionalFee, Reason: "must not be negative"}
	}
	if _, ok := feeTreatmentNames[in.AdditionalFeeTreatment]; !ok {
		return LoanTerms{}, &ValidationError{Field: "additional fee treatment", Value: in.AdditionalFeeTreatment,
			Reason: "expected distributed, add_to_principal or separate_payment"}
	}
	if _, ok := interestMethodNames[in.InterestMethod]; !ok {
		return LoanTerms{}, &ValidationError{Field: "interest method", Value: in.InterestMethod,
			Reason: "expected simple or precomputed"}
	}
	if in.GracePeriodDays < 0 {
		return LoanTerms{}, &ValidationError{Field: "grace period days", Value: in.GracePeriodDays, Reason: "must not be negative"}
	}
	if in.InterestOnlyPeriods < 0 {
		return LoanTerms{}, &ValidationError{Field: "interest-only periods", Value: in.InterestOnlyPeriods, Reason: "must not be negative"}
	}

	total, err := TotalPayments(in.TermMonths, in.Frequency)
	if err != nil {
		return LoanTerms{}, err
	}
	if in.InterestOnlyPeriods >= total {
		return LoanTerms{}, &ValidationError{Field: "interest-only periods", Value: in.InterestOnlyPeriods,
			Reason: "must be less than the total payment count"}
	}

	return LoanTerms{in: in, totalPayments: total}, nil
}

// Valid reports whether the terms came from NewLoanTerms.
func (t LoanTerms) Valid() bool { return t.totalPayments > 0 }

func (t LoanTerms) StartDate() time.Time                 { return t.in.StartDate }
func (t LoanTerms) Principal() decimal.Decimal           { return t.in.Principal }
func (t LoanTerms) TermMonths() int                      { return t.in.TermMonths }
func (t LoanTerms) AnnualRate() decimal.Decimal          { return t.in.AnnualRate }
func (t LoanTerms) Frequency() Frequency                 { return t.in.Frequency }
func (t LoanTerms) OriginationFee() decimal.Decimal      { return t.in.OriginationFee }
func (t LoanTerms) AdditionalFee() decimal.Decimal       { return t.in.AdditionalFee }
func (t LoanTerms) AdditionalFeeTreatment() FeeTreatment { return t.in.AdditionalFeeTreatment }
func (t LoanTerms) BankDaysOnly() bool                   { return t.in.BankDaysOnly }
func (t LoanTerms) InterestOnlyPeriods() int             { return t.in.InterestOnlyPeriods }
func (t LoanTerms) GracePeriodDays() int                 { return t.in.GracePeriodDays }
func (t LoanTerms) InterestMethod() InterestMethod       { return t.in.InterestMethod }

// TotalPayments is the scheduled payment count from the payment count table.
func (t LoanTerms) TotalPayments() int { return t.totalPayments }

// AmortizingPayments is the number of principal-bearing payments.
func (t LoanTerms) AmortizingPayments() int { return t.totalPayments - t.in.InterestOnlyPeriods }
