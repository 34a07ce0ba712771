// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/loan-schedule/pkg/calendar"
	"github.com/iwvelando/loan-schedule/pkg/datetime"
	"github.com/iwvelando/loan-schedule/pkg/loans"
)

// ValidateStartDate warns when a bank-days-only loan starts on a non-bank day.
func ValidateStartDate(terms loans.LoanTerms, cal calendar.Calendar) string {
	if !terms.BankDaysOnly() || calendar.IsBankDay(cal, terms.StartDate()) {
		return ""
	}
	stepper := loans.NewDateStepper(terms.Frequency(), true, cal)
	first := stepper.Next(stepper.FirstPaymentDate(terms.StartDate(), terms.GracePeriodDays()))
	return fmt.Sprintf("Start date %s is not a bank day; the first payment falls on %s",
		datetime.Format(terms.StartDate()), datetime.Format(first))
}

// ValidateInterestOnly warns when interest-only payments cover more than half
// of the schedule.
func ValidateInterestOnly(terms loans.LoanTerms) string {
	if terms.InterestOnlyPeriods()*2 <= terms.TotalPayments() {
		return ""
	}
	return fmt.Sprintf("Interest-only periods (%d) cover more than half of the %d scheduled payments",
		terms.InterestOnlyPeriods(), terms.TotalPayments())
}

// ValidateRate warns about a zero annual rate.
func ValidateRate(terms loans.LoanTerms) string {
	if !terms.AnnualRate().IsZero() {
		return ""
	}
	return "Annual rate is zero; the schedule will contain no interest"
}

// ValidateFeeTreatment warns when a fee treatment is chosen for a zero fee.
func ValidateFeeTreatment(terms loans.LoanTerms) string {
	if terms.AdditionalFee().IsPositive() || terms.AdditionalFeeTreatment() == loans.Distributed {
		return ""
	}
	return fmt.Sprintf("Additional fee treatment %s has no effect without an additional fee",
		terms.AdditionalFeeTreatment())
}

// ValidateAll runs every loan check and returns the warnings found.
func ValidateAll(terms loans.LoanTerms, cal calendar.Calendar) []string {
	var warnings []string
	for _, warning := range []string{
		ValidateStartDate(terms, cal),
		ValidateInterestOnly(terms),
		ValidateRate(terms),
		ValidateFeeTreatment(terms),
	} {
		if warning != "" {
			warnings = append(warnings, warning)
		}
	}
	return warnings
}
