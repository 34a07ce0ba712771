package config

import (
	"fmt"

	"github.com/iwvelando/loan-schedule/pkg/calendar"
	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/iwvelando/loan-schedule/pkg/datetime"
	"github.com/iwvelando/loan-schedule/pkg/loans"
	"github.com/iwvelando/loan-schedule/pkg/validation"
	"github.com/shopspring/decimal"
)

// ToLoanTerms converts the loan section into validated loan terms. Empty fee
// treatment and interest method fall back to distributed and simple.
func (c *Configuration) ToLoanTerms() (loans.LoanTerms, error) {
	l := c.Loan

	startDate, err := datetime.ParseDate(l.StartDate)
	if err != nil {
		return loans.LoanTerms{}, fmt.Errorf("invalid loan start date %q: %w", l.StartDate, err)
	}

	frequency, err := loans.ParseFrequency(l.Frequency)
	if err != nil {
		return loans.LoanTerms{}, fmt.Errorf("invalid loan configuration: %w", err)
	}

	treatment := loans.Distributed
	if l.AdditionalFeeTreatment != "" {
		if treatment, err = loans.ParseFeeTreatment(l.AdditionalFeeTreatment); err != nil {
			return loans.LoanTerms{}, fmt.Errorf("invalid loan configuration: %w", err)
		}
	}

	method := loans.Simple
	if l.InterestMethod != "" {
		if method, err = loans.ParseInterestMethod(l.InterestMethod); err != nil {
			return loans.LoanTerms{}, fmt.Errorf("invalid loan configuration: %w", err)
		}
	}

	terms, err := loans.NewLoanTerms(loans.TermsInput{
		StartDate:              startDate,
		Principal:              decimal.NewFromFloat(l.Principal),
		TermMonths:             l.TermMonths,
		AnnualRate:             decimal.NewFromFloat(l.AnnualRate),
		Frequency:              frequency,
		OriginationFee:         decimal.NewFromFloat(l.OriginationFee),
		AdditionalFee:          decimal.NewFromFloat(l.AdditionalFee),
		AdditionalFeeTreatment: treatment,
		BankDaysOnly:           l.BankDaysOnly,
		InterestOnlyPeriods:    l.InterestOnlyPeriods,
		GracePeriodDays:        l.GracePeriodDays,
		InterestMethod:         method,
	})
	if err != nil {
		return loans.LoanTerms{}, fmt.Errorf("invalid loan configuration: %w", err)
	}
	return terms, nil
}

// Calendar builds the holiday calendar from the calendar section. An empty
// holidays setting selects the US federal calendar.
func (c *Configuration) Calendar() (calendar.Calendar, error) {
	var base calendar.Calendar
	switch c.Calendar.Holidays {
	case "", constants.HolidaysUSFederal:
		base = calendar.NewFederal()
	case constants.HolidaysNone:
		base = calendar.Weekends{}
	default:
		return nil, fmt.Errorf("expected calendar holidays of %s or %s, got %s",
			constants.HolidaysUSFederal, constants.HolidaysNone, c.Calendar.Holidays)
	}

	if len(c.Calendar.ExtraHolidays) == 0 {
		return base, nil
	}
	extra, err := calendar.ParseHolidayList(c.Calendar.ExtraHolidays)
	if err != nil {
		return nil, err
	}
	return calendar.Combined{base, extra}, nil
}

// ValidateConfiguration performs general validation of the configuration and
// returns warnings. Hard errors are left to ToLoanTerms and Calendar.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if !c.Loan.BankDaysOnly && len(c.Calendar.ExtraHolidays) > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"%d extra holidays are configured but bankDaysOnly is off; they will not move any payment",
			len(c.Calendar.ExtraHolidays)))
	}

	terms, err := c.ToLoanTerms()
	if err != nil {
		return warnings
	}
	cal, err := c.Calendar()
	if err != nil {
		return warnings
	}
	return append(warnings, validation.ValidateAll(terms, cal)...)
}
