package loans

import (
	"time"

	"github.com/iwvelando/loan-schedule/pkg/calendar"
	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/iwvelando/loan-schedule/pkg/datetime"
	"github.com/shopspring/decimal"
)

// DateStepper walks payment dates at a fixed frequency, optionally rolling
// each date forward to the next bank day.
type DateStepper struct {
	frequency    Frequency
	bankDaysOnly bool
	cal          calendar.Calendar
}

// NewDateStepper builds a stepper. The calendar is consulted only when
// bankDaysOnly is set.
func NewDateStepper(freq Frequency, bankDaysOnly bool, cal calendar.Calendar) *DateStepper {
	return &DateStepper{frequency: freq, bankDaysOnly: bankDaysOnly, cal: cal}
}

// Next returns the payment date following prev.
func (s *DateStepper) Next(prev time.Time) time.Time {
	return s.Adjust(datetime.AddDays(prev, s.frequency.Days()))
}

// Adjust rolls a date forward to a bank day when the stepper is restricted to
// bank days, and returns it unchanged otherwise.
func (s *DateStepper) Adjust(d time.Time) time.Time {
	if !s.bankDaysOnly {
		return d
	}
	return calendar.NextBankDay(s.cal, d)
}

// FirstPaymentDate is the start date itself without a grace period, otherwise
// the first bank day on or after the start date plus the grace days. The grace
// roll applies whether or not the stepper is restricted to bank days.
func (s *DateStepper) FirstPaymentDate(start time.Time, graceDays int) time.Time {
	if graceDays <= 0 {
		return start
	}
	return calendar.NextBankDay(s.cal, datetime.AddDays(start, graceDays))
}

// AverageDaysPerPeriod estimates the calendar length of one period. Without
// the bank-day restriction it is exactly the frequency step; with it, the mean
// gap over the first min(30, totalPayments) steps from first.
func (s *DateStepper) AverageDaysPerPeriod(first time.Time, totalPayments int) decimal.Decimal {
	if !s.bankDaysOnly {
		return decimal.NewFromInt(int64(s.frequency.Days()))
	}

	samples := constants.AverageDaysSampleCap
	if totalPayments < samples {
		samples = totalPayments
	}
	if samples <= 0 {
		return decimal.NewFromInt(int64(s.frequency.Days()))
	}

	elapsed := 0
	current := first
	for i := 0; i < samples; i++ {
		next := s.Next(current)
		elapsed += datetime.DaysBetween(current, next)
		current = next
	}
	return decimal.NewFromInt(int64(elapsed)).Div(decimal.NewFromInt(int64(samples)))
}
