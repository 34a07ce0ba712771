// Package calendar answers bank-day questions for the schedule engine.
package calendar

import (
	"time"

	"github.com/iwvelando/loan-schedule/pkg/datetime"
)

// Calendar reports whether a date is an observed bank holiday. Holidays that
// fall on a Saturday are observed the preceding Friday and holidays that fall
// on a Sunday are observed the following Monday.
type Calendar interface {
	IsBankHoliday(date time.Time) bool
}

// IsBankDay reports whether the date is neither a weekend day nor an observed
// holiday. A nil calendar treats every weekday as a bank day.
func IsBankDay(cal Calendar, date time.Time) bool {
	if datetime.IsWeekend(date) {
		return false
	}
	if cal == nil {
		return true
	}
	return !cal.IsBankHoliday(date)
}

// NextBankDay returns the date itself when it is a bank day, otherwise the
// first bank day after it.
func NextBankDay(cal Calendar, date time.Time) time.Time {
	for !IsBankDay(cal, date) {
		date = datetime.AddDays(date, 1)
	}
	return date
}

// Weekends is a calendar without holidays.
type Weekends struct{}

// IsBankHoliday always returns false.
func (Weekends) IsBankHoliday(time.Time) bool { return false }

// Combined treats a date as a holiday when any of its calendars does.
type Combined []Calendar

// IsBankHoliday implements Calendar.
func (c Combined) IsBankHoliday(date time.Time) bool {
	for _, cal := range c {
		if cal != nil && cal.IsBankHoliday(date) {
			return true
		}
	}
	return false
}
