package calendar

import (
	"fmt"
	"time"

	"github.com/iwvelando/loan-schedule/pkg/datetime"
)

// HolidayList is a calendar of explicitly configured holiday dates, keyed by
// the observed day.
type HolidayList struct {
	observed map[string]struct{}
}

// NewHolidayList applies the weekend observation rule to each date and
// indexes the observed days.
func NewHolidayList(dates ...time.Time) *HolidayList {
	l := &HolidayList{observed: make(map[string]struct{}, len(dates))}
	for _, d := range dates {
		l.observed[datetime.Format(Observed(d))] = struct{}{}
	}
	return l
}

// ParseHolidayList parses YYYY-MM-DD strings into a HolidayList.
func ParseHolidayList(dates []string) (*HolidayList, error) {
	parsed := make([]time.Time, 0, len(dates))
	for _, s := range dates {
		d, err := datetime.ParseDate(s)
		if err != nil {
			return nil, fmt.Errorf("invalid holiday date %q: %w", s, err)
		}
		parsed = append(parsed, d)
	}
	return NewHolidayList(parsed...), nil
}

// IsBankHoliday implements Calendar.
func (l *HolidayList) IsBankHoliday(date time.Time) bool {
	_, ok := l.observed[datetime.Format(date)]
	return ok
}

// Len returns the number of distinct observed days.
func (l *HolidayList) Len() int {
	return len(l.observed)
}

// Observed shifts a Saturday holiday to Friday and a Sunday holiday to Monday.
func Observed(date time.Time) time.Time {
	switch date.Weekday() {
	case time.Saturday:
		return datetime.AddDays(date, -1)
	case time.Sunday:
		return datetime.AddDays(date, 1)
	}
	return date
}
