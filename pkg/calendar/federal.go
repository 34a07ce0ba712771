package calendar

import (
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

// Federal is the US federal holiday calendar. Observation follows the federal
// weekend rule: Saturday holidays move to Friday, Sunday holidays to Monday.
type Federal struct {
	bc *cal.BusinessCalendar
}

// NewFederal builds the US federal holiday calendar.
func NewFederal() *Federal {
	bc := cal.NewBusinessCalendar()
	bc.AddHoliday(us.Holidays...)
	return &Federal{bc: bc}
}

// IsBankHoliday reports whether a federal holiday is observed on the date.
func (f *Federal) IsBankHoliday(date time.Time) bool {
	_, observed, _ := f.bc.IsHoliday(date)
	return observed
}
