package core

import (
	"fmt"
	"time"
)

// DateLayout is the canonical external date representation: day, month
// and year, dot-separated and zero-padded.
const DateLayout = "02.01.2006"

// Date is a calendar-day value. No timezone handling: dates are parsed
// and compared at day granularity in a fixed location.
type Date struct {
	time.Time
}

// ParseDate parses the canonical DD.MM.YYYY form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today is the current calendar day, the default for new records.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String renders the canonical DD.MM.YYYY form.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// DayMonth is the year-collapsed day key (DD.MM) used by the daily
// series: two records a year apart on the same day and month land in
// the same bucket.
func (d Date) DayMonth() string {
	return d.Format("02.01")
}

// MonthKey is the year-collapsed month key (MM) used by the monthly
// series.
func (d Date) MonthKey() string {
	return d.Format("01")
}
