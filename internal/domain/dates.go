package domain

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// DateOf drops the time-of-day component and pins the value to UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalid, s)
	}
	return t, nil
}

// DaysBetween returns out-in in whole calendar days; negative when out precedes in.
func DaysBetween(in, out time.Time) int {
	return int(DateOf(out).Sub(DateOf(in)).Hours() / 24)
}

// RangesOverlap treats both ranges as half-open: [aIn, aOut) and [bIn, bOut).
func RangesOverlap(aIn, aOut, bIn, bOut time.Time) bool {
	return DateOf(aIn).Before(DateOf(bOut)) && DateOf(aOut).After(DateOf(bIn))
}
