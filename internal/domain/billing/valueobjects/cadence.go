package valueobjects

import (
	"fmt"
	"time"
)

// Cadence is the recurring charge interval. Monthly is the only cadence
// the product sells today; the type exists so new intervals slot in without
// touching schedule arithmetic call sites.
type Cadence string

const (
	CadenceMonthly Cadence = "monthly"
)

func NewCadence(s string) (Cadence, error) {
	c := Cadence(s)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid cadence: %s", s)
	}
	return c, nil
}

func (c Cadence) IsValid() bool {
	return c == CadenceMonthly
}

// Advance returns t moved forward by exactly one cadence period. Monthly
// advancement clamps to the last day of shorter months, so a day-31 schedule
// bills on Feb 28 (29 in leap years) rather than overflowing into March and
// skipping February entirely.
func (c Cadence) Advance(t time.Time) time.Time {
	switch c {
	case CadenceMonthly:
		return addOneMonthClamped(t)
	default:
		panic(fmt.Sprintf("cadence %q has no advancement rule", c))
	}
}

func addOneMonthClamped(t time.Time) time.Time {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	next := time.Date(year, month+1, 1, hour, min, sec, t.Nanosecond(), t.Location())
	if last := lastDayOfMonth(next.Year(), next.Month()); day > last {
		day = last
	}
	return time.Date(next.Year(), next.Month(), day, hour, min, sec, t.Nanosecond(), t.Location())
}

// lastDayOfMonth uses day-zero normalization: day 0 of the following month is
// the final day of this one.
func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (c Cadence) String() string {
	return string(c)
}
