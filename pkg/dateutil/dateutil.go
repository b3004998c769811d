// Package dateutil holds calendar arithmetic on dates. A date is represented
// as midnight UTC of its calendar day so that dates read from storage and
// dates derived from the clock compare directly.
package dateutil

import (
	"time"

	"github.com/jinzhu/now"

	"github.com/fatflowers/membership/pkg/types"
)

// Today returns the calendar day of t as observed in loc.
func Today(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return Date(t.In(loc))
}

// Date returns the calendar day of t (in t's own location) as a date.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDays moves a date by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return Date(t).AddDate(0, 0, n)
}

// ExtendDateBy advances start by count units. Months and years are calendar
// units: when the target month is shorter than start's day, the result is
// clamped to the last day of that month (Jan 31 + 1 month = Feb 28/29).
// A none unit or a non-positive count returns start unchanged.
func ExtendDateBy(start time.Time, count int, unit types.TimeUnit) time.Time {
	start = Date(start)
	if count <= 0 || unit.IsNone() {
		return start
	}
	switch unit {
	case types.TimeUnitDay:
		return start.AddDate(0, 0, count)
	case types.TimeUnitWeek:
		return start.AddDate(0, 0, 7*count)
	case types.TimeUnitMonth:
		return addMonthsClamped(start, count)
	case types.TimeUnitYear:
		return addMonthsClamped(start, 12*count)
	}
	return start
}

// ExtendDateByPeriod is ExtendDateBy for a types.Period.
func ExtendDateByPeriod(start time.Time, p types.Period) time.Time {
	return ExtendDateBy(start, p.Count, p.Unit)
}

func addMonthsClamped(start time.Time, months int) time.Time {
	firstOfTarget := now.With(start).BeginningOfMonth().AddDate(0, months, 0)
	lastOfTarget := Date(now.With(firstOfTarget).EndOfMonth())
	if start.Day() > lastOfTarget.Day() {
		return lastOfTarget
	}
	return firstOfTarget.AddDate(0, 0, start.Day()-1)
}
