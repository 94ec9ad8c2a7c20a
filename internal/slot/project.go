package slot

import (
	"time"

	"github.com/teambition/rrule-go"
)

// Project returns the first civil date on or after now's date that falls on k,
// as midnight UTC. Only the year, month and day of the result are meaningful;
// callers attach their own location. A day that has already started counts as
// past, so today's key projects to the same day next year.
//
// February 29 projects to the next year that has one.
func Project(k Key, now time.Time) time.Time {
	today := civilDate(now)
	// Today is still ahead only at the very start of the day.
	inclusive := now.Hour() == 0 && now.Minute() == 0 && now.Second() == 0 && now.Nanosecond() == 0

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:       rrule.YEARLY,
		Bymonth:    []int{int(k.Month)},
		Bymonthday: []int{k.Day},
		Dtstart:    time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		// Only reachable for invalid keys.
		return fallbackProject(k, today, inclusive)
	}
	next := r.After(today, inclusive)
	if next.IsZero() {
		return fallbackProject(k, today, inclusive)
	}
	return civilDate(next)
}

// fallbackProject mirrors the recurrence without the rule engine, letting
// time.Date normalize days that do not exist.
func fallbackProject(k Key, today time.Time, inclusive bool) time.Time {
	candidate := time.Date(today.Year(), k.Month, k.Day, 0, 0, 0, 0, time.UTC)
	if candidate.Before(today) || (!inclusive && candidate.Equal(today)) {
		candidate = time.Date(today.Year()+1, k.Month, k.Day, 0, 0, 0, 0, time.UTC)
	}
	return candidate
}

// civilDate returns t's wall-clock date as midnight UTC.
func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
