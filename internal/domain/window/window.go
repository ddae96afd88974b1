// Package window computes the report data windows used by the ledger jobs.
//
// All windows are inclusive calendar dates at midnight in the location of the
// supplied "today".
package window

import (
	"time"

	"github.com/target/report-relay/internal/domain/model"
)

// Date truncates t to midnight in its own location.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Daily covers the day before yesterday through yesterday.
func Daily(today time.Time) model.Window {
	end := Date(today).AddDate(0, 0, -1)
	return model.Window{Start: end.AddDate(0, 0, -1), End: end}
}

// Weekly covers the Tuesday six days before the most recent Monday through that
// Monday. A window spanning two months is clamped to the last day of the
// starting month.
func Weekly(today time.Time) model.Window {
	end := MostRecentMonday(today)
	start := end.AddDate(0, 0, -6)
	if start.Month() != end.Month() {
		end = LastOfMonth(start)
	}
	return model.Window{Start: start, End: end}
}

// Monthly covers the previous calendar month.
func Monthly(today time.Time) model.Window {
	end := FirstOfMonth(today).AddDate(0, 0, -1)
	return model.Window{Start: FirstOfMonth(end), End: end}
}

// MostRecentMonday returns today when it is a Monday, otherwise the Monday before.
func MostRecentMonday(today time.Time) time.Time {
	d := Date(today)
	back := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -back)
}

// FirstOfMonth returns the first day of t's month.
func FirstOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// LastOfMonth returns the last day of t's month.
func LastOfMonth(t time.Time) time.Time {
	return FirstOfMonth(t).AddDate(0, 1, -1)
}

// WeekOfMonth numbers the week containing t, with weeks starting on Monday and
// the first (possibly partial) week of the month numbered 1.
func WeekOfMonth(t time.Time) int {
	offset := (int(FirstOfMonth(t).Weekday()) + 6) % 7
	return (t.Day()+offset-1)/7 + 1
}

// RequestBounds converts an inclusive window into the vendor request bounds,
// adding padDays to the end date.
func RequestBounds(w model.Window, padDays int) (time.Time, time.Time) {
	return w.Start, w.End.AddDate(0, 0, padDays)
}
