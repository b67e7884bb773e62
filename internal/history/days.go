package history

import (
	"time"

	"github.com/Veraticus/balance-history/internal/model"
)

const day = 24 * time.Hour

// Midnight returns the start of t's calendar day in loc.
func Midnight(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// EndOfDay returns the last representable instant of t's calendar day, in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location()).Add(-time.Nanosecond)
}

// DaysAgo returns the local midnight n calendar days before today.
func DaysAgo(today time.Time, n int) time.Time {
	y, m, d := today.Date()
	return time.Date(y, m, d-n, 0, 0, 0, 0, today.Location())
}

// DaysBetween counts whole calendar days from earlier to later using each
// time's own (year, month, day). The result is negative when earlier is after
// later. Working on the date triple keeps DST transitions from shifting the
// count.
func DaysBetween(later, earlier time.Time) int {
	ly, lm, ld := later.Date()
	ey, em, ed := earlier.Date()
	l := time.Date(ly, lm, ld, 0, 0, 0, 0, time.UTC)
	e := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	return int(l.Sub(e) / day)
}

// Window is the inclusive range covering the days calendar days ending on today.
func Window(today time.Time, days int) model.DateRange {
	return model.DateRange{
		Start: DaysAgo(today, days-1),
		End:   EndOfDay(today),
	}
}
