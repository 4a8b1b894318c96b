// Package dates does calendar-day arithmetic in the program time zone.
//
// Every day-granularity comparison in the dashboard (goal overdue checks, target date
// validity, reflection staleness) goes through StartOfDay so that they all agree, including
// across daylight saving transitions.
package dates

import (
	"sync"
	"time"
	_ "time/tzdata" // embed the zone database so LoadLocation works on bare hosts
)

const (
	DefaultTimezone = "America/Los_Angeles"
	DayLayout       = "2006-01-02"
	DisplayLayout   = "Jan 2, 2006"
)

var (
	mu  sync.RWMutex
	loc = mustLoad(DefaultTimezone)
)

func mustLoad(name string) *time.Location {
	l, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return l
}

// SetLocation changes the program time zone to the IANA zone `name`.
func SetLocation(name string) error {
	l, err := time.LoadLocation(name)
	if err != nil {
		return err
	}
	mu.Lock()
	loc = l
	mu.Unlock()
	return nil
}

// Location returns the program time zone.
func Location() *time.Location {
	mu.RLock()
	defer mu.RUnlock()
	return loc
}

// StartOfDay returns midnight of t's calendar day in the program time zone.
func StartOfDay(t time.Time) time.Time {
	l := Location()
	lt := t.In(l)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, l)
}

// IsValidTargetDate reports whether target falls on current's calendar day or later.
// A zero target is valid (no date set); a zero current means now.
func IsValidTargetDate(target, current time.Time) bool {
	if target.IsZero() {
		return true
	}
	if current.IsZero() {
		current = time.Now()
	}
	return !StartOfDay(target).Before(StartOfDay(current))
}

// Format formats t in the program time zone, DisplayLayout by default. Zero times format to "".
func Format(t time.Time, layout ...string) string {
	if t.IsZero() {
		return ""
	}
	l := DisplayLayout
	if len(layout) > 0 && layout[0] != "" {
		l = layout[0]
	}
	return t.In(Location()).Format(l)
}

// ParseDay parses a YYYY-MM-DD date input as midnight in the program time zone.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DayLayout, s, Location())
}

// DaysBetween returns the number of calendar days from a to b (negative if b is before a).
func DaysBetween(a, b time.Time) int {
	da, db := StartOfDay(a), StartOfDay(b)
	// calendar dates are compared in UTC to avoid 23/25 hour days around DST changes
	ua := time.Date(da.Year(), da.Month(), da.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(db.Year(), db.Month(), db.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// IsPast reports whether t's calendar day is strictly before now's.
func IsPast(t, now time.Time) bool {
	return !t.IsZero() && StartOfDay(t).Before(StartOfDay(now))
}
