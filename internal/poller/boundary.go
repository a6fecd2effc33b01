package poller

import "time"

// BoundaryHour is the local hour from which a cycle polls the appliance.
const BoundaryHour = 23

// DayBoundary returns today at 23:00:00 in t's location, or false if t is
// before 23:00.
func DayBoundary(t time.Time) (time.Time, bool) {
	if t.Hour() < BoundaryHour {
		return time.Time{}, false
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, BoundaryHour, 0, 0, 0, t.Location()), true
}
