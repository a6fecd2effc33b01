package history

import (
	"time"

	"github.com/nerrad567/gruenbeck-collector/internal/device"
)

// Due is a reading that has not been reported yet.
type Due struct {
	Reading   device.Reading
	Timestamp time.Time
}

// Reconcile returns the readings of batch that are newer than watermark.
//
// Reading i is attributed to the 23:00 boundary i calendar days before
// boundary, so a 23 or 25 hour DST day still maps to its own date. Only
// readings whose
// timestamp is strictly after watermark are returned, oldest first.
// Calling Reconcile again with watermark = boundary returns nothing.
//
// Parameters:
//   - batch: Parsed readings, DayIndex 0 being the most recent day
//   - boundary: Day boundary of the current cycle
//   - watermark: Last boundary successfully reported
//
// Returns:
//   - []Due: Readings to dispatch in chronological order
func Reconcile(batch device.Batch, boundary, watermark time.Time) []Due {
	var due []Due
	for i := len(batch.Readings) - 1; i >= 0; i-- {
		r := batch.Readings[i]
		ts := boundary.AddDate(0, 0, -r.DayIndex)
		if !ts.After(watermark) {
			continue
		}
		due = append(due, Due{Reading: r, Timestamp: ts})
	}

	return due
}
