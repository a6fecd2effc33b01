package history

import (
	"testing"
	"time"

	"github.com/nerrad567/gruenbeck-collector/internal/device"
)

// batchOf builds a history batch where day i has value 100+i.
func batchOf(days int) device.Batch {
	readings := make([]device.Reading, days)
	for i := range readings {
		readings[i] = device.Reading{DayIndex: i, Value: 100 + i}
	}
	return device.Batch{Readings: readings, Extracted: days}
}

// day is only exact away from DST transitions; testBoundary is in UTC.
const day = 24 * time.Hour

var testBoundary = time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)

func TestReconcile_FirstRunEmitsAllDays(t *testing.T) {
	due := Reconcile(batchOf(device.MaxDays), testBoundary, Epoch)

	if len(due) != device.MaxDays {
		t.Fatalf("len(due) = %d, want %d", len(due), device.MaxDays)
	}

	// Oldest first: day index 13 at boundary - 13 days.
	first := due[0]
	if first.Reading.DayIndex != 13 {
		t.Errorf("due[0].DayIndex = %d, want 13", first.Reading.DayIndex)
	}
	if want := testBoundary.Add(-13 * day); !first.Timestamp.Equal(want) {
		t.Errorf("due[0].Timestamp = %v, want %v", first.Timestamp, want)
	}

	last := due[len(due)-1]
	if last.Reading.DayIndex != 0 || !last.Timestamp.Equal(testBoundary) {
		t.Errorf("last due = %+v, want day 0 at boundary", last)
	}

	for i := 1; i < len(due); i++ {
		if !due[i].Timestamp.After(due[i-1].Timestamp) {
			t.Fatalf("due not strictly increasing at %d", i)
		}
	}
}

func TestReconcile_SkipsReportedDays(t *testing.T) {
	tests := []struct {
		name      string
		watermark time.Time
		wantDays  []int
	}{
		{"yesterday reported", testBoundary.Add(-day), []int{0}},
		{"three days behind", testBoundary.Add(-3 * day), []int{2, 1, 0}},
		{"already current", testBoundary, nil},
		{"watermark ahead of boundary", testBoundary.Add(day), nil},
		{"watermark between boundaries", testBoundary.Add(-day - time.Hour), []int{1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			due := Reconcile(batchOf(device.MaxDays), testBoundary, tt.watermark)

			if len(due) != len(tt.wantDays) {
				t.Fatalf("len(due) = %d, want %d", len(due), len(tt.wantDays))
			}
			for i, d := range due {
				if d.Reading.DayIndex != tt.wantDays[i] {
					t.Errorf("due[%d].DayIndex = %d, want %d", i, d.Reading.DayIndex, tt.wantDays[i])
				}
				if !d.Timestamp.After(tt.watermark) {
					t.Errorf("due[%d].Timestamp %v not after watermark %v", i, d.Timestamp, tt.watermark)
				}
			}
		})
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	batch := batchOf(device.MaxDays)

	first := Reconcile(batch, testBoundary, testBoundary.Add(-5*day))
	if len(first) != 5 {
		t.Fatalf("first pass len = %d, want 5", len(first))
	}

	if again := Reconcile(batch, testBoundary, testBoundary); len(again) != 0 {
		t.Errorf("second pass len = %d, want 0", len(again))
	}
}

func TestReconcile_SingleReading(t *testing.T) {
	due := Reconcile(batchOf(1), testBoundary, Epoch)
	if len(due) != 1 || due[0].Reading.Value != 100 || !due[0].Timestamp.Equal(testBoundary) {
		t.Errorf("Reconcile() = %+v", due)
	}
}

func TestReconcile_DSTFallBack(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("tzdata not available: %v", err)
	}

	// 2026-10-25 is 25 hours long in Berlin.
	saturday := time.Date(2026, 10, 24, 23, 0, 0, 0, berlin)
	sunday := time.Date(2026, 10, 25, 23, 0, 0, 0, berlin)

	due := Reconcile(batchOf(device.MaxDays), sunday, saturday)
	if len(due) != 1 {
		t.Fatalf("len(due) = %d, want 1 (Saturday already reported)", len(due))
	}
	if due[0].Reading.DayIndex != 0 || !due[0].Timestamp.Equal(sunday) {
		t.Errorf("due[0] = %+v, want day 0 at %v", due[0], sunday)
	}

	for _, d := range Reconcile(batchOf(device.MaxDays), sunday, Epoch) {
		if got := d.Timestamp.In(berlin); got.Hour() != 23 || got.Minute() != 0 {
			t.Errorf("day %d stamped %v, want 23:00 local", d.Reading.DayIndex, got)
		}
	}
}

func TestReconcile_DSTSpringForward(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("tzdata not available: %v", err)
	}

	// 2026-03-29 is 23 hours long in Berlin.
	saturday := time.Date(2026, 3, 28, 23, 0, 0, 0, berlin)
	sunday := time.Date(2026, 3, 29, 23, 0, 0, 0, berlin)

	due := Reconcile(batchOf(device.MaxDays), sunday, saturday)
	if len(due) != 1 || !due[0].Timestamp.Equal(sunday) {
		t.Fatalf("Reconcile() = %+v, want only Sunday", due)
	}

	due = Reconcile(batchOf(device.MaxDays), sunday, saturday.AddDate(0, 0, -1))
	if len(due) != 2 || !due[0].Timestamp.Equal(saturday) {
		t.Errorf("Reconcile() = %+v, want Saturday then Sunday", due)
	}
}
