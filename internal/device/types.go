package device

// Reading is the consumption value of a single calendar day.
type Reading struct {
	// DayIndex counts back from the most recent day: 0 is today,
	// 13 is the oldest day the appliance reports.
	DayIndex int

	// Value is the raw integer reported by the appliance.
	Value int
}

// Batch is the result of parsing one response.
//
// In history mode Readings holds exactly MaxDays entries ordered by
// DayIndex (newest first); days absent from the response read as zero.
// In single-value mode it holds exactly one entry for DayIndex 0.
type Batch struct {
	Readings []Reading

	// Extracted counts the daily fields that were successfully read.
	Extracted int
}

// Latest returns the reading for the most recent day.
func (b Batch) Latest() Reading {
	if len(b.Readings) == 0 {
		return Reading{}
	}
	return b.Readings[0]
}
