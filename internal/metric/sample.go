package metric

import "time"

// Fixed sample identity.
const (
	Plugin       = "gruenbeck"
	Type         = "gauge"
	TypeInstance = "water"
)

// Sample is one gauge value with an explicit timestamp.
type Sample struct {
	Plugin       string
	Type         string
	TypeInstance string
	Value        float64
	Time         time.Time

	// CycleID correlates the sample with the poll cycle that produced it.
	CycleID string
}

// NewGauge returns a water gauge sample for value at ts.
func NewGauge(value int, ts time.Time, cycleID string) Sample {
	return Sample{
		Plugin:       Plugin,
		Type:         Type,
		TypeInstance: TypeInstance,
		Value:        float64(value),
		Time:         ts,
		CycleID:      cycleID,
	}
}

// Identifier returns the collectd-style name, e.g. "gruenbeck/gauge-water".
func (s Sample) Identifier() string {
	return s.Plugin + "/" + s.Type + "-" + s.TypeInstance
}
