package influxdb

import (
	"context"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/gruenbeck-collector/internal/metric"
)

// Measurement is the InfluxDB measurement for water gauge samples.
const Measurement = "gruenbeck"

// WriteSample queues s as one point, timestamped with the day it belongs to.
//
// Returns:
//   - error: ErrNotConnected once the client has been closed
func (c *Client) WriteSample(_ context.Context, s metric.Sample) error {
	if c.isClosed() {
		return ErrNotConnected
	}

	c.writeAPI.WritePoint(newPoint(s))
	return nil
}

// newPoint tags s with its identity and stores the reading in field "value".
func newPoint(s metric.Sample) *write.Point {
	return write.NewPoint(
		Measurement,
		map[string]string{
			"plugin":        s.Plugin,
			"type":          s.Type,
			"type_instance": s.TypeInstance,
		},
		map[string]interface{}{"value": s.Value},
		s.Time,
	)
}
