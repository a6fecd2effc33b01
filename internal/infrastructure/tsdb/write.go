package tsdb

import (
	"context"
	"strings"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/gruenbeck-collector/internal/metric"
)

// Measurement is the line-protocol measurement for water gauge samples.
// VictoriaMetrics exposes the value field as gruenbeck_value.
const Measurement = "gruenbeck"

// WriteSample queues s, flushing immediately once the batch is full.
//
// Returns:
//   - error: ErrNotConnected if the client has been closed
func (c *Client) WriteSample(_ context.Context, s metric.Sample) error {
	full, err := c.enqueue(formatSample(s))
	if err != nil {
		return err
	}
	if full {
		c.flush()
	}
	return nil
}

// formatSample encodes s as one line of InfluxDB line protocol with a
// nanosecond timestamp and no trailing newline.
func formatSample(s metric.Sample) string {
	point := write.NewPoint(
		Measurement,
		map[string]string{
			"plugin":        s.Plugin,
			"type":          s.Type,
			"type_instance": s.TypeInstance,
		},
		map[string]interface{}{"value": s.Value},
		s.Time,
	)
	return strings.TrimSuffix(write.PointToLineProtocol(point, time.Nanosecond), "\n")
}
