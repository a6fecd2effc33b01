// Package metric defines the gauge sample emitted for each reported day and
// fans samples out to the configured sinks (InfluxDB, MQTT, VictoriaMetrics).
//
// Every sample carries the fixed identity plugin=gruenbeck, type=gauge,
// type_instance=water and an explicit timestamp, which is usually in the
// past: sinks must accept backdated points.
package metric
