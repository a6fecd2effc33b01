// Package metrics exposes the collector's own health.
//
// Recorder holds the counters and gauges updated by the poller and device
// client:
//
//	gruenbeck_cycles_total{outcome="skipped|success|failure"}
//	gruenbeck_fetch_attempts_total{result="ok|error"}
//	gruenbeck_samples_dispatched_total
//	gruenbeck_watermark_timestamp_seconds
//	gruenbeck_history_mode
//	gruenbeck_cycle_duration_seconds
//
// Server routes two endpoints through chi:
//
//	GET /metrics  promhttp exposition of the registry
//	GET /healthz  runs the registered HealthChecks (sinks, history store);
//	              200 {"status":"ok"} or 503 {"status":"unhealthy"}
package metrics
