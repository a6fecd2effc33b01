// Package logging provides structured logging for the Gruenbeck collector.
//
// It wraps Go's standard log/slog package so every component logs with
// the same handler, level filter and default fields (service, version).
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("send data", "timestamp", ts, "value", v)
//	logger.Warn("history disabled", "error", err)
//
// Never log the MQTT password or the InfluxDB token.
package logging
