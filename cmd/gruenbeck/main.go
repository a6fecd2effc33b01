// Gruenbeck Collector - water softener consumption poller
//
// This is the main entry point for the collector daemon. Once per day,
// from 23:00 local time, it queries a Grünbeck softIQ softener for its
// daily water consumption and forwards every not-yet-reported day to the
// configured monitoring sinks (InfluxDB, MQTT, VictoriaMetrics).
//
// The reported-day watermark lives in history.state_dir so a restart or
// a missed evening back-fills up to 14 days without duplicates.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	_ "github.com/nerrad567/gruenbeck-collector/migrations"

	"github.com/nerrad567/gruenbeck-collector/internal/device"
	"github.com/nerrad567/gruenbeck-collector/internal/history"
	"github.com/nerrad567/gruenbeck-collector/internal/infrastructure/config"
	"github.com/nerrad567/gruenbeck-collector/internal/infrastructure/influxdb"
	"github.com/nerrad567/gruenbeck-collector/internal/infrastructure/logging"
	"github.com/nerrad567/gruenbeck-collector/internal/infrastructure/metrics"
	"github.com/nerrad567/gruenbeck-collector/internal/infrastructure/mqtt"
	"github.com/nerrad567/gruenbeck-collector/internal/infrastructure/tsdb"
	"github.com/nerrad567/gruenbeck-collector/internal/metric"
	"github.com/nerrad567/gruenbeck-collector/internal/poller"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel on Ctrl+C or SIGTERM so the defer chain in run can clean up
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Gruenbeck collector",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded",
		"path", configPath,
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Self metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewRecorder(registry)

	// Dependencies reported by /healthz
	checks := map[string]metrics.HealthCheck{}

	// History store (optional, never fatal)
	store := openHistory(ctx, cfg, log)
	if store != nil {
		checks["history"] = store.Check
		defer func() {
			log.Info("closing history store")
			if closeErr := store.Close(); closeErr != nil {
				log.Error("error closing history store", "error", closeErr)
			}
		}()
	}

	// Device client, reused for every cycle
	deviceClient, err := device.NewClient(device.Options{
		URL:       cfg.DeviceURL(),
		Attempts:  cfg.Device.Retry,
		Backoff:   noPauseIfZero(cfg.GetRetryBackoff()),
		Timeout:   cfg.GetDeviceTimeout(),
		Logger:    log.With("component", "device"),
		OnAttempt: recorder.FetchAttempt,
	})
	if err != nil {
		return fmt.Errorf("creating device client: %w", err)
	}
	defer func() {
		if closeErr := deviceClient.Close(); closeErr != nil {
			log.Error("error closing device client", "error", closeErr)
		}
	}()
	log.Info("device client ready",
		"url", deviceClient.URL(),
		"retry", cfg.Device.Retry,
		"history", store != nil,
	)

	dispatcher := metric.NewDispatcher(log.With("component", "dispatch"))

	// Connect to InfluxDB (optional)
	if cfg.InfluxDB.Enabled {
		influxClient, connErr := influxdb.Connect(ctx, cfg.InfluxDB)
		if connErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", connErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		dispatcher.Register("influxdb", influxClient)
		checks["influxdb"] = influxClient.HealthCheck
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Connect to MQTT broker (optional)
	if cfg.MQTT.Enabled {
		mqttClient, connErr := mqtt.Connect(cfg.MQTT)
		if connErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", connErr)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		dispatcher.Register("mqtt", mqttClient)
		checks["mqtt"] = mqttClient.HealthCheck
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to VictoriaMetrics (optional)
	if cfg.TSDB.Enabled {
		tsdbClient, connErr := tsdb.Connect(ctx, cfg.TSDB)
		if connErr != nil {
			return fmt.Errorf("connecting to TSDB: %w", connErr)
		}
		defer func() {
			log.Info("closing TSDB connection")
			if closeErr := tsdbClient.Close(); closeErr != nil {
				log.Error("error closing TSDB", "error", closeErr)
			}
		}()
		tsdbClient.SetOnError(func(err error) {
			log.Error("TSDB flush error", "error", err)
		})
		dispatcher.Register("tsdb", tsdbClient)
		checks["tsdb"] = tsdbClient.HealthCheck
		log.Info("TSDB connected", "url", cfg.TSDB.URL)
	} else {
		log.Info("TSDB disabled")
	}

	// Started last so it is stopped first.
	if cfg.Metrics.Enabled {
		metricsServer, startErr := metrics.Start(metrics.ServerOptions{
			Addr:     cfg.Metrics.Listen,
			Gatherer: registry,
			Checks:   checks,
			Logger:   log.With("component", "metrics"),
		})
		if startErr != nil {
			return fmt.Errorf("starting metrics server: %w", startErr)
		}
		defer func() {
			log.Info("stopping metrics server")
			if shutdownErr := metricsServer.Shutdown(context.Background()); shutdownErr != nil {
				log.Error("error stopping metrics server", "error", shutdownErr)
			}
		}()
		go func() {
			for serveErr := range metricsServer.Err() {
				log.Error("metrics server failed", "error", serveErr)
			}
		}()
		log.Info("metrics server listening", "addr", metricsServer.Addr())
	}

	if len(dispatcher.Sinks()) == 0 {
		log.Warn("no sinks enabled, samples are only logged")
	}

	p, err := poller.New(poller.Options{
		Fetcher:    deviceClient,
		Dispatcher: dispatcher,
		Store:      store,
		Logger:     log.With("component", "poller"),
		Recorder:   recorder,
	})
	if err != nil {
		return fmt.Errorf("creating poller: %w", err)
	}

	log.Info("initialisation complete, polling",
		"interval", cfg.GetPollInterval().String(),
		"max_suspend", cfg.GetMaxSuspend().String(),
		"sinks", dispatcher.Sinks(),
	)

	runner := poller.NewRunner(p, cfg.GetPollInterval(), cfg.GetMaxSuspend(), log.With("component", "runner"))
	if err := runner.Run(ctx); err != nil {
		return fmt.Errorf("running poller: %w", err)
	}

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order: metrics server, sinks,
	// device client, history store.

	log.Info("Gruenbeck collector stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses GRUENBECK_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GRUENBECK_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// openHistory prepares the state directory and opens the configured
// watermark backend. Any failure disables history for the process lifetime.
//
// Returns:
//   - history.Store: Open store, or nil when history is disabled
func openHistory(ctx context.Context, cfg *config.Config, log *logging.Logger) history.Store {
	if !cfg.History.Enabled {
		log.Info("history disabled, reporting latest value only")
		return nil
	}

	if err := history.PrepareStateDir(cfg.History.StateDir); err != nil {
		log.Warn("history disabled", "state_dir", cfg.History.StateDir, "error", err)
		return nil
	}

	switch cfg.History.Backend {
	case config.HistoryBackendSQLite:
		store, err := history.OpenSQLiteStore(ctx, cfg.History.StateDir)
		if err != nil {
			log.Warn("history disabled", "backend", cfg.History.Backend, "error", err)
			return nil
		}
		log.Info("history enabled", "backend", cfg.History.Backend, "state_dir", cfg.History.StateDir)
		return store
	default:
		store := history.NewFileStore(cfg.History.StateDir)
		log.Info("history enabled", "backend", config.HistoryBackendFile, "path", store.Path())
		return store
	}
}

// noPauseIfZero maps a configured zero back-off to the client's
// "no pause" value; the client treats zero as its default.
func noPauseIfZero(d time.Duration) time.Duration {
	if d == 0 {
		return -1
	}
	return d
}
