// envsense-core - environmental sensor ingestion service
//
// It accepts DHT11 temperature/humidity, sound level and dust readings over
// HTTP (and optionally MQTT), writes each one to InfluxDB as a single
// line-protocol point, and can feed the store with synthetic readings.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/envsense-core/internal/api"
	"github.com/nerrad567/envsense-core/internal/generator"
	"github.com/nerrad567/envsense-core/internal/infrastructure/config"
	"github.com/nerrad567/envsense-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/envsense-core/internal/infrastructure/logging"
	"github.com/nerrad567/envsense-core/internal/infrastructure/metrics"
	"github.com/nerrad567/envsense-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/envsense-core/internal/infrastructure/tsdb"
	"github.com/nerrad567/envsense-core/internal/ingest"
	"github.com/nerrad567/envsense-core/internal/sensor"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// startupCheckTimeout bounds the initial backend probe.
const startupCheckTimeout = 5 * time.Second

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component and blocks until ctx is cancelled or a
// supervised component fails.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	build := logging.Build{Version: version, Commit: commit}
	log := logging.Default(build)
	log.Info("starting envsense-core", "build_date", date)

	configPath := os.Getenv("ENVSENSE_CONFIG")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, build)
	log.Info("configuration loaded",
		"path", configPath,
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Time-series write path
	writer, err := tsdb.New(cfg.InfluxDB)
	if err != nil {
		return fmt.Errorf("creating write client: %w", err)
	}
	log.Info("InfluxDB write client configured",
		"url", writer.URL(),
		"org", cfg.InfluxDB.Org,
		"bucket", cfg.InfluxDB.Bucket,
		"token", cfg.InfluxDB.TokenPrefix(),
	)
	checkBackend(ctx, log, "influxdb", writer)

	m := metrics.New()

	recorder := sensor.NewRecorder(writer)
	recorder.SetLogger(log.Component("recorder"))
	recorder.SetObserver(m)

	checks := map[string]api.HealthChecker{"influxdb": writer}

	// Read path (optional)
	var reader api.Reader
	influxReader, err := influxdb.New(cfg.InfluxDB)
	switch {
	case errors.Is(err, influxdb.ErrDisabled):
		log.Info("InfluxDB query reader disabled, GET endpoints return empty lists")
	case err != nil:
		return fmt.Errorf("creating query reader: %w", err)
	default:
		defer influxReader.Close()
		reader = influxReader
		log.Info("InfluxDB query reader enabled", "range_minutes", cfg.InfluxDB.QueryRange)
	}

	// MQTT ingest (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = connectMQTT(ctx, cfg.MQTT, recorder, log)
		if err != nil {
			return err
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		checks["mqtt"] = mqttClient
	} else {
		log.Info("MQTT ingest disabled")
	}

	server, err := api.New(api.Deps{
		Config:   cfg.API,
		Logger:   log.Component("api"),
		Recorder: recorder,
		Reader:   reader,
		Checks:   checks,
		Metrics:  m,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-gctx.Done()
		return server.Close()
	})

	if cfg.Generator.Enabled {
		seed := cfg.Generator.Seed
		if seed == 0 {
			seed = uint64(time.Now().Unix()) //nolint:gosec // Unix time is positive
		}
		gen := generator.New(recorder, generator.Options{
			Interval: cfg.GetGeneratorInterval(),
			Seed:     seed,
			Logger:   log.Component("generator"),
			Observer: m,
		})
		log.Info("synthetic generator enabled", "seed", seed, "interval", cfg.GetGeneratorInterval().String())
		g.Go(func() error {
			return gen.Run(gctx)
		})
	} else {
		log.Info("synthetic generator disabled")
	}

	log.Info("initialisation complete, waiting for shutdown signal")

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("envsense-core stopped")
	return nil
}

// connectMQTT connects to the broker and subscribes the ingest handler.
func connectMQTT(ctx context.Context, cfg config.MQTTConfig, recorder *sensor.Recorder, log *logging.Logger) (*mqtt.Client, error) {
	client, err := mqtt.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to MQTT: %w", err)
	}

	mqttLog := log.Component("mqtt")
	client.SetLogger(mqttLog)
	client.SetOnConnect(func() { mqttLog.Info("MQTT connected") })
	client.SetOnDisconnect(func(err error) { mqttLog.Warn("MQTT disconnected", "error", err) })

	handler := ingest.NewHandler(ctx, recorder, mqttLog)
	if err := handler.Subscribe(client, byte(cfg.QoS)); err != nil { //nolint:gosec // QoS validated to 0..2
		client.Close()
		return nil, err
	}

	log.Info("MQTT ingest subscribed",
		"broker", fmt.Sprintf("%s:%d", cfg.Broker.Host, cfg.Broker.Port),
		"client_id", cfg.Broker.ClientID,
		"topic", mqtt.Topics{}.AllSensorReadings(),
		"subscriptions", client.SubscriptionCount(),
	)
	return client, nil
}

// checkBackend probes a backend once at startup. A failure is logged, not
// fatal: the backend may still be starting, and every write reports its own
// outcome.
func checkBackend(ctx context.Context, log *logging.Logger, name string, hc api.HealthChecker) {
	checkCtx, cancel := context.WithTimeout(ctx, startupCheckTimeout)
	defer cancel()

	if err := hc.HealthCheck(checkCtx); err != nil {
		log.Warn("backend not reachable at startup", "backend", name, "error", err)
		return
	}
	log.Info("backend reachable", "backend", name)
}
