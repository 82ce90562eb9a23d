package generator

import (
	"context"
	"errors"
	"time"

	"github.com/nerrad567/envsense-core/internal/sensor"
)

// DefaultInterval is the time between ticks.
const DefaultInterval = 5 * time.Second

// Recorder validates and writes one sensor point. Satisfied by *sensor.Recorder.
type Recorder interface {
	RecordSensor(ctx context.Context, s sensor.Sensor, values map[string]float64) error
}

// TickObserver is told about every completed tick. Satisfied by *metrics.Metrics.
type TickObserver interface {
	ObserveTick()
}

// Logger defines the logging interface for the generator.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any) {}
func (noopLogger) Warn(string, ...any) {}

// Options configures a Generator.
type Options struct {
	// Interval between ticks. Zero selects DefaultInterval.
	Interval time.Duration

	// Seed for the reading source. The composition root derives it from the
	// wall clock when not configured; tests pass a fixed value.
	Seed uint64

	Logger   Logger
	Observer TickObserver
}

// Generator periodically writes synthetic readings for every sensor type.
//
// It is a best-effort telemetry source: a failed write is logged and the
// loop carries on with the next tick.
type Generator struct {
	recorder Recorder
	source   *Source
	interval time.Duration
	logger   Logger
	observer TickObserver
}

// New creates a Generator writing through rec.
func New(rec Recorder, opts Options) *Generator {
	g := &Generator{
		recorder: rec,
		source:   NewSource(opts.Seed),
		interval: opts.Interval,
		logger:   opts.Logger,
		observer: opts.Observer,
	}
	if g.interval <= 0 {
		g.interval = DefaultInterval
	}
	if g.logger == nil {
		g.logger = noopLogger{}
	}
	return g
}

// Run ticks immediately and then every interval until ctx is cancelled.
//
// Cancellation is checked at the top of every iteration and while waiting,
// so Run returns promptly on shutdown. It always returns nil.
func (g *Generator) Run(ctx context.Context) error {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	g.logger.Info("synthetic generator started", "interval", g.interval.String())

	for {
		if ctx.Err() != nil {
			g.logger.Info("synthetic generator stopped")
			return nil
		}

		g.Tick(ctx)

		select {
		case <-ctx.Done():
			g.logger.Info("synthetic generator stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Tick draws one reading and writes the three sensor points in order:
// dht11 (temperature and humidity together), sound, dust.
//
// Each write is independent; the returned error joins every failure.
func (g *Generator) Tick(ctx context.Context) (Reading, error) {
	r := g.source.Next()

	writes := []struct {
		sensor sensor.Sensor
		values map[string]float64
	}{
		{sensor.DHT11, map[string]float64{"temperature": r.Temperature, "humidity": r.Humidity}},
		{sensor.Sound, map[string]float64{"sound_level": r.SoundLevel}},
		{sensor.Dust, map[string]float64{"dust_concentration": r.DustConcentration}},
	}

	var errs []error
	for _, w := range writes {
		if err := g.recorder.RecordSensor(ctx, w.sensor, w.values); err != nil {
			g.logger.Warn("synthetic write failed", "measurement", w.sensor.Measurement, "error", err)
			errs = append(errs, err)
			continue
		}
		g.logger.Info("synthetic reading written", "measurement", w.sensor.Measurement, "values", w.values)
	}

	if g.observer != nil {
		g.observer.ObserveTick()
	}

	return r, errors.Join(errs...)
}
