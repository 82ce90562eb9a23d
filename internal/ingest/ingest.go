package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/envsense-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/envsense-core/internal/sensor"
)

// defaultWriteTimeout bounds the handling of one message.
const defaultWriteTimeout = 10 * time.Second

var (
	// ErrUnknownTopic is returned for a message on a topic that is not a
	// sensor reading topic.
	ErrUnknownTopic = errors.New("ingest: not a sensor reading topic")

	// ErrInvalidPayload is returned when the payload is not a JSON object
	// of numbers.
	ErrInvalidPayload = errors.New("ingest: invalid payload")
)

// Recorder validates and writes one reading. Satisfied by *sensor.Recorder.
type Recorder interface {
	Record(ctx context.Context, kind sensor.Kind, values map[string]float64) error
}

// Subscriber registers a topic handler. Satisfied by *mqtt.Client.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Logger defines the logging interface for the ingest handler.
type Logger interface {
	Debug(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}

// Handler turns MQTT messages into recorded readings.
type Handler struct {
	ctx      context.Context
	recorder Recorder
	logger   Logger
	timeout  time.Duration
}

// NewHandler creates a handler. ctx is the parent of every per-message
// write context, so cancelling it aborts in-flight writes on shutdown.
func NewHandler(ctx context.Context, rec Recorder, logger Logger) *Handler {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Handler{ctx: ctx, recorder: rec, logger: logger, timeout: defaultWriteTimeout}
}

// Subscribe registers the handler for every sensor reading topic.
func (h *Handler) Subscribe(sub Subscriber, qos byte) error {
	if err := sub.Subscribe(mqtt.Topics{}.AllSensorReadings(), qos, h.HandleMessage); err != nil {
		return fmt.Errorf("subscribing to sensor readings: %w", err)
	}
	return nil
}

// HandleMessage decodes one message and records it.
//
// Returns:
//   - ErrUnknownTopic or ErrInvalidPayload for malformed messages
//   - a *sensor.ValidationError for rejected readings
//   - the recorder's error when the write fails
func (h *Handler) HandleMessage(topic string, payload []byte) error {
	kind, ok := mqtt.ParseSensorReading(topic)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTopic, topic)
	}

	var values map[string]float64
	if err := json.Unmarshal(payload, &values); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if values == nil {
		return fmt.Errorf("%w: expected a JSON object", ErrInvalidPayload)
	}

	ctx, cancel := context.WithTimeout(h.ctx, h.timeout)
	defer cancel()

	if err := h.recorder.Record(ctx, sensor.Kind(kind), values); err != nil {
		return err
	}

	h.logger.Debug("mqtt reading recorded", "sensor", kind)
	return nil
}
