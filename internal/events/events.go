// Package events publishes record-change notifications after successful
// writes. Delivery is best effort: the write has already been committed when
// an event is sent, so publish failures are logged and counted, never returned
// to the HTTP client.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"school-service/internal/config"
	"school-service/internal/metrics"

	"github.com/google/uuid"
)

// DefaultPublishTimeout bounds how long a request waits on the broker.
const DefaultPublishTimeout = 2 * time.Second

const (
	TypeStudentSaved     = "student.saved"
	TypeAttendanceMarked = "attendance.marked"
	TypeExamScheduled    = "exam.scheduled"
)

// Event is the envelope put on the wire.
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	Key        string      `json:"key"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

func NewEvent(eventType, key string, payload interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Producer is implemented by the NATS and Kafka transports.
type Producer interface {
	SendMessage(ctx context.Context, key string, value interface{}) error
	Close() error
}

// Publisher is what services depend on.
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, payload interface{})
	Close() error
}

type publisher struct {
	producer Producer
	timeout  time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewPublisher wraps producer. A non-positive timeout means
// DefaultPublishTimeout.
func NewPublisher(producer Producer, timeout time.Duration, logger *slog.Logger, m *metrics.Metrics) Publisher {
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	return &publisher{producer: producer, timeout: timeout, logger: logger, metrics: m}
}

// Publish sends the event with its own deadline. The write is already
// committed, so a cancelled request does not abort the send.
func (p *publisher) Publish(ctx context.Context, eventType, key string, payload interface{}) {
	event := NewEvent(eventType, key, payload)

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	err := p.producer.SendMessage(sendCtx, key, event)
	p.metrics.RecordEventPublished(ctx, eventType, err)
	if err != nil {
		p.logger.WarnContext(ctx, "failed to publish event", "type", eventType, "key", key, "error", err)
		return
	}
	p.logger.DebugContext(ctx, "event published", "type", eventType, "id", event.ID)
}

func (p *publisher) Close() error {
	return p.producer.Close()
}

// Noop drops every event. Used when events.driver is "none".
type Noop struct{}

func (Noop) Publish(context.Context, string, string, interface{}) {}
func (Noop) Close() error { return nil }

// New builds the publisher selected by cfg.Driver.
func New(cfg config.EventsConfig, logger *slog.Logger, m *metrics.Metrics) (Publisher, error) {
	timeout := time.Duration(cfg.PublishTimeoutMs) * time.Millisecond

	switch cfg.Driver {
	case "", "none":
		return Noop{}, nil
	case "nats":
		producer, err := NewNATSProducer(cfg.NATS.URL, cfg.Subject, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		return NewPublisher(producer, timeout, logger, m), nil
	case "kafka":
		producer, err := NewKafkaProducer(cfg.Kafka.Brokers, cfg.Subject, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create kafka producer: %w", err)
		}
		return NewPublisher(producer, timeout, logger, m), nil
	default:
		return nil, fmt.Errorf("unknown events driver %q", cfg.Driver)
	}
}
