package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"
)

type NATSProducer struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
}

func NewNATSProducer(url string, subject string, logger *slog.Logger) (*NATSProducer, error) {
	nc, err := nats.Connect(url, nats.Name("school-service"))
	if err != nil {
		return nil, err
	}

	logger.Info("NATS producer initialized", "url", url, "subject", subject)

	return &NATSProducer{
		conn:    nc,
		subject: subject,
		logger:  logger,
	}, nil
}

// SendMessage publishes value on "<subject>.<event type>" when value is an
// Event, otherwise on the base subject.
func (p *NATSProducer) SendMessage(ctx context.Context, _ string, value interface{}) error {
	valueBytes, err := json.Marshal(value)
	if err != nil {
		return err
	}

	subject := p.subject
	if event, ok := value.(Event); ok {
		subject = p.subject + "." + event.Type
	}

	if err := p.conn.Publish(subject, valueBytes); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "message sent to NATS", "subject", subject)
	return nil
}

func (p *NATSProducer) Close() error {
	return p.conn.Drain()
}
