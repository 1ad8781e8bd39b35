// Package messaging defines the contract between domain services and event transports.
package messaging

import (
	"context"
	"log/slog"
)

const (
	ProductsSubjectPrefix  = "products."
	ProductsCreatedSubject = ProductsSubjectPrefix + "created"
	ProductsDeletedSubject = ProductsSubjectPrefix + "deleted"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// LogPublisher writes events to the log instead of a broker. It is used when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With("component", "events")}
}

func (p *LogPublisher) Publish(ctx context.Context, event Event) error {
	data, err := event.Payload()
	if err != nil {
		return err
	}
	p.logger.DebugContext(ctx, "Event emitted", "subject", event.Subject(), "payload", string(data))
	return nil
}
