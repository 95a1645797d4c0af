package notification

import (
	"context"

	"github.com/propreg/api/internal/logger"
)

// LogBus is the Bus used when no Kafka brokers are configured. Events are
// written to the application log instead of a topic, which keeps local
// development and the in-memory storage driver free of infrastructure.
type LogBus struct {
	log *logger.Logger
}

// NewLogBus creates a Bus that logs events instead of delivering them.
func NewLogBus(log *logger.Logger) *LogBus {
	return &LogBus{log: log}
}

// Send logs the event and reports success.
func (b *LogBus) Send(_ context.Context, event Event) error {
	b.log.Info("Notification event (no brokers configured)", map[string]interface{}{
		"kind":       string(event.Kind),
		"recipient":  event.RecipientEmail,
		"parameters": event.Parameters,
	})
	return nil
}

// Close is a no-op.
func (b *LogBus) Close() {}
