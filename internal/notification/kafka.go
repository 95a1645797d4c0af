package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/propreg/api/internal/logger"
)

// KafkaBus publishes notification events to a Kafka topic, one JSON record
// per event keyed by recipient email so retries for the same debtor land on
// the same partition.
type KafkaBus struct {
	client *kgo.Client
	topic  string
	log    *logger.Logger
}

// NewKafkaBus connects to the given brokers and returns a Bus producing to
// the given topic. The connection is verified with a ping before returning.
func NewKafkaBus(ctx context.Context, brokers []string, topic string, log *logger.Logger) (*KafkaBus, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping kafka brokers: %w", err)
	}

	return &KafkaBus{
		client: client,
		topic:  topic,
		log:    log,
	}, nil
}

// Send produces one event synchronously. An error means the brokers did not
// accept the record; the caller decides whether to keep going with the rest
// of the batch.
func (b *KafkaBus) Send(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode notification event: %w", err)
	}

	record := &kgo.Record{
		Topic: b.topic,
		Key:   []byte(event.RecipientEmail),
		Value: payload,
	}

	if err := b.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("failed to produce notification event: %w", err)
	}

	b.log.Debug("Notification event produced", map[string]interface{}{
		"topic":     b.topic,
		"kind":      string(event.Kind),
		"recipient": event.RecipientEmail,
	})

	return nil
}

// Close flushes buffered records and releases the client.
func (b *KafkaBus) Close() {
	b.client.Close()
}
