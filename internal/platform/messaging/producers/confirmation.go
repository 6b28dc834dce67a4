package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"github.com/stagepass/settlement/internal/config"
)

type ConfirmationMessageProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// Creates a new checkout API producer and ensures topic exists
func NewConfirmationMessageProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*ConfirmationMessageProducer, error) {
	if cfg.ConfirmationTopic == "" {
		return nil, fmt.Errorf("kafka confirmation topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for confirmation producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.ConfirmationTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure confirmation topic %s exists: %w", cfg.ConfirmationTopic, err)
	}

	// Synchronous writes: the webhook handler only acknowledges a provider
	// notification after the confirmation is durably in Kafka, so a failed
	// write must surface to the caller, not a completion callback.
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.ConfirmationTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: cfg.MaxWait,
	}

	return &ConfirmationMessageProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.ConfirmationTopic,
	}, nil
}

func (p *ConfirmationMessageProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal message value for confirmation producer: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish confirmation message",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish message to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published confirmation message",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *ConfirmationMessageProducer) Close() error {
	p.logger.Info("Closing confirmation Kafka message producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
