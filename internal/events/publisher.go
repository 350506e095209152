// Package events publishes ordering decisions to Kafka for downstream
// procurement tooling.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/config"
	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/domain"
	"github.com/segmentio/kafka-go"
)

// Publisher emits decision events.
type Publisher interface {
	PublishDecision(ctx context.Context, decision domain.OrderDecision) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	writer messageWriter
	topic  string
}

type noopPublisher struct{}

// NewPublisher returns a Kafka publisher, or a no-op one when no brokers are configured.
func NewPublisher(cfg config.EventsConfig) (Publisher, error) {
	brokers := make([]string, 0, len(cfg.KafkaBrokers))
	for _, b := range cfg.KafkaBrokers {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return &noopPublisher{}, nil
	}
	if strings.TrimSpace(cfg.DecisionTopic) == "" {
		return nil, fmt.Errorf("decision topic must not be empty")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        cfg.DecisionTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
	return newKafkaPublisher(writer, cfg.DecisionTopic), nil
}

func newKafkaPublisher(w messageWriter, topic string) *kafkaPublisher {
	return &kafkaPublisher{writer: w, topic: topic}
}

func NewNoopPublisher() Publisher {
	return &noopPublisher{}
}

// PublishDecision writes the decision keyed by its status so that events of
// one kind stay ordered on a partition.
func (p *kafkaPublisher) PublishDecision(ctx context.Context, decision domain.OrderDecision) error {
	payload, err := json.Marshal(decision)
	if err != nil {
		return fmt.Errorf("marshal decision: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(decision.Status),
		Value: payload,
		Time:  decision.DecidedAt,
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish decision to %s: %w", p.topic, err)
	}
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

func (n *noopPublisher) PublishDecision(context.Context, domain.OrderDecision) error {
	return nil
}

func (n *noopPublisher) Close() error {
	return nil
}
