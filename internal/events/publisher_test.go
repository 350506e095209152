package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/config"
	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func criticalDecision() domain.OrderDecision {
	return domain.OrderDecision{
		Status:         domain.DecisionCritical,
		SafetyBufferKg: 2000,
		Critical:       &domain.CriticalAnalysis{CurrentStorage: 800, PredictedUsageSpike: 2500, RequiredPurchaseKg: 2500},
		DecidedAt:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestNewPublisher_NoBrokersIsNoop(t *testing.T) {
	p, err := NewPublisher(config.EventsConfig{KafkaBrokers: []string{" ", ""}, DecisionTopic: "t"})
	require.NoError(t, err)
	_, ok := p.(*noopPublisher)
	assert.True(t, ok)
	assert.NoError(t, p.PublishDecision(context.Background(), criticalDecision()))
}

func TestNewPublisher_RequiresTopic(t *testing.T) {
	_, err := NewPublisher(config.EventsConfig{KafkaBrokers: []string{"localhost:9092"}})
	assert.Error(t, err)
}

func TestKafkaPublisher_PublishDecision(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, "purchase-recommendations")

	require.NoError(t, p.PublishDecision(context.Background(), criticalDecision()))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "CRITICAL_ORDERING_REQUIRED", string(msg.Key))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, "CRITICAL_ORDERING_REQUIRED", body["status"])
	assert.Equal(t, []interface{}{}, body["ai_suggestion"])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := newKafkaPublisher(w, "purchase-recommendations")

	err := p.PublishDecision(context.Background(), criticalDecision())
	assert.ErrorContains(t, err, "broker down")
}
