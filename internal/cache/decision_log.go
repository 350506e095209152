package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/config"
	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	decisionLogKey           = "orders:decisions"
	defaultDecisionLogLength = 50
)

// DecisionLog keeps a bounded, newest-first history of ordering decisions.
// It is write-mostly: the planner never reads it back to make a decision.
type DecisionLog interface {
	Record(ctx context.Context, decision domain.OrderDecision) error
	Recent(ctx context.Context, limit int) ([]json.RawMessage, error)
	Close() error
}

type redisDecisionLog struct {
	client *redis.Client
	length int64
}

type noopDecisionLog struct{}

func NewDecisionLog(cfg config.CacheConfig) (DecisionLog, error) {
	if !cfg.Enabled {
		return &noopDecisionLog{}, nil
	}

	client, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	length := int64(cfg.HistoryLength)
	if length <= 0 {
		length = defaultDecisionLogLength
	}

	return &redisDecisionLog{client: client, length: length}, nil
}

func NewNoopDecisionLog() DecisionLog {
	return &noopDecisionLog{}
}

func (l *redisDecisionLog) Record(ctx context.Context, decision domain.OrderDecision) error {
	payload, err := json.Marshal(decision)
	if err != nil {
		return fmt.Errorf("marshal decision: %w", err)
	}

	pipe := l.client.TxPipeline()
	pipe.LPush(ctx, decisionLogKey, payload)
	pipe.LTrim(ctx, decisionLogKey, 0, l.length-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis record decision failed: %w", err)
	}
	return nil
}

func (l *redisDecisionLog) Recent(ctx context.Context, limit int) ([]json.RawMessage, error) {
	if limit <= 0 || int64(limit) > l.length {
		limit = int(l.length)
	}

	items, err := l.client.LRange(ctx, decisionLogKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis read decisions failed: %w", err)
	}

	out := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		out = append(out, json.RawMessage(item))
	}
	return out, nil
}

func (l *redisDecisionLog) Close() error {
	return l.client.Close()
}

func (n *noopDecisionLog) Record(context.Context, domain.OrderDecision) error {
	return nil
}

func (n *noopDecisionLog) Recent(context.Context, int) ([]json.RawMessage, error) {
	return []json.RawMessage{}, nil
}

func (n *noopDecisionLog) Close() error {
	return nil
}
