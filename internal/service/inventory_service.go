package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/cache"
	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/config"
	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/domain"
	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/events"
	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/forecast"
	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/metrics"
	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/planner"
	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	demandMessage       = "Prediction complete based on historical seasonality."
	demandWarning       = "Not enough data to train AI yet. Add more transactions."
	defaultHistoryLimit = 20
)

// Series names used in logs and metrics.
const (
	seriesInflow  = "inflow"
	seriesOutflow = "outflow"
	seriesDemand  = "demand"
)

// InventoryService runs the projection and ordering engine against the
// store. It holds no ledger or supplier state between calls.
type InventoryService struct {
	ledger    repository.LedgerRepository
	suppliers repository.SupplierRepository
	cfg       config.PlannerConfig
	policy    planner.Policy

	flow   forecast.Forecaster
	demand forecast.Forecaster

	decisions cache.DecisionLog
	publisher events.Publisher
	metrics   *metrics.Metrics
}

type Option func(*InventoryService)

// WithForecasters overrides the models used for the inflow/outflow series
// and for the demand series.
func WithForecasters(flow, demand forecast.Forecaster) Option {
	return func(s *InventoryService) {
		if flow != nil {
			s.flow = flow
		}
		if demand != nil {
			s.demand = demand
		}
	}
}

func WithDecisionLog(l cache.DecisionLog) Option {
	return func(s *InventoryService) {
		if l != nil {
			s.decisions = l
		}
	}
}

func WithPublisher(p events.Publisher) Option {
	return func(s *InventoryService) {
		if p != nil {
			s.publisher = p
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *InventoryService) {
		s.metrics = m
	}
}

func NewInventoryService(ledger repository.LedgerRepository, suppliers repository.SupplierRepository, cfg config.PlannerConfig, opts ...Option) *InventoryService {
	if cfg.HorizonDays <= 0 {
		cfg.HorizonDays = planner.DefaultHorizonDays
	}
	if cfg.ForecastWorkers <= 0 {
		cfg.ForecastWorkers = 2
	}

	demandOpts := forecast.DefaultOptions()
	if cfg.DemandDailySeasonality {
		demandOpts.Daily = forecast.SeasonalityOn
	}

	s := &InventoryService{
		ledger:    ledger,
		suppliers: suppliers,
		cfg:       cfg,
		policy:    planner.NewPolicy(cfg.SafetyBufferKg),
		flow:      forecast.New(forecast.DefaultOptions()),
		demand:    forecast.New(demandOpts),
		decisions: cache.NewNoopDecisionLog(),
		publisher: events.NewNoopPublisher(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SafetyBufferKg returns the buffer the policy decides against.
func (s *InventoryService) SafetyBufferKg() float64 {
	return s.policy.SafetyBufferKg
}

// GetCurrentStock returns lifetime inflow minus outflow, clamped to zero.
func (s *InventoryService) GetCurrentStock(ctx context.Context) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout())
	defer cancel()

	totals, err := s.ledger.GetLedgerTotals(ctx)
	if err != nil {
		return 0, domain.Upstream("read ledger totals", err)
	}
	return planner.CurrentStock(totals), nil
}

// PredictDemandTotal forecasts consumption over horizonDays. Too little
// history yields a warning result, not an error.
func (s *InventoryService) PredictDemandTotal(ctx context.Context, horizonDays int) (domain.DemandForecast, error) {
	if horizonDays <= 0 {
		horizonDays = s.cfg.HorizonDays
	}

	series, err := s.loadSeries(ctx, "read daily outflow", s.ledger.ListDailyOutflow)
	if err != nil {
		return domain.DemandForecast{}, err
	}

	preds, err := s.runForecast(ctx, seriesDemand, s.demand, series, horizonDays)
	if errors.Is(err, domain.ErrInsufficientData) {
		return domain.DemandForecast{
			Status:      domain.DemandStatusWarning,
			HorizonDays: horizonDays,
			Message:     demandWarning,
		}, nil
	}
	if err != nil {
		return domain.DemandForecast{}, err
	}

	return domain.DemandForecast{
		Status:      domain.DemandStatusOK,
		TotalKg:     int64(planner.SumPredictions(preds)),
		HorizonDays: horizonDays,
		Message:     demandMessage,
	}, nil
}

// SuggestOrders projects the stock over the horizon and decides whether to
// buy. Store or model failures surface as *domain.UpstreamError.
func (s *InventoryService) SuggestOrders(ctx context.Context) (domain.OrderDecision, error) {
	// 1. Current stock
	stock, err := s.GetCurrentStock(ctx)
	if err != nil {
		return domain.OrderDecision{}, err
	}

	// 2. Horizon flows, each series fitted independently
	var inflow, outflow float64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.ForecastWorkers)
	g.Go(func() error {
		v, err := s.flowTotal(gctx, seriesInflow, s.ledger.ListInflowEvents)
		inflow = v
		return err
	})
	g.Go(func() error {
		v, err := s.flowTotal(gctx, seriesOutflow, s.ledger.ListOutflowEvents)
		outflow = v
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.OrderDecision{}, err
	}

	// 3. Projection
	proj := planner.Project(stock, inflow, outflow)
	s.metrics.Projection(proj.CurrentStock, proj.Balance)

	// 4. Suppliers are only read when an order is needed
	var suppliers []domain.Supplier
	if s.policy.NeedsOrder(proj) {
		suppliers, err = s.listSuppliers(ctx)
		if err != nil {
			return domain.OrderDecision{}, err
		}
	}

	decision := s.policy.Decide(proj, suppliers)
	s.metrics.Decision(string(decision.Status))

	log.Info().
		Str("status", string(decision.Status)).
		Float64("current_stock", proj.CurrentStock).
		Float64("predicted_inflow", proj.PredictedInflow).
		Float64("predicted_outflow", proj.PredictedOutflow).
		Float64("projected_balance", proj.Balance).
		Int("suggestions", len(decision.Suggestions)).
		Msg("ordering decision")

	s.recordDecision(ctx, decision)
	return decision, nil
}

// ListSuppliers returns the supplier leaderboard, best score first.
func (s *InventoryService) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	suppliers, err := s.listSuppliers(ctx)
	if err != nil {
		return nil, err
	}
	return planner.RankSuppliers(suppliers, 0), nil
}

// UpdateScores stores precomputed reliability scores atomically and returns
// the refreshed leaderboard.
func (s *InventoryService) UpdateScores(ctx context.Context, updates []domain.ScoreUpdate) ([]domain.Supplier, error) {
	for _, u := range updates {
		if u.SupplierID == "" {
			return nil, fmt.Errorf("%w: empty supplier id", domain.ErrSupplierNotFound)
		}
		if u.Score < 0 || u.Score > 100 {
			return nil, fmt.Errorf("%w: %s=%d", domain.ErrInvalidScore, u.SupplierID, u.Score)
		}
	}

	if len(updates) > 0 {
		wctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout())
		err := s.suppliers.UpdateReliabilityScores(wctx, updates)
		cancel()
		if err != nil {
			if errors.Is(err, domain.ErrSupplierNotFound) {
				return nil, err
			}
			return nil, domain.Upstream("update reliability scores", err)
		}
		log.Info().Int("count", len(updates)).Msg("reliability scores updated")
	}

	return s.ListSuppliers(ctx)
}

// SupplierPerformance returns per-supplier delivery figures, the inputs of
// the external reliability scoring.
func (s *InventoryService) SupplierPerformance(ctx context.Context, sortField, sortDirection string) ([]domain.SupplierPerformance, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout())
	defer cancel()

	rows, err := s.suppliers.GetSupplierPerformance(ctx, sortField, sortDirection)
	if err != nil {
		return nil, domain.Upstream("read supplier performance", err)
	}
	return rows, nil
}

// RecentDecisions returns the newest recorded decisions.
func (s *InventoryService) RecentDecisions(ctx context.Context, limit int) ([]json.RawMessage, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	items, err := s.decisions.Recent(ctx, limit)
	if err != nil {
		return nil, domain.Upstream("read decision history", err)
	}
	return items, nil
}

func (s *InventoryService) listSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout())
	defer cancel()

	suppliers, err := s.suppliers.ListSuppliers(ctx)
	if err != nil {
		return nil, domain.Upstream("read suppliers", err)
	}
	return suppliers, nil
}

func (s *InventoryService) loadSeries(ctx context.Context, op string, read func(context.Context) ([]domain.Observation, error)) ([]domain.Observation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout())
	defer cancel()

	series, err := read(ctx)
	if err != nil {
		return nil, domain.Upstream(op, err)
	}
	return series, nil
}

// flowTotal loads one ledger series and returns its clamped horizon total.
// A series too short to fit contributes zero.
func (s *InventoryService) flowTotal(ctx context.Context, name string, read func(context.Context) ([]domain.Observation, error)) (float64, error) {
	series, err := s.loadSeries(ctx, "read "+name+" events", read)
	if err != nil {
		return 0, err
	}

	preds, err := s.runForecast(ctx, name, s.flow, series, s.cfg.HorizonDays)
	if errors.Is(err, domain.ErrInsufficientData) {
		log.Debug().Str("series", name).Int("observations", len(series)).Msg("not enough history, assuming zero flow")
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return planner.SumPredictions(preds), nil
}

func (s *InventoryService) runForecast(ctx context.Context, name string, model forecast.Forecaster, series []domain.Observation, horizonDays int) ([]domain.Prediction, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ForecastTimeout())
	defer cancel()

	start := time.Now()
	preds, err := model.Forecast(ctx, series, horizonDays)
	s.metrics.ForecastDuration(name, time.Since(start))

	switch {
	case err == nil:
		return preds, nil
	case errors.Is(err, domain.ErrInsufficientData):
		s.metrics.ForecastFailure(name, "insufficient_data")
		return nil, err
	case errors.Is(err, context.DeadlineExceeded):
		s.metrics.ForecastFailure(name, "timeout")
		return nil, domain.Upstream("forecast "+name, err)
	default:
		s.metrics.ForecastFailure(name, "error")
		return nil, domain.Upstream("forecast "+name, err)
	}
}

// recordDecision appends the decision to the history and announces critical
// ones. Failures are logged and never change the decision; both writes share
// one store timeout and the caller never waits longer than that.
func (s *InventoryService) recordDecision(ctx context.Context, decision domain.OrderDecision) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.StoreTimeout())
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer cancel()

		if err := s.decisions.Record(ctx, decision); err != nil {
			log.Warn().Err(err).Msg("inventory: record decision failed")
		}
		if decision.IsCritical() {
			if err := s.publisher.PublishDecision(ctx, decision); err != nil {
				log.Warn().Err(err).Msg("inventory: publish decision failed")
			}
		}
	}()

	select {
	case <-done:
	case <-ctx.Done():
		log.Warn().Err(ctx.Err()).Str("status", string(decision.Status)).Msg("inventory: decision side channels timed out")
	}
}
