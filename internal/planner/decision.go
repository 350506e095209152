package planner

import (
	"time"

	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/domain"
)

// Policy classifies a projection against the safety buffer.
type Policy struct {
	SafetyBufferKg float64
	TopN           int
	now            func() time.Time
}

// NewPolicy creates an ordering policy. A non-positive buffer falls back to
// DefaultSafetyBufferKg.
func NewPolicy(safetyBufferKg float64) Policy {
	if safetyBufferKg <= 0 {
		safetyBufferKg = DefaultSafetyBufferKg
	}
	return Policy{
		SafetyBufferKg: safetyBufferKg,
		TopN:           TopSupplierCount,
		now:            time.Now,
	}
}

// NeedsOrder reports whether the projection falls below the safety buffer.
// Callers use it to skip the supplier read on healthy projections.
func (p Policy) NeedsOrder(proj Projection) bool {
	return !(proj.Balance >= p.SafetyBufferKg)
}

// Decide turns a projection into an ordering decision. suppliers is only
// consulted when the projection is below the buffer.
func (p Policy) Decide(proj Projection, suppliers []domain.Supplier) domain.OrderDecision {
	decision := domain.OrderDecision{
		SafetyBufferKg: p.SafetyBufferKg,
		DecidedAt:      p.clock(),
	}

	// 1. Healthy: projected balance covers the buffer
	if !p.NeedsOrder(proj) {
		decision.Status = domain.DecisionHealthy
		decision.Healthy = &domain.HealthyAnalysis{
			CurrentStorage:    proj.CurrentStock,
			ProjectedEndStock: proj.Balance,
			DeficitIfEmptyNow: proj.DeficitIfEmptyNow(),
		}
		return decision
	}

	// 2. Critical: buy back up to the buffer
	trueDeficit := p.SafetyBufferKg - proj.Balance
	decision.Status = domain.DecisionCritical
	decision.Critical = &domain.CriticalAnalysis{
		CurrentStorage:      proj.CurrentStock,
		PredictedUsageSpike: proj.PredictedOutflow,
		RequiredPurchaseKg:  trueDeficit,
	}

	// 3. Distribute evenly over the top ranked suppliers
	decision.Suggestions = p.Distribute(trueDeficit, suppliers)
	return decision
}

// Distribute splits deficitKg evenly across the top ranked suppliers. Each
// share is floored to whole kilograms; the remainder is not redistributed.
// No suppliers yields an empty, non-nil list.
func (p Policy) Distribute(deficitKg float64, suppliers []domain.Supplier) []domain.OrderSuggestion {
	topN := p.TopN
	if topN <= 0 {
		topN = TopSupplierCount
	}

	selected := RankSuppliers(suppliers, topN)
	suggestions := make([]domain.OrderSuggestion, 0, len(selected))
	if len(selected) == 0 {
		return suggestions
	}

	share := roundDownKg(deficitKg / float64(len(selected)))
	for _, s := range selected {
		suggestions = append(suggestions, domain.OrderSuggestion{
			SupplierID:       s.ID,
			SupplierName:     s.Name,
			RankScore:        s.ReliabilityScore,
			SuggestedOrderKg: share,
			Reason:           SuggestionReason,
		})
	}
	return suggestions
}

func (p Policy) clock() time.Time {
	if p.now == nil {
		return time.Now().UTC()
	}
	return p.now().UTC()
}
