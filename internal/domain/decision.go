package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// DecisionStatus tags the OrderDecision variant.
type DecisionStatus string

const (
	DecisionHealthy  DecisionStatus = "HEALTHY"
	DecisionCritical DecisionStatus = "CRITICAL_ORDERING_REQUIRED"
)

const healthyMessage = "No orders needed. Projected surplus is sufficient."

// HealthyAnalysis is the payload of a Healthy decision.
type HealthyAnalysis struct {
	CurrentStorage    float64
	ProjectedEndStock float64
	// DeficitIfEmptyNow is informational and never negative.
	DeficitIfEmptyNow float64
}

// CriticalAnalysis is the payload of a CriticalOrderingRequired decision.
type CriticalAnalysis struct {
	CurrentStorage      float64
	PredictedUsageSpike float64
	RequiredPurchaseKg  float64
}

// OrderSuggestion is a purchase recommendation for a single supplier.
type OrderSuggestion struct {
	SupplierID       string `json:"-"`
	SupplierName     string `json:"supplier"`
	RankScore        int    `json:"rank_score"`
	SuggestedOrderKg int64  `json:"suggested_order_kg"`
	Reason           string `json:"reason"`
}

// OrderDecision is a tagged variant: exactly one of Healthy or Critical is set,
// matching Status.
type OrderDecision struct {
	Status         DecisionStatus
	SafetyBufferKg float64
	Healthy        *HealthyAnalysis
	Critical       *CriticalAnalysis
	Suggestions    []OrderSuggestion
	DecidedAt      time.Time
}

// IsCritical reports whether the decision requires a purchase.
func (d *OrderDecision) IsCritical() bool {
	return d != nil && d.Status == DecisionCritical
}

// Message returns the human-readable summary of the decision.
func (d *OrderDecision) Message() string {
	if d.IsCritical() {
		return fmt.Sprintf("Projected stock will fall below safety buffer of %dkg.", int64(d.SafetyBufferKg))
	}
	return healthyMessage
}

type healthyAnalysisJSON struct {
	CurrentStorage          int64 `json:"current_storage"`
	ProjectedEndStock       int64 `json:"projected_end_stock"`
	PredictedDeficitIfEmpty int64 `json:"predicted_deficit_if_empty_now"`
}

type criticalAnalysisJSON struct {
	CurrentStorage      int64 `json:"current_storage"`
	PredictedUsageSpike int64 `json:"predicted_usage_spike"`
	RequiredPurchaseKg  int64 `json:"required_purchase_kg"`
}

type healthyDecisionJSON struct {
	Status    DecisionStatus      `json:"status"`
	Message   string              `json:"message"`
	Analysis  healthyAnalysisJSON `json:"analysis"`
	DecidedAt time.Time           `json:"decided_at"`
}

type criticalDecisionJSON struct {
	Status       DecisionStatus       `json:"status"`
	Message      string               `json:"message"`
	Analysis     criticalAnalysisJSON `json:"analysis"`
	AISuggestion []OrderSuggestion    `json:"ai_suggestion"`
	DecidedAt    time.Time            `json:"decided_at"`
}

// MarshalJSON renders the decision payload. Kilogram figures are truncated to
// whole kilograms for display.
func (d OrderDecision) MarshalJSON() ([]byte, error) {
	switch d.Status {
	case DecisionHealthy:
		if d.Healthy == nil {
			return nil, fmt.Errorf("healthy decision without analysis")
		}
		return json.Marshal(healthyDecisionJSON{
			Status:  d.Status,
			Message: d.Message(),
			Analysis: healthyAnalysisJSON{
				CurrentStorage:          int64(d.Healthy.CurrentStorage),
				ProjectedEndStock:       int64(d.Healthy.ProjectedEndStock),
				PredictedDeficitIfEmpty: int64(d.Healthy.DeficitIfEmptyNow),
			},
			DecidedAt: d.DecidedAt,
		})
	case DecisionCritical:
		if d.Critical == nil {
			return nil, fmt.Errorf("critical decision without analysis")
		}
		suggestions := d.Suggestions
		if suggestions == nil {
			suggestions = []OrderSuggestion{}
		}
		return json.Marshal(criticalDecisionJSON{
			Status:  d.Status,
			Message: d.Message(),
			Analysis: criticalAnalysisJSON{
				CurrentStorage:      int64(d.Critical.CurrentStorage),
				PredictedUsageSpike: int64(d.Critical.PredictedUsageSpike),
				RequiredPurchaseKg:  int64(d.Critical.RequiredPurchaseKg),
			},
			AISuggestion: suggestions,
			DecidedAt:    d.DecidedAt,
		})
	default:
		return nil, fmt.Errorf("unknown decision status %q", d.Status)
	}
}
