// Package planner holds the inventory projection and ordering-decision engine.
// Every function here is pure: callers load ledger totals, forecasts and
// suppliers fresh from the store and pass them in.
package planner

import (
	"math"

	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/domain"
)

const (
	// DefaultHorizonDays is the forward window used by every projection.
	DefaultHorizonDays = 30

	// DefaultSafetyBufferKg is roughly three weeks of typical consumption.
	DefaultSafetyBufferKg = 2000.0

	// TopSupplierCount is how many ranked suppliers share a purchase order.
	TopSupplierCount = 3

	// SuggestionReason is attached to every order suggestion.
	SuggestionReason = "Top performer selected to mitigate projected stock shortage."
)

// NonNegative clamps v to zero. NaN also resolves to zero.
func NonNegative(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	return v
}

// CurrentStock returns the lifetime ledger balance, never negative.
func CurrentStock(totals domain.LedgerTotals) float64 {
	return NonNegative(totals.InflowKg - totals.OutflowKg)
}

// SumPredictions returns the horizon total of a forecast, clamped to zero.
func SumPredictions(preds []domain.Prediction) float64 {
	var total float64
	for _, p := range preds {
		total += p.Value
	}
	return NonNegative(total)
}

// Projection is the end-of-horizon stock estimate.
type Projection struct {
	CurrentStock     float64
	PredictedInflow  float64
	PredictedOutflow float64
	Balance          float64
}

// Project computes current + inflow - outflow. Both flows are clamped to zero
// before the arithmetic.
func Project(currentStock, predictedInflow, predictedOutflow float64) Projection {
	inflow := NonNegative(predictedInflow)
	outflow := NonNegative(predictedOutflow)

	return Projection{
		CurrentStock:     currentStock,
		PredictedInflow:  inflow,
		PredictedOutflow: outflow,
		Balance:          currentStock + inflow - outflow,
	}
}

// DeficitIfEmptyNow is the informational net outflow over the horizon.
func (p Projection) DeficitIfEmptyNow() float64 {
	return NonNegative(p.PredictedOutflow - p.PredictedInflow)
}

// roundDownKg floors a kilogram figure to a whole number for order suggestions.
func roundDownKg(v float64) int64 {
	return int64(math.Floor(NonNegative(v)))
}
