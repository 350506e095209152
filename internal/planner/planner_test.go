package planner

import (
	"math"
	"testing"
	"time"

	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeSuppliers() []domain.Supplier {
	return []domain.Supplier{
		{ID: "SUP-DVO-099", Name: "Baguio District Aggregators", ReliabilityScore: 65},
		{ID: "SUP-DVO-001", Name: "Davao Golden Cacao Coop", ReliabilityScore: 85},
		{ID: "SUP-DVO-042", Name: "Calinan Growers", ReliabilityScore: 72},
	}
}

func TestCurrentStock(t *testing.T) {
	tests := []struct {
		name   string
		totals domain.LedgerTotals
		want   float64
	}{
		{"surplus", domain.LedgerTotals{InflowKg: 4000, OutflowKg: 3200}, 800},
		{"overdrawn clamps to zero", domain.LedgerTotals{InflowKg: 5000, OutflowKg: 6200}, 0},
		{"empty ledger", domain.LedgerTotals{}, 0},
		{"no outflow", domain.LedgerTotals{InflowKg: 120.5}, 120.5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CurrentStock(tc.totals))
		})
	}
}

func TestNonNegative(t *testing.T) {
	assert.Equal(t, 0.0, NonNegative(-50))
	assert.Equal(t, 0.0, NonNegative(math.NaN()))
	assert.Equal(t, 12.5, NonNegative(12.5))
}

func TestSumPredictions_ClampsNegativeTotal(t *testing.T) {
	now := time.Now()
	preds := []domain.Prediction{
		{Timestamp: now, Value: -40},
		{Timestamp: now.Add(24 * time.Hour), Value: 10},
	}
	assert.Equal(t, 0.0, SumPredictions(preds))

	preds = append(preds, domain.Prediction{Timestamp: now.Add(48 * time.Hour), Value: 100})
	assert.InDelta(t, 70.0, SumPredictions(preds), 1e-9)
	assert.Equal(t, 0.0, SumPredictions(nil))
}

func TestProject_ClampsFlowsBeforeArithmetic(t *testing.T) {
	proj := Project(1000, -50, 300)

	assert.Equal(t, 0.0, proj.PredictedInflow)
	assert.Equal(t, 300.0, proj.PredictedOutflow)
	assert.Equal(t, 700.0, proj.Balance)
	assert.Equal(t, 300.0, proj.DeficitIfEmptyNow())
}

func TestProject_DeficitIfEmptyNowNeverNegative(t *testing.T) {
	proj := Project(100, 900, 200)
	assert.Equal(t, 0.0, proj.DeficitIfEmptyNow())
	assert.Equal(t, 800.0, proj.Balance)
}

func TestRankSuppliers_SortsDescending(t *testing.T) {
	ranked := RankSuppliers(threeSuppliers(), 0)

	require.Len(t, ranked, 3)
	assert.Equal(t, []int{85, 72, 65}, []int{ranked[0].ReliabilityScore, ranked[1].ReliabilityScore, ranked[2].ReliabilityScore})
}

func TestRankSuppliers_TiesKeepRetrievalOrder(t *testing.T) {
	suppliers := []domain.Supplier{
		{ID: "a", ReliabilityScore: 70},
		{ID: "b", ReliabilityScore: 90},
		{ID: "c", ReliabilityScore: 70},
		{ID: "d", ReliabilityScore: 90},
		{ID: "e", ReliabilityScore: 70},
	}

	ranked := RankSuppliers(suppliers, 0)

	ids := make([]string, len(ranked))
	for i, s := range ranked {
		ids[i] = s.ID
	}
	assert.Equal(t, []string{"b", "d", "a", "c", "e"}, ids)
	assert.Equal(t, "a", suppliers[0].ID, "input must not be reordered")
}

func TestRankSuppliers_TopN(t *testing.T) {
	ranked := RankSuppliers(threeSuppliers(), 2)
	require.Len(t, ranked, 2)
	assert.Equal(t, "SUP-DVO-001", ranked[0].ID)
	assert.Equal(t, "SUP-DVO-042", ranked[1].ID)

	assert.Empty(t, RankSuppliers(nil, 3))
}

func TestPolicy_DecisionBoundary(t *testing.T) {
	policy := NewPolicy(2000)

	healthy := policy.Decide(Project(2000, 0, 0), threeSuppliers())
	assert.Equal(t, domain.DecisionHealthy, healthy.Status)
	require.NotNil(t, healthy.Healthy)
	assert.Nil(t, healthy.Critical)
	assert.Equal(t, 2000.0, healthy.Healthy.ProjectedEndStock)

	critical := policy.Decide(Project(1999.99, 0, 0), threeSuppliers())
	assert.Equal(t, domain.DecisionCritical, critical.Status)
	require.NotNil(t, critical.Critical)
	assert.Nil(t, critical.Healthy)
	assert.InDelta(t, 0.01, critical.Critical.RequiredPurchaseKg, 1e-9)
}

func TestPolicy_HealthyReportsClampedDeficit(t *testing.T) {
	policy := NewPolicy(2000)

	decision := policy.Decide(Project(5000, 100, 400), nil)

	require.Equal(t, domain.DecisionHealthy, decision.Status)
	assert.Equal(t, 5000.0, decision.Healthy.CurrentStorage)
	assert.Equal(t, 4700.0, decision.Healthy.ProjectedEndStock)
	assert.Equal(t, 300.0, decision.Healthy.DeficitIfEmptyNow)

	decision = policy.Decide(Project(5000, 400, 100), nil)
	assert.Equal(t, 0.0, decision.Healthy.DeficitIfEmptyNow)
}

func TestPolicy_DistributeFloorsShares(t *testing.T) {
	policy := NewPolicy(2000)

	tests := []struct {
		name    string
		deficit float64
		want    int64
	}{
		{"even split", 900, 300},
		{"remainder dropped", 901, 300},
		{"fractional deficit", 2500, 833},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			suggestions := policy.Distribute(tc.deficit, threeSuppliers())
			require.Len(t, suggestions, 3)
			for _, s := range suggestions {
				assert.Equal(t, tc.want, s.SuggestedOrderKg)
				assert.Equal(t, SuggestionReason, s.Reason)
			}
		})
	}
}

func TestPolicy_DistributeFewerSuppliersThanTopN(t *testing.T) {
	policy := NewPolicy(2000)
	suppliers := threeSuppliers()[:2]

	suggestions := policy.Distribute(901, suppliers)

	require.Len(t, suggestions, 2)
	assert.Equal(t, "Davao Golden Cacao Coop", suggestions[0].SupplierName)
	assert.Equal(t, 85, suggestions[0].RankScore)
	assert.Equal(t, int64(450), suggestions[0].SuggestedOrderKg)
}

func TestPolicy_ZeroSuppliers(t *testing.T) {
	policy := NewPolicy(2000)

	decision := policy.Decide(Project(0, 0, 500), nil)

	require.Equal(t, domain.DecisionCritical, decision.Status)
	assert.NotNil(t, decision.Suggestions)
	assert.Empty(t, decision.Suggestions)
	assert.Equal(t, 2500.0, decision.Critical.RequiredPurchaseKg)
}

func TestPolicy_EndToEndScenario(t *testing.T) {
	policy := NewPolicy(2000)

	stock := CurrentStock(domain.LedgerTotals{InflowKg: 4000, OutflowKg: 3200})
	proj := Project(stock, 1200, 2500)
	decision := policy.Decide(proj, threeSuppliers())

	assert.Equal(t, 800.0, stock)
	assert.Equal(t, -500.0, proj.Balance)
	require.Equal(t, domain.DecisionCritical, decision.Status)
	assert.Equal(t, 2500.0, decision.Critical.RequiredPurchaseKg)
	assert.Equal(t, 2500.0, decision.Critical.PredictedUsageSpike)
	assert.Equal(t, 800.0, decision.Critical.CurrentStorage)

	require.Len(t, decision.Suggestions, 3)
	assert.Equal(t, "SUP-DVO-001", decision.Suggestions[0].SupplierID)
	for _, s := range decision.Suggestions {
		assert.Equal(t, int64(833), s.SuggestedOrderKg)
	}
}

func TestNewPolicy_DefaultsBuffer(t *testing.T) {
	assert.Equal(t, DefaultSafetyBufferKg, NewPolicy(0).SafetyBufferKg)
	assert.Equal(t, 150.0, NewPolicy(150).SafetyBufferKg)
	assert.Equal(t, TopSupplierCount, NewPolicy(150).TopN)
}
