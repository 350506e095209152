package seed

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Shape(t *testing.T) {
	now := time.Date(2026, 6, 30, 12, 0, 0, 0, time.UTC)
	ds := Generate(now, rand.New(rand.NewPCG(1, 2)))

	require.Len(t, ds.Suppliers, 2)
	assert.Len(t, ds.Deliveries, 13)
	assert.Len(t, ds.Logs, 180)

	assert.Equal(t, "TXN-FIXED-0", ds.Deliveries[0].TransactionID)
	assert.Equal(t, "SUP-DVO-001", ds.Deliveries[0].SupplierID)
	assert.Equal(t, "SUP-DVO-099", ds.Deliveries[1].SupplierID)
	assert.Equal(t, now.Add(-180*24*time.Hour), ds.Deliveries[0].Date)
	assert.Equal(t, 14*24*time.Hour, ds.Deliveries[1].Date.Sub(ds.Deliveries[0].Date))

	for _, d := range ds.Deliveries {
		assert.True(t, d.Date.Before(now))
		amount := d.AmountKg.IntPart()
		assert.GreaterOrEqual(t, amount, int64(100))
		assert.LessOrEqual(t, amount, int64(132))

		switch d.Price.IntPart() {
		case 125:
			assert.Equal(t, domain.DeliveryCompleted, d.Status)
			assert.InDelta(t, 6.75, d.Quality.MoistureContent, 0.75)
		case 60:
			assert.InDelta(t, 10.0, d.Quality.MoistureContent, 2.0)
			assert.Equal(t, 6.0, d.Quality.CutTestResults.MoldyPercent)
		default:
			t.Fatalf("unexpected price %s", d.Price)
		}
	}
}

func TestGenerate_ProductionPeaks(t *testing.T) {
	now := time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC)
	ds := Generate(now, rand.New(rand.NewPCG(7, 7)))

	for _, l := range ds.Logs {
		q := l.QuantityKg.IntPart()
		assert.Equal(t, domain.DefaultProductType, l.ProductType)
		require.NotNil(t, l.SupplierID)
		if l.Date.Month() == time.December {
			assert.GreaterOrEqual(t, q, int64(115), l.LogID)
			assert.LessOrEqual(t, q, int64(155), l.LogID)
		} else {
			assert.GreaterOrEqual(t, q, int64(75), l.LogID)
			assert.LessOrEqual(t, q, int64(95), l.LogID)
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	now := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	a := Generate(now, rand.New(rand.NewPCG(3, 4)))
	b := Generate(now, rand.New(rand.NewPCG(3, 4)))
	assert.Equal(t, a, b)
}
