// Package seed generates the demo ledger used for local runs and walkthroughs.
package seed

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	historyDays      = 180
	deliveryInterval = 14 * 24 * time.Hour
)

// Dataset is a complete demo ledger.
type Dataset struct {
	Suppliers  []domain.Supplier
	Deliveries []domain.Delivery
	Logs       []domain.ProductionLog
}

// Suppliers returns the two demo cooperatives.
func Suppliers() []domain.Supplier {
	return []domain.Supplier{
		{
			ID:               "SUP-DVO-001",
			Name:             "Davao Golden Cacao Coop",
			Location:         "Davao City, Calinan, Wangan",
			ReliabilityScore: 85,
			Eligibility:      domain.Eligibility{PhilgapCertified: true, PhilgapID: "BPI-2023-11"},
			Description: domain.FarmProfile{
				BearingTrees:     2000,
				TotalHectares:    5.0,
				ElevationMeters:  450,
				SoilType:         "loamy",
				AnnualRainfallMM: 1800,
			},
		},
		{
			ID:               "SUP-DVO-099",
			Name:             "Baguio District Aggregators",
			Location:         "Davao City, Baguio, Tawan-Tawan",
			ReliabilityScore: 65,
			Eligibility:      domain.Eligibility{PhilgapCertified: false},
			Description: domain.FarmProfile{
				BearingTrees:     500,
				TotalHectares:    2.0,
				ElevationMeters:  450,
				SoilType:         "loamy",
				AnnualRainfallMM: 1800,
			},
		},
	}
}

// Generate builds 180 days of history ending at now: a delivery every two
// weeks with a Q4 harvest bump, and daily production with February and
// December peaks.
func Generate(now time.Time, rng *rand.Rand) Dataset {
	suppliers := Suppliers()
	ids := make([]string, len(suppliers))
	for i, s := range suppliers {
		ids[i] = s.ID
	}

	start := now.Add(-historyDays * 24 * time.Hour)
	return Dataset{
		Suppliers:  suppliers,
		Deliveries: deliveries(start, now, ids, rng),
		Logs:       productionLogs(start, now, ids, rng),
	}
}

func deliveries(start, end time.Time, supplierIDs []string, rng *rand.Rand) []domain.Delivery {
	var out []domain.Delivery
	for n, date := 0, start; date.Before(end); n, date = n+1, date.Add(deliveryInterval) {
		amount := 100 + rng.IntN(11)
		if m := date.Month(); m >= time.October {
			amount = int(float64(amount) * 1.2)
		}

		d := domain.Delivery{
			TransactionID: fmt.Sprintf("TXN-FIXED-%d", n),
			SupplierID:    supplierIDs[n%len(supplierIDs)],
			AmountKg:      decimal.NewFromInt(int64(amount)),
			Date:          date,
			Status:        domain.DeliveryCompleted,
		}

		// One in four lots fails the cut test.
		if rng.IntN(4) != 0 {
			d.Quality = audit(6.0, 7.5, 1.0, 0.5, rng)
			d.Price = decimal.NewFromInt(125)
		} else {
			d.Quality = audit(8.0, 12.0, 6.0, 2.0, rng)
			d.Price = decimal.NewFromInt(60)
			if rng.Float64() < 0.3 {
				d.Status = domain.DeliveryRejected
			}
		}
		out = append(out, d)
	}
	return out
}

func audit(minMoisture, maxMoisture, moldy, insect float64, rng *rand.Rand) domain.QualityAudit {
	moisture := minMoisture + rng.Float64()*(maxMoisture-minMoisture)
	return domain.QualityAudit{
		MoistureContent: math.Round(moisture*10) / 10,
		CutTestResults: domain.CutTestResults{
			MoldyPercent:         moldy,
			InsectDamagedPercent: insect,
		},
	}
}

func productionLogs(start, end time.Time, supplierIDs []string, rng *rand.Rand) []domain.ProductionLog {
	var out []domain.ProductionLog
	for n, date := 0, start; date.Before(end); n, date = n+1, date.AddDate(0, 0, 1) {
		quantity := 75 + rng.IntN(21)
		if m := date.Month(); m == time.February || m == time.December {
			quantity += 40 + rng.IntN(21)
		}

		supplierID := supplierIDs[n%len(supplierIDs)]
		out = append(out, domain.ProductionLog{
			LogID:       fmt.Sprintf("LOG-%d", n),
			Date:        date,
			ProductType: domain.DefaultProductType,
			QuantityKg:  decimal.NewFromInt(int64(quantity)),
			SupplierID:  &supplierID,
		})
	}
	return out
}
