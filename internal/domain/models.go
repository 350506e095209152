// internal/domain/models.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Observation is a single (timestamp, value) point of a historical series.
type Observation struct {
	Timestamp time.Time `json:"ds" db:"ds"`
	Value     float64   `json:"y" db:"y"`
}

// Prediction is a single forecasted point.
type Prediction struct {
	Timestamp time.Time `json:"ds"`
	Value     float64   `json:"yhat"`
}

// LedgerTotals holds the lifetime inflow and outflow sums of the stock ledger.
type LedgerTotals struct {
	InflowKg  float64 `json:"inflow_kg"`
	OutflowKg float64 `json:"outflow_kg"`
}

// Supplier represents a cacao supplier profile with its precomputed reliability score.
type Supplier struct {
	ID               string      `json:"supplier_id" db:"supplier_id"`
	Name             string      `json:"name" db:"name"`
	Location         string      `json:"location" db:"location"`
	ReliabilityScore int         `json:"reliability_score" db:"reliability_score"`
	Description      FarmProfile `json:"description" db:"description"`
	Eligibility      Eligibility `json:"eligibility" db:"eligibility"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at" db:"updated_at"`
}

// Delivery is an inflow event: beans delivered by a supplier.
type Delivery struct {
	TransactionID string          `json:"transaction_id" db:"transaction_id"`
	SupplierID    string          `json:"supplier_id" db:"supplier_id"`
	AmountKg      decimal.Decimal `json:"amount" db:"amount"`
	Price         decimal.Decimal `json:"price" db:"price"`
	Date          time.Time       `json:"date" db:"date"`
	Quality       QualityAudit    `json:"quality" db:"quality"`
	Status        string          `json:"status" db:"status"`
}

// ProductionLog is an outflow event: beans consumed by production.
type ProductionLog struct {
	LogID       string          `json:"log_id" db:"log_id"`
	Date        time.Time       `json:"date" db:"date"`
	ProductType string          `json:"product_type" db:"product_type"`
	QuantityKg  decimal.Decimal `json:"quantity" db:"quantity"`
	SupplierID  *string         `json:"supplier_id,omitempty" db:"supplier_id"`
}

// ScoreUpdate carries a reliability score computed by the external scoring aggregator.
type ScoreUpdate struct {
	SupplierID string `json:"supplier_id"`
	Score      int    `json:"score"`
}

// DemandStatus discriminates a demand prediction result.
type DemandStatus string

const (
	DemandStatusOK      DemandStatus = "success"
	DemandStatusWarning DemandStatus = "warning"
)

// DemandForecast is the result of a horizon-summed consumption prediction.
type DemandForecast struct {
	Status      DemandStatus `json:"status"`
	TotalKg     int64        `json:"forecast_total_kg"`
	HorizonDays int          `json:"horizon_days"`
	Message     string       `json:"message"`
}

// DefaultProductType is recorded when a consumption event names no product.
const DefaultProductType = "Dark Chocolate"

// Delivery statuses recorded by the receiving dock.
const (
	DeliveryCompleted = "completed"
	DeliveryRejected  = "rejected"
)
