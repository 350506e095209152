package domain

import "time"

// SupplierPerformance summarises a supplier's delivery history. These are the
// figures the external scoring job weighs into a reliability score.
type SupplierPerformance struct {
	SupplierID         string     `json:"supplier_id" db:"supplier_id"`
	SupplierName       string     `json:"supplier_name" db:"supplier_name"`
	ReliabilityScore   int        `json:"reliability_score" db:"reliability_score"`
	TotalDeliveries    int        `json:"total_deliveries" db:"total_deliveries"`
	RejectedDeliveries int        `json:"rejected_deliveries" db:"rejected_deliveries"`
	RejectionRate      float64    `json:"rejection_rate" db:"rejection_rate"`
	TotalKg            float64    `json:"total_kg" db:"total_kg"`
	AvgMoisture        float64    `json:"avg_moisture_content" db:"avg_moisture_content"`
	AvgMoldyPercent    float64    `json:"avg_moldy_percent" db:"avg_moldy_percent"`
	AvgPrice           float64    `json:"avg_price" db:"avg_price"`
	LastDeliveryAt     *time.Time `json:"last_delivery_at,omitempty" db:"last_delivery_at"`
}
