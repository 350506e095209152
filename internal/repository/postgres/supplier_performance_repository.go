package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/domain"
	"github.com/rs/zerolog/log"
)

var performanceSortFields = map[string]string{
	"supplier_name":        "s.name",
	"total_deliveries":     "total_deliveries",
	"total_kg":             "total_kg",
	"rejection_rate":       "rejection_rate",
	"avg_moisture_content": "avg_moisture_content",
	"reliability_score":    "s.reliability_score",
}

// GetSupplierPerformance aggregates every supplier's deliveries. Suppliers
// with no deliveries are included with zero figures.
func (r *supplierRepository) GetSupplierPerformance(ctx context.Context, sortField, sortDirection string) ([]domain.SupplierPerformance, error) {
	sortCol, ok := performanceSortFields[sortField]
	if !ok {
		sortCol = "total_kg"
	}
	sortDirection = strings.ToLower(sortDirection)
	if sortDirection != "asc" && sortDirection != "desc" {
		sortDirection = "desc"
	}

	query := fmt.Sprintf(`
		WITH deliveries AS (
			SELECT
				supplier_id,
				amount,
				price,
				date,
				status,
				COALESCE((quality->>'moisture_content')::float8, %v) AS moisture,
				COALESCE((quality->'cut_test_results'->>'moldy_percent')::float8, 0) AS moldy
			FROM transactions
		)
		SELECT
			s.supplier_id,
			s.name AS supplier_name,
			s.reliability_score,
			COUNT(d.supplier_id) AS total_deliveries,
			COUNT(d.supplier_id) FILTER (WHERE d.status = '%s') AS rejected_deliveries,
			COALESCE(
				(COUNT(d.supplier_id) FILTER (WHERE d.status = '%s'))::float8
					/ NULLIF(COUNT(d.supplier_id), 0),
				0
			) AS rejection_rate,
			COALESCE(SUM(d.amount), 0)::float8 AS total_kg,
			COALESCE(AVG(d.moisture), 0)::float8 AS avg_moisture_content,
			COALESCE(AVG(d.moldy), 0)::float8 AS avg_moldy_percent,
			COALESCE(AVG(d.price), 0)::float8 AS avg_price,
			MAX(d.date) AS last_delivery_at
		FROM suppliers s
		LEFT JOIN deliveries d ON d.supplier_id = s.supplier_id
		GROUP BY s.supplier_id, s.name, s.reliability_score
		ORDER BY %s %s, s.supplier_id ASC
	`, domain.DefaultMoistureContent, domain.DeliveryRejected, domain.DeliveryRejected, sortCol, sortDirection)

	var rows []domain.SupplierPerformance
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		log.Error().Err(err).Str("sort", sortCol).Msg("failed to load supplier performance")
		return nil, fmt.Errorf("error loading supplier performance: %w", err)
	}
	if rows == nil {
		rows = []domain.SupplierPerformance{}
	}
	return rows, nil
}
