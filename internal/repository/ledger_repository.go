// internal/repository/ledger_repository.go
package repository

import (
	"context"

	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/domain"
)

// LedgerRepository reads the stock ledger: deliveries are inflow, production
// logs are outflow. Every call hits the store; nothing is cached.
type LedgerRepository interface {
	// GetLedgerTotals returns the lifetime inflow and outflow sums, each
	// computed independently.
	GetLedgerTotals(ctx context.Context) (domain.LedgerTotals, error)
	ListInflowEvents(ctx context.Context) ([]domain.Observation, error)
	ListOutflowEvents(ctx context.Context) ([]domain.Observation, error)
	// ListDailyOutflow returns consumption aggregated to calendar-day totals.
	ListDailyOutflow(ctx context.Context) ([]domain.Observation, error)
}

// LedgerWriter records ledger events.
type LedgerWriter interface {
	InsertDelivery(ctx context.Context, d *domain.Delivery) error
	InsertProductionLog(ctx context.Context, l *domain.ProductionLog) error
	// ImportBatch writes deliveries and logs in a single transaction.
	ImportBatch(ctx context.Context, deliveries []domain.Delivery, logs []domain.ProductionLog) error
	// Reset removes every ledger event and supplier.
	Reset(ctx context.Context) error
}
