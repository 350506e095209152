package repository

import (
	"context"

	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/domain"
)

type SupplierRepository interface {
	// ListSuppliers returns every supplier in a stable retrieval order.
	ListSuppliers(ctx context.Context) ([]domain.Supplier, error)
	GetSupplier(ctx context.Context, id string) (*domain.Supplier, error)
	// UpdateReliabilityScores applies all updates or none of them.
	UpdateReliabilityScores(ctx context.Context, updates []domain.ScoreUpdate) error
	UpsertSupplier(ctx context.Context, s *domain.Supplier) error
	// GetSupplierPerformance aggregates delivery history per supplier.
	GetSupplierPerformance(ctx context.Context, sortField, sortDirection string) ([]domain.SupplierPerformance, error)
}
