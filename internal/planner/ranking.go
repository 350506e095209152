package planner

import (
	"sort"

	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/domain"
)

// RankSuppliers returns up to n suppliers sorted by reliability score,
// highest first. Equal scores keep their retrieval order. A non-positive n
// returns the whole ranking. The input slice is not modified.
func RankSuppliers(suppliers []domain.Supplier, n int) []domain.Supplier {
	ranked := make([]domain.Supplier, len(suppliers))
	copy(ranked, suppliers)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ReliabilityScore > ranked[j].ReliabilityScore
	})

	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
