package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

type supplierRepository struct {
	db *DB
}

func NewSupplierRepository(db *DB) *supplierRepository {
	return &supplierRepository{db: db}
}

const supplierColumns = `
	supplier_id, name, location, reliability_score,
	description, eligibility, created_at, updated_at
`

// ListSuppliers orders by supplier_id so that score ties rank deterministically.
func (r *supplierRepository) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers ORDER BY supplier_id ASC`

	var suppliers []domain.Supplier
	if err := r.db.SelectContext(ctx, &suppliers, query); err != nil {
		return nil, fmt.Errorf("error listing suppliers: %w", err)
	}
	return suppliers, nil
}

func (r *supplierRepository) GetSupplier(ctx context.Context, id string) (*domain.Supplier, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE supplier_id = $1`

	var s domain.Supplier
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSupplierNotFound, id)
		}
		return nil, fmt.Errorf("error getting supplier %s: %w", id, err)
	}
	return &s, nil
}

// UpdateReliabilityScores writes precomputed scores in one transaction. An
// unknown supplier aborts the whole batch.
func (r *supplierRepository) UpdateReliabilityScores(ctx context.Context, updates []domain.ScoreUpdate) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		stmt, err := tx.PreparexContext(ctx, `
			UPDATE suppliers
			SET reliability_score = $1, updated_at = NOW()
			WHERE supplier_id = $2
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, u := range updates {
			res, err := stmt.ExecContext(ctx, u.Score, u.SupplierID)
			if err != nil {
				return fmt.Errorf("failed to update score for %s: %w", u.SupplierID, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to read affected rows: %w", err)
			}
			if n == 0 {
				return fmt.Errorf("%w: %s", domain.ErrSupplierNotFound, u.SupplierID)
			}
		}

		log.Debug().Int("count", len(updates)).Msg("reliability scores updated")
		return nil
	})
}

func (r *supplierRepository) UpsertSupplier(ctx context.Context, s *domain.Supplier) error {
	query := `
		INSERT INTO suppliers (supplier_id, name, location, reliability_score, description, eligibility, updated_at)
		VALUES (:supplier_id, :name, :location, :reliability_score, :description, :eligibility, NOW())
		ON CONFLICT (supplier_id)
		DO UPDATE SET
			name = EXCLUDED.name,
			location = EXCLUDED.location,
			reliability_score = EXCLUDED.reliability_score,
			description = EXCLUDED.description,
			eligibility = EXCLUDED.eligibility,
			updated_at = NOW()
	`
	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("failed to upsert supplier %s: %w", s.ID, err)
	}
	return nil
}
