package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type ledgerRepository struct {
	db *DB
}

func NewLedgerRepository(db *DB) *ledgerRepository {
	return &ledgerRepository{db: db}
}

// ledgerRow scans NUMERIC columns without going through float32 or int.
type ledgerRow struct {
	Date time.Time       `db:"ds"`
	Kg   decimal.Decimal `db:"y"`
}

func (r ledgerRow) observation() domain.Observation {
	return domain.Observation{Timestamp: r.Date, Value: r.Kg.InexactFloat64()}
}

// GetLedgerTotals sums each side of the ledger in its own subquery. Joining
// the two tables would multiply rows and double count.
func (r *ledgerRepository) GetLedgerTotals(ctx context.Context) (domain.LedgerTotals, error) {
	query := `
		SELECT
			(SELECT COALESCE(SUM(amount), 0) FROM transactions) AS inflow,
			(SELECT COALESCE(SUM(quantity), 0) FROM production_logs) AS outflow
	`

	var row struct {
		Inflow  decimal.Decimal `db:"inflow"`
		Outflow decimal.Decimal `db:"outflow"`
	}
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		return domain.LedgerTotals{}, fmt.Errorf("error getting ledger totals: %w", err)
	}

	return domain.LedgerTotals{
		InflowKg:  row.Inflow.InexactFloat64(),
		OutflowKg: row.Outflow.InexactFloat64(),
	}, nil
}

func (r *ledgerRepository) ListInflowEvents(ctx context.Context) ([]domain.Observation, error) {
	return r.selectSeries(ctx, "inflow events", `
		SELECT date AS ds, amount AS y
		FROM transactions
		ORDER BY date ASC, transaction_id ASC
	`)
}

func (r *ledgerRepository) ListOutflowEvents(ctx context.Context) ([]domain.Observation, error) {
	return r.selectSeries(ctx, "outflow events", `
		SELECT date AS ds, quantity AS y
		FROM production_logs
		ORDER BY date ASC, log_id ASC
	`)
}

func (r *ledgerRepository) ListDailyOutflow(ctx context.Context) ([]domain.Observation, error) {
	return r.selectSeries(ctx, "daily outflow", `
		SELECT date_trunc('day', date) AS ds, SUM(quantity) AS y
		FROM production_logs
		GROUP BY 1
		ORDER BY 1 ASC
	`)
}

func (r *ledgerRepository) selectSeries(ctx context.Context, what, query string) ([]domain.Observation, error) {
	var rows []ledgerRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("error listing %s: %w", what, err)
	}

	series := make([]domain.Observation, len(rows))
	for i, row := range rows {
		series[i] = row.observation()
	}
	return series, nil
}

const insertDeliveryQuery = `
	INSERT INTO transactions (transaction_id, supplier_id, amount, price, date, quality, status)
	VALUES (:transaction_id, :supplier_id, :amount, :price, :date, :quality, :status)
	ON CONFLICT (transaction_id) DO NOTHING
`

const insertProductionLogQuery = `
	INSERT INTO production_logs (log_id, date, product_type, quantity, supplier_id)
	VALUES (:log_id, :date, :product_type, :quantity, :supplier_id)
	ON CONFLICT (log_id) DO NOTHING
`

// InsertDelivery records one delivery. A transaction ID that already exists
// yields domain.ErrDuplicateEvent, an unknown supplier domain.ErrSupplierNotFound.
func (r *ledgerRepository) InsertDelivery(ctx context.Context, d *domain.Delivery) error {
	res, err := r.db.NamedExecContext(ctx, insertDeliveryQuery, d)
	if err != nil {
		return fmt.Errorf("failed to insert delivery %s: %w", d.TransactionID, translateWriteError(err))
	}
	return expectInserted(res, "delivery "+d.TransactionID)
}

func (r *ledgerRepository) InsertProductionLog(ctx context.Context, l *domain.ProductionLog) error {
	res, err := r.db.NamedExecContext(ctx, insertProductionLogQuery, l)
	if err != nil {
		return fmt.Errorf("failed to insert production log %s: %w", l.LogID, translateWriteError(err))
	}
	return expectInserted(res, "production log "+l.LogID)
}

func expectInserted(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateEvent, what)
	}
	return nil
}

func (r *ledgerRepository) ImportBatch(ctx context.Context, deliveries []domain.Delivery, logs []domain.ProductionLog) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		// 1. Deliveries
		for i := range deliveries {
			if _, err := tx.NamedExecContext(ctx, insertDeliveryQuery, &deliveries[i]); err != nil {
				return fmt.Errorf("failed to insert delivery %s: %w", deliveries[i].TransactionID, translateWriteError(err))
			}
		}

		// 2. Production logs
		for i := range logs {
			if _, err := tx.NamedExecContext(ctx, insertProductionLogQuery, &logs[i]); err != nil {
				return fmt.Errorf("failed to insert production log %s: %w", logs[i].LogID, translateWriteError(err))
			}
		}

		return nil
	})
}

func (r *ledgerRepository) Reset(ctx context.Context) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `TRUNCATE production_logs, transactions, suppliers`); err != nil {
			return fmt.Errorf("failed to truncate ledger: %w", err)
		}
		return nil
	})
}
