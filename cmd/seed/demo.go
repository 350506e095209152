package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/repository/postgres"
	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/seed"
	"github.com/SerenicuS/ai-hackathon-msme-ai/pkg/logger"
	"github.com/urfave/cli/v2"
)

func runDemo(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}
	ctx := c.Context

	if _, err := postgres.Migrate(ctx, db); err != nil {
		return err
	}

	ledger := postgres.NewLedgerRepository(db)
	suppliers := postgres.NewSupplierRepository(db)

	if c.Bool("reset") {
		logger.Log.Warn().Msg("removing existing suppliers and ledger events")
		if err := ledger.Reset(ctx); err != nil {
			return fmt.Errorf("failed to reset ledger: %w", err)
		}
	}

	seedValue := c.Uint64("seed")
	if seedValue == 0 {
		seedValue = uint64(time.Now().UnixNano())
	}
	ds := seed.Generate(time.Now().UTC(), rand.New(rand.NewPCG(seedValue, seedValue>>1)))

	for i := range ds.Suppliers {
		if err := suppliers.UpsertSupplier(ctx, &ds.Suppliers[i]); err != nil {
			return fmt.Errorf("failed to upsert supplier %s: %w", ds.Suppliers[i].ID, err)
		}
	}
	if err := ledger.ImportBatch(ctx, ds.Deliveries, ds.Logs); err != nil {
		return fmt.Errorf("failed to load demo ledger: %w", err)
	}

	logger.Log.Info().
		Uint64("seed", seedValue).
		Int("suppliers", len(ds.Suppliers)).
		Int("deliveries", len(ds.Deliveries)).
		Int("production_logs", len(ds.Logs)).
		Msg("demo data loaded")
	return nil
}
