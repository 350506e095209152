package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/repository/postgres"
	"github.com/SerenicuS/ai-hackathon-msme-ai/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

type dbKey struct{}

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func initDB(c *cli.Context) error {
	sqlDB, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := sqlDB.PingContext(c.Context); err != nil {
		sqlDB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	c.Context = context.WithValue(c.Context, dbKey{}, postgres.Wrap(sqlDB, "pgx"))
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey{}).(*postgres.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFrom(c *cli.Context) (*postgres.DB, error) {
	db, ok := c.Context.Value(dbKey{}).(*postgres.DB)
	if !ok || db == nil {
		return nil, fmt.Errorf("database connection not initialised")
	}
	return db, nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		logger.Log.Debug().Err(err).Msg("no .env file loaded")
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Prepare the cacao ledger database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.SetLevel(c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Apply pending schema migrations",
				Flags:  []cli.Flag{newDBURLFlag()},
				Before: initDB,
				After:  closeDB,
				Action: runMigrate,
			},
			{
				Name:  "demo",
				Usage: "Load 180 days of demo deliveries and production",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.Uint64Flag{
						Name:  "seed",
						Usage: "Random seed; 0 picks one from the clock",
					},
					&cli.BoolFlag{
						Name:  "reset",
						Usage: "Remove every supplier and ledger event first",
						Value: true,
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: runDemo,
			},
			{
				Name:  "import",
				Usage: "Import deliveries*.csv and production*.csv exports",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "dir",
						Usage:   "Local directory containing exports",
						EnvVars: []string{"IMPORT_DIR"},
					},
					&cli.BoolFlag{
						Name:  "bucket",
						Usage: "Read exports from the S3 bucket configured by S3_*",
					},
					&cli.StringFlag{
						Name:    "prefix",
						Usage:   "Object key prefix when reading from the bucket",
						EnvVars: []string{"S3_PREFIX"},
					},
					&cli.StringFlag{
						Name:    "drive-folder",
						Usage:   "Google Drive folder ID to read exports from",
						EnvVars: []string{"GOOGLE_DRIVE_FOLDER_ID"},
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Files imported concurrently",
						Value: 4,
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: runImport,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("seed failed")
	}
}

func runMigrate(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}

	applied, err := postgres.Migrate(c.Context, db)
	if err != nil {
		return err
	}
	logger.Log.Info().Strs("applied", applied).Msg("migrations complete")
	return nil
}
