package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/repository/postgres"
	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/service"
	"github.com/SerenicuS/ai-hackathon-msme-ai/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
)

const defaultSupplierID = "SUP-DVO-001"

func main() {
	_ = godotenv.Load(".env")

	app := &cli.App{
		Name:  "consumer",
		Usage: "Production floor terminal that logs bean consumption",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "db-url",
				Usage:    "Database connection string",
				Required: true,
				EnvVars:  []string{"DATABASE_URL"},
			},
			&cli.StringFlag{
				Name:  "supplier",
				Usage: "Supplier the consumed beans are attributed to",
				Value: defaultSupplierID,
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "menu",
				Usage:  "Interactive terminal",
				Action: withLedger(runMenu, false),
			},
			{
				Name:  "log",
				Usage: "Log a single consumption event",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "product", Value: "Dark Chocolate"},
					&cli.StringFlag{Name: "kg", Required: true},
				},
				Action: withLedger(runLog, true),
			},
			{
				Name:  "drain",
				Usage: "Burn a fixed amount on every tick until interrupted",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "kg", Value: "2"},
					&cli.DurationFlag{Name: "every", Value: time.Second},
				},
				Action: withLedger(runDrain, true),
			},
		},
		DefaultCommand: "menu",
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("consumer failed")
	}
}

type terminal struct {
	ledger   *service.LedgerService
	supplier string
	in       *bufio.Reader
	out      io.Writer
}

// withLedger opens the database and builds the terminal. With trap set,
// SIGINT and SIGTERM cancel the command context; the interactive menu traps
// Ctrl+C only while a drain runs.
func withLedger(fn func(ctx context.Context, c *cli.Context, t *terminal) error, trap bool) cli.ActionFunc {
	return func(c *cli.Context) error {
		sqlDB, err := sql.Open("pgx", c.String("db-url"))
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer sqlDB.Close()

		ctx := c.Context
		if trap {
			var stop context.CancelFunc
			ctx, stop = signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
		}

		if err := sqlDB.PingContext(ctx); err != nil {
			return fmt.Errorf("failed to ping database: %w", err)
		}

		db := postgres.Wrap(sqlDB, "pgx")
		t := &terminal{
			ledger:   service.NewLedgerService(postgres.NewLedgerRepository(db)),
			supplier: c.String("supplier"),
			in:       bufio.NewReader(os.Stdin),
			out:      os.Stdout,
		}
		return fn(ctx, c, t)
	}
}

func (t *terminal) record(ctx context.Context, product string, kg decimal.Decimal) error {
	_, err := t.ledger.RecordConsumption(ctx, service.ConsumptionRequest{
		ProductType: product,
		QuantityKg:  kg,
		SupplierID:  t.supplier,
	})
	return err
}

func (t *terminal) prompt(label string) (string, error) {
	fmt.Fprint(t.out, label)
	line, err := t.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func runLog(ctx context.Context, c *cli.Context, t *terminal) error {
	kg, err := decimal.NewFromString(c.String("kg"))
	if err != nil {
		return fmt.Errorf("invalid --kg: %w", err)
	}
	if err := t.record(ctx, c.String("product"), kg); err != nil {
		return err
	}
	fmt.Fprintf(t.out, "SENT: -%skg (%s)\n", kg, c.String("product"))
	return nil
}

func runDrain(ctx context.Context, c *cli.Context, t *terminal) error {
	kg, err := decimal.NewFromString(c.String("kg"))
	if err != nil {
		return fmt.Errorf("invalid --kg: %w", err)
	}
	return t.drain(ctx, kg, c.Duration("every"))
}

// drain logs kg every tick until ctx is cancelled.
func (t *terminal) drain(ctx context.Context, kg decimal.Decimal, every time.Duration) error {
	if !kg.IsPositive() || every <= 0 {
		return fmt.Errorf("drain needs a positive amount and interval")
	}
	fmt.Fprintf(t.out, "STARTING SIMULATION: burning %skg every %s. Press Ctrl+C to stop.\n", kg, every)

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for counter := 1; ; {
		select {
		case <-ctx.Done():
			fmt.Fprintln(t.out, "\nSIMULATION STOPPED.")
			return nil
		case <-ticker.C:
			if err := t.record(ctx, drainProduct, kg); err != nil {
				if ctx.Err() != nil {
					continue
				}
				logger.Log.Error().Err(err).Msg("drain tick failed")
				continue
			}
			fmt.Fprintf(t.out, "\r[%d] Burned %skg... Stock dropping... ", counter, kg)
			counter++
		}
	}
}

func runMenu(ctx context.Context, c *cli.Context, t *terminal) error {
	for {
		fmt.Fprintln(t.out, "\nLIVE CONSUMPTION TERMINAL")
		fmt.Fprintln(t.out, "SELECT ACTION:")
		for _, item := range menu {
			fmt.Fprintln(t.out, item.String())
		}
		fmt.Fprintln(t.out, "\n [Q] Quit")

		choice, err := t.prompt("\nENTER COMMAND: ")
		if err != nil || strings.EqualFold(choice, "q") || ctx.Err() != nil {
			return nil
		}

		item, ok := lookup(choice)
		if !ok {
			continue
		}

		if item.Drain {
			if err := t.menuDrain(ctx); err != nil {
				fmt.Fprintf(t.out, "Invalid input: %v\n", err)
			}
			continue
		}

		raw, err := t.prompt(fmt.Sprintf("Quantity of '%s': ", item.Name))
		if err != nil {
			return nil
		}
		count, err := strconv.Atoi(raw)
		if err != nil {
			fmt.Fprintln(t.out, "Invalid Number")
			continue
		}
		kg, err := item.totalKg(count)
		if err != nil {
			fmt.Fprintln(t.out, err)
			continue
		}

		fmt.Fprintf(t.out, "Syncing for %skg deduction...\n", kg)
		if err := t.record(ctx, item.Name, kg); err != nil {
			fmt.Fprintf(t.out, "DATABASE ERROR: %v\n", err)
			continue
		}
		fmt.Fprintf(t.out, "SENT: -%skg (%s)\n", kg, item.Name)
	}
}

// menuDrain runs a drain until Ctrl+C, then returns to the menu.
func (t *terminal) menuDrain(ctx context.Context) error {
	rawKg, err := t.prompt("How many KG to burn per tick? (e.g., 2): ")
	if err != nil {
		return err
	}
	kg, err := decimal.NewFromString(rawKg)
	if err != nil {
		return err
	}
	rawSec, err := t.prompt("How many seconds per tick? (e.g., 1): ")
	if err != nil {
		return err
	}
	sec, err := strconv.ParseFloat(rawSec, 64)
	if err != nil {
		return err
	}

	drainCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	return t.drain(drainCtx, kg, time.Duration(sec*float64(time.Second)))
}
