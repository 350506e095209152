package main

import (
	"context"
	"fmt"

	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/config"
	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/drive"
	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/ingest"
	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/repository/postgres"
	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/storage"
	"github.com/SerenicuS/ai-hackathon-msme-ai/pkg/logger"
	"github.com/urfave/cli/v2"
)

func runImport(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}

	src, err := importSource(c.Context, c)
	if err != nil {
		return err
	}

	importer := ingest.NewImporter(postgres.NewLedgerRepository(db), c.Int("workers"))
	report, err := importer.Import(c.Context, src)
	if report != nil {
		for _, f := range report.Files {
			evt := logger.Log.Info()
			if f.Err != nil {
				evt = logger.Log.Error().Err(f.Err)
			}
			evt.Str("file", f.Name).
				Str("kind", f.Kind).
				Int("deliveries", f.Deliveries).
				Int("production_logs", f.Logs).
				Msg("import result")
		}
		if len(report.Skipped) > 0 {
			logger.Log.Info().Strs("skipped", report.Skipped).Msg("unrecognised files skipped")
		}
	}
	return err
}

func importSource(ctx context.Context, c *cli.Context) (ingest.Source, error) {
	switch {
	case c.String("dir") != "":
		return ingest.DirSource{Dir: c.String("dir")}, nil
	case c.Bool("bucket"):
		client, err := storage.NewS3Client(config.Load().Storage)
		if err != nil {
			return nil, err
		}
		return ingest.BucketSource{Client: client, Prefix: c.String("prefix")}, nil
	case c.String("drive-folder") != "":
		svc, err := drive.NewService(ctx, config.Load().Drive.CredentialsJSON)
		if err != nil {
			return nil, err
		}
		return drive.NewFolderSource(svc, c.String("drive-folder")), nil
	default:
		return nil, fmt.Errorf("one of --dir, --bucket or --drive-folder is required")
	}
}
