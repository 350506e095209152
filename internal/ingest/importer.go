package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/domain"
	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/repository"
	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/storage"
	"github.com/rs/zerolog/log"
)

// Source lists and opens ledger exports.
type Source interface {
	List(ctx context.Context) ([]string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// DirSource reads exports from a local directory.
type DirSource struct {
	Dir string
}

func (s DirSource) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.Dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

func (s DirSource) Open(_ context.Context, name string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.Dir, name))
}

// BucketSource reads exports from an S3-compatible bucket. Objects are
// staged in a temp file that is removed on Close.
type BucketSource struct {
	Client storage.ObjectStorage
	Prefix string
}

func (s BucketSource) List(ctx context.Context) ([]string, error) {
	objects, err := s.Client.ListObjects(ctx, strings.TrimSpace(s.Prefix))
	if err != nil {
		return nil, fmt.Errorf("failed to list objects for prefix %s: %w", s.Prefix, err)
	}
	names := make([]string, 0, len(objects))
	for _, obj := range objects {
		names = append(names, obj.Key)
	}
	return names, nil
}

func (s BucketSource) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	tmp, err := os.CreateTemp("", "ledger-*.csv")
	if err != nil {
		return nil, err
	}
	tmpPath := tmp.Name()
	tmp.Close()

	if err := s.Client.DownloadObject(ctx, key, tmpPath); err != nil {
		os.Remove(tmpPath)
		return nil, err
	}
	f, err := os.Open(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return nil, err
	}
	return &stagedFile{File: f}, nil
}

type stagedFile struct {
	*os.File
}

func (f *stagedFile) Close() error {
	err := f.File.Close()
	os.Remove(f.File.Name())
	return err
}

// FileResult is the outcome of importing one export.
type FileResult struct {
	Name       string        `json:"name"`
	Kind       string        `json:"kind"`
	Deliveries int           `json:"deliveries"`
	Logs       int           `json:"production_logs"`
	Duration   time.Duration `json:"duration"`
	Error      string        `json:"error,omitempty"`
	Err        error         `json:"-"`
}

// Report summarises an import run.
type Report struct {
	Files   []FileResult `json:"files"`
	Skipped []string     `json:"skipped"`
}

// Failed returns the number of files that did not import.
func (r *Report) Failed() int {
	n := 0
	for _, f := range r.Files {
		if f.Err != nil {
			n++
		}
	}
	return n
}

// Importer loads ledger exports. Each file is written in its own
// transaction, so a bad file leaves the others intact.
type Importer struct {
	writer  repository.LedgerWriter
	workers int
}

func NewImporter(writer repository.LedgerWriter, workers int) *Importer {
	if workers < 1 {
		workers = 1
	}
	return &Importer{writer: writer, workers: workers}
}

// Import loads every recognised export in src using a worker pool. All files
// are attempted; the returned error reports the first failure.
func (i *Importer) Import(ctx context.Context, src Source) (*Report, error) {
	names, err := src.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	report := &Report{Skipped: []string{}}
	var jobs []string
	for _, name := range names {
		if KindFromName(name) == KindUnknown {
			report.Skipped = append(report.Skipped, name)
			continue
		}
		jobs = append(jobs, name)
	}
	report.Files = make([]FileResult, len(jobs))
	if len(jobs) == 0 {
		return report, nil
	}

	workerCount := i.workers
	if workerCount > len(jobs) {
		workerCount = len(jobs)
	}

	type job struct {
		idx  int
		name string
	}
	jobChan := make(chan job, len(jobs))
	errChan := make(chan error, len(jobs))
	var wg sync.WaitGroup

	for w := 0; w < workerCount; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for j := range jobChan {
				res := i.importFile(ctx, src, j.name)
				if res.Err != nil {
					res.Error = res.Err.Error()
				}
				report.Files[j.idx] = res
				if res.Err != nil {
					log.Warn().Err(res.Err).
						Int("worker", workerID).
						Str("file", j.name).
						Msg("ledger import failed")
					errChan <- fmt.Errorf("%s: %w", j.name, res.Err)
				}
			}
		}(w)
	}

	for idx, name := range jobs {
		jobChan <- job{idx: idx, name: name}
	}
	close(jobChan)

	wg.Wait()
	close(errChan)

	if err := <-errChan; err != nil {
		return report, fmt.Errorf("%d of %d files failed, first: %w", report.Failed(), len(jobs), err)
	}
	return report, nil
}

func (i *Importer) importFile(ctx context.Context, src Source, name string) FileResult {
	if err := ctx.Err(); err != nil {
		return FileResult{Name: name, Kind: KindFromName(name).String(), Err: err}
	}
	rc, err := src.Open(ctx, name)
	if err != nil {
		return FileResult{Name: name, Kind: KindFromName(name).String(), Err: err}
	}
	defer rc.Close()

	res, _ := i.ImportReader(ctx, name, rc)
	return res
}

// ImportReader parses one export, classified by name, and writes it in a
// single transaction.
func (i *Importer) ImportReader(ctx context.Context, name string, r io.Reader) (FileResult, error) {
	start := time.Now()
	kind := KindFromName(name)
	res := FileResult{Name: name, Kind: kind.String()}

	var (
		deliveries []domain.Delivery
		logs       []domain.ProductionLog
		err        error
	)
	switch kind {
	case KindDeliveries:
		deliveries, err = ParseDeliveries(r)
	case KindProduction:
		logs, err = ParseProductionLogs(r)
	default:
		err = fmt.Errorf("cannot classify %s: expected deliveries*.csv or production*.csv", name)
	}
	if err != nil {
		res.Err = err
		return res, err
	}

	if err := i.writer.ImportBatch(ctx, deliveries, logs); err != nil {
		res.Err = err
		if !errors.Is(err, domain.ErrSupplierNotFound) {
			res.Err = domain.Upstream("import "+name, err)
		}
		return res, res.Err
	}

	res.Deliveries = len(deliveries)
	res.Logs = len(logs)
	res.Duration = time.Since(start)
	log.Info().
		Str("file", name).
		Str("kind", res.Kind).
		Int("deliveries", res.Deliveries).
		Int("production_logs", res.Logs).
		Dur("duration", res.Duration).
		Msg("ledger file imported")
	return res, nil
}
