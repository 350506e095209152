package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/domain"
	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memWriter struct {
	mu         sync.Mutex
	deliveries []domain.Delivery
	logs       []domain.ProductionLog
	batches    int
	failOn     string
	importErr  error
}

func (w *memWriter) InsertDelivery(_ context.Context, d *domain.Delivery) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if d.SupplierID == w.failOn {
		return fmt.Errorf("failed to insert delivery %s: %w", d.TransactionID, domain.ErrSupplierNotFound)
	}
	for _, existing := range w.deliveries {
		if existing.TransactionID == d.TransactionID {
			return fmt.Errorf("%w: delivery %s", domain.ErrDuplicateEvent, d.TransactionID)
		}
	}
	w.deliveries = append(w.deliveries, *d)
	return nil
}

func (w *memWriter) InsertProductionLog(_ context.Context, l *domain.ProductionLog) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.logs = append(w.logs, *l)
	return nil
}

func (w *memWriter) ImportBatch(_ context.Context, deliveries []domain.Delivery, logs []domain.ProductionLog) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.importErr != nil {
		return w.importErr
	}
	for _, d := range deliveries {
		if d.SupplierID == w.failOn {
			return errors.New("connection reset by peer")
		}
	}
	w.batches++
	w.deliveries = append(w.deliveries, deliveries...)
	w.logs = append(w.logs, logs...)
	return nil
}

func (w *memWriter) Reset(context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.deliveries, w.logs = nil, nil
	return nil
}

const (
	deliveriesCSV = "transaction_id,supplier_id,amount,price,date\nTXN-1,SUP-DVO-001,100,125,2026-03-01\nTXN-2,SUP-DVO-099,110,60,2026-03-15\n"
	productionCSV = "log_id,date,quantity\nLOG-1,2026-03-01,80\nLOG-2,2026-03-02,85\nLOG-3,2026-03-03,90\n"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestImporter_Dir(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"deliveries_march.csv": deliveriesCSV,
		"production_march.csv": productionCSV,
		"notes.txt":            "ignore me",
	})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive"), 0o755))

	w := &memWriter{}
	report, err := NewImporter(w, 4).Import(context.Background(), DirSource{Dir: dir})
	require.NoError(t, err)

	assert.Equal(t, 2, w.batches)
	assert.Len(t, w.deliveries, 2)
	assert.Len(t, w.logs, 3)
	assert.Equal(t, []string{"notes.txt"}, report.Skipped)
	require.Len(t, report.Files, 2)
	assert.Equal(t, "deliveries_march.csv", report.Files[0].Name)
	assert.Equal(t, 2, report.Files[0].Deliveries)
	assert.Equal(t, 3, report.Files[1].Logs)
	assert.Zero(t, report.Failed())
}

func TestImporter_FailedFileDoesNotStopOthers(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"deliveries_a.csv": "transaction_id,supplier_id,amount,date\nTXN-9,SUP-GHOST,10,2026-03-01\n",
		"deliveries_b.csv": deliveriesCSV,
		"production_a.csv": "log_id,date\n",
		"production_b.csv": productionCSV,
	})

	w := &memWriter{failOn: "SUP-GHOST"}
	report, err := NewImporter(w, 2).Import(context.Background(), DirSource{Dir: dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 4 files failed")

	assert.Equal(t, 2, report.Failed())
	assert.True(t, domain.IsUpstream(report.Files[0].Err))
	assert.NoError(t, report.Files[1].Err)
	assert.ErrorContains(t, report.Files[2].Err, "missing required column")
	assert.Equal(t, 2, w.batches)
}

func TestImportReader_UnknownSupplierIsNotUpstream(t *testing.T) {
	w := &memWriter{failOn: "SUP-GHOST"}
	w.importErr = fmt.Errorf("failed to insert delivery TXN-9: %w", domain.ErrSupplierNotFound)

	res, err := NewImporter(w, 1).ImportReader(context.Background(), "deliveries.csv",
		strings.NewReader("transaction_id,supplier_id,amount,date\nTXN-9,SUP-GHOST,10,2026-03-01\n"))
	assert.ErrorIs(t, err, domain.ErrSupplierNotFound)
	assert.False(t, domain.IsUpstream(err))
	assert.Equal(t, err, res.Err)
}

func TestImporter_EmptySource(t *testing.T) {
	report, err := NewImporter(&memWriter{}, 0).Import(context.Background(), DirSource{Dir: t.TempDir()})
	require.NoError(t, err)
	assert.Empty(t, report.Files)
}

func TestImporter_MissingDir(t *testing.T) {
	_, err := NewImporter(&memWriter{}, 1).Import(context.Background(), DirSource{Dir: filepath.Join(t.TempDir(), "nope")})
	assert.Error(t, err)
}

func TestImportReader_Unclassified(t *testing.T) {
	w := &memWriter{}
	_, err := NewImporter(w, 1).ImportReader(context.Background(), "suppliers.csv", strings.NewReader(deliveriesCSV))
	assert.ErrorContains(t, err, "cannot classify")
	assert.Zero(t, w.batches)
}

type memBucket struct {
	objects map[string]string
}

func (b *memBucket) ListObjects(_ context.Context, prefix string) ([]storage.ObjectInfo, error) {
	var out []storage.ObjectInfo
	for key, content := range b.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, storage.ObjectInfo{Key: key, Size: int64(len(content))})
		}
	}
	return out, nil
}

func (b *memBucket) DownloadObject(_ context.Context, key, destPath string) error {
	content, ok := b.objects[key]
	if !ok {
		return errors.New("no such key")
	}
	return os.WriteFile(destPath, []byte(content), 0o644)
}

func (b *memBucket) UploadObject(_ context.Context, key string, data []byte) error {
	b.objects[key] = string(data)
	return nil
}

func TestImporter_Bucket(t *testing.T) {
	bucket := &memBucket{objects: map[string]string{
		"ledger/2026/deliveries.csv": deliveriesCSV,
		"ledger/2026/production.csv": productionCSV,
		"other/production.csv":       productionCSV,
	}}

	w := &memWriter{}
	report, err := NewImporter(w, 2).Import(context.Background(), BucketSource{Client: bucket, Prefix: "ledger/"})
	require.NoError(t, err)
	assert.Len(t, report.Files, 2)
	assert.Len(t, w.deliveries, 2)
	assert.Len(t, w.logs, 3)
}
