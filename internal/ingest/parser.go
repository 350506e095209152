package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/domain"
	"github.com/shopspring/decimal"
)

// FileKind identifies which ledger table a CSV export feeds.
type FileKind int

const (
	KindUnknown FileKind = iota
	KindDeliveries
	KindProduction
)

func (k FileKind) String() string {
	switch k {
	case KindDeliveries:
		return "deliveries"
	case KindProduction:
		return "production"
	default:
		return "unknown"
	}
}

// KindFromName classifies an export by its file name prefix, e.g.
// deliveries_2026-03.csv or production-logs.csv.
func KindFromName(name string) FileKind {
	base := strings.ToLower(path.Base(strings.ReplaceAll(name, "\\", "/")))
	if !strings.HasSuffix(base, ".csv") {
		return KindUnknown
	}
	switch {
	case strings.HasPrefix(base, "deliveries"), strings.HasPrefix(base, "transactions"):
		return KindDeliveries
	case strings.HasPrefix(base, "production"):
		return KindProduction
	default:
		return KindUnknown
	}
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006",
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
}

// row wraps one CSV record with header lookups.
type row struct {
	line   int
	record []string
	colMap map[string]int
}

func (r row) value(col string) string {
	if idx, ok := r.colMap[col]; ok && idx < len(r.record) {
		return strings.TrimSpace(r.record[idx])
	}
	return ""
}

func (r row) decimal(col string) (decimal.Decimal, error) {
	val := r.value(col)
	if val == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(val, ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("line %d: column %s: %w", r.line, col, err)
	}
	return d, nil
}

func (r row) float(col string, fallback float64) (float64, error) {
	val := r.value(col)
	if val == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: column %s: %w", r.line, col, err)
	}
	return f, nil
}

func (r row) date(col string) (time.Time, error) {
	t, err := parseDate(r.value(col))
	if err != nil {
		return time.Time{}, fmt.Errorf("line %d: column %s: %w", r.line, col, err)
	}
	return t, nil
}

// readRows reads the header, checks the required columns and hands every
// record to fn.
func readRows(r io.Reader, required []string, fn func(row) error) error {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("empty file")
	}
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}

	colMap := make(map[string]int, len(header))
	for i, col := range header {
		colMap[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))] = i
	}
	for _, col := range required {
		if _, ok := colMap[col]; !ok {
			return fmt.Errorf("missing required column: %s", col)
		}
	}

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		line++
		if err != nil {
			return fmt.Errorf("failed to read CSV record: %w", err)
		}
		if isBlank(record) {
			continue
		}
		if err := fn(row{line: line, record: record, colMap: colMap}); err != nil {
			return err
		}
	}
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// ParseDeliveries reads a deliveries export. Required columns are
// transaction_id, supplier_id, amount and date; price, status and the
// quality columns are optional.
func ParseDeliveries(r io.Reader) ([]domain.Delivery, error) {
	var out []domain.Delivery
	err := readRows(r, []string{"transaction_id", "supplier_id", "amount", "date"}, func(rw row) error {
		d := domain.Delivery{
			TransactionID: rw.value("transaction_id"),
			SupplierID:    rw.value("supplier_id"),
			Status:        strings.ToLower(rw.value("status")),
		}
		if d.TransactionID == "" || d.SupplierID == "" {
			return fmt.Errorf("line %d: transaction_id and supplier_id are required", rw.line)
		}

		var err error
		if d.AmountKg, err = rw.decimal("amount"); err != nil {
			return err
		}
		if !d.AmountKg.IsPositive() {
			return fmt.Errorf("line %d: %w", rw.line, domain.ErrInvalidQuantity)
		}
		if d.Price, err = rw.decimal("price"); err != nil {
			return err
		}
		if d.Date, err = rw.date("date"); err != nil {
			return err
		}
		if d.Quality.MoistureContent, err = rw.float("moisture_content", domain.DefaultMoistureContent); err != nil {
			return err
		}
		if d.Quality.CutTestResults.MoldyPercent, err = rw.float("moldy_percent", 0); err != nil {
			return err
		}
		if d.Quality.CutTestResults.InsectDamagedPercent, err = rw.float("insect_damaged_percent", 0); err != nil {
			return err
		}
		if d.Status == "" {
			d.Status = domain.DeliveryCompleted
		}

		out = append(out, d)
		return nil
	})
	return out, err
}

// ParseProductionLogs reads a production export. Required columns are
// log_id, date and quantity.
func ParseProductionLogs(r io.Reader) ([]domain.ProductionLog, error) {
	var out []domain.ProductionLog
	err := readRows(r, []string{"log_id", "date", "quantity"}, func(rw row) error {
		l := domain.ProductionLog{
			LogID:       rw.value("log_id"),
			ProductType: rw.value("product_type"),
		}
		if l.LogID == "" {
			return fmt.Errorf("line %d: log_id is required", rw.line)
		}

		var err error
		if l.QuantityKg, err = rw.decimal("quantity"); err != nil {
			return err
		}
		if !l.QuantityKg.IsPositive() {
			return fmt.Errorf("line %d: %w", rw.line, domain.ErrInvalidQuantity)
		}
		if l.Date, err = rw.date("date"); err != nil {
			return err
		}
		if l.ProductType == "" {
			l.ProductType = domain.DefaultProductType
		}
		if id := rw.value("supplier_id"); id != "" {
			l.SupplierID = &id
		}

		out = append(out, l)
		return nil
	})
	return out, err
}
