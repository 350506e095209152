package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/domain"
	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ConsumptionRequest records beans burned by production.
type ConsumptionRequest struct {
	ProductType string          `json:"product_type"`
	QuantityKg  decimal.Decimal `json:"quantity_kg"`
	SupplierID  string          `json:"supplier_id,omitempty"`
	Date        time.Time       `json:"date"`
}

// DeliveryRequest records beans received from a supplier.
type DeliveryRequest struct {
	TransactionID string              `json:"transaction_id,omitempty"`
	SupplierID    string              `json:"supplier_id"`
	AmountKg      decimal.Decimal     `json:"amount_kg"`
	Price         decimal.Decimal     `json:"price"`
	Date          time.Time           `json:"date"`
	Quality       domain.QualityAudit `json:"quality"`
	Status        string              `json:"status,omitempty"`
}

// LedgerService validates and writes single ledger events.
type LedgerService struct {
	writer repository.LedgerWriter
	now    func() time.Time
}

func NewLedgerService(writer repository.LedgerWriter) *LedgerService {
	return &LedgerService{writer: writer, now: time.Now}
}

// NewLiveLogID returns an identifier for a consumption event entered live,
// e.g. LIVE-1a2b3c4d.
func NewLiveLogID() string {
	return "LIVE-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func (s *LedgerService) RecordConsumption(ctx context.Context, req ConsumptionRequest) (*domain.ProductionLog, error) {
	if !req.QuantityKg.IsPositive() {
		return nil, fmt.Errorf("%w: %s kg", domain.ErrInvalidQuantity, req.QuantityKg)
	}

	entry := &domain.ProductionLog{
		LogID:       NewLiveLogID(),
		Date:        req.Date,
		ProductType: strings.TrimSpace(req.ProductType),
		QuantityKg:  req.QuantityKg,
	}
	if entry.Date.IsZero() {
		entry.Date = s.now().UTC()
	}
	if entry.ProductType == "" {
		entry.ProductType = domain.DefaultProductType
	}
	if id := strings.TrimSpace(req.SupplierID); id != "" {
		entry.SupplierID = &id
	}

	if err := s.writer.InsertProductionLog(ctx, entry); err != nil {
		return nil, writeFailure("insert production log", err)
	}

	log.Info().
		Str("log_id", entry.LogID).
		Str("product", entry.ProductType).
		Str("quantity_kg", entry.QuantityKg.String()).
		Msg("consumption recorded")
	return entry, nil
}

func (s *LedgerService) RecordDelivery(ctx context.Context, req DeliveryRequest) (*domain.Delivery, error) {
	if !req.AmountKg.IsPositive() {
		return nil, fmt.Errorf("%w: %s kg", domain.ErrInvalidQuantity, req.AmountKg)
	}
	if strings.TrimSpace(req.SupplierID) == "" {
		return nil, fmt.Errorf("%w: empty supplier id", domain.ErrSupplierNotFound)
	}

	d := &domain.Delivery{
		TransactionID: strings.TrimSpace(req.TransactionID),
		SupplierID:    strings.TrimSpace(req.SupplierID),
		AmountKg:      req.AmountKg,
		Price:         req.Price,
		Date:          req.Date,
		Quality:       req.Quality,
		Status:        req.Status,
	}
	if d.TransactionID == "" {
		d.TransactionID = "TXN-" + uuid.NewString()
	}
	if d.Date.IsZero() {
		d.Date = s.now().UTC()
	}
	if d.Status == "" {
		d.Status = domain.DeliveryCompleted
	}
	if d.Quality.MoistureContent == 0 {
		d.Quality.MoistureContent = domain.DefaultMoistureContent
	}

	if err := s.writer.InsertDelivery(ctx, d); err != nil {
		return nil, writeFailure("insert delivery", err)
	}

	log.Info().
		Str("transaction_id", d.TransactionID).
		Str("supplier_id", d.SupplierID).
		Str("amount_kg", d.AmountKg.String()).
		Msg("delivery recorded")
	return d, nil
}

// writeFailure keeps rejections caused by the request itself (unknown
// supplier, duplicate ID) as they are; anything else is a store failure.
func writeFailure(op string, err error) error {
	if errors.Is(err, domain.ErrSupplierNotFound) || errors.Is(err, domain.ErrDuplicateEvent) {
		return err
	}
	return domain.Upstream(op, err)
}
