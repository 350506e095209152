package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/domain"
	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/service"
	"github.com/gorilla/mux"
)

// maxUploadBytes bounds a single CSV upload.
const maxUploadBytes = 32 << 20

// Handler exposes ledger writes over HTTP for the dock and production floor.
type Handler struct {
	ledger   *service.LedgerService
	importer *Importer
}

func NewHandler(ledger *service.LedgerService, importer *Importer) *Handler {
	return &Handler{ledger: ledger, importer: importer}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/ledger/consumption", h.RecordConsumption).Methods(http.MethodPost)
	router.HandleFunc("/api/ledger/deliveries", h.RecordDelivery).Methods(http.MethodPost)
	router.HandleFunc("/api/ledger/import", h.ImportFile).Methods(http.MethodPost)
}

func (h *Handler) RecordConsumption(w http.ResponseWriter, r *http.Request) {
	var req service.ConsumptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	entry, err := h.ledger.RecordConsumption(r.Context(), req)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"status": "success", "data": entry})
}

func (h *Handler) RecordDelivery(w http.ResponseWriter, r *http.Request) {
	var req service.DeliveryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	delivery, err := h.ledger.RecordDelivery(r.Context(), req)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"status": "success", "data": delivery})
}

// ImportFile accepts a CSV export, either as a multipart "file" field or as
// the raw body with ?name=deliveries_2026-03.csv.
func (h *Handler) ImportFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	var (
		name string
		body io.Reader
	)
	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()
		name, body = header.Filename, file
	} else {
		name, body = r.URL.Query().Get("name"), r.Body
	}
	if name == "" {
		writeError(w, http.StatusBadRequest, errors.New("name parameter is required"))
		return
	}
	if KindFromName(name) == KindUnknown {
		writeError(w, http.StatusBadRequest, fmt.Errorf("cannot classify %s: expected deliveries*.csv or production*.csv", name))
		return
	}

	res, err := h.importer.ImportReader(r.Context(), name, body)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if domain.IsUpstream(err) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "success", "data": res})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSupplierNotFound):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDuplicateEvent):
		return http.StatusConflict
	case domain.IsUpstream(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"status": "error", "detail": err.Error()})
}
