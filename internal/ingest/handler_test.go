package ingest

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/service"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(w *memWriter) *mux.Router {
	r := mux.NewRouter()
	NewHandler(service.NewLedgerService(w), NewImporter(w, 1)).RegisterRoutes(r)
	return r
}

func send(t *testing.T, h http.Handler, req *http.Request) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec, body
}

func TestRecordConsumption(t *testing.T) {
	w := &memWriter{}
	srv := newTestServer(w)

	req := httptest.NewRequest(http.MethodPost, "/api/ledger/consumption", bytes.NewBufferString(`{"product_type":"Tablea Pack","quantity_kg":"0.2"}`))
	rec, body := send(t, srv, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "success", body["status"])
	require.Len(t, w.logs, 1)
	assert.Equal(t, "Tablea Pack", w.logs[0].ProductType)
	assert.Equal(t, "0.2", w.logs[0].QuantityKg.String())
}

func TestRecordConsumption_Invalid(t *testing.T) {
	srv := newTestServer(&memWriter{})

	rec, body := send(t, srv, httptest.NewRequest(http.MethodPost, "/api/ledger/consumption", bytes.NewBufferString(`{"quantity_kg":"0"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "error", body["status"])

	rec, _ = send(t, srv, httptest.NewRequest(http.MethodPost, "/api/ledger/consumption", bytes.NewBufferString(`nope`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecordDelivery(t *testing.T) {
	w := &memWriter{}
	srv := newTestServer(w)

	payload := `{"supplier_id":"SUP-DVO-001","amount_kg":"104.5","price":"125","quality":{"moisture_content":6.5}}`
	rec, _ := send(t, srv, httptest.NewRequest(http.MethodPost, "/api/ledger/deliveries", bytes.NewBufferString(payload)))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, w.deliveries, 1)
	assert.Equal(t, "completed", w.deliveries[0].Status)
	assert.Equal(t, 6.5, w.deliveries[0].Quality.MoistureContent)
}

func TestRecordDelivery_UnknownSupplier(t *testing.T) {
	w := &memWriter{failOn: "SUP-NOPE"}
	srv := newTestServer(w)

	payload := `{"supplier_id":"SUP-NOPE","amount_kg":"50"}`
	rec, body := send(t, srv, httptest.NewRequest(http.MethodPost, "/api/ledger/deliveries", bytes.NewBufferString(payload)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "error", body["status"])
	assert.Contains(t, body["detail"], "supplier not found")
	assert.Empty(t, w.deliveries)
}

func TestRecordDelivery_DuplicateTransaction(t *testing.T) {
	w := &memWriter{}
	srv := newTestServer(w)

	payload := `{"transaction_id":"TXN-42","supplier_id":"SUP-DVO-001","amount_kg":"50"}`
	rec, _ := send(t, srv, httptest.NewRequest(http.MethodPost, "/api/ledger/deliveries", bytes.NewBufferString(payload)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, body := send(t, srv, httptest.NewRequest(http.MethodPost, "/api/ledger/deliveries", bytes.NewBufferString(payload)))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, body["detail"], "already recorded")
	assert.Len(t, w.deliveries, 1)
}

func TestImportFile_RawBody(t *testing.T) {
	w := &memWriter{}
	srv := newTestServer(w)

	req := httptest.NewRequest(http.MethodPost, "/api/ledger/import?name=production_march.csv", bytes.NewBufferString(productionCSV))
	rec, body := send(t, srv, req)

	require.Equal(t, http.StatusOK, rec.Code, body)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "production", data["kind"])
	assert.Equal(t, 3.0, data["production_logs"])
	assert.Len(t, w.logs, 3)
}

func TestImportFile_Multipart(t *testing.T) {
	w := &memWriter{}
	srv := newTestServer(w)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "deliveries_march.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(deliveriesCSV))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/ledger/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec, _ := send(t, srv, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, w.deliveries, 2)
}

func TestImportFile_Errors(t *testing.T) {
	srv := newTestServer(&memWriter{failOn: "SUP-DVO-099"})

	rec, _ := send(t, srv, httptest.NewRequest(http.MethodPost, "/api/ledger/import", bytes.NewBufferString(productionCSV)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = send(t, srv, httptest.NewRequest(http.MethodPost, "/api/ledger/import?name=stock.csv", bytes.NewBufferString(productionCSV)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = send(t, srv, httptest.NewRequest(http.MethodPost, "/api/ledger/import?name=production.csv", bytes.NewBufferString("log_id\n")))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, _ = send(t, srv, httptest.NewRequest(http.MethodPost, "/api/ledger/import?name=deliveries.csv", bytes.NewBufferString(deliveriesCSV)))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
