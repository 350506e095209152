package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/config"
	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/domain"
	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/metrics"
	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memLedger struct {
	totals  domain.LedgerTotals
	inflow  []domain.Observation
	outflow []domain.Observation
	err     error
}

func (m *memLedger) GetLedgerTotals(context.Context) (domain.LedgerTotals, error) {
	return m.totals, m.err
}

func (m *memLedger) ListInflowEvents(context.Context) ([]domain.Observation, error) {
	return m.inflow, m.err
}

func (m *memLedger) ListOutflowEvents(context.Context) ([]domain.Observation, error) {
	return m.outflow, m.err
}

func (m *memLedger) ListDailyOutflow(context.Context) ([]domain.Observation, error) {
	return m.outflow, m.err
}

type memSuppliers struct {
	list     []domain.Supplier
	lastSort string
}

func (m *memSuppliers) ListSuppliers(context.Context) ([]domain.Supplier, error) {
	out := make([]domain.Supplier, len(m.list))
	copy(out, m.list)
	return out, nil
}

func (m *memSuppliers) GetSupplier(context.Context, string) (*domain.Supplier, error) {
	return nil, domain.ErrSupplierNotFound
}

func (m *memSuppliers) UpdateReliabilityScores(_ context.Context, updates []domain.ScoreUpdate) error {
	next := make([]domain.Supplier, len(m.list))
	copy(next, m.list)
	for _, u := range updates {
		found := false
		for i := range next {
			if next[i].ID == u.SupplierID {
				next[i].ReliabilityScore = u.Score
				found = true
			}
		}
		if !found {
			return domain.ErrSupplierNotFound
		}
	}
	m.list = next
	return nil
}

func (m *memSuppliers) UpsertSupplier(_ context.Context, s *domain.Supplier) error {
	m.list = append(m.list, *s)
	return nil
}

func (m *memSuppliers) GetSupplierPerformance(_ context.Context, sortField, sortDirection string) ([]domain.SupplierPerformance, error) {
	m.lastSort = sortField + " " + sortDirection
	out := make([]domain.SupplierPerformance, 0, len(m.list))
	for _, s := range m.list {
		out = append(out, domain.SupplierPerformance{SupplierID: s.ID, SupplierName: s.Name, TotalDeliveries: 3})
	}
	return out, nil
}

func daily(value float64, n int) []domain.Observation {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	obs := make([]domain.Observation, n)
	for i := range obs {
		obs[i] = domain.Observation{Timestamp: start.Add(time.Duration(i) * 24 * time.Hour), Value: value}
	}
	return obs
}

func newTestRouter(ledger *memLedger, suppliers *memSuppliers) *gin.Engine {
	cfg := config.PlannerConfig{SafetyBufferKg: 2000, HorizonDays: 30, StoreTimeoutSeconds: 2, ForecastTimeoutSeconds: 5}
	svc := service.NewInventoryService(ledger, suppliers, cfg)
	return NewRouter(&Services{InventoryService: svc, Metrics: metrics.New()}, []string{"*"})
}

func do(t *testing.T, r http.Handler, method, path string, body []byte) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var out map[string]interface{}
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") != "" && rec.Code != http.StatusNotFound {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func suppliers() *memSuppliers {
	return &memSuppliers{list: []domain.Supplier{
		{ID: "SUP-DVO-001", Name: "Davao Golden Cacao Coop", ReliabilityScore: 85},
		{ID: "SUP-DVO-099", Name: "Baguio District Aggregators", ReliabilityScore: 65},
	}}
}

func TestHealth(t *testing.T) {
	r := NewRouter(nil, nil)
	rec, body := do(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestGetStock(t *testing.T) {
	r := newTestRouter(&memLedger{totals: domain.LedgerTotals{InflowKg: 5000, OutflowKg: 6200}}, suppliers())

	rec, body := do(t, r, http.MethodGet, "/api/v1/inventory/stock", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0.0, body["current_stock_kg"])
	assert.Equal(t, 2000.0, body["safety_buffer_kg"])
}

func TestSuggestOrders_CriticalPayload(t *testing.T) {
	ledger := &memLedger{totals: domain.LedgerTotals{InflowKg: 1500, OutflowKg: 1000}}
	r := newTestRouter(ledger, suppliers())

	rec, body := do(t, r, http.MethodGet, "/api/v1/orders/suggest", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "CRITICAL_ORDERING_REQUIRED", body["status"])
	assert.Equal(t, "Projected stock will fall below safety buffer of 2000kg.", body["message"])

	analysis := body["analysis"].(map[string]interface{})
	assert.Equal(t, 500.0, analysis["current_storage"])
	assert.Equal(t, 1500.0, analysis["required_purchase_kg"])

	suggestions := body["ai_suggestion"].([]interface{})
	require.Len(t, suggestions, 2)
	first := suggestions[0].(map[string]interface{})
	assert.Equal(t, "Davao Golden Cacao Coop", first["supplier"])
	assert.Equal(t, 750.0, first["suggested_order_kg"])
}

func TestSuggestOrders_LegacyPathHealthy(t *testing.T) {
	ledger := &memLedger{totals: domain.LedgerTotals{InflowKg: 10000}}
	r := newTestRouter(ledger, suppliers())

	rec, body := do(t, r, http.MethodGet, "/suggest-orders-smart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HEALTHY", body["status"])
	assert.Equal(t, "No orders needed. Projected surplus is sufficient.", body["message"])
	assert.NotContains(t, body, "ai_suggestion")
}

func TestSuggestOrders_StoreDown(t *testing.T) {
	r := newTestRouter(&memLedger{err: errors.New("dial tcp: connection refused")}, suppliers())

	rec, body := do(t, r, http.MethodGet, "/api/v1/orders/suggest", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "error", body["status"])
	assert.Contains(t, body["detail"], "connection refused")
}

func TestPredictDemand(t *testing.T) {
	r := newTestRouter(&memLedger{outflow: daily(80, 45)}, suppliers())

	rec, body := do(t, r, http.MethodGet, "/api/v1/forecast/demand?days=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", body["status"])
	assert.InDelta(t, 800.0, body["forecast_total_kg"], 10)
	assert.Equal(t, 10.0, body["horizon_days"])
}

func TestPredictDemand_Warning(t *testing.T) {
	r := newTestRouter(&memLedger{outflow: daily(80, 1)}, suppliers())

	rec, body := do(t, r, http.MethodGet, "/predict-demand", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "warning", body["status"])
	assert.Equal(t, "Not enough data to train AI yet. Add more transactions.", body["message"])
}

func TestPredictDemand_BadDays(t *testing.T) {
	r := newTestRouter(&memLedger{}, suppliers())

	for _, q := range []string{"abc", "-1", "0", "", "366"} {
		rec, body := do(t, r, http.MethodGet, "/api/v1/forecast/demand?days="+q, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
		assert.Equal(t, "error", body["status"])
	}
}

func TestPredictDemand_DefaultHorizon(t *testing.T) {
	r := newTestRouter(&memLedger{outflow: daily(80, 45)}, suppliers())

	rec, body := do(t, r, http.MethodGet, "/api/v1/forecast/demand", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 30.0, body["horizon_days"])
}

func TestListSuppliers(t *testing.T) {
	r := newTestRouter(&memLedger{}, &memSuppliers{list: []domain.Supplier{
		{ID: "a", Name: "A", ReliabilityScore: 10},
		{ID: "b", Name: "B", ReliabilityScore: 90},
	}})

	rec, body := do(t, r, http.MethodGet, "/api/v1/suppliers", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data := body["data"].([]interface{})
	require.Len(t, data, 2)
	assert.Equal(t, "b", data[0].(map[string]interface{})["supplier_id"])
}

func TestUpdateScores(t *testing.T) {
	store := suppliers()
	r := newTestRouter(&memLedger{}, store)

	payload := []byte(`{"scores": [{"supplier_id": "SUP-DVO-099", "score": 92}]}`)
	rec, body := do(t, r, http.MethodPut, "/api/v1/suppliers/scores", payload)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Supplier scores updated and fetched.", body["message"])

	data := body["data"].([]interface{})
	top := data[0].(map[string]interface{})
	assert.Equal(t, "SUP-DVO-099", top["supplier_id"])
	assert.Equal(t, 92.0, top["reliability_score"])
}

func TestUpdateScores_Errors(t *testing.T) {
	store := suppliers()
	r := newTestRouter(&memLedger{}, store)

	rec, _ := do(t, r, http.MethodPut, "/api/v1/suppliers/scores", []byte(`{"scores": [{"supplier_id": "SUP-DVO-001", "score": 150}]}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, r, http.MethodPost, "/update-scores", []byte(`{"scores": [{"supplier_id": "SUP-DVO-001", "score": 50}, {"supplier_id": "nope", "score": 50}]}`))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 85, store.list[0].ReliabilityScore)

	rec, _ = do(t, r, http.MethodPut, "/api/v1/suppliers/scores", []byte(`{not json`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSupplierPerformance(t *testing.T) {
	store := suppliers()
	r := newTestRouter(&memLedger{}, store)

	rec, body := do(t, r, http.MethodGet, "/api/v1/suppliers/performance?sort=rejection_rate&direction=asc", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "rejection_rate asc", store.lastSort)

	data := body["data"].([]interface{})
	require.Len(t, data, 2)
	assert.Equal(t, 3.0, data[0].(map[string]interface{})["total_deliveries"])
}

func TestDecisionHistory_DisabledCache(t *testing.T) {
	r := newTestRouter(&memLedger{}, suppliers())

	rec, body := do(t, r, http.MethodGet, "/api/v1/orders/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{}, body["data"])
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(&memLedger{}, suppliers())
	do(t, r, http.MethodGet, "/api/v1/inventory/stock", nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/api/v1/inventory/stock"`)
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	parsed, all := normalizeAllowedOrigins([]string{"http://a.test, http://b.test", " "})
	assert.False(t, all)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, parsed)

	_, all = normalizeAllowedOrigins([]string{"*"})
	assert.True(t, all)
}
