package handlers

import (
	"net/http"
	"strconv"

	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/service"
	"github.com/gin-gonic/gin"
)

// maxDemandHorizonDays caps the demand window a caller may request.
const maxDemandHorizonDays = 365

type InventoryHandler struct {
	service *service.InventoryService
}

func NewInventoryHandler(service *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

// GetStock handles GET /api/v1/inventory/stock
func (h *InventoryHandler) GetStock(c *gin.Context) {
	stock, err := h.service.GetCurrentStock(c.Request.Context())
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":           statusSuccess,
		"current_stock_kg": stock,
		"safety_buffer_kg": h.service.SafetyBufferKg(),
	})
}

// PredictDemand handles GET /api/v1/forecast/demand?days=30. Without days
// the configured horizon is used.
func (h *InventoryHandler) PredictDemand(c *gin.Context) {
	var days int
	if raw, ok := c.GetQuery("days"); ok {
		var err error
		days, err = strconv.Atoi(raw)
		if err != nil || days < 1 || days > maxDemandHorizonDays {
			badRequest(c, "days must be an integer between 1 and 365")
			return
		}
	}

	result, err := h.service.PredictDemandTotal(c.Request.Context(), days)
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SuggestOrders handles GET /api/v1/orders/suggest
func (h *InventoryHandler) SuggestOrders(c *gin.Context) {
	decision, err := h.service.SuggestOrders(c.Request.Context())
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, decision)
}

// GetDecisionHistory handles GET /api/v1/orders/history?limit=20
func (h *InventoryHandler) GetDecisionHistory(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		badRequest(c, "limit must be a positive integer")
		return
	}

	items, err := h.service.RecentDecisions(c.Request.Context(), limit)
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": statusSuccess,
		"data":   items,
	})
}
