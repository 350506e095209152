package handlers

import (
	"net/http"

	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/domain"
	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/service"
	"github.com/gin-gonic/gin"
)

type SupplierHandler struct {
	service *service.InventoryService
}

func NewSupplierHandler(service *service.InventoryService) *SupplierHandler {
	return &SupplierHandler{service: service}
}

type updateScoresRequest struct {
	Scores []domain.ScoreUpdate `json:"scores"`
}

// ListSuppliers handles GET /api/v1/suppliers
func (h *SupplierHandler) ListSuppliers(c *gin.Context) {
	suppliers, err := h.service.ListSuppliers(c.Request.Context())
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": statusSuccess,
		"data":   nonNil(suppliers),
	})
}

// UpdateScores handles PUT /api/v1/suppliers/scores. The body carries scores
// computed by the scoring job; an empty body just returns the leaderboard.
func (h *SupplierHandler) UpdateScores(c *gin.Context) {
	var req updateScoresRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body: "+err.Error())
			return
		}
	}

	suppliers, err := h.service.UpdateScores(c.Request.Context(), req.Scores)
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  statusSuccess,
		"message": "Supplier scores updated and fetched.",
		"data":    nonNil(suppliers),
	})
}

// GetPerformance handles GET /api/v1/suppliers/performance?sort=rejection_rate&direction=desc
func (h *SupplierHandler) GetPerformance(c *gin.Context) {
	rows, err := h.service.SupplierPerformance(c.Request.Context(), c.Query("sort"), c.Query("direction"))
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": statusSuccess,
		"data":   rows,
	})
}

func nonNil(s []domain.Supplier) []domain.Supplier {
	if s == nil {
		return []domain.Supplier{}
	}
	return s
}
