package handlers

import (
	"errors"
	"net/http"

	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const statusSuccess = "success"

// errorResponse renders every failure as {"status": "error", "detail": ...}.
func errorResponse(c *gin.Context, err error) {
	status := statusFor(err)

	evt := log.Warn()
	if status >= http.StatusInternalServerError {
		evt = log.Error()
	}
	evt.Err(err).
		Str("path", c.Request.URL.Path).
		Int("status", status).
		Msg("request failed")

	c.JSON(status, gin.H{"status": "error", "detail": err.Error()})
}

func badRequest(c *gin.Context, detail string) {
	c.JSON(http.StatusBadRequest, gin.H{"status": "error", "detail": detail})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidScore), errors.Is(err, domain.ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSupplierNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateEvent):
		return http.StatusConflict
	case domain.IsUpstream(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
