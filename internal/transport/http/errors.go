package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gunvolt24/salesops/internal/domain"
)

// statusOf — HTTP-статус для ошибки сервиса.
func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeError — JSON-ответ {"error": "..."}; детали 5xx только в лог.
// Для нехватки остатка дополнительно отдаются товар и количества.
func (h *Handler) writeError(c *gin.Context, op string, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		h.log.Errorf(c.Request.Context(), "%s failed: %v", op, err)
		c.JSON(status, gin.H{"error": http.StatusText(status)})
		return
	}

	body := gin.H{"error": err.Error()}
	var ise *domain.InsufficientStockError
	if errors.As(err, &ise) {
		body["product_id"] = ise.ProductID
		body["requested"] = ise.Requested
		body["available"] = ise.Available
	}
	if entity, ok := domain.EntityOf(err); ok {
		body["entity"] = entity
	}
	c.JSON(status, body)
}
