package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gunvolt24/salesops/internal/domain"
	"github.com/Gunvolt24/salesops/pkg/httpx"
)

// createOrder — POST /api/orders. Клиентский "id" игнорируется: его задаёт только Kafka-канал.
func (h *Handler) createOrder(c *gin.Context) {
	var in domain.OrderInput
	if !h.bindJSON(c, &in) {
		return
	}
	in.ID = ""

	ctx, cancel, actor := h.request(c)
	defer cancel()

	order, err := h.orders.CreateOrder(ctx, actor, in)
	if err != nil {
		h.writeError(c, "CreateOrder", err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// listOrders — GET /api/orders?status=&limit=&offset= (только свои заказы).
func (h *Handler) listOrders(c *gin.Context) {
	var status domain.OrderStatus
	if raw := httpx.QueryTrimmed(c, "status"); raw != "" {
		parsed, err := domain.ParseOrderStatus(raw)
		if err != nil {
			h.writeError(c, "ListOrders", err)
			return
		}
		status = parsed
	}
	limit, offset := httpx.ParseLimitOffset(c, defaultLimit, maxLimit)

	ctx, cancel, actor := h.request(c)
	defer cancel()

	orders, err := h.orders.ListOrders(ctx, actor, status, limit, offset)
	if err != nil {
		h.writeError(c, "ListOrders", err)
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) getOrder(c *gin.Context) {
	ctx, cancel, actor := h.request(c)
	defer cancel()

	order, err := h.orders.GetOrder(ctx, actor, httpx.PathID(c))
	if err != nil {
		h.writeError(c, "GetOrder", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) updateOrder(c *gin.Context) {
	var patch domain.OrderPatch
	if !h.bindJSON(c, &patch) {
		return
	}

	ctx, cancel, actor := h.request(c)
	defer cancel()

	order, err := h.orders.UpdateOrder(ctx, actor, httpx.PathID(c), patch)
	if err != nil {
		h.writeError(c, "UpdateOrder", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) deleteOrder(c *gin.Context) {
	ctx, cancel, actor := h.request(c)
	defer cancel()

	if err := h.orders.DeleteOrder(ctx, actor, httpx.PathID(c)); err != nil {
		h.writeError(c, "DeleteOrder", err)
		return
	}
	c.Status(http.StatusNoContent)
}
