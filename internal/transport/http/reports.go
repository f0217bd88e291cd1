package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gunvolt24/salesops/internal/domain"
)

func (h *Handler) topClients(c *gin.Context) {
	ctx, cancel, actor := h.request(c)
	defer cancel()

	list, err := h.reports.TopClients(ctx, actor)
	if err != nil {
		h.writeError(c, "TopClients", err)
		return
	}
	if list == nil {
		list = []domain.ClientTotal{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) topSellers(c *gin.Context) {
	ctx, cancel, actor := h.request(c)
	defer cancel()

	list, err := h.reports.TopSellers(ctx, actor)
	if err != nil {
		h.writeError(c, "TopSellers", err)
		return
	}
	if list == nil {
		list = []domain.SellerTotal{}
	}
	c.JSON(http.StatusOK, list)
}
