package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gunvolt24/salesops/internal/domain"
	"github.com/Gunvolt24/salesops/pkg/httpx"
)

func (h *Handler) createClient(c *gin.Context) {
	var in domain.ClientInput
	if !h.bindJSON(c, &in) {
		return
	}

	ctx, cancel, actor := h.request(c)
	defer cancel()

	client, err := h.clients.CreateClient(ctx, actor, in)
	if err != nil {
		h.writeError(c, "CreateClient", err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

// listClients — GET /api/clients: клиенты текущего продавца.
func (h *Handler) listClients(c *gin.Context) {
	limit, offset := httpx.ParseLimitOffset(c, defaultLimit, maxLimit)

	ctx, cancel, actor := h.request(c)
	defer cancel()

	clients, err := h.clients.ListClients(ctx, actor, limit, offset)
	if err != nil {
		h.writeError(c, "ListClients", err)
		return
	}
	if clients == nil {
		clients = []*domain.Client{}
	}
	c.JSON(http.StatusOK, clients)
}

func (h *Handler) getClient(c *gin.Context) {
	ctx, cancel, actor := h.request(c)
	defer cancel()

	client, err := h.clients.GetClient(ctx, actor, httpx.PathID(c))
	if err != nil {
		h.writeError(c, "GetClient", err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *Handler) updateClient(c *gin.Context) {
	var in domain.ClientInput
	if !h.bindJSON(c, &in) {
		return
	}

	ctx, cancel, actor := h.request(c)
	defer cancel()

	client, err := h.clients.UpdateClient(ctx, actor, httpx.PathID(c), in)
	if err != nil {
		h.writeError(c, "UpdateClient", err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *Handler) deleteClient(c *gin.Context) {
	ctx, cancel, actor := h.request(c)
	defer cancel()

	if err := h.clients.DeleteClient(ctx, actor, httpx.PathID(c)); err != nil {
		h.writeError(c, "DeleteClient", err)
		return
	}
	c.Status(http.StatusNoContent)
}
