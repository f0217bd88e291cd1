package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gunvolt24/salesops/internal/domain"
	"github.com/Gunvolt24/salesops/pkg/httpx"
)

func (h *Handler) createProduct(c *gin.Context) {
	var in domain.ProductInput
	if !h.bindJSON(c, &in) {
		return
	}

	ctx, cancel, actor := h.request(c)
	defer cancel()

	product, err := h.catalog.CreateProduct(ctx, actor, in)
	if err != nil {
		h.writeError(c, "CreateProduct", err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handler) listProducts(c *gin.Context) {
	limit, offset := httpx.ParseLimitOffset(c, defaultLimit, maxLimit)

	ctx, cancel, actor := h.request(c)
	defer cancel()

	products, err := h.catalog.ListProducts(ctx, actor, limit, offset)
	if err != nil {
		h.writeError(c, "ListProducts", err)
		return
	}
	if products == nil {
		products = []*domain.Product{}
	}
	c.JSON(http.StatusOK, products)
}

// searchProducts — GET /api/products/search?q= (поиск по подстроке имени).
func (h *Handler) searchProducts(c *gin.Context) {
	ctx, cancel, actor := h.request(c)
	defer cancel()

	products, err := h.catalog.SearchProducts(ctx, actor, httpx.QueryTrimmed(c, "q"))
	if err != nil {
		h.writeError(c, "SearchProducts", err)
		return
	}
	if products == nil {
		products = []*domain.Product{}
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) getProduct(c *gin.Context) {
	ctx, cancel, actor := h.request(c)
	defer cancel()

	product, err := h.catalog.GetProduct(ctx, actor, httpx.PathID(c))
	if err != nil {
		h.writeError(c, "GetProduct", err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// updateProduct — PUT /api/products/:id. Меняются только имя и цена.
func (h *Handler) updateProduct(c *gin.Context) {
	var in domain.ProductUpdate
	if !h.bindJSON(c, &in) {
		return
	}

	ctx, cancel, actor := h.request(c)
	defer cancel()

	product, err := h.catalog.UpdateProduct(ctx, actor, httpx.PathID(c), in)
	if err != nil {
		h.writeError(c, "UpdateProduct", err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	ctx, cancel, actor := h.request(c)
	defer cancel()

	if err := h.catalog.DeleteProduct(ctx, actor, httpx.PathID(c)); err != nil {
		h.writeError(c, "DeleteProduct", err)
		return
	}
	c.Status(http.StatusNoContent)
}
