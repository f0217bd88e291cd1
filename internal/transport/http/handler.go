package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gunvolt24/salesops/internal/domain"
	"github.com/Gunvolt24/salesops/internal/ports"
	"github.com/Gunvolt24/salesops/pkg/ctxmeta"
)

// OrderAPI — движок заказов, как его видит HTTP-слой.
type OrderAPI interface {
	CreateOrder(ctx context.Context, actor string, in domain.OrderInput) (*domain.Order, error)
	UpdateOrder(ctx context.Context, actor, orderID string, patch domain.OrderPatch) (*domain.Order, error)
	DeleteOrder(ctx context.Context, actor, orderID string) error
	GetOrder(ctx context.Context, actor, orderID string) (*domain.Order, error)
	ListOrders(ctx context.Context, actor string, status domain.OrderStatus, limit, offset int) ([]*domain.Order, error)
}

// CatalogAPI — каталог товаров.
type CatalogAPI interface {
	CreateProduct(ctx context.Context, actor string, in domain.ProductInput) (*domain.Product, error)
	GetProduct(ctx context.Context, actor, id string) (*domain.Product, error)
	UpdateProduct(ctx context.Context, actor, id string, in domain.ProductUpdate) (*domain.Product, error)
	DeleteProduct(ctx context.Context, actor, id string) error
	ListProducts(ctx context.Context, actor string, limit, offset int) ([]*domain.Product, error)
	SearchProducts(ctx context.Context, actor, text string) ([]*domain.Product, error)
}

// ClientAPI — справочник клиентов продавца.
type ClientAPI interface {
	CreateClient(ctx context.Context, actor string, in domain.ClientInput) (*domain.Client, error)
	GetClient(ctx context.Context, actor, id string) (*domain.Client, error)
	UpdateClient(ctx context.Context, actor, id string, in domain.ClientInput) (*domain.Client, error)
	DeleteClient(ctx context.Context, actor, id string) error
	ListClients(ctx context.Context, actor string, limit, offset int) ([]*domain.Client, error)
}

// ReportAPI — отчёты по завершённым заказам.
type ReportAPI interface {
	TopClients(ctx context.Context, actor string) ([]domain.ClientTotal, error)
	TopSellers(ctx context.Context, actor string) ([]domain.SellerTotal, error)
}

// Services — зависимости HTTP-слоя.
type Services struct {
	Orders  OrderAPI
	Catalog CatalogAPI
	Clients ClientAPI
	Reports ReportAPI
}

// Handler — HTTP-хендлеры поверх сервисов.
type Handler struct {
	orders  OrderAPI
	catalog CatalogAPI
	clients ClientAPI
	reports ReportAPI
	log     ports.Logger
	timeout time.Duration
}

const (
	defaultLimit = 20
	maxLimit     = 100
)

// NewHandler — конструктор. timeout <= 0 — без ограничения на обработчик.
func NewHandler(svc Services, log ports.Logger, timeout time.Duration) *Handler {
	return &Handler{
		orders:  svc.Orders,
		catalog: svc.Catalog,
		clients: svc.Clients,
		reports: svc.Reports,
		log:     log,
		timeout: timeout,
	}
}

// request — контекст обработчика (с таймаутом) и продавец из токена.
func (h *Handler) request(c *gin.Context) (context.Context, context.CancelFunc, string) {
	ctx := c.Request.Context()
	actor, _ := ctxmeta.SalespersonIDFromContext(ctx)

	if h.timeout <= 0 {
		return ctx, func() {}, actor
	}
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	return ctx, cancel, actor
}

// bindJSON — разбор тела; при ошибке отвечает 400 и возвращает false.
func (h *Handler) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.log.Warnf(c.Request.Context(), "bad request body path=%s err=%v", c.FullPath(), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return false
	}
	return true
}
