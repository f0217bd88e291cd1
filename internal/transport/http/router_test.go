package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	cachemem "github.com/Gunvolt24/salesops/internal/cache/memory"
	"github.com/Gunvolt24/salesops/internal/domain"
	"github.com/Gunvolt24/salesops/internal/repo/memory"
	rest "github.com/Gunvolt24/salesops/internal/transport/http"
	"github.com/Gunvolt24/salesops/internal/usecase"
	"github.com/Gunvolt24/salesops/pkg/auth"
	"github.com/Gunvolt24/salesops/pkg/validate"
)

const jwtSecret = "router-test-secret"

type noopLogger struct{}

func (noopLogger) Infof(context.Context, string, ...any)  {}
func (noopLogger) Warnf(context.Context, string, ...any)  {}
func (noopLogger) Errorf(context.Context, string, ...any) {}

// api — роутер поверх настоящих сервисов и хранилища в памяти.
type api struct {
	t      *testing.T
	router *gin.Engine
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	stores := store.Stores()
	log := noopLogger{}
	v := validate.NewValidator()

	services := rest.Services{
		Orders:  usecase.NewOrderService(stores, store, cachemem.NewLRUCacheTTL(100, time.Minute), log, v),
		Catalog: usecase.NewCatalogService(stores.Products, log, v),
		Clients: usecase.NewClientService(stores.Clients, log, v),
		Reports: usecase.NewReportService(stores.Orders),
	}
	verifier, err := auth.NewVerifier(jwtSecret)
	require.NoError(t, err)

	h := rest.NewHandler(services, log, 2*time.Second)
	return &api{t: t, router: rest.NewRouter(h, verifier, "")}
}

func token(t *testing.T, salespersonID string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": salespersonID}).SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return s
}

// do — запрос от имени продавца as ("" — без токена). Ответ декодируется в out, если он не nil.
func (a *api) do(as, method, path string, body any, out any) int {
	a.t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if as != "" {
		req.Header.Set("Authorization", "Bearer "+token(a.t, as))
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	if out != nil && w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), out), "body=%s", w.Body.String())
	}
	return w.Code
}

func (a *api) product(as, name string, stock int, price int64) domain.Product {
	a.t.Helper()
	var p domain.Product
	code := a.do(as, http.MethodPost, "/api/products", domain.ProductInput{Name: name, Stock: stock, Price: price}, &p)
	require.Equal(a.t, http.StatusCreated, code)
	return p
}

func (a *api) client(as, email string) domain.Client {
	a.t.Helper()
	var c domain.Client
	code := a.do(as, http.MethodPost, "/api/clients", domain.ClientInput{
		FirstName: "Ada", LastName: "Lovelace", Company: "Engines Ltd", Email: email,
	}, &c)
	require.Equal(a.t, http.StatusCreated, code)
	return c
}

func (a *api) stock(as, productID string) int {
	a.t.Helper()
	var p domain.Product
	require.Equal(a.t, http.StatusOK, a.do(as, http.MethodGet, "/api/products/"+productID, nil, &p))
	return p.Stock
}

func TestRouter_ServiceEndpoints(t *testing.T) {
	a := newAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/ping", http.NoBody)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "pong", w.Body.String())
	require.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var body map[string]string
	require.Equal(t, http.StatusNotFound, a.do("alice", http.MethodGet, "/nope", nil, &body))
	require.Equal(t, "route not found", body["error"])

	require.Equal(t, http.StatusMethodNotAllowed, a.do("alice", http.MethodPatch, "/ping", nil, &body))
	require.Equal(t, "method not allowed", body["error"])
}

func TestRouter_RequiresBearerToken(t *testing.T) {
	a := newAPI(t)

	for _, path := range []string{"/api/orders", "/api/products", "/api/clients", "/api/reports/top-sellers"} {
		require.Equal(t, http.StatusUnauthorized, a.do("", http.MethodGet, path, nil, nil), path)
	}
}

func TestRouter_OrderLifecycle(t *testing.T) {
	a := newAPI(t)
	p := a.product("alice", "Widget", 10, 150)
	c := a.client("alice", "ada@example.com")

	// создание: остаток списан, цена зафиксирована, клиент подтянут
	var order domain.Order
	code := a.do("alice", http.MethodPost, "/api/orders", domain.OrderInput{
		ClientID: c.ID,
		Items:    []domain.LineItem{{ProductID: p.ID, Quantity: 4}},
	}, &order)
	require.Equal(t, http.StatusCreated, code)
	require.Equal(t, domain.StatusPending, order.Status)
	require.Equal(t, "alice", order.SalespersonID)
	require.Equal(t, int64(600), order.Total)
	require.NotNil(t, order.Client)
	require.Equal(t, "ada@example.com", order.Client.Email)
	require.Equal(t, 6, a.stock("alice", p.ID))

	// чтение: своё — 200, чужое — 403
	var got domain.Order
	require.Equal(t, http.StatusOK, a.do("alice", http.MethodGet, "/api/orders/"+order.ID, nil, &got))
	require.Equal(t, order.ID, got.ID)
	require.Equal(t, http.StatusForbidden, a.do("bob", http.MethodGet, "/api/orders/"+order.ID, nil, nil))

	// изменение строк: прежние 4 вернулись, новые 9 списаны
	var updated domain.Order
	code = a.do("alice", http.MethodPut, "/api/orders/"+order.ID, domain.OrderPatch{
		Items:  []domain.LineItem{{ProductID: p.ID, Quantity: 9}},
		Status: domain.StatusCompleted,
	}, &updated)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, domain.StatusCompleted, updated.Status)
	require.Equal(t, 1, a.stock("alice", p.ID))

	// чужой продавец не может ни менять, ни удалять
	require.Equal(t, http.StatusForbidden, a.do("bob", http.MethodPut, "/api/orders/"+order.ID, domain.OrderPatch{Status: domain.StatusCanceled}, nil))
	require.Equal(t, http.StatusForbidden, a.do("bob", http.MethodDelete, "/api/orders/"+order.ID, nil, nil))

	// удаление возвращает остаток
	require.Equal(t, http.StatusNoContent, a.do("alice", http.MethodDelete, "/api/orders/"+order.ID, nil, nil))
	require.Equal(t, 10, a.stock("alice", p.ID))
	require.Equal(t, http.StatusNotFound, a.do("alice", http.MethodGet, "/api/orders/"+order.ID, nil, nil))
}

func TestRouter_CreateOrder_Rejections(t *testing.T) {
	a := newAPI(t)
	p := a.product("alice", "Gadget", 2, 100)
	c := a.client("alice", "grace@example.com")

	// нехватка остатка — 409 с деталями, остаток не тронут
	var body map[string]any
	code := a.do("alice", http.MethodPost, "/api/orders", domain.OrderInput{
		ClientID: c.ID,
		Items:    []domain.LineItem{{ProductID: p.ID, Quantity: 1}, {ProductID: p.ID, Quantity: 5}},
	}, &body)
	require.Equal(t, http.StatusConflict, code)
	require.Equal(t, p.ID, body["product_id"])
	require.EqualValues(t, 5, body["requested"])
	require.EqualValues(t, 1, body["available"])
	require.Equal(t, 2, a.stock("alice", p.ID))

	tests := []struct {
		name string
		as   string
		body any
		want int
	}{
		{"unknown client", "alice", domain.OrderInput{ClientID: "missing", Items: []domain.LineItem{{ProductID: p.ID, Quantity: 1}}}, http.StatusNotFound},
		{"unknown product", "alice", domain.OrderInput{ClientID: c.ID, Items: []domain.LineItem{{ProductID: "missing", Quantity: 1}}}, http.StatusNotFound},
		{"foreign client", "bob", domain.OrderInput{ClientID: c.ID, Items: []domain.LineItem{{ProductID: p.ID, Quantity: 1}}}, http.StatusForbidden},
		{"no items", "alice", domain.OrderInput{ClientID: c.ID}, http.StatusUnprocessableEntity},
		{"zero quantity", "alice", domain.OrderInput{ClientID: c.ID, Items: []domain.LineItem{{ProductID: p.ID, Quantity: 0}}}, http.StatusUnprocessableEntity},
		{"broken json", "alice", `{"client_id":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, a.do(tt.as, http.MethodPost, "/api/orders", tt.body, nil))
		})
	}
	require.Equal(t, 2, a.stock("alice", p.ID))
}

func TestRouter_ListOrders_StatusFilter(t *testing.T) {
	a := newAPI(t)
	p := a.product("alice", "Bolt", 100, 10)
	c := a.client("alice", "linus@example.com")

	for _, st := range []domain.OrderStatus{domain.StatusPending, domain.StatusCompleted, domain.StatusCompleted} {
		code := a.do("alice", http.MethodPost, "/api/orders", domain.OrderInput{
			ClientID: c.ID, Status: st, Items: []domain.LineItem{{ProductID: p.ID, Quantity: 1}},
		}, nil)
		require.Equal(t, http.StatusCreated, code)
	}

	var all, completed, none []domain.Order
	require.Equal(t, http.StatusOK, a.do("alice", http.MethodGet, "/api/orders", nil, &all))
	require.Len(t, all, 3)
	require.Equal(t, http.StatusOK, a.do("alice", http.MethodGet, "/api/orders?status=completed&limit=10", nil, &completed))
	require.Len(t, completed, 2)
	require.Equal(t, http.StatusOK, a.do("bob", http.MethodGet, "/api/orders", nil, &none))
	require.Empty(t, none)

	require.Equal(t, http.StatusUnprocessableEntity, a.do("alice", http.MethodGet, "/api/orders?status=shipped", nil, nil))
}

func TestRouter_Products(t *testing.T) {
	a := newAPI(t)
	p := a.product("alice", "Red Widget", 5, 100)
	a.product("bob", "Blue Widget", 5, 100)
	a.product("bob", "Gizmo", 5, 100)

	var found []domain.Product
	require.Equal(t, http.StatusOK, a.do("alice", http.MethodGet, "/api/products/search?q=widget", nil, &found))
	require.Len(t, found, 2)
	require.Equal(t, http.StatusUnprocessableEntity, a.do("alice", http.MethodGet, "/api/products/search?q=", nil, nil))

	// PUT меняет имя и цену, но не остаток
	var updated domain.Product
	code := a.do("bob", http.MethodPut, "/api/products/"+p.ID, map[string]any{"name": "Crimson Widget", "price": 120, "stock": 999}, &updated)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Crimson Widget", updated.Name)
	require.Equal(t, int64(120), updated.Price)
	require.Equal(t, 5, updated.Stock)

	var page []domain.Product
	require.Equal(t, http.StatusOK, a.do("alice", http.MethodGet, "/api/products?limit=2", nil, &page))
	require.Len(t, page, 2)

	require.Equal(t, http.StatusUnprocessableEntity, a.do("alice", http.MethodPost, "/api/products", domain.ProductInput{Name: "", Stock: -1}, nil))
	require.Equal(t, http.StatusNoContent, a.do("alice", http.MethodDelete, "/api/products/"+p.ID, nil, nil))
	require.Equal(t, http.StatusNotFound, a.do("alice", http.MethodGet, "/api/products/"+p.ID, nil, nil))
}

func TestRouter_Clients_OwnerOnly(t *testing.T) {
	a := newAPI(t)
	c := a.client("alice", "ada@example.com")

	require.Equal(t, http.StatusConflict, a.do("bob", http.MethodPost, "/api/clients", domain.ClientInput{
		FirstName: "A", LastName: "L", Company: "X", Email: "ADA@example.com",
	}, nil))
	require.Equal(t, http.StatusUnprocessableEntity, a.do("alice", http.MethodPost, "/api/clients", domain.ClientInput{
		FirstName: "A", LastName: "L", Company: "X", Email: "not-an-email",
	}, nil))

	require.Equal(t, http.StatusForbidden, a.do("bob", http.MethodGet, "/api/clients/"+c.ID, nil, nil))

	var own, foreign []domain.Client
	require.Equal(t, http.StatusOK, a.do("alice", http.MethodGet, "/api/clients", nil, &own))
	require.Len(t, own, 1)
	require.Equal(t, http.StatusOK, a.do("bob", http.MethodGet, "/api/clients", nil, &foreign))
	require.Empty(t, foreign)

	var updated domain.Client
	require.Equal(t, http.StatusOK, a.do("alice", http.MethodPut, "/api/clients/"+c.ID, domain.ClientInput{
		FirstName: "Ada", LastName: "King", Company: "Engines Ltd", Email: "ada@example.com",
	}, &updated))
	require.Equal(t, "King", updated.LastName)
	require.Equal(t, "alice", updated.SalespersonID)

	require.Equal(t, http.StatusForbidden, a.do("bob", http.MethodDelete, "/api/clients/"+c.ID, nil, nil))
	require.Equal(t, http.StatusNoContent, a.do("alice", http.MethodDelete, "/api/clients/"+c.ID, nil, nil))
	require.Equal(t, http.StatusNotFound, a.do("alice", http.MethodGet, "/api/clients/"+c.ID, nil, nil))
}

func TestRouter_Reports(t *testing.T) {
	a := newAPI(t)
	p := a.product("alice", "Anvil", 100, 1000)
	ca := a.client("alice", "a@example.com")
	cb := a.client("bob", "b@example.com")

	place := func(as, clientID string, qty int, st domain.OrderStatus) {
		t.Helper()
		code := a.do(as, http.MethodPost, "/api/orders", domain.OrderInput{
			ClientID: clientID, Status: st, Items: []domain.LineItem{{ProductID: p.ID, Quantity: qty}},
		}, nil)
		require.Equal(t, http.StatusCreated, code)
	}
	place("alice", ca.ID, 2, domain.StatusCompleted)
	place("bob", cb.ID, 5, domain.StatusCompleted)
	place("bob", cb.ID, 50, domain.StatusPending) // не учитывается

	var clients []domain.ClientTotal
	require.Equal(t, http.StatusOK, a.do("alice", http.MethodGet, "/api/reports/top-clients", nil, &clients))
	require.Len(t, clients, 2)
	require.Equal(t, cb.ID, clients[0].Client.ID)
	require.Equal(t, int64(5000), clients[0].Total)

	var sellers []domain.SellerTotal
	require.Equal(t, http.StatusOK, a.do("alice", http.MethodGet, "/api/reports/top-sellers", nil, &sellers))
	require.Equal(t, []domain.SellerTotal{{SalespersonID: "bob", Total: 5000}, {SalespersonID: "alice", Total: 2000}}, sellers)
}
