package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Gunvolt24/salesops/internal/domain"
	"github.com/Gunvolt24/salesops/internal/ports"
	"github.com/Gunvolt24/salesops/pkg/metrics"
	"github.com/Gunvolt24/salesops/pkg/telemetry"
	"github.com/Gunvolt24/salesops/pkg/validate"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// OrderService — движок исполнения заказов: согласует остатки товаров
// с заказами при создании, изменении и удалении (без знаний о транспорте).
//
// Каждая операция над остатками выполняется в одной транзакции TxManager:
// либо применяются все списания/возвраты и запись заказа, либо ничего.
type OrderService struct {
	stores    ports.Stores         // чтение вне транзакции
	tx        ports.TxManager      // граница «всё или ничего»
	cache     ports.OrderCache     // кэш заказов
	log       ports.Logger         // логгер
	validator ports.InputValidator // валидатор входных DTO

	now   func() time.Time
	newID func() string
}

// Option — настройка OrderService.
type Option func(*OrderService)

// WithClock — источник времени (для тестов).
func WithClock(now func() time.Time) Option {
	return func(s *OrderService) { s.now = now }
}

// WithIDGenerator — генератор ID заказов (для тестов).
func WithIDGenerator(newID func() string) Option {
	return func(s *OrderService) { s.newID = newID }
}

// NewOrderService — DI-конструктор.
func NewOrderService(
	stores ports.Stores,
	tx ports.TxManager,
	cache ports.OrderCache,
	log ports.Logger,
	validator ports.InputValidator,
	opts ...Option,
) *OrderService {
	s := &OrderService{
		stores:    stores,
		tx:        tx,
		cache:     cache,
		log:       log,
		validator: validator,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrder — создать заказ клиента от имени продавца actor.
// Строки обрабатываются по порядку; каждая списывает остаток, только если его хватает.
// Любая ошибка откатывает все списания этого вызова.
func (s *OrderService) CreateOrder(ctx context.Context, actor string, in domain.OrderInput) (order *domain.Order, err error) {
	defer func() { s.observe(ctx, "create", err) }()
	ctx, span := telemetry.StartSpan(ctx, "OrderService.CreateOrder", attribute.String("client.id", in.ClientID))
	defer func() { telemetry.EndSpan(span, err) }()

	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(ctx, &in); err != nil {
		return nil, err
	}

	order = &domain.Order{
		ID:            in.ID,
		ClientID:      in.ClientID,
		SalespersonID: actor,
		Status:        in.Status,
		CreatedAt:     s.now(),
	}
	if order.ID == "" {
		order.ID = s.newID()
	}
	if order.Status == "" {
		order.Status = domain.StatusPending
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx ports.Stores) error {
		client, err := tx.Clients.GetByID(ctx, in.ClientID)
		if err != nil {
			return fmt.Errorf("get client: %w", err)
		}
		if client == nil {
			return domain.NewNotFound(domain.EntityClient, in.ClientID)
		}
		if err := AssertOwnsClient(actor, client); err != nil {
			return err
		}

		if in.ID != "" {
			existing, err := tx.Orders.GetByID(ctx, in.ID)
			if err != nil {
				return fmt.Errorf("get order: %w", err)
			}
			if existing != nil {
				return domain.ErrAlreadyExists
			}
		}

		items, err := s.takeStock(ctx, tx, in.Items)
		if err != nil {
			return err
		}
		order.Items = items
		order.Total = order.ComputeTotal()

		if err := tx.Orders.Create(ctx, order); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				return err
			}
			return fmt.Errorf("create order: %w", err)
		}
		order.Client = client.Summary()
		return nil
	})
	if err != nil {
		s.log.Warnf(ctx, "order create rejected client=%s actor=%s err=%v", in.ClientID, actor, err)
		return nil, err
	}

	// В кэш не пишем: запись после коммита могла бы перетереть инвалидацию
	// параллельного UpdateOrder. Кэш заполняет GetOrder при промахе.
	metrics.StockUnits.WithLabelValues("out").Add(float64(units(order.Items)))
	s.log.Infof(ctx, "order created id=%s client=%s items=%d total=%d", order.ID, order.ClientID, len(order.Items), order.Total)
	return order, nil
}

// UpdateOrder — изменить клиента, строки и/или статус заказа.
//
// Если переданы строки, в той же транзакции сначала возвращаются на склад
// количества прежних строк, затем новые строки списываются заново.
// Право на изменение: клиент (новый или текущий) закреплён за actor, и заказ создан actor.
func (s *OrderService) UpdateOrder(ctx context.Context, actor, orderID string, patch domain.OrderPatch) (order *domain.Order, err error) {
	defer func() { s.observe(ctx, "update", err) }()
	ctx, span := telemetry.StartSpan(ctx, "OrderService.UpdateOrder", attribute.String("order.id", orderID))
	defer func() { telemetry.EndSpan(span, err) }()

	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(ctx, &patch); err != nil {
		return nil, err
	}

	var restored []domain.LineItem
	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx ports.Stores) error {
		current, err := tx.Orders.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return fmt.Errorf("get order: %w", err)
		}
		if current == nil {
			return domain.NewNotFound(domain.EntityOrder, orderID)
		}

		clientID := current.ClientID
		if patch.ClientID != "" {
			clientID = patch.ClientID
		}
		client, err := tx.Clients.GetByID(ctx, clientID)
		if err != nil {
			return fmt.Errorf("get client: %w", err)
		}
		if client == nil {
			return domain.NewNotFound(domain.EntityClient, clientID)
		}
		if err := AssertOwnsClient(actor, client); err != nil {
			return err
		}
		if err := AssertOwnsOrder(actor, current); err != nil {
			return err
		}

		if len(patch.Items) > 0 {
			if err := tx.Products.Lock(ctx, productIDs(current.Items, patch.Items)); err != nil {
				return fmt.Errorf("lock products: %w", err)
			}
			restored, err = s.returnStock(ctx, tx, current.ID, current.Items)
			if err != nil {
				return err
			}
			items, err := s.takeStock(ctx, tx, patch.Items)
			if err != nil {
				return err
			}
			current.Items = items
		}

		current.ClientID = clientID
		if patch.Status != "" {
			current.Status = patch.Status
		}
		current.Total = current.ComputeTotal()

		if err := tx.Orders.Update(ctx, current); err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		current.Client = client.Summary()
		order = current
		return nil
	})
	if err != nil {
		s.log.Warnf(ctx, "order update rejected id=%s actor=%s err=%v", orderID, actor, err)
		return nil, err
	}

	if len(patch.Items) > 0 {
		metrics.StockUnits.WithLabelValues("in").Add(float64(units(restored)))
		metrics.StockUnits.WithLabelValues("out").Add(float64(units(order.Items)))
	}
	if delErr := s.cache.Delete(ctx, orderID); delErr != nil {
		s.log.Warnf(ctx, "cache.Delete failed order=%s err=%v", orderID, delErr)
	}
	s.log.Infof(ctx, "order updated id=%s status=%s items=%d total=%d", order.ID, order.Status, len(order.Items), order.Total)
	return order, nil
}

// DeleteOrder — удалить заказ и вернуть на склад все его строки.
// Строки товаров, которых уже нет в каталоге, пропускаются.
func (s *OrderService) DeleteOrder(ctx context.Context, actor, orderID string) (err error) {
	defer func() { s.observe(ctx, "delete", err) }()
	ctx, span := telemetry.StartSpan(ctx, "OrderService.DeleteOrder", attribute.String("order.id", orderID))
	defer func() { telemetry.EndSpan(span, err) }()

	if err := requireActor(actor); err != nil {
		return err
	}

	var restored []domain.LineItem
	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx ports.Stores) error {
		order, err := tx.Orders.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return fmt.Errorf("get order: %w", err)
		}
		if order == nil {
			return domain.NewNotFound(domain.EntityOrder, orderID)
		}
		if err := AssertOwnsOrder(actor, order); err != nil {
			return err
		}

		if err := tx.Products.Lock(ctx, productIDs(order.Items)); err != nil {
			return fmt.Errorf("lock products: %w", err)
		}
		restored, err = s.returnStock(ctx, tx, order.ID, order.Items)
		if err != nil {
			return err
		}

		deleted, err := tx.Orders.Delete(ctx, orderID)
		if err != nil {
			return fmt.Errorf("delete order: %w", err)
		}
		if !deleted {
			return domain.NewNotFound(domain.EntityOrder, orderID)
		}
		return nil
	})
	if err != nil {
		s.log.Warnf(ctx, "order delete rejected id=%s actor=%s err=%v", orderID, actor, err)
		return err
	}

	metrics.StockUnits.WithLabelValues("in").Add(float64(units(restored)))
	if delErr := s.cache.Delete(ctx, orderID); delErr != nil {
		s.log.Warnf(ctx, "cache.Delete failed order=%s err=%v", orderID, delErr)
	}
	s.log.Infof(ctx, "order deleted id=%s restored_lines=%d", orderID, len(restored))
	return nil
}

// GetOrder — заказ по ID: сначала из кэша, при промахе — из хранилища с записью в кэш.
// Чужой заказ — domain.ErrUnauthorized.
//
// Промах, прочитавший заказ до коммита параллельного изменения, может записать
// устаревшую копию уже после его cache.Delete; такая копия живёт не дольше TTL кэша.
func (s *OrderService) GetOrder(ctx context.Context, actor, orderID string) (*domain.Order, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	if order, found := s.cache.Get(ctx, orderID); found {
		s.log.Infof(ctx, "cache hit for order=%s", orderID)
		if err := AssertOwnsOrder(actor, order); err != nil {
			return nil, err
		}
		return order, nil
	}
	s.log.Infof(ctx, "cache miss for order=%s", orderID)

	order, err := s.stores.Orders.GetByID(ctx, orderID)
	if err != nil {
		s.log.Errorf(ctx, "repo.GetByID failed order=%s err=%v", orderID, err)
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, domain.NewNotFound(domain.EntityOrder, orderID)
	}

	if setErr := s.cache.Set(ctx, order); setErr != nil {
		s.log.Warnf(ctx, "cache.Set failed order=%s err=%v", orderID, setErr)
	}
	if err := AssertOwnsOrder(actor, order); err != nil {
		return nil, err
	}
	return order, nil
}

// ListOrders — заказы продавца, при необходимости с фильтром по статусу
// (пагинация уже валидирована на верхнем уровне).
func (s *OrderService) ListOrders(
	ctx context.Context,
	actor string,
	status domain.OrderStatus,
	limit, offset int,
) ([]*domain.Order, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown order status %q", domain.ErrInvalidInput, status)
	}
	list, err := s.stores.Orders.ListBySalesperson(ctx, actor, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return list, nil
}

// PlaceFromMessage — заказ из внешнего канала (raw JSON).
// Шаги:
//  1. строгий парсинг JSON (DisallowUnknownFields);
//  2. валидация;
//  3. CreateOrder от имени продавца из сообщения.
//
// Повторная доставка сообщения с тем же id вернёт domain.ErrAlreadyExists.
func (s *OrderService) PlaceFromMessage(ctx context.Context, raw []byte) error {
	placement, err := validate.ValidatePlacementFromJSON(ctx, s.validator, raw)
	if err != nil {
		s.log.Warnf(ctx, "invalid placement err=%v", err)
		return err
	}
	if _, err := s.CreateOrder(ctx, placement.SalespersonID, placement.OrderInput); err != nil {
		return err
	}
	return nil
}

// WarmUpCache — прогрев кэша последними N заказами.
// Если n <= 0, прогрев не выполняется (но это не ошибка).
func (s *OrderService) WarmUpCache(ctx context.Context, n int) error {
	if n <= 0 {
		s.log.Warnf(ctx, "cache warm-up skipped: n <= 0 (n=%d)", n)
		return nil
	}

	start := time.Now()
	list, err := s.stores.Orders.LastN(ctx, n)
	if err != nil {
		s.log.Errorf(ctx, "repo.LastN failed n=%d err=%v", n, err)
		return err
	}
	if warmUpErr := s.cache.WarmUp(ctx, list); warmUpErr != nil {
		s.log.Warnf(ctx, "cache.WarmUp failed err=%v", warmUpErr)
	}
	s.log.Infof(ctx, "cache warmed with %d orders in %s", len(list), time.Since(start))
	return nil
}

// takeStock — списать остатки по строкам в порядке следования и зафиксировать цену.
func (s *OrderService) takeStock(ctx context.Context, tx ports.Stores, items []domain.LineItem) ([]domain.LineItem, error) {
	if err := tx.Products.Lock(ctx, productIDs(items)); err != nil {
		return nil, fmt.Errorf("lock products: %w", err)
	}

	out := make([]domain.LineItem, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidInput)
		}
		product, err := tx.Products.DecrementStock(ctx, item.ProductID, item.Quantity)
		if err != nil {
			if isDomainErr(err) {
				return nil, err
			}
			return nil, fmt.Errorf("decrement stock product=%s: %w", item.ProductID, err)
		}
		out = append(out, domain.LineItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
		})
	}
	return out, nil
}

// returnStock — вернуть на склад количества строк заказа. Удалённые товары пропускаются.
func (s *OrderService) returnStock(ctx context.Context, tx ports.Stores, orderID string, items []domain.LineItem) ([]domain.LineItem, error) {
	restored := make([]domain.LineItem, 0, len(items))
	for _, item := range items {
		_, err := tx.Products.IncrementStock(ctx, item.ProductID, item.Quantity)
		if errors.Is(err, domain.ErrNotFound) {
			s.log.Warnf(ctx, "stock restore skipped order=%s product=%s: product no longer exists", orderID, item.ProductID)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("increment stock product=%s: %w", item.ProductID, err)
		}
		restored = append(restored, item)
	}
	return restored, nil
}

func (s *OrderService) observe(_ context.Context, op string, err error) {
	metrics.OrderOps.WithLabelValues(op, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrUnauthenticated):
		return "unauthorized"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, domain.ErrAlreadyExists):
		return "conflict"
	default:
		return "error"
	}
}

func isDomainErr(err error) bool {
	return resultLabel(err) != "error"
}

// productIDs — ID товаров из нескольких наборов строк (с повторами; порядок задаёт хранилище).
func productIDs(sets ...[]domain.LineItem) []string {
	var ids []string
	for _, items := range sets {
		for _, item := range items {
			ids = append(ids, item.ProductID)
		}
	}
	return ids
}

func units(items []domain.LineItem) int {
	n := 0
	for _, item := range items {
		n += item.Quantity
	}
	return n
}
