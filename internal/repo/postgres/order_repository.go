package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Gunvolt24/salesops/internal/domain"
	"github.com/Gunvolt24/salesops/internal/ports"
	"github.com/jackc/pgx/v5"
)

// Проверка, что OrderRepository удовлетворяет интерфейсу OrderRepository.
var _ ports.OrderRepository = (*OrderRepository)(nil)

// OrderRepository — реализация репозитория заказов на Postgres.
// Заказ хранится в orders, строки — в order_items (порядок задаёт position).
type OrderRepository struct {
	q querier
}

// NewOrderRepository - конструктор OrderRepository.
func NewOrderRepository(q querier) *OrderRepository { return &OrderRepository{q: q} }

// Базовый SELECT заказа с подтянутой карточкой клиента (клиент мог быть удалён).
const orderSelect = `
	SELECT o.id, o.client_id, o.salesperson_id, o.status, o.total, o.created_at,
		c.id, c.first_name, c.last_name, c.email, c.phone
	FROM orders o
	LEFT JOIN clients c ON c.id = o.client_id
`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o                                  domain.Order
		cID, cFirst, cLast, cEmail, cPhone *string
	)
	if err := row.Scan(&o.ID, &o.ClientID, &o.SalespersonID, &o.Status, &o.Total, &o.CreatedAt,
		&cID, &cFirst, &cLast, &cEmail, &cPhone); err != nil {
		return nil, err
	}
	if cID != nil {
		o.Client = &domain.ClientSummary{
			ID:        *cID,
			FirstName: deref(cFirst),
			LastName:  deref(cLast),
			Email:     deref(cEmail),
			Phone:     deref(cPhone),
		}
	}
	return &o, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Create — вставить заказ и его строки. Повторный ID — domain.ErrAlreadyExists.
// Атомарность обеспечивает вызывающая транзакция (TxManager).
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if order == nil || order.ID == "" {
		return errors.New("order is empty or id is required")
	}

	_, err := r.q.Exec(ctx, `
		INSERT INTO orders (id, client_id, salesperson_id, status, total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, order.ID, order.ClientID, order.SalespersonID, order.Status, order.Total, order.CreatedAt)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	return r.copyItems(ctx, order.ID, order.Items)
}

// GetByID — получить заказ по ID. Если не нашли, возвращает (nil, nil).
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.getOne(ctx, orderSelect+` WHERE o.id = $1`, id)
}

// GetByIDForUpdate — GetByID с блокировкой строки заказа до конца транзакции.
// Конкурентное изменение или удаление того же заказа ждёт здесь и после
// ожидания читает уже зафиксированные строки (или не находит заказ).
// FOR UPDATE OF o: карточку клиента из LEFT JOIN не блокируем.
func (r *OrderRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Order, error) {
	return r.getOne(ctx, orderSelect+` WHERE o.id = $1 FOR UPDATE OF o`, id)
}

func (r *OrderRepository) getOne(ctx context.Context, query, id string) (*domain.Order, error) {
	order, err := scanOrder(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select order: %w", err)
	}

	if err := r.attachItems(ctx, []*domain.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

// Update — клиент, статус, сумма и полная замена строк.
func (r *OrderRepository) Update(ctx context.Context, order *domain.Order) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE orders SET client_id = $2, status = $3, total = $4
		WHERE id = $1
	`, order.ID, order.ClientID, order.Status, order.Total)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound(domain.EntityOrder, order.ID)
	}

	// items — replace: удаляем и вставляем список заново.
	if _, err := r.q.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, order.ID); err != nil {
		return fmt.Errorf("delete items: %w", err)
	}
	return r.copyItems(ctx, order.ID, order.Items)
}

// Delete — удалить заказ (строки удаляются каскадно); false, если его не было.
func (r *OrderRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete order: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListBySalesperson — постраничный список заказов продавца (новые первыми).
// Два запроса на страницу: базовые заказы + строки, склейка в памяти с сохранением порядка.
func (r *OrderRepository) ListBySalesperson(
	ctx context.Context,
	salespersonID string,
	status domain.OrderStatus,
	limit, offset int,
) ([]*domain.Order, error) {
	limit, offset = normalizePage(limit, offset)

	return r.list(ctx, orderSelect+`
		WHERE o.salesperson_id = $1 AND ($2::TEXT = '' OR o.status = $2::TEXT)
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT $3 OFFSET $4
	`, salespersonID, string(status), limit, offset)
}

// LastN — последние n заказов по дате создания (для прогрева кэша).
func (r *OrderRepository) LastN(ctx context.Context, n int) ([]*domain.Order, error) {
	if n <= 0 {
		return []*domain.Order{}, nil
	}
	return r.list(ctx, orderSelect+`
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT $1
	`, n)
}

// TopClients — суммы завершённых заказов по клиентам. Сортировка выполняется до LIMIT.
func (r *OrderRepository) TopClients(ctx context.Context, limit int) ([]domain.ClientTotal, error) {
	limit, _ = normalizePage(limit, 0)

	rows, err := r.q.Query(ctx, `
		SELECT c.id, c.first_name, c.last_name, c.email, c.phone, SUM(o.total)::BIGINT AS total
		FROM orders o
		JOIN clients c ON c.id = o.client_id
		WHERE o.status = 'COMPLETED'
		GROUP BY c.id, c.first_name, c.last_name, c.email, c.phone
		ORDER BY total DESC, c.id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("top clients: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ClientTotal, 0)
	for rows.Next() {
		var ct domain.ClientTotal
		if err := rows.Scan(&ct.Client.ID, &ct.Client.FirstName, &ct.Client.LastName,
			&ct.Client.Email, &ct.Client.Phone, &ct.Total); err != nil {
			return nil, fmt.Errorf("scan top client: %w", err)
		}
		out = append(out, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("top clients rows: %w", err)
	}
	return out, nil
}

// TopSellers — суммы завершённых заказов по продавцам. Сортировка выполняется до LIMIT.
func (r *OrderRepository) TopSellers(ctx context.Context, limit int) ([]domain.SellerTotal, error) {
	limit, _ = normalizePage(limit, 0)

	rows, err := r.q.Query(ctx, `
		SELECT salesperson_id, SUM(total)::BIGINT AS total
		FROM orders
		WHERE status = 'COMPLETED'
		GROUP BY salesperson_id
		ORDER BY total DESC, salesperson_id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("top sellers: %w", err)
	}
	defer rows.Close()

	out := make([]domain.SellerTotal, 0)
	for rows.Next() {
		var st domain.SellerTotal
		if err := rows.Scan(&st.SalespersonID, &st.Total); err != nil {
			return nil, fmt.Errorf("scan top seller: %w", err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("top sellers rows: %w", err)
	}
	return out, nil
}

func (r *OrderRepository) list(ctx context.Context, sql string, args ...any) ([]*domain.Order, error) {
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}

	out := make([]*domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("orders rows: %w", err)
	}

	if err := r.attachItems(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// attachItems — одним запросом подтягивает строки для набора заказов.
func (r *OrderRepository) attachItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[string]*domain.Order, len(orders))
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		o.Items = []domain.LineItem{}
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}

	rows, err := r.q.Query(ctx, `
		SELECT order_id, product_id, quantity, unit_price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position
	`, ids)
	if err != nil {
		return fmt.Errorf("select items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID string
			item    domain.LineItem
		)
		if err := rows.Scan(&orderID, &item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			return fmt.Errorf("scan item: %w", err)
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("items rows: %w", err)
	}
	return nil
}

// copyItems — пакетная вставка строк заказа через COPY.
func (r *OrderRepository) copyItems(ctx context.Context, orderID string, items []domain.LineItem) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(items))
	for i, item := range items {
		rows = append(rows, []any{orderID, i, item.ProductID, item.Quantity, item.UnitPrice})
	}

	_, err := r.q.CopyFrom(
		ctx,
		pgx.Identifier{"order_items"},
		[]string{"order_id", "position", "product_id", "quantity", "unit_price"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copy items: %w", err)
	}
	return nil
}
