package memory

import (
	"context"
	"sort"

	"github.com/Gunvolt24/salesops/internal/domain"
	"github.com/Gunvolt24/salesops/internal/ports"
)

var _ ports.OrderRepository = orderRepo{}

// orderRepo — заказы поверх view.
type orderRepo struct{ *view }

// Create — сохранить заказ; повторный ID — domain.ErrAlreadyExists.
func (v orderRepo) Create(_ context.Context, order *domain.Order) error {
	unlock := v.lock()
	defer unlock()

	if _, ok := v.s.orders[order.ID]; ok {
		return domain.ErrAlreadyExists
	}
	stored := order.Clone()
	stored.Client = nil
	v.s.orders[order.ID] = &orderRow{o: *stored, seq: v.nextSeq()}
	id := order.ID
	v.record(func() { delete(v.s.orders, id) })
	return nil
}

// GetByID — заказ с карточкой клиента; (nil, nil), если его нет.
func (v orderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	unlock := v.lock()
	defer unlock()

	row, ok := v.s.orders[id]
	if !ok {
		return nil, nil
	}
	return v.withClient(row), nil
}

// GetByIDForUpdate — то же, что GetByID: транзакция уже держит мьютекс всего хранилища.
func (v orderRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Order, error) {
	return v.GetByID(ctx, id)
}

// Update — клиент, строки, статус и сумма. Продавец и дата создания не меняются.
func (v orderRepo) Update(_ context.Context, order *domain.Order) error {
	unlock := v.lock()
	defer unlock()

	row, ok := v.s.orders[order.ID]
	if !ok {
		return domain.NewNotFound(domain.EntityOrder, order.ID)
	}
	old := *row.o.Clone()
	row.o.ClientID = order.ClientID
	row.o.Items = append([]domain.LineItem(nil), order.Items...)
	row.o.Status = order.Status
	row.o.Total = order.Total
	v.record(func() { row.o = old })
	return nil
}

// Delete — удалить заказ; false, если его не было.
func (v orderRepo) Delete(_ context.Context, id string) (bool, error) {
	unlock := v.lock()
	defer unlock()

	row, ok := v.s.orders[id]
	if !ok {
		return false, nil
	}
	delete(v.s.orders, id)
	v.record(func() { v.s.orders[id] = row })
	return true, nil
}

// ListBySalesperson — заказы продавца, новые первыми.
func (v orderRepo) ListBySalesperson(
	_ context.Context,
	salespersonID string,
	status domain.OrderStatus,
	limit, offset int,
) ([]*domain.Order, error) {
	unlock := v.lock()
	defer unlock()

	rows := v.newestFirst(func(o *domain.Order) bool {
		return o.SalespersonID == salespersonID && (status == "" || o.Status == status)
	})
	return page(rows, limit, offset), nil
}

// TopClients — суммы завершённых заказов по клиентам (удалённые клиенты не учитываются).
func (v orderRepo) TopClients(_ context.Context, limit int) ([]domain.ClientTotal, error) {
	unlock := v.lock()
	defer unlock()

	sums := make(map[string]int64)
	for _, row := range v.s.orders {
		if row.o.Status == domain.StatusCompleted {
			sums[row.o.ClientID] += row.o.Total
		}
	}

	out := make([]domain.ClientTotal, 0, len(sums))
	for clientID, total := range sums {
		c, ok := v.s.clients[clientID]
		if !ok {
			continue
		}
		out = append(out, domain.ClientTotal{Client: *c.c.Summary(), Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Client.ID < out[j].Client.ID
	})
	return page(out, limit, 0), nil
}

// TopSellers — суммы завершённых заказов по продавцам.
func (v orderRepo) TopSellers(_ context.Context, limit int) ([]domain.SellerTotal, error) {
	unlock := v.lock()
	defer unlock()

	sums := make(map[string]int64)
	for _, row := range v.s.orders {
		if row.o.Status == domain.StatusCompleted {
			sums[row.o.SalespersonID] += row.o.Total
		}
	}

	out := make([]domain.SellerTotal, 0, len(sums))
	for sp, total := range sums {
		out = append(out, domain.SellerTotal{SalespersonID: sp, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].SalespersonID < out[j].SalespersonID
	})
	return page(out, limit, 0), nil
}

// LastN — последние n заказов.
func (v orderRepo) LastN(_ context.Context, n int) ([]*domain.Order, error) {
	unlock := v.lock()
	defer unlock()

	return page(v.newestFirst(func(*domain.Order) bool { return true }), n, 0), nil
}

func (v orderRepo) newestFirst(keep func(*domain.Order) bool) []*domain.Order {
	rows := make([]*orderRow, 0)
	for _, row := range v.s.orders {
		if keep(&row.o) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq > rows[j].seq })

	out := make([]*domain.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, v.withClient(row))
	}
	return out
}

func (v orderRepo) withClient(row *orderRow) *domain.Order {
	o := row.o.Clone()
	if c, ok := v.s.clients[o.ClientID]; ok {
		o.Client = c.c.Summary()
	}
	return o
}
