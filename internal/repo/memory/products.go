package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/Gunvolt24/salesops/internal/domain"
	"github.com/Gunvolt24/salesops/internal/ports"
)

var _ ports.ProductRepository = productRepo{}

// productRepo — каталог товаров поверх view.
type productRepo struct{ *view }

// Create — добавить товар.
func (v productRepo) Create(_ context.Context, product *domain.Product) error {
	unlock := v.lock()
	defer unlock()

	if _, ok := v.s.products[product.ID]; ok {
		return domain.ErrAlreadyExists
	}
	v.s.products[product.ID] = &productRow{p: *product, seq: v.nextSeq()}
	id := product.ID
	v.record(func() { delete(v.s.products, id) })
	return nil
}

// GetByID — товар по ID; (nil, nil), если его нет.
func (v productRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	unlock := v.lock()
	defer unlock()

	row, ok := v.s.products[id]
	if !ok {
		return nil, nil
	}
	p := row.p
	return &p, nil
}

// Update — имя и цена; остаток сохраняется.
func (v productRepo) Update(_ context.Context, product *domain.Product) error {
	unlock := v.lock()
	defer unlock()

	row, ok := v.s.products[product.ID]
	if !ok {
		return domain.NewNotFound(domain.EntityProduct, product.ID)
	}
	old := row.p
	row.p.Name = product.Name
	row.p.Price = product.Price
	v.record(func() { row.p = old })
	return nil
}

// Delete — удалить товар; false, если его не было.
func (v productRepo) Delete(_ context.Context, id string) (bool, error) {
	unlock := v.lock()
	defer unlock()

	row, ok := v.s.products[id]
	if !ok {
		return false, nil
	}
	delete(v.s.products, id)
	v.record(func() { v.s.products[id] = row })
	return true, nil
}

// List — товары в порядке добавления.
func (v productRepo) List(_ context.Context, limit, offset int) ([]*domain.Product, error) {
	unlock := v.lock()
	defer unlock()

	return page(v.sortedProducts(func(*domain.Product) bool { return true }), limit, offset), nil
}

// Search — поиск по подстроке имени без учёта регистра.
func (v productRepo) Search(_ context.Context, text string, limit int) ([]*domain.Product, error) {
	unlock := v.lock()
	defer unlock()

	needle := strings.ToLower(text)
	return page(v.sortedProducts(func(p *domain.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), needle)
	}), limit, 0), nil
}

// Lock — в памяти не нужен: транзакция и так держит общий мьютекс.
func (v productRepo) Lock(context.Context, []string) error { return nil }

// DecrementStock — списать qty, если хватает остатка.
func (v productRepo) DecrementStock(_ context.Context, id string, qty int) (*domain.Product, error) {
	unlock := v.lock()
	defer unlock()

	row, ok := v.s.products[id]
	if !ok {
		return nil, domain.NewNotFound(domain.EntityProduct, id)
	}
	if row.p.Stock < qty {
		return nil, &domain.InsufficientStockError{
			ProductID: id,
			Product:   row.p.Name,
			Requested: qty,
			Available: row.p.Stock,
		}
	}
	row.p.Stock -= qty
	v.record(func() { row.p.Stock += qty })
	p := row.p
	return &p, nil
}

// IncrementStock — вернуть qty на склад.
func (v productRepo) IncrementStock(_ context.Context, id string, qty int) (*domain.Product, error) {
	unlock := v.lock()
	defer unlock()

	row, ok := v.s.products[id]
	if !ok {
		return nil, domain.NewNotFound(domain.EntityProduct, id)
	}
	row.p.Stock += qty
	v.record(func() { row.p.Stock -= qty })
	p := row.p
	return &p, nil
}

func (v productRepo) sortedProducts(keep func(*domain.Product) bool) []*domain.Product {
	rows := make([]*productRow, 0, len(v.s.products))
	for _, row := range v.s.products {
		if keep(&row.p) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	out := make([]*domain.Product, 0, len(rows))
	for _, row := range rows {
		p := row.p
		out = append(out, &p)
	}
	return out
}
