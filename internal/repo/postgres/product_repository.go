package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Gunvolt24/salesops/internal/domain"
	"github.com/Gunvolt24/salesops/internal/ports"
	"github.com/jackc/pgx/v5"
)

// Проверка, что ProductRepository удовлетворяет интерфейсу ProductRepository.
var _ ports.ProductRepository = (*ProductRepository)(nil)

// ProductRepository — каталог товаров на Postgres.
type ProductRepository struct {
	q querier
}

// NewProductRepository — конструктор ProductRepository (пул или транзакция).
func NewProductRepository(q querier) *ProductRepository { return &ProductRepository{q: q} }

const productColumns = `id, name, stock, price, created_at`

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Stock, &p.Price, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create — добавить товар.
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO products (id, name, stock, price, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, product.ID, product.Name, product.Stock, product.Price, product.CreatedAt)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID — товар по ID. Если не нашли, возвращает (nil, nil).
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select product: %w", err)
	}
	return p, nil
}

// Update — имя и цена.
func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	tag, err := r.q.Exec(ctx, `UPDATE products SET name = $2, price = $3 WHERE id = $1`,
		product.ID, product.Name, product.Price)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound(domain.EntityProduct, product.ID)
	}
	return nil
}

// Delete — удалить товар; false, если его не было.
func (r *ProductRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete product: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// List — страница каталога в порядке добавления.
func (r *ProductRepository) List(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	limit, offset = normalizePage(limit, offset)
	return r.query(ctx, `
		SELECT `+productColumns+` FROM products
		ORDER BY created_at, id
		LIMIT $1 OFFSET $2
	`, limit, offset)
}

// Search — поиск по подстроке имени без учёта регистра.
func (r *ProductRepository) Search(ctx context.Context, text string, limit int) ([]*domain.Product, error) {
	limit, _ = normalizePage(limit, 0)
	return r.query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY created_at, id
		LIMIT $2
	`, escapeLike(text), limit)
}

// Lock — SELECT ... FOR UPDATE по отсортированным уникальным ID.
// Единый порядок захвата исключает взаимные блокировки между заказами.
func (r *ProductRepository) Lock(ctx context.Context, ids []string) error {
	ids = uniqueSorted(ids)
	if len(ids) == 0 {
		return nil
	}
	rows, err := r.q.Query(ctx, `SELECT id FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE`, ids)
	if err != nil {
		return fmt.Errorf("lock products: %w", err)
	}
	rows.Close()
	return rows.Err()
}

// DecrementStock — условное списание одним UPDATE: строка меняется, только если stock >= qty.
// Если строка не изменилась, повторным чтением различаем «нет товара» и «не хватает».
func (r *ProductRepository) DecrementStock(ctx context.Context, id string, qty int) (*domain.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `
		UPDATE products SET stock = stock - $2
		WHERE id = $1 AND stock >= $2
		RETURNING `+productColumns, id, qty))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("decrement stock: %w", err)
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.NewNotFound(domain.EntityProduct, id)
	}
	return nil, &domain.InsufficientStockError{
		ProductID: id,
		Product:   current.Name,
		Requested: qty,
		Available: current.Stock,
	}
}

// IncrementStock — вернуть qty на склад.
func (r *ProductRepository) IncrementStock(ctx context.Context, id string, qty int) (*domain.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `
		UPDATE products SET stock = stock + $2
		WHERE id = $1
		RETURNING `+productColumns, id, qty))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NewNotFound(domain.EntityProduct, id)
	}
	if err != nil {
		return nil, fmt.Errorf("increment stock: %w", err)
	}
	return p, nil
}

func (r *ProductRepository) query(ctx context.Context, sql string, args ...any) ([]*domain.Product, error) {
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("products rows: %w", err)
	}
	return out, nil
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
