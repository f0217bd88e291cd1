package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Gunvolt24/salesops/internal/domain"
	"github.com/Gunvolt24/salesops/internal/ports"
	"github.com/jackc/pgx/v5"
)

// Проверка, что ClientRepository удовлетворяет интерфейсу ClientRepository.
var _ ports.ClientRepository = (*ClientRepository)(nil)

// ClientRepository — справочник клиентов на Postgres.
type ClientRepository struct {
	q querier
}

// NewClientRepository — конструктор ClientRepository.
func NewClientRepository(q querier) *ClientRepository { return &ClientRepository{q: q} }

const clientColumns = `id, first_name, last_name, company, email, phone, salesperson_id, created_at`

func scanClient(row pgx.Row) (*domain.Client, error) {
	var c domain.Client
	if err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Company, &c.Email, &c.Phone,
		&c.SalespersonID, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create — добавить клиента; повторный email (без учёта регистра) — domain.ErrAlreadyExists.
func (r *ClientRepository) Create(ctx context.Context, client *domain.Client) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO clients (`+clientColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, client.ID, client.FirstName, client.LastName, client.Company, client.Email, client.Phone,
		client.SalespersonID, client.CreatedAt)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

// GetByID — клиент по ID. Если не нашли, возвращает (nil, nil).
func (r *ClientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	c, err := scanClient(r.q.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select client: %w", err)
	}
	return c, nil
}

// Update — контактные данные. salesperson_id и created_at не меняются.
func (r *ClientRepository) Update(ctx context.Context, client *domain.Client) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE clients
		SET first_name = $2, last_name = $3, company = $4, email = $5, phone = $6
		WHERE id = $1
	`, client.ID, client.FirstName, client.LastName, client.Company, client.Email, client.Phone)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound(domain.EntityClient, client.ID)
	}
	return nil
}

// Delete — удалить клиента; false, если его не было.
func (r *ClientRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete client: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListBySalesperson — клиенты продавца в порядке добавления.
func (r *ClientRepository) ListBySalesperson(ctx context.Context, salespersonID string, limit, offset int) ([]*domain.Client, error) {
	limit, offset = normalizePage(limit, offset)

	rows, err := r.q.Query(ctx, `
		SELECT `+clientColumns+` FROM clients
		WHERE salesperson_id = $1
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3
	`, salespersonID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("select clients: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("clients rows: %w", err)
	}
	return out, nil
}
