package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/Gunvolt24/salesops/internal/domain"
	"github.com/Gunvolt24/salesops/internal/ports"
)

var _ ports.ClientRepository = clientRepo{}

// clientRepo — справочник клиентов поверх view.
type clientRepo struct{ *view }

func normEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Create — добавить клиента; email уникален без учёта регистра.
func (v clientRepo) Create(_ context.Context, client *domain.Client) error {
	unlock := v.lock()
	defer unlock()

	email := normEmail(client.Email)
	if _, ok := v.s.clients[client.ID]; ok {
		return domain.ErrAlreadyExists
	}
	if _, taken := v.s.emails[email]; taken {
		return domain.ErrAlreadyExists
	}

	v.s.clients[client.ID] = &clientRow{c: *client, seq: v.nextSeq()}
	v.s.emails[email] = client.ID
	id := client.ID
	v.record(func() {
		delete(v.s.clients, id)
		delete(v.s.emails, email)
	})
	return nil
}

// GetByID — клиент по ID; (nil, nil), если его нет.
func (v clientRepo) GetByID(_ context.Context, id string) (*domain.Client, error) {
	unlock := v.lock()
	defer unlock()

	row, ok := v.s.clients[id]
	if !ok {
		return nil, nil
	}
	c := row.c
	return &c, nil
}

// Update — контактные данные; владелец и дата создания не меняются.
func (v clientRepo) Update(_ context.Context, client *domain.Client) error {
	unlock := v.lock()
	defer unlock()

	row, ok := v.s.clients[client.ID]
	if !ok {
		return domain.NewNotFound(domain.EntityClient, client.ID)
	}
	oldEmail, newEmail := normEmail(row.c.Email), normEmail(client.Email)
	if oldEmail != newEmail {
		if _, taken := v.s.emails[newEmail]; taken {
			return domain.ErrAlreadyExists
		}
	}

	old := row.c
	row.c.FirstName = client.FirstName
	row.c.LastName = client.LastName
	row.c.Company = client.Company
	row.c.Email = client.Email
	row.c.Phone = client.Phone
	delete(v.s.emails, oldEmail)
	v.s.emails[newEmail] = client.ID

	v.record(func() {
		row.c = old
		delete(v.s.emails, newEmail)
		v.s.emails[oldEmail] = old.ID
	})
	return nil
}

// Delete — удалить клиента; false, если его не было.
func (v clientRepo) Delete(_ context.Context, id string) (bool, error) {
	unlock := v.lock()
	defer unlock()

	row, ok := v.s.clients[id]
	if !ok {
		return false, nil
	}
	email := normEmail(row.c.Email)
	delete(v.s.clients, id)
	delete(v.s.emails, email)
	v.record(func() {
		v.s.clients[id] = row
		v.s.emails[email] = id
	})
	return true, nil
}

// ListBySalesperson — клиенты продавца в порядке добавления.
func (v clientRepo) ListBySalesperson(_ context.Context, salespersonID string, limit, offset int) ([]*domain.Client, error) {
	unlock := v.lock()
	defer unlock()

	rows := make([]*clientRow, 0)
	for _, row := range v.s.clients {
		if row.c.SalespersonID == salespersonID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	out := make([]*domain.Client, 0, len(rows))
	for _, row := range rows {
		c := row.c
		out = append(out, &c)
	}
	return page(out, limit, offset), nil
}
