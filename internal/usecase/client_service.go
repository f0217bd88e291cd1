package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Gunvolt24/salesops/internal/domain"
	"github.com/Gunvolt24/salesops/internal/ports"
	"github.com/google/uuid"
)

// ClientService — клиенты продавца. Клиент закрепляется за создателем навсегда;
// читать и менять его может только владелец.
type ClientService struct {
	clients   ports.ClientRepository
	log       ports.Logger
	validator ports.InputValidator
	now       func() time.Time
}

// NewClientService — конструктор ClientService.
func NewClientService(clients ports.ClientRepository, log ports.Logger, validator ports.InputValidator) *ClientService {
	return &ClientService{
		clients:   clients,
		log:       log,
		validator: validator,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateClient — новый клиент продавца actor. Повторный email — domain.ErrAlreadyExists.
func (s *ClientService) CreateClient(ctx context.Context, actor string, in domain.ClientInput) (*domain.Client, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(ctx, &in); err != nil {
		return nil, err
	}

	client := &domain.Client{
		ID:            uuid.NewString(),
		FirstName:     strings.TrimSpace(in.FirstName),
		LastName:      strings.TrimSpace(in.LastName),
		Company:       strings.TrimSpace(in.Company),
		Email:         strings.TrimSpace(in.Email),
		Phone:         strings.TrimSpace(in.Phone),
		SalespersonID: actor,
		CreatedAt:     s.now(),
	}
	if err := s.clients.Create(ctx, client); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create client: %w", err)
	}
	s.log.Infof(ctx, "client created id=%s salesperson=%s", client.ID, actor)
	return client, nil
}

// GetClient — клиент по ID (только свой).
func (s *ClientService) GetClient(ctx context.Context, actor, id string) (*domain.Client, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	client, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	if client == nil {
		return nil, domain.NewNotFound(domain.EntityClient, id)
	}
	if err := AssertOwnsClient(actor, client); err != nil {
		return nil, err
	}
	return client, nil
}

// UpdateClient — контактные данные клиента; владелец не меняется.
func (s *ClientService) UpdateClient(ctx context.Context, actor, id string, in domain.ClientInput) (*domain.Client, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(ctx, &in); err != nil {
		return nil, err
	}
	client, err := s.GetClient(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	client.FirstName = strings.TrimSpace(in.FirstName)
	client.LastName = strings.TrimSpace(in.LastName)
	client.Company = strings.TrimSpace(in.Company)
	client.Email = strings.TrimSpace(in.Email)
	client.Phone = strings.TrimSpace(in.Phone)
	if err := s.clients.Update(ctx, client); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("update client: %w", err)
	}
	s.log.Infof(ctx, "client updated id=%s", id)
	return client, nil
}

// DeleteClient — удалить своего клиента. Заказы клиента остаются у продавца.
func (s *ClientService) DeleteClient(ctx context.Context, actor, id string) error {
	if _, err := s.GetClient(ctx, actor, id); err != nil {
		return err
	}
	deleted, err := s.clients.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if !deleted {
		return domain.NewNotFound(domain.EntityClient, id)
	}
	s.log.Infof(ctx, "client deleted id=%s", id)
	return nil
}

// ListClients — клиенты продавца actor.
func (s *ClientService) ListClients(ctx context.Context, actor string, limit, offset int) ([]*domain.Client, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	list, err := s.clients.ListBySalesperson(ctx, actor, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return list, nil
}
