package usecase

import (
	"github.com/Gunvolt24/salesops/internal/domain"
)

// AssertOwnsClient — клиент закреплён за продавцом actor.
func AssertOwnsClient(actor string, client *domain.Client) error {
	if client == nil || client.SalespersonID != actor {
		return domain.ErrUnauthorized
	}
	return nil
}

// AssertOwnsOrder — заказ принадлежит продавцу actor.
// Сверяется снимок продавца в заказе, а не текущий владелец клиента.
func AssertOwnsOrder(actor string, order *domain.Order) error {
	if order == nil || order.SalespersonID != actor {
		return domain.ErrUnauthorized
	}
	return nil
}

func requireActor(actor string) error {
	if actor == "" {
		return domain.ErrUnauthenticated
	}
	return nil
}
