package usecase

import (
	"context"
	"fmt"

	"github.com/Gunvolt24/salesops/internal/domain"
	"github.com/Gunvolt24/salesops/internal/ports"
)

const (
	TopClientsLimit = 10
	TopSellersLimit = 3
)

// ReportService — сводки по завершённым заказам.
type ReportService struct {
	orders ports.OrderRepository
}

// NewReportService — конструктор ReportService.
func NewReportService(orders ports.OrderRepository) *ReportService {
	return &ReportService{orders: orders}
}

// TopClients — клиенты с наибольшей суммой завершённых заказов.
func (s *ReportService) TopClients(ctx context.Context, actor string) ([]domain.ClientTotal, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	list, err := s.orders.TopClients(ctx, TopClientsLimit)
	if err != nil {
		return nil, fmt.Errorf("top clients: %w", err)
	}
	return list, nil
}

// TopSellers — продавцы с наибольшей суммой завершённых заказов.
func (s *ReportService) TopSellers(ctx context.Context, actor string) ([]domain.SellerTotal, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	list, err := s.orders.TopSellers(ctx, TopSellersLimit)
	if err != nil {
		return nil, fmt.Errorf("top sellers: %w", err)
	}
	return list, nil
}
