package usecase_test

import (
	"context"
	"testing"

	"github.com/Gunvolt24/salesops/internal/domain"
	"github.com/Gunvolt24/salesops/internal/ports/mocks"
	"github.com/Gunvolt24/salesops/internal/usecase"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func TestReportService_Limits(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockOrderRepository(ctrl)
	svc := usecase.NewReportService(repo)

	clients := []domain.ClientTotal{{Client: domain.ClientSummary{ID: "c1"}, Total: 10}}
	sellers := []domain.SellerTotal{{SalespersonID: alice, Total: 10}}
	repo.EXPECT().TopClients(gomock.Any(), usecase.TopClientsLimit).Return(clients, nil)
	repo.EXPECT().TopSellers(gomock.Any(), usecase.TopSellersLimit).Return(sellers, nil)

	gotClients, err := svc.TopClients(context.Background(), alice)
	require.NoError(t, err)
	require.Equal(t, clients, gotClients)

	gotSellers, err := svc.TopSellers(context.Background(), alice)
	require.NoError(t, err)
	require.Equal(t, sellers, gotSellers)

	_, err = svc.TopSellers(context.Background(), "")
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
}
