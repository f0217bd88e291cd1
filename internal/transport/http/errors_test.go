package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Gunvolt24/salesops/internal/domain"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.NewNotFound(domain.EntityOrder, "o1"), http.StatusNotFound},
		{fmt.Errorf("get: %w", domain.ErrUnauthorized), http.StatusForbidden},
		{domain.ErrUnauthenticated, http.StatusUnauthorized},
		{&domain.InsufficientStockError{ProductID: "p1", Requested: 2}, http.StatusConflict},
		{domain.ErrAlreadyExists, http.StatusConflict},
		{fmt.Errorf("%w: email", domain.ErrInvalidInput), http.StatusUnprocessableEntity},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("pg: connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, statusOf(tt.err), tt.err.Error())
	}
}
