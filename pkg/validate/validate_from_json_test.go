package validate

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/Gunvolt24/salesops/internal/domain"
)

func TestValidatePlacementFromJSON_OK(t *testing.T) {
	ctx := context.Background()
	validator := NewValidator()

	validJSON := minimalPlacementJSON("sp-1", "client-1", 2)

	placement, err := ValidatePlacementFromJSON(ctx, validator, []byte(validJSON))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if placement.SalespersonID != "sp-1" || placement.ClientID != "client-1" {
		t.Fatalf("unexpected placement: %+v", placement)
	}
	if len(placement.Items) != 1 || placement.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items: %+v", placement.Items)
	}
}

func TestValidatePlacementFromJSON_UnknownField(t *testing.T) {
	ctx := context.Background()
	validator := NewValidator()

	raw := `{"unknown":"x",` + minimalPlacementJSON("sp-1", "client-1", 1)[1:]
	_, err := ValidatePlacementFromJSON(ctx, validator, []byte(raw))
	if err == nil || !strings.Contains(err.Error(), "invalid json") {
		t.Fatalf("expected invalid json error, got: %v", err)
	}
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got: %v", err)
	}
}

func TestValidatePlacementFromJSON_TrailingData(t *testing.T) {
	ctx := context.Background()
	validator := NewValidator()

	raw := minimalPlacementJSON("sp-1", "client-1", 1) + "{}"
	_, err := ValidatePlacementFromJSON(ctx, validator, []byte(raw))
	if err == nil || !strings.Contains(err.Error(), "trailing data") {
		t.Fatalf("expected trailing data error, got: %v", err)
	}
}

func TestValidatePlacementFromJSON_DomainError(t *testing.T) {
	ctx := context.Background()
	validator := NewValidator()

	// Не валиден: нулевое количество
	raw := minimalPlacementJSON("sp-1", "client-1", 0)
	_, err := ValidatePlacementFromJSON(ctx, validator, []byte(raw))
	if err == nil || !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected domain validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "items[0].quantity") {
		t.Fatalf("error must point to the field, got: %v", err)
	}
}

func TestValidatePlacementFromJSON_MissingSalesperson(t *testing.T) {
	ctx := context.Background()
	validator := NewValidator()

	raw := minimalPlacementJSON("", "client-1", 1)
	_, err := ValidatePlacementFromJSON(ctx, validator, []byte(raw))
	if err == nil || !strings.Contains(err.Error(), "salesperson_id") {
		t.Fatalf("expected salesperson_id error, got: %v", err)
	}
}

// ---- helpers ----

func minimalPlacementJSON(salespersonID, clientID string, qty int) string {
	return `{
  "salesperson_id": "` + salespersonID + `",
  "client_id": "` + clientID + `",
  "items": [{"product_id": "p-1", "quantity": ` + itoa(qty) + `}]
}`
}

func itoa(n int) string { return strconv.Itoa(n) }
