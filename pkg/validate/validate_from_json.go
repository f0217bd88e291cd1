package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Gunvolt24/salesops/internal/domain"
	"github.com/Gunvolt24/salesops/internal/ports"
)

// DecodeStrict — строгий разбор одного JSON-объекта:
// неизвестные поля и данные после объекта — ошибка domain.ErrInvalidInput.
func DecodeStrict(raw []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid json: %v", domain.ErrInvalidInput, err)
	}
	// гарантируем отсутствие данных после объекта
	if err := dec.Decode(new(struct{})); err != io.EOF {
		return fmt.Errorf("%w: invalid json: trailing data", domain.ErrInvalidInput)
	}
	return nil
}

// ValidatePlacementFromJSON — разбор и валидация заказа из внешнего канала.
func ValidatePlacementFromJSON(ctx context.Context, validator ports.InputValidator, raw []byte) (*domain.Placement, error) {
	var placement domain.Placement
	if err := DecodeStrict(raw, &placement); err != nil {
		return nil, err
	}
	if err := validator.Validate(ctx, &placement); err != nil {
		return nil, err
	}
	return &placement, nil
}
