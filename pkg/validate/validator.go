package validate

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/Gunvolt24/salesops/internal/domain"
	"github.com/Gunvolt24/salesops/internal/ports"
	"github.com/go-playground/validator/v10"
)

// Проверка, что Validator удовлетворяет интерфейсу InputValidator.
var _ ports.InputValidator = (*Validator)(nil)

// Validator — валидация DTO по тегам `validate` (go-playground/validator).
// Возвращает domain.ErrInvalidInput (с обёрнутой причиной) при любой проблеме.
type Validator struct {
	v *validator.Validate
}

// NewValidator — конструктор Validator.
// Имена полей в сообщениях берутся из json-тегов; регистрируется тег order_status.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Ошибка регистрации возможна только при пустом имени тега.
	_ = v.RegisterValidation("order_status", func(fl validator.FieldLevel) bool {
		return domain.OrderStatus(fl.Field().String()).Valid()
	})

	return &Validator{v: v}
}

// Validate — проверяет структуру (или указатель на неё).
func (v *Validator) Validate(ctx context.Context, input any) error {
	if input == nil {
		return fmt.Errorf("%w: input is nil", domain.ErrInvalidInput)
	}

	err := v.v.StructCtx(ctx, input)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fieldPath(fe)+": "+formatFieldError(fe))
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(msgs, "; "))
}

// fieldPath — путь поля без корневой структуры и встроенных типов: items[0].quantity.
// Поля с json-тегами названы в нижнем регистре, встроенные структуры — по имени Go-типа.
func fieldPath(fe validator.FieldError) string {
	parts := strings.Split(fe.Namespace(), ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	out := parts[:0]
	for _, p := range parts {
		if p != "" && unicode.IsUpper(rune(p[0])) && len(parts) > 1 {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, ".")
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "обязательное поле"
	case "uuid", "uuid4":
		return "должно быть UUID"
	case "email":
		return "некорректный email"
	case "min":
		return fmt.Sprintf("минимум %s", fe.Param())
	case "max":
		return fmt.Sprintf("максимум %s", fe.Param())
	case "gt":
		return fmt.Sprintf("должно быть больше %s", fe.Param())
	case "gte":
		return fmt.Sprintf("должно быть не меньше %s", fe.Param())
	case "order_status":
		return "допустимо PENDING, COMPLETED или CANCELED"
	default:
		return fmt.Sprintf("не прошло проверку %q", fe.Tag())
	}
}
