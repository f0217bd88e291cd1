package ports

import "context"

// InputValidator — проверка входных DTO (теги validate).
// При нарушении возвращает ошибку, совместимую с domain.ErrInvalidInput.
type InputValidator interface {
	Validate(ctx context.Context, input any) error
}
