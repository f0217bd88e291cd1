package ports

import (
	"context"

	"github.com/Gunvolt24/salesops/internal/domain"
)

// OrderCache — кэш чтения заказов (LRU в процессе или Redis).
// Источник истины — хранилище: кэш обновляется после коммита транзакции и
// сбрасывается при изменении или удалении заказа. Реализации потокобезопасны и отдают копии.
type OrderCache interface {
	// Get — вернуть заказ по ID; (order, true) при попадании, (nil, false) при промахе/истечении.
	Get(ctx context.Context, orderID string) (*domain.Order, bool)

	// Set — сохранить/обновить заказ в кэше.
	Set(ctx context.Context, order *domain.Order) error

	// Delete — убрать заказ из кэша; отсутствие ключа ошибкой не считается.
	Delete(ctx context.Context, orderID string) error

	// WarmUp — загрузка последних заказов при старте; прерывается отменой ctx.
	WarmUp(ctx context.Context, orders []*domain.Order) error
}
