package ports

import "context"

// MessageConsumer — фоновый приём размещений заказов.
// Run блокируется до отмены ctx или фатальной ошибки; Close допускает повторный вызов.
type MessageConsumer interface {
	Run(ctx context.Context) error
	Close() error
}
