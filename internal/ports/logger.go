package ports

import "context"

// Logger — логгер сервиса. Реализация сама достаёт из ctx request_id, salesperson_id и трейс.
type Logger interface {
	Infof(ctx context.Context, format string, args ...any)
	Warnf(ctx context.Context, format string, args ...any)
	Errorf(ctx context.Context, format string, args ...any)
}
