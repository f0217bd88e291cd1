package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Gunvolt24/salesops/internal/ports"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Проверка, что TxManager удовлетворяет интерфейсу TxManager.
var _ ports.TxManager = (*TxManager)(nil)

// NewStores — репозитории поверх пула (без транзакции).
func NewStores(pool *pgxpool.Pool) ports.Stores {
	return storesOver(pool)
}

func storesOver(q querier) ports.Stores {
	return ports.Stores{
		Products: NewProductRepository(q),
		Clients:  NewClientRepository(q),
		Orders:   NewOrderRepository(q),
	}
}

// TxManager — транзакции Postgres (READ COMMITTED).
// Условные UPDATE остатков держат блокировку строки до COMMIT,
// поэтому параллельные заказы по одному товару сериализуются.
type TxManager struct {
	pool *pgxpool.Pool
}

// NewTxManager — конструктор TxManager.
func NewTxManager(pool *pgxpool.Pool) *TxManager { return &TxManager{pool: pool} }

// WithinTx — BEGIN, fn, COMMIT; любая ошибка fn — ROLLBACK.
// Сбой самого ROLLBACK добавляется к возвращаемой ошибке.
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.Stores) error) (err error) {
	transaction, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		err = withRollback(err, transaction.Rollback(ctx))
	}()

	if err := fn(ctx, storesOver(transaction)); err != nil {
		return err
	}

	// Завершаем транзакцию
	if err := transaction.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// withRollback — присоединить ошибку ROLLBACK к err.
// После COMMIT Rollback возвращает pgx.ErrTxClosed — это не ошибка.
func withRollback(err, rbErr error) error {
	if rbErr == nil || errors.Is(rbErr, pgx.ErrTxClosed) {
		return err
	}
	return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
}
