package memory

import (
	"context"
	"sync"

	"github.com/Gunvolt24/salesops/internal/domain"
	"github.com/Gunvolt24/salesops/internal/ports"
)

// Проверка, что Store удовлетворяет интерфейсу TxManager.
var _ ports.TxManager = (*Store)(nil)

// Store — хранилище в памяти (локальный запуск и unit-тесты).
//
// Все данные под одним мьютексом. Вне транзакции каждый вызов берёт мьютекс сам;
// WithinTx держит его на всё время fn и ведёт журнал отмены, поэтому
// изменения транзакции либо видны целиком, либо не видны вовсе.
type Store struct {
	mu sync.Mutex

	products map[string]*productRow
	clients  map[string]*clientRow
	emails   map[string]string // нормализованный email -> id клиента
	orders   map[string]*orderRow

	seq int64 // порядок вставки для стабильной сортировки
}

type productRow struct {
	p   domain.Product
	seq int64
}

type clientRow struct {
	c   domain.Client
	seq int64
}

type orderRow struct {
	o   domain.Order
	seq int64
}

// NewStore — конструктор Store.
func NewStore() *Store {
	return &Store{
		products: make(map[string]*productRow),
		clients:  make(map[string]*clientRow),
		emails:   make(map[string]string),
		orders:   make(map[string]*orderRow),
	}
}

// Stores — репозитории без транзакции (каждый вызов атомарен сам по себе).
func (s *Store) Stores() ports.Stores {
	return (&view{s: s}).stores()
}

// WithinTx — выполняет fn под общим мьютексом; при ошибке откатывает журнал.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.Stores) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v := &view{s: s, inTx: true}
	defer func() {
		if p := recover(); p != nil {
			v.rollback()
			panic(p)
		}
		if err != nil {
			v.rollback()
		}
	}()

	return fn(ctx, v.stores())
}

// view — доступ к Store: либо внутри транзакции (мьютекс уже взят), либо нет.
type view struct {
	s    *Store
	inTx bool
	undo []func()
}

func (v *view) stores() ports.Stores {
	return ports.Stores{
		Products: productRepo{v},
		Clients:  clientRepo{v},
		Orders:   orderRepo{v},
	}
}

func (v *view) lock() func() {
	if v.inTx {
		return func() {}
	}
	v.s.mu.Lock()
	return v.s.mu.Unlock
}

// record — запомнить действие отмены (только в транзакции).
func (v *view) record(fn func()) {
	if v.inTx {
		v.undo = append(v.undo, fn)
	}
}

func (v *view) rollback() {
	for i := len(v.undo) - 1; i >= 0; i-- {
		v.undo[i]()
	}
	v.undo = nil
}

func (v *view) nextSeq() int64 {
	v.s.seq++
	return v.s.seq
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
