package ports

import (
	"context"

	"github.com/Gunvolt24/salesops/internal/domain"
)

// Соглашение для GetByID: (nil, nil), если записи нет.

// ProductRepository — каталог товаров.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	// Update — меняет имя и цену; остаток не трогает.
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Product, error)
	Search(ctx context.Context, text string, limit int) ([]*domain.Product, error)

	// Lock — блокирует строки товаров до конца транзакции (вне транзакции — no-op).
	// Реализация обязана брать блокировки в детерминированном порядке.
	Lock(ctx context.Context, ids []string) error
	// DecrementStock — атомарно «списать qty, если stock >= qty».
	// Ошибки: *domain.NotFoundError, *domain.InsufficientStockError.
	DecrementStock(ctx context.Context, id string, qty int) (*domain.Product, error)
	// IncrementStock — вернуть qty на склад. Ошибка: *domain.NotFoundError.
	IncrementStock(ctx context.Context, id string, qty int) (*domain.Product, error)
}

// ClientRepository — справочник клиентов.
type ClientRepository interface {
	// Create — domain.ErrAlreadyExists при повторном email.
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	Update(ctx context.Context, client *domain.Client) error
	Delete(ctx context.Context, id string) (bool, error)
	ListBySalesperson(ctx context.Context, salespersonID string, limit, offset int) ([]*domain.Client, error)
}

// OrderRepository — хранилище заказов.
type OrderRepository interface {
	// Create — domain.ErrAlreadyExists при повторном ID.
	Create(ctx context.Context, order *domain.Order) error
	// GetByID — заказ с подтянутой карточкой клиента.
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// GetByIDForUpdate — как GetByID, но строка заказа заблокирована до конца транзакции.
	// Первое чтение в изменении или удалении заказа.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Order, error)
	Update(ctx context.Context, order *domain.Order) error
	Delete(ctx context.Context, id string) (bool, error)
	// ListBySalesperson — заказы продавца; пустой status — все статусы.
	ListBySalesperson(ctx context.Context, salespersonID string, status domain.OrderStatus, limit, offset int) ([]*domain.Order, error)
	// TopClients/TopSellers — суммы по завершённым заказам, по убыванию.
	TopClients(ctx context.Context, limit int) ([]domain.ClientTotal, error)
	TopSellers(ctx context.Context, limit int) ([]domain.SellerTotal, error)
	// LastN — последние N заказов (для прогрева кэша).
	LastN(ctx context.Context, n int) ([]*domain.Order, error)
}

// Stores — набор репозиториев поверх одного соединения/транзакции.
type Stores struct {
	Products ProductRepository
	Clients  ClientRepository
	Orders   OrderRepository
}

// TxManager — граница «всё или ничего» для изменений остатков и заказов.
type TxManager interface {
	// WithinTx — выполняет fn в транзакции; ошибка fn откатывает все изменения.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Stores) error) error
}
