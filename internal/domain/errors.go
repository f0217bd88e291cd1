package domain

import (
	"errors"
	"fmt"
)

// Базовые (sentinel) ошибки домена. Проверять через errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("not authorized for this resource")
	ErrUnauthenticated   = errors.New("authentication required")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidInput      = errors.New("invalid input")
	ErrAlreadyExists     = errors.New("already exists")
)

// Entity — вид сущности для NotFoundError.
type Entity string

const (
	EntityClient  Entity = "client"
	EntityProduct Entity = "product"
	EntityOrder   Entity = "order"
)

// NotFoundError — сущность с указанным ID отсутствует.
type NotFoundError struct {
	Entity Entity
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// Is — NotFoundError совместима с ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewNotFound — конструктор NotFoundError.
func NewNotFound(entity Entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// InsufficientStockError — запрошено больше, чем есть на складе.
// Содержит данные для человекочитаемого сообщения.
type InsufficientStockError struct {
	ProductID string
	Product   string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("product %q exceeds available stock: requested %d, available %d",
		e.Product, e.Requested, e.Available)
}

// Is — InsufficientStockError совместима с ErrInsufficientStock.
func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// EntityOf — вид отсутствующей сущности (если err — NotFoundError).
func EntityOf(err error) (Entity, bool) {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf.Entity, true
	}
	return "", false
}
