package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Gunvolt24/salesops/internal/domain"
	"github.com/Gunvolt24/salesops/internal/ports"
	"github.com/google/uuid"
)

// SearchLimit — максимум товаров в результате поиска.
const SearchLimit = 10

// CatalogService — общий каталог товаров. Доступен любому аутентифицированному продавцу.
// Остаток задаётся только при создании; дальше им управляет OrderService.
type CatalogService struct {
	products  ports.ProductRepository
	log       ports.Logger
	validator ports.InputValidator
	now       func() time.Time
}

// NewCatalogService — конструктор CatalogService.
func NewCatalogService(products ports.ProductRepository, log ports.Logger, validator ports.InputValidator) *CatalogService {
	return &CatalogService{
		products:  products,
		log:       log,
		validator: validator,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateProduct — новый товар с начальным остатком.
func (s *CatalogService) CreateProduct(ctx context.Context, actor string, in domain.ProductInput) (*domain.Product, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(ctx, &in); err != nil {
		return nil, err
	}

	product := &domain.Product{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Stock:     in.Stock,
		Price:     in.Price,
		CreatedAt: s.now(),
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.log.Infof(ctx, "product created id=%s stock=%d", product.ID, product.Stock)
	return product, nil
}

// GetProduct — товар по ID.
func (s *CatalogService) GetProduct(ctx context.Context, actor, id string) (*domain.Product, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, domain.NewNotFound(domain.EntityProduct, id)
	}
	return product, nil
}

// UpdateProduct — имя и цена. Уже созданные заказы сохраняют свою цену.
func (s *CatalogService) UpdateProduct(ctx context.Context, actor, id string, in domain.ProductUpdate) (*domain.Product, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(ctx, &in); err != nil {
		return nil, err
	}

	product, err := s.GetProduct(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	product.Name = strings.TrimSpace(in.Name)
	product.Price = in.Price
	if err := s.products.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	s.log.Infof(ctx, "product updated id=%s", id)
	return product, nil
}

// DeleteProduct — удалить товар. Строки существующих заказов остаются как есть.
func (s *CatalogService) DeleteProduct(ctx context.Context, actor, id string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	deleted, err := s.products.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if !deleted {
		return domain.NewNotFound(domain.EntityProduct, id)
	}
	s.log.Infof(ctx, "product deleted id=%s", id)
	return nil
}

// ListProducts — страница каталога.
func (s *CatalogService) ListProducts(ctx context.Context, actor string, limit, offset int) ([]*domain.Product, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	list, err := s.products.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return list, nil
}

// SearchProducts — поиск по имени (не более SearchLimit результатов).
func (s *CatalogService) SearchProducts(ctx context.Context, actor, text string) ([]*domain.Product, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: search text is required", domain.ErrInvalidInput)
	}
	list, err := s.products.Search(ctx, text, SearchLimit)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return list, nil
}
