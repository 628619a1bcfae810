package service

import (
	"context"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/dukapos/dukapos-api/internal/domain/entity"
	"github.com/dukapos/dukapos-api/internal/domain/enum"
	"github.com/dukapos/dukapos-api/internal/domain/repository"
	"github.com/dukapos/dukapos-api/internal/infrastructure/cache"
	"github.com/dukapos/dukapos-api/pkg/apperror"
	"github.com/dukapos/dukapos-api/pkg/pagination"
	"github.com/dukapos/dukapos-api/pkg/utils"
)

// ProductService handles catalog operations. Single reads go through the
// product cache; any write invalidates the cached entry.
type ProductService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	cache        cache.ProductCache
	cacheTTL     time.Duration
}

// NewProductService creates a new product service
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	productCache cache.ProductCache,
	cacheTTL time.Duration,
) *ProductService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		cache:        productCache,
		cacheTTL:     cacheTTL,
	}
}

func productCacheKey(id uuid.UUID) string {
	return "product:" + id.String()
}

// CreateProductInput represents the create product input
type CreateProductInput struct {
	CategoryID        *uuid.UUID
	Name              string
	Code              string
	Price             float64
	Cost              float64
	Stock             int
	LowStockThreshold int
}

// CreateProduct creates a new product
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*entity.Product, error) {
	code := input.Code
	if code == "" {
		code = utils.GenerateProductCode()
	}

	existing, err := s.productRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Product code already exists")
	}

	if input.CategoryID != nil {
		category, err := s.categoryRepo.GetByID(ctx, *input.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, apperror.NewNotFoundError("Category")
		}
	}

	product := &entity.Product{
		CategoryID:        input.CategoryID,
		Name:              input.Name,
		Code:              code,
		Price:             int64(math.Round(input.Price * 100)),
		Cost:              int64(math.Round(input.Cost * 100)),
		Stock:             input.Stock,
		LowStockThreshold: input.LowStockThreshold,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return s.productRepo.GetByID(ctx, product.ID)
}

// GetProduct retrieves a product by ID, consulting the cache first.
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	key := productCacheKey(id)

	if cached, hit, err := s.cache.Get(ctx, key); err == nil && hit {
		return cached, nil
	} else if err != nil {
		log.Printf("Product cache read error (%s): %v", key, err)
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}

	if err := s.cache.Set(ctx, key, product, s.cacheTTL); err != nil {
		log.Printf("Product cache write error (%s): %v", key, err)
	}

	return product, nil
}

// ListProducts lists products with filtering
func (s *ProductService) ListProducts(ctx context.Context, params *repository.ProductFilterParams) (*pagination.PaginatedResult[entity.Product], error) {
	products, total, err := s.productRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(products, pag), nil
}

// UpdateProductInput represents the update product input
type UpdateProductInput struct {
	ProductID         uuid.UUID
	CategoryID        *uuid.UUID
	Name              *string
	Code              *string
	Price             *float64
	Cost              *float64
	Stock             *int
	LowStockThreshold *int
}

// UpdateProduct updates a product and drops its cached entry
func (s *ProductService) UpdateProduct(ctx context.Context, input *UpdateProductInput) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}

	if input.Code != nil && *input.Code != product.Code {
		existing, err := s.productRepo.GetByCode(ctx, *input.Code)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != product.ID {
			return nil, apperror.NewConflictError("Product code already exists")
		}
		product.Code = *input.Code
	}

	if input.CategoryID != nil {
		category, err := s.categoryRepo.GetByID(ctx, *input.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, apperror.NewNotFoundError("Category")
		}
		product.CategoryID = input.CategoryID
	}
	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Price != nil {
		product.Price = int64(math.Round(*input.Price * 100))
	}
	if input.Cost != nil {
		product.Cost = int64(math.Round(*input.Cost * 100))
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.LowStockThreshold != nil {
		product.LowStockThreshold = *input.LowStockThreshold
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, productCacheKey(product.ID)); err != nil {
		log.Printf("Product cache invalidate error (%s): %v", product.ID, err)
	}

	return s.productRepo.GetByID(ctx, product.ID)
}

// DeleteProduct deletes a product and drops its cached entry
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return apperror.NewNotFoundError("Product")
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.cache.Invalidate(ctx, productCacheKey(id)); err != nil {
		log.Printf("Product cache invalidate error (%s): %v", id, err)
	}

	return nil
}

// GetLowStockProducts returns products at or below their alert threshold
func (s *ProductService) GetLowStockProducts(ctx context.Context) ([]entity.Product, error) {
	return s.productRepo.GetLowStock(ctx)
}

// CreateCategoryInput represents the create category input
type CreateCategoryInput struct {
	Name          string
	PricingPolicy enum.PricingPolicy
	MarginPercent float64
}

// CreateCategory creates a new category
func (s *ProductService) CreateCategory(ctx context.Context, input *CreateCategoryInput) (*entity.Category, error) {
	policy := input.PricingPolicy
	if policy == "" {
		policy = enum.PricingStandard
	}
	if policy == enum.PricingFixedMargin && (input.MarginPercent < 0 || input.MarginPercent >= 100) {
		return nil, apperror.NewBadRequestError("Margin percent must be between 0 and 100")
	}

	category := &entity.Category{
		Name:          input.Name,
		PricingPolicy: policy,
		MarginPercent: input.MarginPercent,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// UpdateCategoryInput represents the update category input
type UpdateCategoryInput struct {
	CategoryID    uuid.UUID
	Name          *string
	PricingPolicy *enum.PricingPolicy
	MarginPercent *float64
}

// UpdateCategory updates a category
func (s *ProductService) UpdateCategory(ctx context.Context, input *UpdateCategoryInput) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperror.NewNotFoundError("Category")
	}

	if input.Name != nil {
		category.Name = *input.Name
	}
	if input.PricingPolicy != nil {
		category.PricingPolicy = *input.PricingPolicy
	}
	if input.MarginPercent != nil {
		if *input.MarginPercent < 0 || *input.MarginPercent >= 100 {
			return nil, apperror.NewBadRequestError("Margin percent must be between 0 and 100")
		}
		category.MarginPercent = *input.MarginPercent
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory deletes a category
func (s *ProductService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if category == nil {
		return apperror.NewNotFoundError("Category")
	}
	return s.categoryRepo.Delete(ctx, id)
}

// ListCategories lists categories, optionally filtered by name
func (s *ProductService) ListCategories(ctx context.Context, search string) ([]entity.Category, error) {
	return s.categoryRepo.List(ctx, search)
}
