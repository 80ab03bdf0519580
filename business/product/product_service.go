package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"marketplace/domain"
	"marketplace/pkg/logger"

	"github.com/google/uuid"
)

// ProductRepository contract interface
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id string) (domain.Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	FindAll(ctx context.Context) ([]domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) error
}

type productService struct {
	productRepo ProductRepository
}

func NewProductService(productRepo ProductRepository) *productService {
	return &productService{
		productRepo: productRepo,
	}
}

func (s *productService) GetAllProducts(ctx context.Context) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when get all product")
		return nil, fmt.Errorf("context error: %w", err)
	}

	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		logger.Error("Failed to find all product", err)
		return nil, err
	}

	return products, nil
}

func (s *productService) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		logger.Error("invalid product id")
		return nil, errors.New("invalid product id")
	}

	if err := ctx.Err(); err != nil {
		logger.Error("context error when get product")
		return nil, fmt.Errorf("context error: %w", err)
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("failed to find product by id", err)
		return nil, err
	}

	return &product, nil
}

// GetProductsByIDs resolves ids in the order given. Unknown and duplicate ids
// are skipped.
func (s *productService) GetProductsByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	found, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		logger.Error("failed to find products by ids", err)
		return nil, err
	}

	byID := make(map[string]domain.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	out := make([]domain.Product, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, p)
	}

	return out, nil
}

func validateProduct(product *domain.Product) error {
	if strings.TrimSpace(product.Name) == "" {
		logger.Error("Invalid product data: product name is required")
		return errors.New("product name is required")
	}

	if product.Price < 0 {
		logger.Error("Invalid product data: price cannot be negative")
		return errors.New("price cannot be negative")
	}

	if product.Stock < 0 {
		logger.Error("Invalid product data: stock cannot be negative")
		return errors.New("stock cannot be negative")
	}

	if product.Rating < 0 || product.Rating > 5 {
		logger.Error("Invalid product data: rating out of range", "rating", product.Rating)
		return errors.New("rating must be between 0 and 5")
	}

	if product.ReviewCount < 0 {
		logger.Error("Invalid product data: reviews count cannot be negative")
		return errors.New("reviews count cannot be negative")
	}

	return nil
}

func (s *productService) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when create product")
		return nil, fmt.Errorf("context error: %w", err)
	}

	if err := validateProduct(product); err != nil {
		return nil, err
	}

	if product.ID == "" {
		product.ID = uuid.NewString()
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		logger.Error("failed to create new product", err)
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	logger.Info("product created successfully", "product_id", product.ID)

	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when updating product")
		return nil, fmt.Errorf("context error: %w", err)
	}

	if product.ID == "" {
		logger.Error("Invalid product data: ID is required")
		return nil, errors.New("product ID is required")
	}

	if err := validateProduct(product); err != nil {
		return nil, err
	}

	// Verify product exists
	if _, err := s.productRepo.FindByID(ctx, product.ID); err != nil {
		logger.Error("product not found", err)
		return nil, errors.New("product not found")
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		logger.Error("failed to update product", err)
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	updatedProduct, err := s.productRepo.FindByID(ctx, product.ID)
	if err != nil {
		logger.Error("failed to fetch updated product", err)
		return nil, fmt.Errorf("failed to fetch updated product: %w", err)
	}

	logger.Info("product updated success", "product_id", product.ID)

	return &updatedProduct, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		logger.Error("Invalid product id when deleting product")
		return errors.New("invalid product id")
	}

	if err := ctx.Err(); err != nil {
		logger.Error("context error when deleting product")
		return fmt.Errorf("context error: %w", err)
	}

	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		logger.Error("product not found", err)
		return errors.New("product not found")
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		logger.Error("failed to delete product", err)
		return fmt.Errorf("failed to delete product: %w", err)
	}

	logger.Info("product deleted success", "product_id", id)

	return nil
}
