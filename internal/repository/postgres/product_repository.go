package postgres

import (
	"context"
	"errors"
	"fmt"
	"marketplace/domain"

	"gorm.io/gorm"
)

var ErrProductNotFound = errors.New("product not found")

type ProductRepository struct {
	DB *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{
		DB: db,
	}
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("context error: %w", err)
	}

	var product domain.Product

	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Product{}, ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("failed to find product: %w", err)
	}

	return product, nil
}

// FindByIDs returns the products found, in no particular order. Unknown ids are skipped.
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	var products []domain.Product
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to find products by ids: %w", err)
	}

	return products, nil
}

func (r *ProductRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var products []domain.Product
	err := r.DB.WithContext(ctx).Order("created_at DESC").Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}

	return products, nil
}

// FetchActiveCatalog returns every sellable product: active and in stock.
func (r *ProductRepository) FetchActiveCatalog(ctx context.Context) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var products []domain.Product
	err := r.DB.WithContext(ctx).
		Where("is_active = ?", true).
		Where("stock > ?", 0).
		Order("created_at ASC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active catalog: %w", err)
	}

	return products, nil
}

// FetchProductsInCategory returns up to limit sellable products of a category,
// best rated first, leaving out excludeID.
func (r *ProductRepository) FetchProductsInCategory(
	ctx context.Context,
	categoryID string,
	excludeID string,
	limit int,
) ([]domain.Product, error) {

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if limit <= 0 {
		limit = 3
	}

	q := r.DB.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Where("is_active = ?", true).
		Where("stock > ?", 0)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var products []domain.Product
	if err := q.Order("rating DESC").Limit(limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to query products in category: %w", err)
	}

	return products, nil
}

func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	updateData := map[string]interface{}{
		"vendor_id":      product.VendorID,
		"category_id":    product.CategoryID,
		"name":           product.Name,
		"description":    product.Description,
		"price":          product.Price,
		"original_price": product.OriginalPrice,
		"images":         product.Images,
		"tags":           product.Tags,
		"rating":         product.Rating,
		"reviews_count":  product.ReviewCount,
		"stock":          product.Stock,
		"is_active":      product.IsActive,
	}

	result := r.DB.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", product.ID).Updates(updateData)
	if result.Error != nil {
		return fmt.Errorf("failed to update product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&domain.Product{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}
