package rest

import (
	"context"
	"net/http"
	"time"

	"marketplace/domain"
	"marketplace/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type ProductService interface {
	GetAllProducts(ctx context.Context) ([]domain.Product, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	GetProductsByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type ProductHandler struct {
	productService ProductService
	validator      *validator.Validate
	timeout        time.Duration
}

func NewProductHandler(productService ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		validator:      validator.New(),
		timeout:        10 * time.Second,
	}
}

type ProductRequest struct {
	VendorID      *string  `json:"vendor_id" validate:"omitempty,uuid"`
	CategoryID    *string  `json:"category_id" validate:"omitempty,uuid"`
	Name          string   `json:"name" validate:"required"`
	Description   string   `json:"description"`
	Price         float64  `json:"price" validate:"gte=0"`
	OriginalPrice *float64 `json:"original_price" validate:"omitempty,gte=0"`
	Images        []string `json:"images" validate:"omitempty,dive,url"`
	Tags          []string `json:"tags" validate:"omitempty,dive,required"`
	Rating        float64  `json:"rating" validate:"gte=0,lte=5"`
	ReviewCount   int      `json:"reviews_count" validate:"gte=0"`
	Stock         int      `json:"stock" validate:"gte=0"`
	IsActive      *bool    `json:"is_active"`
}

func (r ProductRequest) toDomain(id string) *domain.Product {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &domain.Product{
		ID:            id,
		VendorID:      r.VendorID,
		CategoryID:    r.CategoryID,
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		OriginalPrice: r.OriginalPrice,
		Images:        r.Images,
		Tags:          r.Tags,
		Rating:        r.Rating,
		ReviewCount:   r.ReviewCount,
		Stock:         r.Stock,
		IsActive:      active,
	}
}

func isProductValidationError(err error) bool {
	switch err.Error() {
	case "product ID is required",
		"product name is required",
		"price cannot be negative",
		"stock cannot be negative",
		"rating must be between 0 and 5",
		"reviews count cannot be negative":
		return true
	}
	return false
}

func (h *ProductHandler) GetAllProducts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	products, err := h.productService.GetAllProducts(ctx)
	if err != nil {
		logger.Error("Failed to find all Product", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "successfully get all products",
		"products": products,
	})
}

func (h *ProductHandler) GetProductByID(c echo.Context) error {
	productID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	product, err := h.productService.GetProductByID(ctx, productID)
	if err != nil {
		if err.Error() == "product not found" {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		if err.Error() == "invalid product id" {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "successfully find product by id",
		"product": product,
	})
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req ProductRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate product request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	newProduct, err := h.productService.CreateProduct(ctx, req.toDomain(""))
	if err != nil {
		logger.Error("Failed to create Product", err)
		if isProductValidationError(err) {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Product successfully created",
		"product": newProduct,
	})
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	productID := c.Param("id")

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate product request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	updateProduct, err := h.productService.UpdateProduct(ctx, req.toDomain(productID))
	if err != nil {
		logger.Error("Failed to update Product", err)
		if err.Error() == "product not found" {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		if isProductValidationError(err) {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "successfully update product",
		"product": updateProduct,
	})
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	productID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.productService.DeleteProduct(ctx, productID); err != nil {
		logger.Error("Failed to delete Product", err)
		if err.Error() == "product not found" || err.Error() == "invalid product id" {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":    "product successfully deleted",
		"product_id": productID,
	})
}
