package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"marketplace/domain"
	"marketplace/pkg/logger"
	"marketplace/pkg/metrics"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

type (
	RecommendationHandler struct {
		validate       *validator.Validate
		recoService    RecommendationService
		productService CartResolver
		timeout        time.Duration
	}

	RecommendationService interface {
		Recommend(ctx context.Context, userID string, cart []domain.CartLine, limit int) []domain.Product
		ExplainCart(ctx context.Context, cart []domain.CartLine, limit int) ([]domain.ScoredRecommendation, error)
		RecordBehavior(event domain.BehaviorEvent)
		SimilarProducts(ctx context.Context, productID string, limit int) []domain.SimilarityScore
		RefreshFromCatalog(ctx context.Context) error
	}

	// CartResolver turns cart product ids into catalog products.
	CartResolver interface {
		GetProductsByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	}

	CartItemRequest struct {
		ProductID string              `json:"product_id" validate:"required"`
		Quantity  *int                `json:"quantity" validate:"omitempty,gt=0"`
		Variant   *domain.CartVariant `json:"variant"`
	}

	RecommendRequest struct {
		Items []CartItemRequest `json:"items" validate:"dive"`
		Limit int               `json:"limit" validate:"gte=0,lte=50"`
	}

	BehaviorRequest struct {
		ProductID string `json:"product_id" validate:"required"`
		Action    string `json:"action" validate:"required,oneof=view cart purchase"`
	}
)

func NewRecommendationHandler(recoService RecommendationService, productService CartResolver) *RecommendationHandler {
	return &RecommendationHandler{
		validate:       validator.New(),
		recoService:    recoService,
		productService: productService,
		timeout:        10 * time.Second,
	}
}

// WithTimeout overrides the per-request deadline.
func (h *RecommendationHandler) WithTimeout(d time.Duration) *RecommendationHandler {
	if d > 0 {
		h.timeout = d
	}
	return h
}

func userIDFrom(c echo.Context) string {
	if id, ok := c.Get("user_id").(string); ok && id != "" {
		return id
	}
	return domain.AnonymousUserID
}

func observe(route string) func(status int) {
	timer := prometheus.NewTimer(metrics.RecommendLatency.WithLabelValues(route))
	return func(status int) {
		timer.ObserveDuration()
		metrics.RecommendRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	}
}

// resolveCart loads the products behind the request items. Unknown product
// ids are dropped.
func (h *RecommendationHandler) resolveCart(ctx context.Context, items []CartItemRequest) ([]domain.CartLine, error) {
	productIDs := make([]string, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
	}

	products, err := h.productService.GetProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	cart := make([]domain.CartLine, 0, len(items))
	for _, item := range items {
		p, ok := byID[item.ProductID]
		if !ok {
			logger.Debug("Skipping unknown cart product", "product_id", item.ProductID)
			continue
		}
		quantity := 1
		if item.Quantity != nil {
			quantity = *item.Quantity
		}
		cart = append(cart, domain.CartLine{
			Product:  p,
			Quantity: quantity,
			Variant:  item.Variant,
		})
	}

	return cart, nil
}

func (h *RecommendationHandler) bindRecommendRequest(c echo.Context) (RecommendRequest, error) {
	var req RecommendRequest
	if err := c.Bind(&req); err != nil {
		return req, err
	}
	if err := h.validate.Struct(&req); err != nil {
		return req, err
	}
	return req, nil
}

// POST /api/v1/recommendations
func (h *RecommendationHandler) Recommend(c echo.Context) error {
	done := observe("recommend")

	req, err := h.bindRecommendRequest(c)
	if err != nil {
		done(http.StatusBadRequest)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	cart, err := h.resolveCart(ctx, req.Items)
	if err != nil {
		logger.Error("Failed to resolve cart products", err)
		done(http.StatusInternalServerError)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	recs := h.recoService.Recommend(ctx, userIDFrom(c), cart, req.Limit)

	done(http.StatusOK)
	return c.JSON(http.StatusOK, fres.Response.StatusOK(recs))
}

// POST /api/v1/recommendations/debug
func (h *RecommendationHandler) Debug(c echo.Context) error {
	done := observe("debug")

	req, err := h.bindRecommendRequest(c)
	if err != nil {
		done(http.StatusBadRequest)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	cart, err := h.resolveCart(ctx, req.Items)
	if err != nil {
		logger.Error("Failed to resolve cart products", err)
		done(http.StatusInternalServerError)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	recs, err := h.recoService.ExplainCart(ctx, cart, req.Limit)
	if err != nil {
		logger.Error("Failed to explain recommendations", err)
		done(http.StatusServiceUnavailable)
		return c.JSON(http.StatusServiceUnavailable, ResponseError{Message: err.Error()})
	}

	done(http.StatusOK)
	return c.JSON(http.StatusOK, fres.Response.StatusOK(recs))
}

// POST /api/v1/recommendations/behavior
func (h *RecommendationHandler) RecordBehavior(c echo.Context) error {
	var req BehaviorRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	h.recoService.RecordBehavior(domain.BehaviorEvent{
		UserID:    userIDFrom(c),
		ProductID: req.ProductID,
		Action:    domain.BehaviorAction(req.Action),
		Timestamp: time.Now(),
	})

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated("behavior recorded"))
}

// GET /api/v1/products/:id/similar?limit=10
func (h *RecommendationHandler) Similar(c echo.Context) error {
	productID := c.Param("id")
	if productID == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid product id"})
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid limit"})
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	return c.JSON(http.StatusOK, fres.Response.StatusOK(h.recoService.SimilarProducts(ctx, productID, limit)))
}

// POST /api/v1/admin/recommendations/index
func (h *RecommendationHandler) RefreshIndex(c echo.Context) error {
	done := observe("refresh_index")

	// rebuilds can outlast the request deadline on large catalogs
	ctx, cancel := context.WithTimeout(c.Request().Context(), 6*h.timeout)
	defer cancel()

	if err := h.recoService.RefreshFromCatalog(ctx); err != nil {
		logger.Error("Failed to refresh similarity index", err)
		done(http.StatusInternalServerError)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	done(http.StatusOK)
	return c.JSON(http.StatusOK, fres.Response.StatusOK("similarity index refreshed"))
}
