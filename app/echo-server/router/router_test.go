package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"marketplace/domain"
	"marketplace/internal/middleware"
	"marketplace/internal/rest"

	"github.com/labstack/echo/v4"
)

type stubReco struct{}

func (stubReco) Recommend(ctx context.Context, userID string, cart []domain.CartLine, limit int) []domain.Product {
	return []domain.Product{}
}

func (stubReco) ExplainCart(ctx context.Context, cart []domain.CartLine, limit int) ([]domain.ScoredRecommendation, error) {
	return []domain.ScoredRecommendation{}, nil
}

func (stubReco) RecordBehavior(event domain.BehaviorEvent) {}

func (stubReco) SimilarProducts(ctx context.Context, productID string, limit int) []domain.SimilarityScore {
	return []domain.SimilarityScore{}
}

func (stubReco) RefreshFromCatalog(ctx context.Context) error { return nil }

type stubResolver struct{}

func (stubResolver) GetProductsByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	return nil, nil
}

func newTestServer() *echo.Echo {
	e := echo.New()
	api := e.Group("/api/v1")
	h := rest.NewRecommendationHandler(stubReco{}, stubResolver{})

	SetRecommendationRoutes(api, h, middleware.OptionalAuth("secret"))
	SetRecommendationAdminRoutes(api, h, middleware.AuthMiddleware("secret"), middleware.AdminOnly())
	SetMetricsRoute(e)
	return e
}

func TestRoutes(t *testing.T) {
	e := newTestServer()

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodPost, "/api/v1/recommendations", `{"items":[]}`, http.StatusOK},
		{http.MethodPost, "/api/v1/recommendations/debug", `{"items":[]}`, http.StatusOK},
		{http.MethodPost, "/api/v1/recommendations/behavior", `{"product_id":"a","action":"view"}`, http.StatusCreated},
		{http.MethodGet, "/api/v1/products/a/similar", "", http.StatusOK},
		{http.MethodPost, "/api/v1/admin/recommendations/index", "", http.StatusUnauthorized},
		{http.MethodGet, "/metrics", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
