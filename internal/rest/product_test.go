package rest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"marketplace/domain"

	"github.com/labstack/echo/v4"
)

type fakeProductService struct {
	created   *domain.Product
	updated   *domain.Product
	createErr error
	updateErr error
	deleteErr error
	getErr    error
}

func (f *fakeProductService) GetAllProducts(ctx context.Context) ([]domain.Product, error) {
	return []domain.Product{{ID: "a", Name: "A"}}, nil
}

func (f *fakeProductService) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &domain.Product{ID: id, Name: "A"}, nil
}

func (f *fakeProductService) GetProductsByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	return nil, nil
}

func (f *fakeProductService) CreateProduct(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	p.ID = "new-id"
	f.created = p
	return p, nil
}

func (f *fakeProductService) UpdateProduct(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updated = p
	return p, nil
}

func (f *fakeProductService) DeleteProduct(ctx context.Context, id string) error {
	return f.deleteErr
}

func TestProductHandler_CreateProduct(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		svc      *fakeProductService
		wantCode int
	}{
		{
			name:     "valid",
			body:     `{"name":"Mug","price":12.5,"tags":["kitchen"],"rating":4,"stock":3}`,
			svc:      &fakeProductService{},
			wantCode: http.StatusCreated,
		},
		{
			name:     "missing name",
			body:     `{"price":12.5}`,
			svc:      &fakeProductService{},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "rating out of range",
			body:     `{"name":"Mug","rating":7}`,
			svc:      &fakeProductService{},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "category must be uuid",
			body:     `{"name":"Mug","category_id":"kitchen"}`,
			svc:      &fakeProductService{},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "service validation error",
			body:     `{"name":"Mug"}`,
			svc:      &fakeProductService{createErr: errors.New("price cannot be negative")},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "storage failure",
			body:     `{"name":"Mug"}`,
			svc:      &fakeProductService{createErr: errors.New("failed to create product: boom")},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			h := NewProductHandler(tt.svc)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()

			if err := h.CreateProduct(e.NewContext(req, rec)); err != nil {
				t.Fatalf("CreateProduct() error = %v", err)
			}
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode == http.StatusCreated && !tt.svc.created.IsActive {
				t.Error("new products default to active")
			}
		})
	}
}

func TestProductHandler_UpdateAndDelete(t *testing.T) {
	e := echo.New()

	svc := &fakeProductService{}
	h := NewProductHandler(svc)
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"name":"Mug","is_active":false}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("p-1")

	if err := h.UpdateProduct(c); err != nil {
		t.Fatalf("UpdateProduct() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if svc.updated.ID != "p-1" || svc.updated.IsActive {
		t.Errorf("updated = %+v, want id p-1 inactive", svc.updated)
	}

	missing := NewProductHandler(&fakeProductService{deleteErr: errors.New("product not found")})
	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("p-404")
	if err := missing.DeleteProduct(c); err != nil {
		t.Fatalf("DeleteProduct() error = %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestProductHandler_GetProductByID(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "found", wantCode: http.StatusOK},
		{name: "not found", err: errors.New("product not found"), wantCode: http.StatusNotFound},
		{name: "failure", err: errors.New("db down"), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			h := NewProductHandler(&fakeProductService{getErr: tt.err})
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			c.SetParamNames("id")
			c.SetParamValues("p-1")

			if err := h.GetProductByID(c); err != nil {
				t.Fatalf("GetProductByID() error = %v", err)
			}
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}
