package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oakmart/storefront-backend/internal/catalog"
	pkgerrors "github.com/oakmart/storefront-backend/pkg/errors"
	"github.com/oakmart/storefront-backend/pkg/pagination"
)

type stubCatalogService struct {
	product    *catalog.ProductView
	productErr error
	list       *catalog.ProductListResult
	listErr    error
	category   *catalog.CategoryView
	categories []catalog.CategoryView
	deleteErr  error

	gotFilters catalog.ListFilters
	gotPage    pagination.Params
}

func (s *stubCatalogService) CreateProduct(ctx context.Context, req catalog.CreateProductRequest) (*catalog.ProductView, error) {
	return s.product, s.productErr
}

func (s *stubCatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, req catalog.UpdateProductRequest) (*catalog.ProductView, error) {
	return s.product, s.productErr
}

func (s *stubCatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.deleteErr
}

func (s *stubCatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*catalog.ProductView, error) {
	return s.product, s.productErr
}

func (s *stubCatalogService) ListProducts(ctx context.Context, filters catalog.ListFilters, page pagination.Params) (*catalog.ProductListResult, error) {
	s.gotFilters = filters
	s.gotPage = page
	return s.list, s.listErr
}

func (s *stubCatalogService) CreateCategory(ctx context.Context, req catalog.CreateCategoryRequest) (*catalog.CategoryView, error) {
	return s.category, s.productErr
}

func (s *stubCatalogService) ListCategories(ctx context.Context) ([]catalog.CategoryView, error) {
	return s.categories, s.listErr
}

func TestListProductsForwardsFilters(t *testing.T) {
	stub := &stubCatalogService{list: &catalog.ProductListResult{
		Products: []catalog.ProductView{},
		Meta:     pagination.Meta{Page: 2, PerPage: 10},
	}}
	handler := ListProducts(stub, nil)

	categoryID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?q=widget&category_id="+categoryID.String()+"&page=2&per_page=10", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if stub.gotFilters.Query != "widget" {
		t.Fatalf("expected query forwarded, got %q", stub.gotFilters.Query)
	}
	if stub.gotFilters.CategoryID == nil || *stub.gotFilters.CategoryID != categoryID {
		t.Fatalf("expected category forwarded, got %v", stub.gotFilters.CategoryID)
	}
	if stub.gotPage.Page != 2 || stub.gotPage.PerPage != 10 {
		t.Fatalf("unexpected page params %+v", stub.gotPage)
	}
}

func TestListProductsRejectsBadCategoryID(t *testing.T) {
	handler := ListProducts(&stubCatalogService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?category_id=nope", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestGetProductByID(t *testing.T) {
	productID := uuid.New()
	stub := &stubCatalogService{product: &catalog.ProductView{
		ID:    productID,
		Name:  "Widget",
		Price: decimal.RequireFromString("9.99"),
	}}

	router := chi.NewRouter()
	router.Get("/products/{id}", GetProduct(stub, nil))

	req := httptest.NewRequest(http.MethodGet, "/products/"+productID.String(), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data catalog.ProductView `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != productID {
		t.Fatalf("unexpected product id %s", envelope.Data.ID)
	}
}

func TestGetProductNotFound(t *testing.T) {
	stub := &stubCatalogService{productErr: pkgerrors.New(pkgerrors.CodeNotFound, "product not found")}

	router := chi.NewRouter()
	router.Get("/products/{id}", GetProduct(stub, nil))

	req := httptest.NewRequest(http.MethodGet, "/products/"+uuid.NewString(), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestGetProductRejectsBadID(t *testing.T) {
	router := chi.NewRouter()
	router.Get("/products/{id}", GetProduct(&stubCatalogService{}, nil))

	req := httptest.NewRequest(http.MethodGet, "/products/nope", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCreateProductCreated(t *testing.T) {
	stub := &stubCatalogService{product: &catalog.ProductView{ID: uuid.New(), Name: "Widget"}}
	handler := CreateProduct(stub, nil)

	body := `{"name":"Widget","price":"9.99","stock":5}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestCreateProductRejectsUnknownField(t *testing.T) {
	handler := CreateProduct(&stubCatalogService{}, nil)

	body := `{"name":"Widget","price":"9.99","sku":"W-1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestDeleteProductOK(t *testing.T) {
	router := chi.NewRouter()
	router.Delete("/products/{id}", DeleteProduct(&stubCatalogService{}, nil))

	req := httptest.NewRequest(http.MethodDelete, "/products/"+uuid.NewString(), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestCreateCategoryCreated(t *testing.T) {
	stub := &stubCatalogService{category: &catalog.CategoryView{ID: uuid.New(), Name: "Tools"}}
	handler := CreateCategory(stub, nil)

	body := `{"name":"Tools"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/categories", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestListCategoriesOK(t *testing.T) {
	stub := &stubCatalogService{categories: []catalog.CategoryView{{ID: uuid.New(), Name: "Tools"}}}
	handler := ListCategories(stub, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data []catalog.CategoryView `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].Name != "Tools" {
		t.Fatalf("unexpected categories %+v", envelope.Data)
	}
}
