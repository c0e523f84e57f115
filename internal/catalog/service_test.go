package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oakmart/storefront-backend/pkg/config"
	"github.com/oakmart/storefront-backend/pkg/db"
	"github.com/oakmart/storefront-backend/pkg/db/models"
	pkgerrors "github.com/oakmart/storefront-backend/pkg/errors"
	"github.com/oakmart/storefront-backend/pkg/pagination"
)

func newTestDB(t *testing.T) *db.Client {
	t.Helper()
	client, err := db.New(context.Background(), config.DBConfig{
		Driver: "sqlite",
		DSN:    "file:catalog_" + uuid.NewString() + "?mode=memory&cache=shared",
	}, nil)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := client.DB().AutoMigrate(&models.Category{}, &models.Product{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func newTestService(t *testing.T, client *db.Client) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: NewRepository(client.DB())})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func mustCreateProduct(t *testing.T, svc Service, name string, price string, stock int) *ProductView {
	t.Helper()
	view, err := svc.CreateProduct(context.Background(), CreateProductRequest{
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	})
	if err != nil {
		t.Fatalf("create product %q: %v", name, err)
	}
	return view
}

func TestCreateProductRejectsNegativePrice(t *testing.T) {
	svc := newTestService(t, newTestDB(t))

	_, err := svc.CreateProduct(context.Background(), CreateProductRequest{
		Name:  "Widget",
		Price: decimal.RequireFromString("-1.00"),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateProductRejectsUnknownCategory(t *testing.T) {
	svc := newTestService(t, newTestDB(t))

	missing := uuid.New()
	_, err := svc.CreateProduct(context.Background(), CreateProductRequest{
		Name:       "Widget",
		Price:      decimal.RequireFromString("9.99"),
		CategoryID: &missing,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateProductRoundsPrice(t *testing.T) {
	svc := newTestService(t, newTestDB(t))

	view, err := svc.CreateProduct(context.Background(), CreateProductRequest{
		Name:  "Widget",
		Price: decimal.RequireFromString("9.999"),
		Stock: 3,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if got := view.Price.StringFixed(2); got != "10.00" {
		t.Fatalf("expected price 10.00, got %s", got)
	}
}

func TestUpdateProductAppliesPartialEdits(t *testing.T) {
	svc := newTestService(t, newTestDB(t))
	created := mustCreateProduct(t, svc, "Widget", "9.99", 3)

	newName := "Widget Pro"
	newStock := 7
	updated, err := svc.UpdateProduct(context.Background(), created.ID, UpdateProductRequest{
		Name:  &newName,
		Stock: &newStock,
	})
	if err != nil {
		t.Fatalf("update product: %v", err)
	}
	if updated.Name != "Widget Pro" || updated.Stock != 7 {
		t.Fatalf("unexpected result %+v", updated)
	}
	if got := updated.Price.StringFixed(2); got != "9.99" {
		t.Fatalf("price should be untouched, got %s", got)
	}
}

func TestDeleteProductHidesIt(t *testing.T) {
	svc := newTestService(t, newTestDB(t))
	created := mustCreateProduct(t, svc, "Widget", "9.99", 3)

	if err := svc.DeleteProduct(context.Background(), created.ID); err != nil {
		t.Fatalf("delete product: %v", err)
	}

	_, err := svc.GetProduct(context.Background(), created.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}

	err = svc.DeleteProduct(context.Background(), created.ID)
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestListProductsFiltersAndPaginates(t *testing.T) {
	client := newTestDB(t)
	svc := newTestService(t, client)
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, CreateCategoryRequest{Name: "Tools"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	mustCreateProduct(t, svc, "Hammer", "12.00", 4)
	mustCreateProduct(t, svc, "Saw", "20.00", 2)
	if _, err := svc.CreateProduct(ctx, CreateProductRequest{
		Name:       "Hand Drill",
		Price:      decimal.RequireFromString("35.00"),
		Stock:      1,
		CategoryID: &category.ID,
	}); err != nil {
		t.Fatalf("create categorized product: %v", err)
	}

	result, err := svc.ListProducts(ctx, ListFilters{Query: "ha"}, pagination.Params{Page: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if result.Meta.Total != 2 {
		t.Fatalf("expected 2 matches for %q, got %d", "ha", result.Meta.Total)
	}

	result, err = svc.ListProducts(ctx, ListFilters{CategoryID: &category.ID}, pagination.Params{Page: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("list by category: %v", err)
	}
	if result.Meta.Total != 1 || result.Products[0].Name != "Hand Drill" {
		t.Fatalf("unexpected category result %+v", result.Products)
	}

	result, err = svc.ListProducts(ctx, ListFilters{}, pagination.Params{Page: 2, PerPage: 2})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(result.Products) != 1 || result.Meta.TotalPages != 2 {
		t.Fatalf("expected 1 product on page 2 of 2, got %d (pages=%d)", len(result.Products), result.Meta.TotalPages)
	}
}

func TestListProductsSearchesDescriptions(t *testing.T) {
	svc := newTestService(t, newTestDB(t))
	ctx := context.Background()

	description := "Cordless impact driver"
	if _, err := svc.CreateProduct(ctx, CreateProductRequest{
		Name:        "Drill",
		Description: &description,
		Price:       decimal.RequireFromString("99.00"),
		Stock:       2,
	}); err != nil {
		t.Fatalf("create product: %v", err)
	}
	mustCreateProduct(t, svc, "Saw", "20.00", 2)

	result, err := svc.ListProducts(ctx, ListFilters{Query: "impact"}, pagination.Params{Page: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if result.Meta.Total != 1 || result.Products[0].Name != "Drill" {
		t.Fatalf("expected the described product, got %+v", result.Products)
	}
}

func TestCreateCategoryRejectsDuplicateName(t *testing.T) {
	svc := newTestService(t, newTestDB(t))
	ctx := context.Background()

	if _, err := svc.CreateCategory(ctx, CreateCategoryRequest{Name: "Tools"}); err != nil {
		t.Fatalf("create category: %v", err)
	}
	_, err := svc.CreateCategory(ctx, CreateCategoryRequest{Name: "Tools"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestReduceStockGuardsAgainstOverdraw(t *testing.T) {
	client := newTestDB(t)
	svc := newTestService(t, client)
	repo := NewRepository(client.DB())
	ctx := context.Background()

	created := mustCreateProduct(t, svc, "Widget", "9.99", 5)

	if err := repo.ReduceStock(ctx, created.ID, 3); err != nil {
		t.Fatalf("reduce stock: %v", err)
	}
	if err := repo.ReduceStock(ctx, created.ID, 3); !errors.Is(err, ErrStockConflict) {
		t.Fatalf("expected stock conflict, got %v", err)
	}

	view, err := svc.GetProduct(ctx, created.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if view.Stock != 2 {
		t.Fatalf("expected stock 2 after failed overdraw, got %d", view.Stock)
	}

	if err := repo.RestoreStock(ctx, created.ID, 3); err != nil {
		t.Fatalf("restore stock: %v", err)
	}
	view, err = svc.GetProduct(ctx, created.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if view.Stock != 5 {
		t.Fatalf("expected stock 5 after restore, got %d", view.Stock)
	}
}

func TestReduceStockRejectsInactiveProduct(t *testing.T) {
	client := newTestDB(t)
	svc := newTestService(t, client)
	repo := NewRepository(client.DB())
	ctx := context.Background()

	created := mustCreateProduct(t, svc, "Widget", "9.99", 5)
	if err := svc.DeleteProduct(ctx, created.ID); err != nil {
		t.Fatalf("delete product: %v", err)
	}

	if err := repo.ReduceStock(ctx, created.ID, 1); !errors.Is(err, ErrStockConflict) {
		t.Fatalf("expected stock conflict for inactive product, got %v", err)
	}
}
