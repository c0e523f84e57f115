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

	"github.com/oakmart/storefront-backend/api/middleware"
	cartsvc "github.com/oakmart/storefront-backend/internal/cart"
	pkgerrors "github.com/oakmart/storefront-backend/pkg/errors"
)

type stubCartService struct {
	view    *cartsvc.View
	summary *cartsvc.Summary
	created bool
	err     error

	gotUserID  uuid.UUID
	gotAdd     cartsvc.AddItemRequest
	gotProduct uuid.UUID
	cleared    bool
}

func (s *stubCartService) AddItem(ctx context.Context, userID uuid.UUID, req cartsvc.AddItemRequest) (*cartsvc.View, bool, error) {
	s.gotUserID = userID
	s.gotAdd = req
	return s.view, s.created, s.err
}

func (s *stubCartService) UpdateItem(ctx context.Context, userID, productID uuid.UUID, req cartsvc.UpdateItemRequest) (*cartsvc.View, error) {
	s.gotUserID = userID
	s.gotProduct = productID
	return s.view, s.err
}

func (s *stubCartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*cartsvc.View, error) {
	s.gotUserID = userID
	s.gotProduct = productID
	return s.view, s.err
}

func (s *stubCartService) Clear(ctx context.Context, userID uuid.UUID) error {
	s.gotUserID = userID
	s.cleared = true
	return s.err
}

func (s *stubCartService) GetCart(ctx context.Context, userID uuid.UUID) (*cartsvc.View, error) {
	s.gotUserID = userID
	return s.view, s.err
}

func (s *stubCartService) GetSummary(ctx context.Context, userID uuid.UUID) (*cartsvc.Summary, error) {
	s.gotUserID = userID
	return s.summary, s.err
}

func withUser(req *http.Request, userID uuid.UUID) *http.Request {
	return req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
}

func TestGetCartSuccess(t *testing.T) {
	userID := uuid.New()
	stub := &stubCartService{view: &cartsvc.View{
		Items: []cartsvc.ItemView{{ProductID: uuid.New(), Quantity: 2}},
		Total: decimal.RequireFromString("10.00"),
	}}
	handler := GetCart(stub, nil)

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil), userID)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if stub.gotUserID != userID {
		t.Fatalf("expected user forwarded, got %s", stub.gotUserID)
	}

	var envelope struct {
		Data cartsvc.View `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Items) != 1 {
		t.Fatalf("unexpected cart %+v", envelope.Data)
	}
}

func TestGetCartWithoutUser(t *testing.T) {
	handler := GetCart(&stubCartService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAddCartItemCreatesNewLine(t *testing.T) {
	userID := uuid.New()
	productID := uuid.New()
	stub := &stubCartService{view: &cartsvc.View{}, created: true}

	router := chi.NewRouter()
	router.Post("/cart/add/{product_id}", AddCartItem(stub, nil))

	req := withUser(httptest.NewRequest(http.MethodPost, "/cart/add/"+productID.String(), strings.NewReader(`{"quantity":3}`)), userID)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if stub.gotAdd.ProductID != productID || stub.gotAdd.Quantity != 3 {
		t.Fatalf("unexpected payload %+v", stub.gotAdd)
	}
}

func TestAddCartItemMergeAnswers200(t *testing.T) {
	stub := &stubCartService{view: &cartsvc.View{}}

	router := chi.NewRouter()
	router.Post("/cart/add/{product_id}", AddCartItem(stub, nil))

	req := withUser(httptest.NewRequest(http.MethodPost, "/cart/add/"+uuid.NewString(), strings.NewReader(`{"quantity":2}`)), uuid.New())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAddCartItemDefaultsQuantityToOne(t *testing.T) {
	stub := &stubCartService{view: &cartsvc.View{}, created: true}

	router := chi.NewRouter()
	router.Post("/cart/add/{product_id}", AddCartItem(stub, nil))

	req := withUser(httptest.NewRequest(http.MethodPost, "/cart/add/"+uuid.NewString(), strings.NewReader(`{}`)), uuid.New())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if stub.gotAdd.Quantity != 1 {
		t.Fatalf("expected quantity to default to 1, got %d", stub.gotAdd.Quantity)
	}
}

func TestAddCartItemAcceptsMissingBody(t *testing.T) {
	stub := &stubCartService{view: &cartsvc.View{}, created: true}

	router := chi.NewRouter()
	router.Post("/cart/add/{product_id}", AddCartItem(stub, nil))

	req := withUser(httptest.NewRequest(http.MethodPost, "/cart/add/"+uuid.NewString(), nil), uuid.New())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if stub.gotAdd.Quantity != 1 {
		t.Fatalf("expected quantity to default to 1, got %d", stub.gotAdd.Quantity)
	}
}

func TestAddCartItemRejectsNegativeQuantity(t *testing.T) {
	router := chi.NewRouter()
	router.Post("/cart/add/{product_id}", AddCartItem(&stubCartService{}, nil))

	req := withUser(httptest.NewRequest(http.MethodPost, "/cart/add/"+uuid.NewString(), strings.NewReader(`{"quantity":-1}`)), uuid.New())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAddCartItemStockConflict(t *testing.T) {
	stub := &stubCartService{err: pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock for Widget: 6 requested, 5 available")}

	router := chi.NewRouter()
	router.Post("/cart/add/{product_id}", AddCartItem(stub, nil))

	req := withUser(httptest.NewRequest(http.MethodPost, "/cart/add/"+uuid.NewString(), strings.NewReader(`{"quantity":6}`)), uuid.New())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "Widget") {
		t.Fatalf("expected offending product in body: %s", resp.Body.String())
	}
}

func TestUpdateCartItemForwardsProductID(t *testing.T) {
	productID := uuid.New()
	stub := &stubCartService{view: &cartsvc.View{}}

	router := chi.NewRouter()
	router.Put("/cart/update/{product_id}", UpdateCartItem(stub, nil))

	body := `{"quantity":2}`
	req := withUser(httptest.NewRequest(http.MethodPut, "/cart/update/"+productID.String(), strings.NewReader(body)), uuid.New())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if stub.gotProduct != productID {
		t.Fatalf("expected product forwarded, got %s", stub.gotProduct)
	}
}

func TestRemoveCartItemNotFound(t *testing.T) {
	stub := &stubCartService{err: pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")}

	router := chi.NewRouter()
	router.Delete("/cart/remove/{product_id}", RemoveCartItem(stub, nil))

	req := withUser(httptest.NewRequest(http.MethodDelete, "/cart/remove/"+uuid.NewString(), nil), uuid.New())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestClearCartOK(t *testing.T) {
	stub := &stubCartService{}
	handler := ClearCart(stub, nil)

	req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/cart/clear", nil), uuid.New())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !stub.cleared {
		t.Fatal("expected clear to be forwarded")
	}
}

func TestGetCartSummaryOK(t *testing.T) {
	stub := &stubCartService{summary: &cartsvc.Summary{
		Total:       decimal.RequireFromString("22.00"),
		ItemCount:   5,
		UniqueItems: 2,
	}}
	handler := GetCartSummary(stub, nil)

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/v1/cart/total", nil), uuid.New())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data cartsvc.Summary `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ItemCount != 5 || envelope.Data.UniqueItems != 2 {
		t.Fatalf("unexpected summary %+v", envelope.Data)
	}
}
