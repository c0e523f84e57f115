package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/oakmart/storefront-backend/pkg/db"
	"github.com/oakmart/storefront-backend/pkg/db/models"
	pkgerrors "github.com/oakmart/storefront-backend/pkg/errors"
)

// productFinder is the slice of the catalog the cart needs.
type productFinder interface {
	FindActiveProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service defines the cart behavior consumed by controllers. AddItem reports
// whether a new line was created, so the handler can answer 201 versus 200.
type Service interface {
	AddItem(ctx context.Context, userID uuid.UUID, req AddItemRequest) (*View, bool, error)
	UpdateItem(ctx context.Context, userID, productID uuid.UUID, req UpdateItemRequest) (*View, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*View, error)
	Clear(ctx context.Context, userID uuid.UUID) error
	GetCart(ctx context.Context, userID uuid.UUID) (*View, error)
	GetSummary(ctx context.Context, userID uuid.UUID) (*Summary, error)
}

type service struct {
	db       *db.Client
	repo     *Repository
	products productFinder
}

// ServiceParams bundles the dependencies for the cart service.
type ServiceParams struct {
	DB       *db.Client
	Repo     *Repository
	Products productFinder
}

// NewService constructs a cart service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db client is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository is required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product finder is required")
	}
	return &service{db: params.DB, repo: params.Repo, products: params.Products}, nil
}

// AddItem merges the requested quantity into any existing line for the same
// product. The merged quantity is checked against current stock before the
// cart is touched, so a rejected add leaves the line as it was. The
// read-merge-write runs inside one transaction.
func (s *service) AddItem(ctx context.Context, userID uuid.UUID, req AddItemRequest) (*View, bool, error) {
	if req.Quantity <= 0 {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	product, err := s.loadProduct(ctx, req.ProductID)
	if err != nil {
		return nil, false, err
	}

	var created bool
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.FindItem(ctx, userID, req.ProductID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart line")
		}

		newQuantity := req.Quantity
		if existing != nil {
			newQuantity += existing.Quantity
		}
		if newQuantity > product.Stock {
			return insufficientStock(product, newQuantity)
		}

		created = existing == nil
		if existing != nil {
			if err := repo.UpdateQuantity(ctx, existing.ID, newQuantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart line")
			}
			return nil
		}
		_, err = repo.CreateItem(ctx, &models.CartItem{
			UserID:    userID,
			ProductID: req.ProductID,
			Quantity:  newQuantity,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create cart line")
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	view, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	return view, created, nil
}

// UpdateItem replaces the quantity on an existing line.
func (s *service) UpdateItem(ctx context.Context, userID, productID uuid.UUID, req UpdateItemRequest) (*View, error) {
	if req.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if req.Quantity > product.Stock {
		return nil, insufficientStock(product, req.Quantity)
	}

	existing, err := s.repo.FindItem(ctx, userID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart line")
	}
	if err := s.repo.UpdateQuantity(ctx, existing.ID, req.Quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart line")
	}

	return s.GetCart(ctx, userID)
}

// RemoveItem drops one line from the cart.
func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*View, error) {
	removed, err := s.repo.DeleteItem(ctx, userID, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete cart line")
	}
	if !removed {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
	}
	return s.GetCart(ctx, userID)
}

// Clear empties the cart. Clearing an already empty cart succeeds.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.Clear(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
	}
	return nil
}

// GetCart returns every line with its current product price and the total.
func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*View, error) {
	items, err := s.repo.ListItems(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cart lines")
	}

	view := &View{Items: make([]ItemView, 0, len(items))}
	total := decimal.Zero
	for i := range items {
		line := ItemFromModel(&items[i])
		view.Items = append(view.Items, line)
		total = total.Add(line.Subtotal)
	}
	view.Total = total.Round(2)
	return view, nil
}

// GetSummary returns cart totals without the line detail.
func (s *service) GetSummary(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	view, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Total: view.Total, UniqueItems: len(view.Items)}
	for _, item := range view.Items {
		summary.ItemCount += item.Quantity
	}
	return summary, nil
}

func (s *service) loadProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.products.FindActiveProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return product, nil
}

func insufficientStock(product *models.Product, requested int) error {
	return pkgerrors.New(
		pkgerrors.CodeConflict,
		fmt.Sprintf("insufficient stock for %s: %d requested, %d available", product.Name, requested, product.Stock),
	)
}
