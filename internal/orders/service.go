package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/oakmart/storefront-backend/internal/cart"
	"github.com/oakmart/storefront-backend/internal/catalog"
	"github.com/oakmart/storefront-backend/pkg/db"
	"github.com/oakmart/storefront-backend/pkg/db/models"
	"github.com/oakmart/storefront-backend/pkg/enums"
	pkgerrors "github.com/oakmart/storefront-backend/pkg/errors"
	"github.com/oakmart/storefront-backend/pkg/pagination"
)

// Service defines the order behavior consumed by controllers.
type Service interface {
	CreateOrder(ctx context.Context, userID uuid.UUID) (*View, error)
	GetOrder(ctx context.Context, userID uuid.UUID, role enums.Role, orderID uuid.UUID) (*View, error)
	ListOrders(ctx context.Context, userID uuid.UUID, filters ListFilters, page pagination.Params) (*ListResult, error)
	CancelOrder(ctx context.Context, userID, orderID uuid.UUID) (*View, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, req UpdateStatusRequest) (*View, error)
}

type service struct {
	db       *db.Client
	repo     *Repository
	cartRepo *cart.Repository
	catalog  *catalog.Repository
}

// ServiceParams bundles the dependencies for the order service.
type ServiceParams struct {
	DB          *db.Client
	Repo        *Repository
	CartRepo    *cart.Repository
	CatalogRepo *catalog.Repository
}

// NewService constructs an order service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db client is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("order repository is required")
	}
	if params.CartRepo == nil {
		return nil, fmt.Errorf("cart repository is required")
	}
	if params.CatalogRepo == nil {
		return nil, fmt.Errorf("catalog repository is required")
	}
	return &service{
		db:       params.DB,
		repo:     params.Repo,
		cartRepo: params.CartRepo,
		catalog:  params.CatalogRepo,
	}, nil
}

// CreateOrder checks out the caller's cart. Stock is decremented with guarded
// updates inside one transaction, so a shortfall on any line rolls the whole
// checkout back and the cart survives untouched.
func (s *service) CreateOrder(ctx context.Context, userID uuid.UUID) (*View, error) {
	var orderID uuid.UUID
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		catalogRepo := s.catalog.WithTx(tx)
		orderRepo := s.repo.WithTx(tx)

		lines, err := cartRepo.ListItems(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cart lines")
		}
		if len(lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(lines))
		for i := range lines {
			line := &lines[i]
			product, err := catalogRepo.FindActiveProductByID(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("%s is no longer available", lineName(line)))
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
			}

			if err := catalogRepo.ReduceStock(ctx, product.ID, line.Quantity); err != nil {
				if errors.Is(err, catalog.ErrStockConflict) {
					return pkgerrors.New(
						pkgerrors.CodeConflict,
						fmt.Sprintf("insufficient stock for %s: %d requested, %d available", product.Name, line.Quantity, product.Stock),
					)
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reduce stock")
			}

			items = append(items, models.OrderItem{
				ProductID: product.ID,
				Quantity:  line.Quantity,
				UnitPrice: product.Price,
			})
			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}

		order, err := orderRepo.Create(ctx, &models.Order{
			UserID:      userID,
			Status:      enums.OrderStatusPending,
			TotalAmount: total.Round(2),
			Items:       items,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}
		orderID = order.ID

		if err := cartRepo.Clear(ctx, userID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.loadView(ctx, orderID)
}

// GetOrder loads one order. Customers only ever see their own orders, and a
// foreign order reads the same as a missing one.
func (s *service) GetOrder(ctx context.Context, userID uuid.UUID, role enums.Role, orderID uuid.UUID) (*View, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if role != enums.RoleAdmin && order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	view := FromModel(order)
	return &view, nil
}

// ListOrders returns the caller's order history, newest first, optionally
// narrowed to one status.
func (s *service) ListOrders(ctx context.Context, userID uuid.UUID, filters ListFilters, page pagination.Params) (*ListResult, error) {
	rows, total, err := s.repo.ListByUser(ctx, userID, filters, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}

	views := make([]View, 0, len(rows))
	for i := range rows {
		views = append(views, FromModel(&rows[i]))
	}
	return &ListResult{Orders: views, Meta: pagination.NewMeta(page, total)}, nil
}

// CancelOrder cancels a caller's pending order and returns its units to stock.
func (s *service) CancelOrder(ctx context.Context, userID, orderID uuid.UUID) (*View, error) {
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		orderRepo := s.repo.WithTx(tx)
		catalogRepo := s.catalog.WithTx(tx)

		order, err := orderRepo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
		}
		if order.UserID != userID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if order.Status != enums.OrderStatusPending {
			return pkgerrors.New(
				pkgerrors.CodeStateConflict,
				fmt.Sprintf("order in status %s cannot be cancelled", order.Status),
			)
		}

		if err := orderRepo.UpdateStatus(ctx, orderID, enums.OrderStatusPending, enums.OrderStatusCancelled); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "order is no longer pending")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update status")
		}

		for _, item := range order.Items {
			if err := catalogRepo.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "restore stock")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.loadView(ctx, orderID)
}

// UpdateStatus moves an order along the pending, confirmed, shipped,
// delivered lifecycle. Cancellation through this path follows the same rules
// as a customer cancel minus the ownership check.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, req UpdateStatusRequest) (*View, error) {
	target, err := enums.ParseOrderStatus(req.Status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown status %q", req.Status))
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		orderRepo := s.repo.WithTx(tx)
		catalogRepo := s.catalog.WithTx(tx)

		order, err := orderRepo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
		}
		if !order.Status.CanTransitionTo(target) {
			return pkgerrors.New(
				pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move order from %s to %s", order.Status, target),
			)
		}

		if err := orderRepo.UpdateStatus(ctx, orderID, order.Status, target); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update status")
		}

		if target == enums.OrderStatusCancelled {
			for _, item := range order.Items {
				if err := catalogRepo.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "restore stock")
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.loadView(ctx, orderID)
}

func (s *service) loadView(ctx context.Context, orderID uuid.UUID) (*View, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload order")
	}
	view := FromModel(order)
	return &view, nil
}

func lineName(line *models.CartItem) string {
	if line.Product != nil {
		return line.Product.Name
	}
	return "a cart item"
}
