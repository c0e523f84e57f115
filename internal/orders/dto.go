package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oakmart/storefront-backend/pkg/db/models"
	"github.com/oakmart/storefront-backend/pkg/enums"
	"github.com/oakmart/storefront-backend/pkg/pagination"
)

// ListFilters narrows an order history listing.
type ListFilters struct {
	Status *enums.OrderStatus
}

// UpdateStatusRequest moves an order along its lifecycle.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ItemView is one snapshotted line of an order.
type ItemView struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// View is the public shape of an order.
type View struct {
	ID          uuid.UUID         `json:"id"`
	UserID      uuid.UUID         `json:"user_id"`
	Status      enums.OrderStatus `json:"status"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	Items       []ItemView        `json:"items"`
	CreatedAt   time.Time         `json:"created_at"`
}

// ListResult couples a page of orders with its metadata.
type ListResult struct {
	Orders []View          `json:"orders"`
	Meta   pagination.Meta `json:"meta"`
}

// FromModel maps an order and its items onto the public view.
func FromModel(order *models.Order) View {
	view := View{
		ID:          order.ID,
		UserID:      order.UserID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		Items:       make([]ItemView, 0, len(order.Items)),
		CreatedAt:   order.CreatedAt,
	}
	for _, item := range order.Items {
		line := ItemView{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal(),
		}
		if item.Product != nil {
			line.Name = item.Product.Name
		}
		view.Items = append(view.Items, line)
	}
	return view
}
