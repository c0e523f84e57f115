package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oakmart/storefront-backend/pkg/db/models"
)

// AddItemRequest adds units of a product to the caller's cart. Quantities for
// a product already in the cart are merged, not replaced.
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// UpdateItemRequest replaces the quantity of a line already in the cart.
type UpdateItemRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// ItemView is the public shape of a cart line.
type ItemView struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// View is the full cart for one user.
type View struct {
	Items []ItemView      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// Summary is the lightweight cart badge payload.
type Summary struct {
	Total       decimal.Decimal `json:"total"`
	ItemCount   int             `json:"item_count"`
	UniqueItems int             `json:"unique_items"`
}

// ItemFromModel maps a cart item plus its preloaded product onto the view.
func ItemFromModel(item *models.CartItem) ItemView {
	view := ItemView{
		ID:        item.ID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
	}
	if item.Product != nil {
		view.Name = item.Product.Name
		view.UnitPrice = item.Product.Price
		view.Subtotal = item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
	}
	return view
}
