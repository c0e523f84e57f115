package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oakmart/storefront-backend/pkg/db/models"
	"github.com/oakmart/storefront-backend/pkg/pagination"
)

// CreateProductRequest carries the payload for a new catalog listing.
type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required,min=1,max=255"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	Stock       int             `json:"stock" validate:"gte=0"`
	CategoryID  *uuid.UUID      `json:"category_id,omitempty"`
	ImageURL    *string         `json:"image_url,omitempty"`
}

// UpdateProductRequest applies partial edits to a listing. Nil fields are left
// untouched.
type UpdateProductRequest struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Stock       *int             `json:"stock,omitempty" validate:"omitempty,gte=0"`
	CategoryID  *uuid.UUID       `json:"category_id,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty"`
}

// CreateCategoryRequest carries the payload for a new category.
type CreateCategoryRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=255"`
	Description *string `json:"description,omitempty"`
}

// ListFilters narrows the public product listing.
type ListFilters struct {
	Query      string
	CategoryID *uuid.UUID
}

// ProductView is the public shape of a catalog listing.
type ProductView struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CategoryID  *uuid.UUID      `json:"category_id,omitempty"`
	Category    *CategoryView   `json:"category,omitempty"`
	ImageURL    *string         `json:"image_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CategoryView is the public shape of a category.
type CategoryView struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
}

// ProductListResult couples a page of products with its metadata.
type ProductListResult struct {
	Products []ProductView   `json:"products"`
	Meta     pagination.Meta `json:"meta"`
}

// ProductFromModel maps a product model onto the public view.
func ProductFromModel(p *models.Product) ProductView {
	if p == nil {
		return ProductView{}
	}
	view := ProductView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		CategoryID:  p.CategoryID,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Category != nil {
		cat := CategoryFromModel(p.Category)
		view.Category = &cat
	}
	return view
}

// CategoryFromModel maps a category model onto the public view.
func CategoryFromModel(c *models.Category) CategoryView {
	if c == nil {
		return CategoryView{}
	}
	return CategoryView{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
	}
}
