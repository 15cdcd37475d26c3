package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/aquaflow-backend/pkg/db/models"
	"github.com/angelmondragon/aquaflow-backend/pkg/enums"
)

// Product is the catalog item shared by the storefront, cart snapshots and admin views.
type Product struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Price        decimal.Decimal   `json:"price"`
	Image        string            `json:"image"`
	Size         string            `json:"size"`
	Type         enums.ProductType `json:"type"`
	Featured     bool              `json:"featured"`
	HasExchange  bool              `json:"hasExchange"`
	DepositPrice *decimal.Decimal  `json:"depositPrice,omitempty"`
	IsActive     bool              `json:"isActive"`
	CreatedAt    time.Time         `json:"createdAt,omitempty"`
	UpdatedAt    time.Time         `json:"updatedAt,omitempty"`
}

// FromModel maps a persisted row to the shared product shape.
func FromModel(m models.Product) Product {
	return Product{
		ID:           m.ID,
		Name:         m.Name,
		Description:  m.Description,
		Price:        m.Price,
		Image:        m.Image,
		Size:         m.Size,
		Type:         m.Type,
		Featured:     m.Featured,
		HasExchange:  m.HasExchange,
		DepositPrice: m.DepositPrice,
		IsActive:     m.IsActive,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// ProductInput holds the validated payload to create or replace a product.
type ProductInput struct {
	Name         string            `json:"name" validate:"required,max=120"`
	Description  string            `json:"description" validate:"max=2000"`
	Price        decimal.Decimal   `json:"price"`
	Image        string            `json:"image" validate:"max=500"`
	Size         string            `json:"size" validate:"max=60"`
	Type         enums.ProductType `json:"type" validate:"required"`
	Featured     bool              `json:"featured"`
	HasExchange  bool              `json:"hasExchange"`
	DepositPrice *decimal.Decimal  `json:"depositPrice"`
	IsActive     *bool             `json:"isActive"`
}

// ListFilter narrows catalog listings.
type ListFilter struct {
	Type            *enums.ProductType
	FeaturedOnly    bool
	IncludeInactive bool
}
