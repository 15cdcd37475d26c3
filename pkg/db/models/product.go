package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/aquaflow-backend/pkg/enums"
)

// Product is a purchasable catalog item.
type Product struct {
	ID           string            `gorm:"column:id;primaryKey"`
	Name         string            `gorm:"column:name;not null"`
	Description  string            `gorm:"column:description;not null"`
	Price        decimal.Decimal   `gorm:"column:price;type:numeric(12,2);not null"`
	Image        string            `gorm:"column:image;not null"`
	Size         string            `gorm:"column:size;not null"`
	Type         enums.ProductType `gorm:"column:type;not null"`
	Featured     bool              `gorm:"column:featured;not null"`
	HasExchange  bool              `gorm:"column:has_exchange;not null"`
	DepositPrice *decimal.Decimal  `gorm:"column:deposit_price;type:numeric(12,2)"`
	IsActive     bool              `gorm:"column:is_active;not null"`
	SortOrder    int               `gorm:"column:sort_order;not null"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }
