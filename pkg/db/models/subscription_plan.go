package models

import (
	"time"

	"github.com/shopspring/decimal"

	dbtypes "github.com/angelmondragon/aquaflow-backend/pkg/db/types"
)

// SubscriptionPlan captures a recurring-delivery offer.
type SubscriptionPlan struct {
	ID              string                 `gorm:"column:id;primaryKey"`
	Name            string                 `gorm:"column:name;not null"`
	Price           decimal.Decimal        `gorm:"column:price;type:numeric(12,2);not null"`
	Bottles         int                    `gorm:"column:bottles;not null"`
	Frequency       string                 `gorm:"column:frequency;not null"`
	Popular         bool                   `gorm:"column:popular;not null"`
	Savings         string                 `gorm:"column:savings;not null"`
	DiscountPercent int                    `gorm:"column:discount_percent;not null"`
	Discount        decimal.Decimal        `gorm:"column:discount;type:numeric(5,4);not null"`
	Features        dbtypes.JSON[[]string] `gorm:"column:features;type:text;not null"`
	SortOrder       int                    `gorm:"column:sort_order;not null"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

func (SubscriptionPlan) TableName() string { return "subscription_plans" }
