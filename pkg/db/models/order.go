package models

import (
	"time"

	"github.com/shopspring/decimal"

	dbtypes "github.com/angelmondragon/aquaflow-backend/pkg/db/types"
	"github.com/angelmondragon/aquaflow-backend/pkg/enums"
	"github.com/angelmondragon/aquaflow-backend/pkg/types"
)

// Order is the durable record created by checkout.
type Order struct {
	ID            string                              `gorm:"column:id;primaryKey"`
	Items         dbtypes.JSON[[]types.OrderItem]     `gorm:"column:items;type:text;not null"`
	Customer      dbtypes.JSON[types.CustomerDetails] `gorm:"column:customer_details;type:text;not null"`
	CustomerEmail string                              `gorm:"column:customer_email;not null"`
	Total         decimal.Decimal                     `gorm:"column:total;type:numeric(12,2);not null"`
	Status        enums.OrderStatus                   `gorm:"column:status;not null"`
	PaymentStatus enums.PaymentStatus                 `gorm:"column:payment_status;not null"`
	PaymentMethod enums.PaymentMethod                 `gorm:"column:payment_method;not null"`
	DeliveryDate  string                              `gorm:"column:delivery_date;not null"`
	DeliveryTime  string                              `gorm:"column:delivery_time;not null"`
	CreatedAt     time.Time                           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time                           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Order) TableName() string { return "orders" }
