package orders

import (
	"bytes"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/aquaflow-backend/pkg/enums"
	"github.com/angelmondragon/aquaflow-backend/pkg/logger"
	"github.com/angelmondragon/aquaflow-backend/pkg/types"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}})
}

func sampleOrder(first, email, phone string, created time.Time) *Order {
	exchange := true
	return &Order{
		Items: []types.OrderItem{{
			ProductID: "1", Name: "19L Bottle", Price: decimal.NewFromInt(250),
			UnitPrice: decimal.RequireFromString("212.5"), LineTotal: decimal.NewFromInt(425),
			Quantity: 2, PurchaseType: enums.PurchaseTypeSubscription, HasBottleExchange: &exchange,
			SubscriptionDetails: &types.SubscriptionSnapshot{
				PlanID: "family", PlanName: "Family", Frequency: "weekly", Bottles: 8,
				Savings: "Save 15%", Discount: decimal.RequireFromString("0.15"),
			},
		}},
		Customer: types.CustomerDetails{
			UserID: types.GuestCustomer, FirstName: first, LastName: "Khan", Email: email, Phone: phone,
			Address: "House 1, Street 2", City: "Karachi", PostalCode: "74000",
			PaymentMethod: enums.PaymentMethodCashOnDelivery,
		},
		Total:         decimal.NewFromInt(425),
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusPending,
		PaymentMethod: enums.PaymentMethodCashOnDelivery,
		DeliveryDate:  "2026-03-02",
		DeliveryTime:  "09:00-12:00",
		CreatedAt:     created,
	}
}
