package types

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/aquaflow-backend/pkg/enums"
)

// GuestCustomer marks orders placed without an account.
const GuestCustomer = "guest"

// SubscriptionSnapshot freezes plan details on an order line at submission time.
type SubscriptionSnapshot struct {
	PlanID    string          `json:"planId"`
	PlanName  string          `json:"planName"`
	Frequency string          `json:"frequency"`
	Bottles   int             `json:"bottles"`
	Savings   string          `json:"savings"`
	Discount  decimal.Decimal `json:"discount"`
}

// OrderItem is a denormalized cart line stored on an order.
type OrderItem struct {
	ProductID           string                `json:"productId"`
	Name                string                `json:"name"`
	Price               decimal.Decimal       `json:"price"`
	UnitPrice           decimal.Decimal       `json:"unitPrice"`
	LineTotal           decimal.Decimal       `json:"lineTotal"`
	Quantity            int                   `json:"quantity"`
	PurchaseType        enums.PurchaseType    `json:"purchaseType"`
	HasBottleExchange   *bool                 `json:"hasBottleExchange,omitempty"`
	SubscriptionDetails *SubscriptionSnapshot `json:"subscriptionDetails,omitempty"`
}

// CustomerDetails carries the checkout form fields persisted with an order.
type CustomerDetails struct {
	UserID        string              `json:"userId"`
	FirstName     string              `json:"firstName"`
	LastName      string              `json:"lastName"`
	Email         string              `json:"email"`
	Phone         string              `json:"phone"`
	Address       string              `json:"address"`
	City          string              `json:"city"`
	PostalCode    string              `json:"postalCode"`
	Notes         string              `json:"notes,omitempty"`
	PaymentMethod enums.PaymentMethod `json:"paymentMethod"`
}

// FullName joins first and last name.
func (c CustomerDetails) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	default:
		return c.FirstName + " " + c.LastName
	}
}
