// Package pricing computes line, cart and display totals. Every function is
// pure; callers supply the plan registry view they want prices computed against.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/aquaflow-backend/pkg/enums"
)

// PlanTerms is the part of a subscription plan that pricing and order
// snapshots depend on.
type PlanTerms struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Frequency string          `json:"frequency"`
	Bottles   int             `json:"bottles"`
	Savings   string          `json:"savings"`
	Discount  decimal.Decimal `json:"discount"`
}

// PlanLookup resolves plans by id.
type PlanLookup map[string]PlanTerms

// Find returns the plan for id. A nil or unknown id reports false.
func (l PlanLookup) Find(id *string) (PlanTerms, bool) {
	if id == nil || l == nil {
		return PlanTerms{}, false
	}
	p, ok := l[*id]
	return p, ok
}

// Line is the pricing view of a cart line.
type Line struct {
	Price             decimal.Decimal
	HasExchange       bool
	DepositPrice      *decimal.Decimal
	Quantity          int
	PurchaseType      enums.PurchaseType
	PlanID            *string
	HasBottleExchange *bool
}

func (l Line) exchanging() bool {
	return l.HasBottleExchange != nil && *l.HasBottleExchange
}

// unit applies the deposit rule and the selected plan's discount without rounding.
func unit(line Line, plans PlanLookup) decimal.Decimal {
	u := line.Price
	if line.HasExchange && !line.exchanging() && line.DepositPrice != nil {
		u = u.Add(*line.DepositPrice)
	}
	if line.PurchaseType == enums.PurchaseTypeSubscription {
		if plan, ok := plans.Find(line.PlanID); ok {
			u = u.Mul(decimal.NewFromInt(1).Sub(clampDiscount(plan.Discount)))
		}
	}
	return u
}

// UnitPrice is the per-unit figure shown next to a line and stored on orders.
func UnitPrice(line Line, plans PlanLookup) decimal.Decimal {
	return unit(line, plans).Round(2)
}

// LineTotal prices a single line: deposit when the customer keeps their
// bottle, the selected plan's discount for subscriptions, times quantity.
// A plan id that no longer resolves degrades to no discount.
func LineTotal(line Line, plans PlanLookup) decimal.Decimal {
	if line.Quantity <= 0 {
		return decimal.Zero
	}
	return unit(line, plans).Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2)
}

// CartTotal sums LineTotal over lines.
func CartTotal(lines []Line, plans PlanLookup) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(LineTotal(line, plans))
	}
	return total
}

// TotalItems sums quantities.
func TotalItems(lines []Line) int {
	n := 0
	for _, line := range lines {
		if line.Quantity > 0 {
			n += line.Quantity
		}
	}
	return n
}

func clampDiscount(d decimal.Decimal) decimal.Decimal {
	one := decimal.NewFromInt(1)
	switch {
	case d.LessThan(decimal.Zero):
		return decimal.Zero
	case d.GreaterThan(one):
		return one
	default:
		return d
	}
}
