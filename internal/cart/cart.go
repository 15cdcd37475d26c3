package cart

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/aquaflow-backend/internal/catalog"
	"github.com/angelmondragon/aquaflow-backend/internal/pricing"
	"github.com/angelmondragon/aquaflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/aquaflow-backend/pkg/errors"
)

// MaxQuantity caps a single line.
const MaxQuantity = 999

// LineItem is one distinct (product, purchase type, plan) entry in the cart.
type LineItem struct {
	Product            catalog.Product    `json:"product"`
	Quantity           int                `json:"quantity"`
	PurchaseType       enums.PurchaseType `json:"purchaseType"`
	SubscriptionPlanID *string            `json:"subscriptionPlan,omitempty"`
	HasBottleExchange  *bool              `json:"hasBottleExchange,omitempty"`
}

// LineKey identifies a line. PlanID is empty for one-time purchases.
type LineKey struct {
	ProductID    string             `json:"productId"`
	PurchaseType enums.PurchaseType `json:"purchaseType"`
	PlanID       string             `json:"subscriptionPlan,omitempty"`
}

// Key returns the composite key of the line.
func (li LineItem) Key() LineKey {
	k := LineKey{ProductID: li.Product.ID, PurchaseType: li.PurchaseType}
	if li.SubscriptionPlanID != nil {
		k.PlanID = *li.SubscriptionPlanID
	}
	return k
}

// PricingLine returns the pricing view of the line.
func (li LineItem) PricingLine() pricing.Line {
	return pricing.Line{
		Price:             li.Product.Price,
		HasExchange:       li.Product.HasExchange,
		DepositPrice:      li.Product.DepositPrice,
		Quantity:          li.Quantity,
		PurchaseType:      li.PurchaseType,
		PlanID:            li.SubscriptionPlanID,
		HasBottleExchange: li.HasBottleExchange,
	}
}

// Normalize validates the line and drops fields that carry no meaning for it:
// a plan id on a one-time purchase and the exchange flag on products without exchange.
func (li LineItem) Normalize() (LineItem, error) {
	fields := map[string]string{}
	if strings.TrimSpace(li.Product.ID) == "" {
		fields["productId"] = "product is required"
	}
	switch {
	case li.Quantity < 1:
		fields["quantity"] = "quantity must be at least 1"
	case li.Quantity > MaxQuantity:
		fields["quantity"] = fmt.Sprintf("quantity must be at most %d", MaxQuantity)
	}
	switch li.PurchaseType {
	case enums.PurchaseTypeSubscription:
		if li.SubscriptionPlanID == nil || strings.TrimSpace(*li.SubscriptionPlanID) == "" {
			fields["subscriptionPlan"] = "a subscription plan is required"
		} else {
			id := strings.TrimSpace(*li.SubscriptionPlanID)
			li.SubscriptionPlanID = &id
		}
	case enums.PurchaseTypeOneTime:
		li.SubscriptionPlanID = nil
	default:
		fields["purchaseType"] = "purchase type must be one-time or subscription"
	}
	if !li.Product.HasExchange {
		li.HasBottleExchange = nil
	}
	if len(fields) > 0 {
		return LineItem{}, pkgerrors.FieldErrors("invalid cart item", fields)
	}
	return li, nil
}

// Cart is an ordered list of line items plus the UI visibility flag.
type Cart struct {
	Items  []LineItem `json:"items"`
	IsOpen bool       `json:"isOpen"`
}

// AddItem merges item into a line with the same key or appends it. A merge
// that would take the line past MaxQuantity is rejected and leaves the cart as is.
func (c *Cart) AddItem(item LineItem) error {
	item, err := item.Normalize()
	if err != nil {
		return err
	}
	key := item.Key()
	for i := range c.Items {
		if c.Items[i].Key() != key {
			continue
		}
		if merged := c.Items[i].Quantity + item.Quantity; merged > MaxQuantity {
			return pkgerrors.FieldErrors("invalid cart item", map[string]string{
				"quantity": fmt.Sprintf("a line holds at most %d, the cart already has %d", MaxQuantity, c.Items[i].Quantity),
			})
		}
		c.Items[i].Quantity += item.Quantity
		return nil
	}
	c.Items = append(c.Items, item)
	return nil
}

// UpdateQuantity sets the quantity of the line with key. A quantity of zero
// or less removes that line only. It reports whether a line matched.
func (c *Cart) UpdateQuantity(key LineKey, quantity int) bool {
	for i := range c.Items {
		if c.Items[i].Key() != key {
			continue
		}
		if quantity <= 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		} else {
			c.Items[i].Quantity = min(quantity, MaxQuantity)
		}
		return true
	}
	return false
}

// RemoveItem drops every line of productID and returns how many were removed.
func (c *Cart) RemoveItem(productID string) int {
	kept := c.Items[:0]
	removed := 0
	for _, item := range c.Items {
		if item.Product.ID == productID {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	c.Items = kept
	return removed
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = nil
}

// Toggle flips the visibility flag and returns the new value.
func (c *Cart) Toggle() bool {
	c.IsOpen = !c.IsOpen
	return c.IsOpen
}

// PricingLines converts every line for the pricing engine.
func (c *Cart) PricingLines() []pricing.Line {
	lines := make([]pricing.Line, 0, len(c.Items))
	for _, item := range c.Items {
		lines = append(lines, item.PricingLine())
	}
	return lines
}

// TotalPrice sums line totals against plans.
func (c *Cart) TotalPrice(plans pricing.PlanLookup) decimal.Decimal {
	return pricing.CartTotal(c.PricingLines(), plans)
}

// TotalItems sums quantities.
func (c *Cart) TotalItems() int {
	return pricing.TotalItems(c.PricingLines())
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// Snapshot returns a deep copy.
func (c *Cart) Snapshot() Cart {
	out := Cart{IsOpen: c.IsOpen}
	if c.Items == nil {
		return out
	}
	out.Items = make([]LineItem, len(c.Items))
	for i, item := range c.Items {
		cp := item
		if item.SubscriptionPlanID != nil {
			id := *item.SubscriptionPlanID
			cp.SubscriptionPlanID = &id
		}
		if item.HasBottleExchange != nil {
			v := *item.HasBottleExchange
			cp.HasBottleExchange = &v
		}
		if item.Product.DepositPrice != nil {
			d := *item.Product.DepositPrice
			cp.Product.DepositPrice = &d
		}
		out.Items[i] = cp
	}
	return out
}
