package cart

import "github.com/angelmondragon/aquaflow-backend/pkg/enums"

// MirroredLine is the cookie form of a line. Product details are not
// carried; they are read back from the catalog when the cookie is loaded.
type MirroredLine struct {
	ProductID    string             `json:"p"`
	Quantity     int                `json:"q"`
	PurchaseType enums.PurchaseType `json:"t"`
	PlanID       *string            `json:"s,omitempty"`
	Exchange     *bool              `json:"x,omitempty"`
}

// Mirrored is the compact cart kept in the mirror cookie.
type Mirrored struct {
	Lines  []MirroredLine `json:"l"`
	IsOpen bool           `json:"o,omitempty"`
}

// Mirrored returns the compact form of c.
func (c *Cart) Mirrored() Mirrored {
	m := Mirrored{IsOpen: c.IsOpen, Lines: make([]MirroredLine, 0, len(c.Items))}
	for _, item := range c.Items {
		m.Lines = append(m.Lines, MirroredLine{
			ProductID:    item.Product.ID,
			Quantity:     item.Quantity,
			PurchaseType: item.PurchaseType,
			PlanID:       item.SubscriptionPlanID,
			Exchange:     item.HasBottleExchange,
		})
	}
	return m
}
