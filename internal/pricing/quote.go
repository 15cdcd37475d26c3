package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Settings holds the display-layer tables used by Quote.
type Settings struct {
	Buckets []ShippingBucket
	Coupons map[string]int
}

// Quote is the cart page summary. Shipping and coupon never affect the
// order total recorded at checkout.
type Quote struct {
	Subtotal   decimal.Decimal   `json:"subtotal"`
	Discount   decimal.Decimal   `json:"discount"`
	Shipping   decimal.Decimal   `json:"shipping"`
	GrandTotal decimal.Decimal   `json:"grandTotal"`
	TotalItems int               `json:"totalItems"`
	Coupon     *CouponResult     `json:"coupon,omitempty"`
	Estimate   *ShippingEstimate `json:"shippingEstimate,omitempty"`
}

// BuildQuote aggregates the subtotal with optional shipping estimate and coupon.
func BuildQuote(lines []Line, plans PlanLookup, postalCode, coupon string, settings Settings) (Quote, error) {
	q := Quote{
		Subtotal:   CartTotal(lines, plans),
		Discount:   decimal.Zero,
		Shipping:   decimal.Zero,
		TotalItems: TotalItems(lines),
	}
	if strings.TrimSpace(postalCode) != "" {
		est, err := EstimateShipping(postalCode, settings.Buckets)
		if err != nil {
			return Quote{}, err
		}
		q.Estimate = &est
		q.Shipping = est.Fee
	}
	if strings.TrimSpace(coupon) != "" {
		res, err := ApplyCoupon(q.Subtotal, coupon, settings.Coupons)
		if err != nil {
			return Quote{}, err
		}
		q.Coupon = &res
		q.Discount = res.Discount
	}
	q.GrandTotal = q.Subtotal.Sub(q.Discount).Add(q.Shipping)
	return q, nil
}
