package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/aquaflow-backend/pkg/errors"
)

// CouponResult describes a percentage-off applied to a subtotal.
type CouponResult struct {
	Code     string          `json:"code"`
	Percent  int             `json:"percent"`
	Discount decimal.Decimal `json:"discount"`
}

// ApplyCoupon computes the discount for code against subtotal. Codes are
// case-insensitive; unknown codes are a validation error.
func ApplyCoupon(subtotal decimal.Decimal, code string, table map[string]int) (CouponResult, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	percent, ok := lookupCoupon(table, normalized)
	if normalized == "" || !ok || percent <= 0 || percent > 100 {
		return CouponResult{}, pkgerrors.FieldErrors("invalid coupon", map[string]string{
			"coupon": "coupon code is not valid",
		})
	}
	discount := subtotal.Mul(decimal.NewFromInt(int64(percent))).Div(decimal.NewFromInt(100)).Round(2)
	return CouponResult{Code: normalized, Percent: percent, Discount: discount}, nil
}

func lookupCoupon(table map[string]int, code string) (int, bool) {
	if p, ok := table[code]; ok {
		return p, true
	}
	for k, p := range table {
		if strings.EqualFold(strings.TrimSpace(k), code) {
			return p, true
		}
	}
	return 0, false
}
