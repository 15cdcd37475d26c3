package enums

import "fmt"

// PurchaseType distinguishes single purchases from recurring deliveries.
type PurchaseType string

const (
	PurchaseTypeOneTime      PurchaseType = "one-time"
	PurchaseTypeSubscription PurchaseType = "subscription"
)

var validPurchaseTypes = []PurchaseType{
	PurchaseTypeOneTime,
	PurchaseTypeSubscription,
}

// String implements fmt.Stringer.
func (v PurchaseType) String() string {
	return string(v)
}

// IsValid reports whether the value is a known PurchaseType.
func (v PurchaseType) IsValid() bool {
	for _, candidate := range validPurchaseTypes {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParsePurchaseType converts raw input into a PurchaseType.
func ParsePurchaseType(value string) (PurchaseType, error) {
	for _, candidate := range validPurchaseTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid purchase type %q", value)
}
