package enums

import "fmt"

// ProductType classifies catalog items.
type ProductType string

const (
	ProductTypeBottle    ProductType = "bottle"
	ProductTypeDispenser ProductType = "dispenser"
	ProductTypeAccessory ProductType = "accessory"
)

var validProductTypes = []ProductType{
	ProductTypeBottle,
	ProductTypeDispenser,
	ProductTypeAccessory,
}

// String implements fmt.Stringer.
func (v ProductType) String() string {
	return string(v)
}

// IsValid reports whether the value is a known ProductType.
func (v ProductType) IsValid() bool {
	for _, candidate := range validProductTypes {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseProductType converts raw input into a ProductType.
func ParseProductType(value string) (ProductType, error) {
	for _, candidate := range validProductTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product type %q", value)
}
