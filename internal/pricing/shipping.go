package pricing

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/aquaflow-backend/pkg/errors"
)

var postalCodeRe = regexp.MustCompile(`^\d{5}$`)

// ShippingBucket maps postal code prefixes to a flat delivery fee.
type ShippingBucket struct {
	Zone     string
	Prefixes []string
	Fee      decimal.Decimal
}

// ShippingEstimate is a display-only delivery fee.
type ShippingEstimate struct {
	PostalCode string          `json:"postalCode"`
	Zone       string          `json:"zone"`
	Fee        decimal.Decimal `json:"fee"`
}

// ParseShippingBuckets reads "zone=prefix|prefix:fee,..." where "*" matches any code.
func ParseShippingBuckets(raw string) ([]ShippingBucket, error) {
	var buckets []ShippingBucket
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		zone, rest, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("shipping bucket %q: missing '='", entry)
		}
		prefixes, feeRaw, ok := strings.Cut(rest, ":")
		if !ok {
			return nil, fmt.Errorf("shipping bucket %q: missing ':'", entry)
		}
		fee, err := decimal.NewFromString(strings.TrimSpace(feeRaw))
		if err != nil || fee.IsNegative() {
			return nil, fmt.Errorf("shipping bucket %q: invalid fee", entry)
		}
		bucket := ShippingBucket{Zone: strings.TrimSpace(zone), Fee: fee}
		for _, p := range strings.Split(prefixes, "|") {
			if p = strings.TrimSpace(p); p != "" {
				bucket.Prefixes = append(bucket.Prefixes, p)
			}
		}
		if bucket.Zone == "" || len(bucket.Prefixes) == 0 {
			return nil, fmt.Errorf("shipping bucket %q: zone and prefixes are required", entry)
		}
		buckets = append(buckets, bucket)
	}
	if len(buckets) == 0 {
		return nil, fmt.Errorf("at least one shipping bucket is required")
	}
	return buckets, nil
}

// ValidPostalCode reports whether code is a 5-digit postal code.
func ValidPostalCode(code string) bool {
	return postalCodeRe.MatchString(strings.TrimSpace(code))
}

// EstimateShipping picks the first bucket whose prefix matches the postal code.
func EstimateShipping(postalCode string, buckets []ShippingBucket) (ShippingEstimate, error) {
	code := strings.TrimSpace(postalCode)
	if !postalCodeRe.MatchString(code) {
		return ShippingEstimate{}, pkgerrors.FieldErrors("invalid postal code", map[string]string{
			"postalCode": "enter a valid 5-digit postal code",
		})
	}
	for _, bucket := range buckets {
		for _, prefix := range bucket.Prefixes {
			if prefix == "*" || strings.HasPrefix(code, prefix) {
				return ShippingEstimate{PostalCode: code, Zone: bucket.Zone, Fee: bucket.Fee}, nil
			}
		}
	}
	return ShippingEstimate{}, pkgerrors.FieldErrors("delivery not available", map[string]string{
		"postalCode": "we do not deliver to this postal code yet",
	})
}
