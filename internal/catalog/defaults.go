package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/aquaflow-backend/pkg/db/models"
	"github.com/angelmondragon/aquaflow-backend/pkg/enums"
)

func pkr(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func deposit(v int64) *decimal.Decimal {
	d := pkr(v)
	return &d
}

// DefaultProducts returns the built-in seed catalog.
func DefaultProducts() []models.Product {
	return []models.Product{
		{
			ID: "1", Name: "19L Mineral Water Bottle", Size: "19L", Type: enums.ProductTypeBottle,
			Description: "Refillable 19 litre bottle for home and office dispensers.",
			Price:       pkr(250), Image: "/images/products/19l-bottle.jpg",
			Featured: true, HasExchange: true, DepositPrice: deposit(1000), IsActive: true, SortOrder: 1,
		},
		{
			ID: "2", Name: "6L Water Bottle", Size: "6L", Type: enums.ProductTypeBottle,
			Description: "Easy-carry 6 litre bottle for kitchens and small families.",
			Price:       pkr(120), Image: "/images/products/6l-bottle.jpg",
			Featured: true, IsActive: true, SortOrder: 2,
		},
		{
			ID: "3", Name: "1.5L Water Pack (6 bottles)", Size: "6 x 1.5L", Type: enums.ProductTypeBottle,
			Description: "Six sealed 1.5 litre bottles.",
			Price:       pkr(360), Image: "/images/products/1-5l-pack.jpg",
			IsActive: true, SortOrder: 3,
		},
		{
			ID: "4", Name: "500ml Water Pack (12 bottles)", Size: "12 x 500ml", Type: enums.ProductTypeBottle,
			Description: "Twelve 500ml bottles for travel, school and events.",
			Price:       pkr(300), Image: "/images/products/500ml-pack.jpg",
			Featured: true, IsActive: true, SortOrder: 4,
		},
		{
			ID: "5", Name: "Hot & Cold Water Dispenser", Size: "Floor standing", Type: enums.ProductTypeDispenser,
			Description: "Floor standing dispenser with hot and cold taps for 19L bottles.",
			Price:       pkr(18500), Image: "/images/products/hot-cold-dispenser.jpg",
			Featured: true, IsActive: true, SortOrder: 5,
		},
		{
			ID: "6", Name: "Tabletop Water Dispenser", Size: "Tabletop", Type: enums.ProductTypeDispenser,
			Description: "Compact countertop dispenser for 19L bottles.",
			Price:       pkr(9500), Image: "/images/products/tabletop-dispenser.jpg",
			IsActive: true, SortOrder: 6,
		},
		{
			ID: "7", Name: "Manual Water Pump", Size: "Universal", Type: enums.ProductTypeAccessory,
			Description: "Hand pump that fits standard 19L bottle necks.",
			Price:       pkr(650), Image: "/images/products/manual-pump.jpg",
			IsActive: true, SortOrder: 7,
		},
		{
			ID: "8", Name: "Bottle Stand", Size: "Single bottle", Type: enums.ProductTypeAccessory,
			Description: "Steel stand that holds one 19L bottle off the floor.",
			Price:       pkr(1200), Image: "/images/products/bottle-stand.jpg",
			IsActive: true, SortOrder: 8,
		},
	}
}
