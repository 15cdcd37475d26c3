package plans

import "github.com/shopspring/decimal"

// DefaultPlans returns the built-in Basic, Family and Premium plans.
func DefaultPlans() []PlanInput {
	return []PlanInput{
		{
			Name:      "Basic",
			Price:     decimal.NewFromInt(1000),
			Bottles:   4,
			Frequency: "Monthly",
			Discount:  decimal.RequireFromString("0.10"),
			Features: []string{
				"4 x 19L bottles every month",
				"Free doorstep delivery",
				"Flexible delivery slots",
				"Pause or cancel anytime",
			},
		},
		{
			Name:      "Family",
			Price:     decimal.NewFromInt(1800),
			Bottles:   8,
			Frequency: "Bi-Weekly",
			Popular:   true,
			Discount:  decimal.RequireFromString("0.15"),
			Features: []string{
				"8 x 19L bottles every two weeks",
				"Free doorstep delivery",
				"Priority delivery slots",
				"Free bottle exchange",
				"Pause or cancel anytime",
			},
		},
		{
			Name:      "Premium",
			Price:     decimal.NewFromInt(2500),
			Bottles:   12,
			Frequency: "Weekly",
			Discount:  decimal.RequireFromString("0.18"),
			Features: []string{
				"12 x 19L bottles every week",
				"Free doorstep delivery",
				"Guaranteed delivery slot",
				"Free bottle exchange",
				"Free dispenser servicing",
				"Dedicated account manager",
			},
		},
	}
}

// defaultIDs keeps seeded plan ids stable so carts referencing them survive a reset.
var defaultIDs = []string{"basic", "family", "premium"}
