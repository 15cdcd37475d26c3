package plans

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/aquaflow-backend/internal/pricing"
	"github.com/angelmondragon/aquaflow-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/aquaflow-backend/pkg/db/types"
)

// Plan is a recurring-delivery offer. Discount is the fraction off the
// regular price; DiscountPercent and Savings are display copies of it.
type Plan struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	Bottles         int             `json:"bottles"`
	Frequency       string          `json:"frequency"`
	Popular         bool            `json:"popular"`
	Savings         string          `json:"savings"`
	DiscountPercent int             `json:"discountPercent"`
	Features        []string        `json:"features"`
	Discount        decimal.Decimal `json:"discount"`
}

// Terms returns the pricing view of the plan.
func (p Plan) Terms() pricing.PlanTerms {
	return pricing.PlanTerms{
		ID:        p.ID,
		Name:      p.Name,
		Frequency: p.Frequency,
		Bottles:   p.Bottles,
		Savings:   p.Savings,
		Discount:  p.Discount,
	}
}

// PlanInput holds the payload to create or replace a plan.
type PlanInput struct {
	Name      string          `json:"name" validate:"required,max=80"`
	Price     decimal.Decimal `json:"price"`
	Bottles   int             `json:"bottles" validate:"gte=1"`
	Frequency string          `json:"frequency" validate:"required,max=40"`
	Popular   bool            `json:"popular"`
	Savings   string          `json:"savings" validate:"max=40"`
	Features  []string        `json:"features" validate:"max=20,dive,max=120"`
	Discount  decimal.Decimal `json:"discount"`
}

func fromModel(m models.SubscriptionPlan) Plan {
	features := m.Features.Val
	if features == nil {
		features = []string{}
	}
	return Plan{
		ID:              m.ID,
		Name:            m.Name,
		Price:           m.Price,
		Bottles:         m.Bottles,
		Frequency:       m.Frequency,
		Popular:         m.Popular,
		Savings:         m.Savings,
		DiscountPercent: m.DiscountPercent,
		Features:        features,
		Discount:        m.Discount,
	}
}

func toModel(id string, sort int, in PlanInput) models.SubscriptionPlan {
	discount := in.Discount.Round(4)
	percent := discountPercent(discount)
	savings := in.Savings
	if savings == "" {
		savings = SavingsLabel(percent)
	}
	features := make([]string, 0, len(in.Features))
	features = append(features, in.Features...)
	return models.SubscriptionPlan{
		ID:              id,
		Name:            in.Name,
		Price:           in.Price.Round(2),
		Bottles:         in.Bottles,
		Frequency:       in.Frequency,
		Popular:         in.Popular,
		Savings:         savings,
		DiscountPercent: percent,
		Discount:        discount,
		Features:        dbtypes.NewJSON(features),
		SortOrder:       sort,
	}
}

func discountPercent(d decimal.Decimal) int {
	return int(d.Mul(decimal.NewFromInt(100)).Round(0).IntPart())
}

// SavingsLabel renders the display label for a discount percentage.
func SavingsLabel(percent int) string {
	if percent <= 0 {
		return ""
	}
	return fmt.Sprintf("Save %d%%", percent)
}
