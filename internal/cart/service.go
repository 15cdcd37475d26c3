package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/aquaflow-backend/internal/catalog"
	"github.com/angelmondragon/aquaflow-backend/internal/pricing"
	"github.com/angelmondragon/aquaflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/aquaflow-backend/pkg/errors"
	"github.com/angelmondragon/aquaflow-backend/pkg/logger"
)

type productGetter interface {
	Get(ctx context.Context, id string) (*catalog.Product, error)
}

type planLookup interface {
	Lookup(ctx context.Context) (pricing.PlanLookup, error)
}

// AddItemInput is the customer's request to add a product.
type AddItemInput struct {
	ProductID          string             `json:"productId" validate:"required"`
	Quantity           int                `json:"quantity" validate:"gte=1,lte=999"`
	PurchaseType       enums.PurchaseType `json:"purchaseType" validate:"required"`
	SubscriptionPlanID *string            `json:"subscriptionPlan"`
	HasBottleExchange  *bool              `json:"hasBottleExchange"`
}

// ViewLine is a line with its computed prices.
type ViewLine struct {
	LineItem
	Key       LineKey         `json:"key"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
	PlanName  string          `json:"planName,omitempty"`
}

// View is the priced cart shown by the storefront.
type View struct {
	Items      []ViewLine      `json:"items"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	TotalItems int             `json:"totalItems"`
	IsOpen     bool            `json:"isOpen"`
}

// Service loads, mutates and persists carts.
type Service interface {
	Load(ctx context.Context, cartID string, mirror Mirror) (*Cart, error)
	Add(ctx context.Context, cartID string, mirror Mirror, input AddItemInput) (*View, error)
	UpdateQuantity(ctx context.Context, cartID string, mirror Mirror, key LineKey, quantity int) (*View, error)
	Remove(ctx context.Context, cartID string, mirror Mirror, productID string) (*View, error)
	Clear(ctx context.Context, cartID string, mirror Mirror) error
	Toggle(ctx context.Context, cartID string, mirror Mirror) (*View, error)
	View(ctx context.Context, c *Cart) (*View, error)
	Quote(ctx context.Context, c *Cart, postalCode, coupon string) (*pricing.Quote, error)
}

type service struct {
	store    Store
	products productGetter
	plans    planLookup
	settings pricing.Settings
	logg     *logger.Logger
}

// NewService builds a cart service.
func NewService(store Store, products productGetter, plans planLookup, settings pricing.Settings, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product getter required")
	}
	if plans == nil {
		return nil, fmt.Errorf("plan lookup required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{store: store, products: products, plans: plans, settings: settings, logg: logg}, nil
}

// Load rehydrates the cart. A valid consented cookie mirror overrides the
// durable copy and is written back; an absent cookie leaves the durable copy alone.
// The mirror carries only line keys and quantities, so prices always come
// from the current catalog.
func (s *service) Load(ctx context.Context, cartID string, mirror Mirror) (*Cart, error) {
	if strings.TrimSpace(cartID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id is required")
	}
	durable, err := s.store.Get(ctx, cartID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if mirror != nil && mirror.Enabled() {
		if mirrored, ok := mirror.Load(); ok && mirrored != nil {
			c, err := s.rehydrate(ctx, *mirrored)
			if err != nil {
				return nil, err
			}
			if err := s.store.Put(ctx, cartID, c); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write back mirrored cart")
			}
			return c, nil
		}
	}
	if durable == nil {
		return &Cart{}, nil
	}
	return durable, nil
}

// rehydrate rebuilds a cart from its cookie form against the live catalog.
// Lines whose product is gone or inactive are dropped.
func (s *service) rehydrate(ctx context.Context, m Mirrored) (*Cart, error) {
	c := &Cart{IsOpen: m.IsOpen}
	for _, line := range m.Lines {
		product, err := s.products.Get(ctx, line.ProductID)
		if err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
				continue
			}
			return nil, err
		}
		if !product.IsActive {
			continue
		}
		item := LineItem{
			Product:            *product,
			Quantity:           line.Quantity,
			PurchaseType:       line.PurchaseType,
			SubscriptionPlanID: line.PlanID,
			HasBottleExchange:  line.Exchange,
		}
		if err := c.AddItem(item); err != nil {
			s.logg.Warn(ctx, fmt.Sprintf("mirrored cart line dropped: %v", err))
		}
	}
	return c, nil
}

func (s *service) Add(ctx context.Context, cartID string, mirror Mirror, input AddItemInput) (*View, error) {
	product, err := s.products.Get(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if input.PurchaseType == enums.PurchaseTypeSubscription && input.SubscriptionPlanID != nil {
		plans, err := s.plans.Lookup(ctx)
		if err != nil {
			return nil, err
		}
		if _, ok := plans.Find(input.SubscriptionPlanID); !ok {
			return nil, pkgerrors.FieldErrors("invalid cart item", map[string]string{
				"subscriptionPlan": "subscription plan not found",
			})
		}
	}
	item := LineItem{
		Product:            *product,
		Quantity:           input.Quantity,
		PurchaseType:       input.PurchaseType,
		SubscriptionPlanID: input.SubscriptionPlanID,
		HasBottleExchange:  input.HasBottleExchange,
	}
	return s.mutate(ctx, cartID, mirror, func(c *Cart) error {
		return c.AddItem(item)
	})
}

func (s *service) UpdateQuantity(ctx context.Context, cartID string, mirror Mirror, key LineKey, quantity int) (*View, error) {
	return s.mutate(ctx, cartID, mirror, func(c *Cart) error {
		if !c.UpdateQuantity(key, quantity) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
		}
		return nil
	})
}

func (s *service) Remove(ctx context.Context, cartID string, mirror Mirror, productID string) (*View, error) {
	return s.mutate(ctx, cartID, mirror, func(c *Cart) error {
		c.RemoveItem(productID)
		return nil
	})
}

// Clear empties the durable cart and drops the cookie mirror.
func (s *service) Clear(ctx context.Context, cartID string, mirror Mirror) error {
	c, err := s.Load(ctx, cartID, nil)
	if err != nil {
		return err
	}
	c.Clear()
	if err := s.store.Put(ctx, cartID, c); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	if mirror != nil {
		mirror.Clear()
	}
	return nil
}

func (s *service) Toggle(ctx context.Context, cartID string, mirror Mirror) (*View, error) {
	return s.mutate(ctx, cartID, mirror, func(c *Cart) error {
		c.Toggle()
		return nil
	})
}

func (s *service) mutate(ctx context.Context, cartID string, mirror Mirror, fn func(*Cart) error) (*View, error) {
	c, err := s.Load(ctx, cartID, mirror)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, cartID, c); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	if mirror != nil && mirror.Enabled() {
		if err := mirror.Save(c.Mirrored()); err != nil {
			// an older cookie must not win over the durable cart on the next load
			mirror.Clear()
			s.logg.Warn(s.logg.WithCartID(ctx, cartID), fmt.Sprintf("cart mirror dropped: %v", err))
		}
	}
	return s.View(ctx, c)
}

// View prices every line against the current plan registry.
func (s *service) View(ctx context.Context, c *Cart) (*View, error) {
	plans, err := s.plans.Lookup(ctx)
	if err != nil {
		return nil, err
	}
	return Price(c, plans), nil
}

// Quote adds the display-only shipping estimate and coupon to the cart subtotal.
func (s *service) Quote(ctx context.Context, c *Cart, postalCode, coupon string) (*pricing.Quote, error) {
	plans, err := s.plans.Lookup(ctx)
	if err != nil {
		return nil, err
	}
	q, err := pricing.BuildQuote(c.PricingLines(), plans, postalCode, coupon, s.settings)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// Price builds the priced view of c. Checkout uses the same function so
// the cart page and the order summary always agree.
func Price(c *Cart, plans pricing.PlanLookup) *View {
	v := &View{Items: make([]ViewLine, 0, len(c.Items)), IsOpen: c.IsOpen, TotalPrice: decimal.Zero}
	for _, item := range c.Items {
		line := item.PricingLine()
		vl := ViewLine{
			LineItem:  item,
			Key:       item.Key(),
			UnitPrice: pricing.UnitPrice(line, plans),
			LineTotal: pricing.LineTotal(line, plans),
		}
		if plan, ok := plans.Find(item.SubscriptionPlanID); ok && item.PurchaseType == enums.PurchaseTypeSubscription {
			vl.PlanName = plan.Name
		}
		v.Items = append(v.Items, vl)
		v.TotalPrice = v.TotalPrice.Add(vl.LineTotal)
	}
	v.TotalItems = c.TotalItems()
	return v
}
