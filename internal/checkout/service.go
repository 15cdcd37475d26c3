package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/aquaflow-backend/internal/cart"
	"github.com/angelmondragon/aquaflow-backend/internal/notifications"
	"github.com/angelmondragon/aquaflow-backend/internal/orders"
	"github.com/angelmondragon/aquaflow-backend/internal/pricing"
	"github.com/angelmondragon/aquaflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/aquaflow-backend/pkg/errors"
	"github.com/angelmondragon/aquaflow-backend/pkg/logger"
	"github.com/angelmondragon/aquaflow-backend/pkg/metrics"
	"github.com/angelmondragon/aquaflow-backend/pkg/types"
)

type cartService interface {
	Load(ctx context.Context, cartID string, mirror cart.Mirror) (*cart.Cart, error)
	Clear(ctx context.Context, cartID string, mirror cart.Mirror) error
}

type planLookup interface {
	Lookup(ctx context.Context) (pricing.PlanLookup, error)
}

type orderCreator interface {
	Create(ctx context.Context, o *orders.Order) (string, error)
}

type dispatcher interface {
	Dispatch(ctx context.Context, summary notifications.Summary)
}

type observer interface {
	ObserveCheckout(outcome string, duration time.Duration)
}

// Options tunes the orchestrator. Zero values fall back to sane defaults.
type Options struct {
	SettleDelay   time.Duration
	DeliverySlots []string
	Location      *time.Location
	Now           func() time.Time
	Sleep         func(ctx context.Context, d time.Duration)
}

// Summary is what the checkout page shows before submission.
type Summary struct {
	State          State                 `json:"state"`
	Items          []cart.ViewLine       `json:"items"`
	Total          decimal.Decimal       `json:"total"`
	TotalItems     int                   `json:"totalItems"`
	DeliverySlots  []string              `json:"deliverySlots"`
	PaymentMethods []enums.PaymentMethod `json:"paymentMethods"`
	Confirmation   *Confirmation         `json:"confirmation,omitempty"`
}

// Confirmation is returned after an order was stored.
type Confirmation struct {
	OrderID string       `json:"orderId"`
	Order   orders.Order `json:"order"`
}

// Service drives a cart through checkout.
type Service interface {
	Summary(ctx context.Context, cartID string, mirror cart.Mirror) (*Summary, error)
	Submit(ctx context.Context, cartID string, mirror cart.Mirror, form Form) (*Confirmation, error)
	State(cartID string) State
}

type service struct {
	carts    cartService
	plans    planLookup
	orders   orderCreator
	notify   dispatcher
	metrics  observer
	tracker  *Tracker
	logg     *logger.Logger
	settle   time.Duration
	slots    []string
	location *time.Location
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration)
}

// NewService wires the orchestrator. obs may be nil.
func NewService(carts cartService, plans planLookup, store orderCreator, notify dispatcher, obs observer, tracker *Tracker, logg *logger.Logger, opts Options) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if plans == nil {
		return nil, fmt.Errorf("plan lookup required")
	}
	if store == nil {
		return nil, fmt.Errorf("order store required")
	}
	if notify == nil {
		return nil, fmt.Errorf("notification dispatcher required")
	}
	if tracker == nil {
		tracker = NewTracker(0, opts.Now)
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	s := &service{
		carts:    carts,
		plans:    plans,
		orders:   store,
		notify:   notify,
		metrics:  obs,
		tracker:  tracker,
		logg:     logg,
		settle:   opts.SettleDelay,
		slots:    opts.DeliverySlots,
		location: opts.Location,
		now:      opts.Now,
		sleep:    opts.Sleep,
	}
	if s.location == nil {
		s.location = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.sleep == nil {
		s.sleep = sleepContext
	}
	return s, nil
}

func (s *service) State(cartID string) State {
	state, _ := s.tracker.State(cartID)
	return state
}

// Summary prices the cart for the checkout page. An empty cart is a
// STATE_CONFLICT unless an order was just placed from it.
func (s *service) Summary(ctx context.Context, cartID string, mirror cart.Mirror) (*Summary, error) {
	state, confirmation := s.tracker.State(cartID)
	c, err := s.carts.Load(ctx, cartID, mirror)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() && !state.allowsEmptyCart() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
	}
	plans, err := s.plans.Lookup(ctx)
	if err != nil {
		return nil, err
	}
	view := cart.Price(c, plans)
	return &Summary{
		State:          state,
		Items:          view.Items,
		Total:          view.TotalPrice,
		TotalItems:     view.TotalItems,
		DeliverySlots:  s.slots,
		PaymentMethods: []enums.PaymentMethod{enums.PaymentMethodCashOnDelivery, enums.PaymentMethodMobileWallet},
		Confirmation:   confirmation,
	}, nil
}

// Submit validates the form, stores the order and clears the cart. On a
// store failure the cart is left untouched and the machine returns to editing.
func (s *service) Submit(ctx context.Context, cartID string, mirror cart.Mirror, form Form) (*Confirmation, error) {
	started := s.now()
	ctx = s.logg.WithCartID(ctx, cartID)

	if err := s.tracker.begin(cartID); err != nil {
		return nil, err
	}

	c, err := s.carts.Load(ctx, cartID, mirror)
	if err != nil {
		s.abort(cartID, StateEditing)
		return nil, err
	}
	if c.IsEmpty() {
		s.abort(cartID, StateEditing)
		s.observe(metrics.OutcomeEmptyCart, started)
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
	}

	valid, err := Validate(form, s.now(), s.location, s.slots)
	if err != nil {
		s.abort(cartID, StateEditing)
		s.observe(metrics.OutcomeValidation, started)
		return nil, err
	}

	if err := s.tracker.Transition(cartID, StateSubmitting); err != nil {
		return nil, err
	}

	plans, err := s.plans.Lookup(ctx)
	if err != nil {
		return nil, s.fail(ctx, cartID, started, err)
	}
	order := BuildOrder(c.Snapshot(), plans, valid)

	id, err := s.orders.Create(ctx, order)
	if err != nil {
		return nil, s.fail(ctx, cartID, started, err)
	}
	order.ID = id
	ctx = s.logg.WithOrderID(ctx, id)
	s.logg.Info(s.logg.WithField(ctx, "total", order.Total.StringFixed(2)), "order placed")

	s.notify.Dispatch(ctx, notifications.SummaryFromOrder(*order))
	s.sleep(ctx, s.settle)

	confirmation := &Confirmation{OrderID: id, Order: *order}
	if err := s.tracker.complete(cartID, confirmation); err != nil {
		return nil, err
	}
	if err := s.carts.Clear(s.logg.Detached(ctx), cartID, mirror); err != nil {
		s.logg.Error(ctx, "order placed but cart not cleared", err)
	}
	s.observe(metrics.OutcomeSuccess, started)
	return confirmation, nil
}

func (s *service) fail(ctx context.Context, cartID string, started time.Time, cause error) error {
	s.logg.Error(ctx, "order submission failed", cause)
	_ = s.tracker.Transition(cartID, StateFailed)
	_ = s.tracker.Transition(cartID, StateEditing)
	s.observe(metrics.OutcomeFailed, started)
	return pkgerrors.Wrap(pkgerrors.CodeDependency, cause, "could not place order, please retry")
}

func (s *service) abort(cartID string, to State) {
	_ = s.tracker.Transition(cartID, to)
}

func (s *service) observe(outcome string, started time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveCheckout(outcome, s.now().Sub(started))
	}
}

// BuildOrder turns a cart snapshot into a pending guest order. Plan details
// are copied onto each subscription line so later registry edits leave the
// order unchanged.
func BuildOrder(c cart.Cart, plans pricing.PlanLookup, f Form) *orders.Order {
	method := enums.PaymentMethod(f.PaymentMethod)
	o := &orders.Order{
		Items: make([]types.OrderItem, 0, len(c.Items)),
		Customer: types.CustomerDetails{
			UserID:        types.GuestCustomer,
			FirstName:     f.FirstName,
			LastName:      f.LastName,
			Email:         strings.ToLower(f.Email),
			Phone:         f.Phone,
			Address:       f.Address,
			City:          f.City,
			PostalCode:    f.PostalCode,
			Notes:         f.Notes,
			PaymentMethod: method,
		},
		Total:         c.TotalPrice(plans),
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusPending,
		PaymentMethod: method,
		DeliveryDate:  f.DeliveryDate,
		DeliveryTime:  f.DeliveryTime,
	}
	for _, item := range c.Items {
		line := item.PricingLine()
		oi := types.OrderItem{
			ProductID:         item.Product.ID,
			Name:              item.Product.Name,
			Price:             item.Product.Price,
			UnitPrice:         pricing.UnitPrice(line, plans),
			LineTotal:         pricing.LineTotal(line, plans),
			Quantity:          item.Quantity,
			PurchaseType:      item.PurchaseType,
			HasBottleExchange: item.HasBottleExchange,
		}
		if item.PurchaseType == enums.PurchaseTypeSubscription {
			if plan, ok := plans.Find(item.SubscriptionPlanID); ok {
				oi.SubscriptionDetails = &types.SubscriptionSnapshot{
					PlanID:    plan.ID,
					PlanName:  plan.Name,
					Frequency: plan.Frequency,
					Bottles:   plan.Bottles,
					Savings:   plan.Savings,
					Discount:  plan.Discount,
				}
			}
		}
		o.Items = append(o.Items, oi)
	}
	return o
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
