package checkout

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/aquaflow-backend/internal/cart"
	"github.com/angelmondragon/aquaflow-backend/internal/catalog"
	"github.com/angelmondragon/aquaflow-backend/internal/notifications"
	"github.com/angelmondragon/aquaflow-backend/internal/orders"
	"github.com/angelmondragon/aquaflow-backend/internal/pricing"
	"github.com/angelmondragon/aquaflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/aquaflow-backend/pkg/errors"
	"github.com/angelmondragon/aquaflow-backend/pkg/logger"
	"github.com/angelmondragon/aquaflow-backend/pkg/metrics"
)

var karachi = time.FixedZone("PKT", 5*60*60)

// 2026-03-10 23:30 in Karachi, still 18:30 UTC.
var fixedNow = time.Date(2026, 3, 10, 18, 30, 0, 0, time.UTC)

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }
func ptr[T any](v T) *T            { return &v }

type fakeCarts struct {
	mu       sync.Mutex
	carts    map[string]*cart.Cart
	cleared  []string
	clearErr error
}

func (f *fakeCarts) Load(_ context.Context, id string, _ cart.Mirror) (*cart.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.carts[id]
	if !ok {
		return &cart.Cart{}, nil
	}
	snap := c.Snapshot()
	return &snap, nil
}

func (f *fakeCarts) Clear(_ context.Context, id string, _ cart.Mirror) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clearErr != nil {
		return f.clearErr
	}
	f.cleared = append(f.cleared, id)
	f.carts[id] = &cart.Cart{}
	return nil
}

type fakePlans struct {
	mu     sync.Mutex
	lookup pricing.PlanLookup
}

func (f *fakePlans) Lookup(context.Context) (pricing.PlanLookup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := pricing.PlanLookup{}
	for k, v := range f.lookup {
		out[k] = v
	}
	return out, nil
}

type fakeStore struct {
	calls   int
	err     error
	created []*orders.Order
}

func (f *fakeStore) Create(_ context.Context, o *orders.Order) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	o.ID = "ord-1"
	f.created = append(f.created, o)
	return o.ID, nil
}

type fakeDispatcher struct {
	summaries []notifications.Summary
}

func (f *fakeDispatcher) Dispatch(_ context.Context, s notifications.Summary) {
	f.summaries = append(f.summaries, s)
}

type fixture struct {
	svc      Service
	carts    *fakeCarts
	plans    *fakePlans
	store    *fakeStore
	dispatch *fakeDispatcher
	tracker  *Tracker
	slept    time.Duration
	now      time.Time
}

func bottle() catalog.Product {
	deposit := dec("1000")
	return catalog.Product{ID: "1", Name: "19L Bottle", Price: dec("250"), Type: enums.ProductTypeBottle,
		HasExchange: true, DepositPrice: &deposit, IsActive: true}
}

func filledCart(t *testing.T) *cart.Cart {
	t.Helper()
	c := &cart.Cart{}
	require.NoError(t, c.AddItem(cart.LineItem{Product: bottle(), Quantity: 1, PurchaseType: enums.PurchaseTypeOneTime, HasBottleExchange: ptr(false)}))
	require.NoError(t, c.AddItem(cart.LineItem{Product: bottle(), Quantity: 2, PurchaseType: enums.PurchaseTypeSubscription,
		SubscriptionPlanID: ptr("family"), HasBottleExchange: ptr(true)}))
	return c
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		carts: &fakeCarts{carts: map[string]*cart.Cart{"c1": filledCart(t)}},
		plans: &fakePlans{lookup: pricing.PlanLookup{
			"family": {ID: "family", Name: "Family", Frequency: "weekly", Bottles: 8, Savings: "Save 15%", Discount: dec("0.15")},
		}},
		store:    &fakeStore{},
		dispatch: &fakeDispatcher{},
		now:      fixedNow,
	}
	clock := func() time.Time { return f.now }
	f.tracker = NewTracker(10*time.Minute, clock)
	svc, err := NewService(f.carts, f.plans, f.store, f.dispatch, metrics.NewStorefront(nil), f.tracker,
		logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}}),
		Options{
			SettleDelay:   300 * time.Millisecond,
			DeliverySlots: []string{"09:00-12:00", "12:00-15:00"},
			Location:      karachi,
			Now:           clock,
			Sleep:         func(_ context.Context, d time.Duration) { f.slept += d },
		})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func validForm() Form {
	return Form{
		FirstName: "Ayesha", LastName: "Khan", Email: "Ayesha@Example.com", Phone: "+92 300-1234567",
		Address: "House 1, Street 2", City: "Karachi", PostalCode: "74000",
		DeliveryDate: "2026-03-10", DeliveryTime: "09:00-12:00", PaymentMethod: "cash_on_delivery",
	}
}

func TestSubmitPlacesOrderAndClearsCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	conf, err := f.svc.Submit(ctx, "c1", nil, validForm())
	require.NoError(t, err)

	assert.Equal(t, "ord-1", conf.OrderID)
	assert.Equal(t, StateCompleted, f.svc.State("c1"))
	assert.Equal(t, []string{"c1"}, f.carts.cleared)
	assert.Len(t, f.dispatch.summaries, 1)
	assert.Equal(t, 300*time.Millisecond, f.slept)

	o := f.store.created[0]
	// (250 + 1000) + 250 * 0.85 * 2
	assert.True(t, dec("1675").Equal(o.Total), o.Total.String())
	assert.Equal(t, enums.OrderStatusPending, o.Status)
	assert.Equal(t, enums.PaymentStatusPending, o.PaymentStatus)
	assert.Equal(t, "guest", o.Customer.UserID)
	assert.Equal(t, "ayesha@example.com", o.Customer.Email)
	require.Len(t, o.Items, 2)
	assert.Nil(t, o.Items[0].SubscriptionDetails)
	require.NotNil(t, o.Items[1].SubscriptionDetails)
	assert.Equal(t, "Family", o.Items[1].SubscriptionDetails.PlanName)
	assert.True(t, dec("212.5").Equal(o.Items[1].UnitPrice))
}

func TestCheckoutTotalMatchesCartView(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	summary, err := f.svc.Summary(ctx, "c1", nil)
	require.NoError(t, err)
	plans, _ := f.plans.Lookup(ctx)
	view := cart.Price(f.carts.carts["c1"], plans)
	assert.True(t, view.TotalPrice.Equal(summary.Total))
	assert.True(t, f.carts.carts["c1"].TotalPrice(plans).Equal(summary.Total))
	for i := range view.Items {
		assert.True(t, view.Items[i].LineTotal.Equal(summary.Items[i].LineTotal))
	}

	conf, err := f.svc.Submit(ctx, "c1", nil, validForm())
	require.NoError(t, err)
	assert.True(t, summary.Total.Equal(conf.Order.Total))
}

func TestOrderSnapshotSurvivesPlanChanges(t *testing.T) {
	f := newFixture(t)
	conf, err := f.svc.Submit(context.Background(), "c1", nil, validForm())
	require.NoError(t, err)
	before := conf.Order.Total

	f.plans.mu.Lock()
	f.plans.lookup["family"] = pricing.PlanTerms{ID: "family", Name: "Family Plus", Discount: dec("0.5")}
	f.plans.mu.Unlock()

	stored := f.store.created[0]
	assert.True(t, before.Equal(stored.Total))
	assert.Equal(t, "Family", stored.Items[1].SubscriptionDetails.PlanName)
	assert.True(t, dec("0.15").Equal(stored.Items[1].SubscriptionDetails.Discount))
}

func TestPastDeliveryDateNeverReachesStore(t *testing.T) {
	f := newFixture(t)
	form := validForm()
	form.DeliveryDate = "2026-03-09"

	_, err := f.svc.Submit(context.Background(), "c1", nil, form)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Contains(t, typed.Details().(map[string]string), "deliveryDate")
	assert.Zero(t, f.store.calls)
	assert.Equal(t, StateEditing, f.svc.State("c1"))
	assert.Empty(t, f.carts.cleared)
}

func TestStoreFailurePreservesCart(t *testing.T) {
	f := newFixture(t)
	f.store.err = errors.New("firestore unavailable")
	before := f.carts.carts["c1"].Snapshot()

	_, err := f.svc.Submit(context.Background(), "c1", nil, validForm())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	assert.Equal(t, "could not place order, please retry", pkgerrors.As(err).Message())

	assert.Equal(t, StateEditing, f.svc.State("c1"))
	assert.Empty(t, f.carts.cleared)
	assert.Empty(t, f.dispatch.summaries)
	assert.Equal(t, before, f.carts.carts["c1"].Snapshot())

	f.store.err = nil
	_, err = f.svc.Submit(context.Background(), "c1", nil, validForm())
	require.NoError(t, err)
}

func TestEmptyCartGuard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Summary(ctx, "empty", nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
	_, err = f.svc.Submit(ctx, "empty", nil, validForm())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
	assert.Zero(t, f.store.calls)

	_, err = f.svc.Submit(ctx, "c1", nil, validForm())
	require.NoError(t, err)
	summary, err := f.svc.Summary(ctx, "c1", nil)
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, summary.State)
	require.NotNil(t, summary.Confirmation)
	assert.Equal(t, "ord-1", summary.Confirmation.OrderID)
}

func TestCompletedCheckoutExpires(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, "c1", nil, validForm())
	require.NoError(t, err)
	f.now = f.now.Add(9 * time.Minute)
	summary, err := f.svc.Summary(ctx, "c1", nil)
	require.NoError(t, err)
	assert.NotNil(t, summary.Confirmation)

	f.now = f.now.Add(2 * time.Minute)
	_, err = f.svc.Summary(ctx, "c1", nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
	assert.Equal(t, StateEditing, f.svc.State("c1"))
	assert.Zero(t, f.tracker.Len())
}

func TestTrackerKeepsNoEntryForRestingCarts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Summary(ctx, "c1", nil)
	require.NoError(t, err)
	bad := validForm()
	bad.Email = "nope"
	_, err = f.svc.Submit(ctx, "c1", nil, bad)
	require.Error(t, err)
	f.store.err = errors.New("db down")
	_, err = f.svc.Submit(ctx, "c1", nil, validForm())
	require.Error(t, err)

	assert.Zero(t, f.tracker.Len())
}

func TestStaleSubmissionIsReleased(t *testing.T) {
	now := fixedNow
	tr := NewTracker(time.Minute, func() time.Time { return now })
	require.NoError(t, tr.begin("c"))
	assert.True(t, pkgerrors.IsCode(tr.begin("c"), pkgerrors.CodeStateConflict))

	now = now.Add(2 * time.Minute)
	require.NoError(t, tr.begin("c"))
}

func TestClearFailureStillConfirms(t *testing.T) {
	f := newFixture(t)
	f.carts.clearErr = errors.New("redis down")
	conf, err := f.svc.Submit(context.Background(), "c1", nil, validForm())
	require.NoError(t, err)
	assert.Equal(t, "ord-1", conf.OrderID)
}

func TestValidateFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Form)
		field  string
	}{
		{"blank first name", func(f *Form) { f.FirstName = "   " }, "firstName"},
		{"bad email", func(f *Form) { f.Email = "not-an-email" }, "email"},
		{"short phone", func(f *Form) { f.Phone = "12345" }, "phone"},
		{"letters in phone", func(f *Form) { f.Phone = "0300-CALL-ME" }, "phone"},
		{"postal code", func(f *Form) { f.PostalCode = "7400" }, "postalCode"},
		{"date format", func(f *Form) { f.DeliveryDate = "10/03/2026" }, "deliveryDate"},
		{"slot", func(f *Form) { f.DeliveryTime = "midnight" }, "deliveryTime"},
		{"payment", func(f *Form) { f.PaymentMethod = "card" }, "paymentMethod"},
	}
	slots := []string{"09:00-12:00"}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			form := validForm()
			tc.mutate(&form)
			_, err := Validate(form, fixedNow, karachi, slots)
			require.Error(t, err)
			assert.Contains(t, pkgerrors.As(err).Details().(map[string]string), tc.field)
		})
	}

	got, err := Validate(validForm(), fixedNow, karachi, slots)
	require.NoError(t, err)
	assert.Equal(t, "Ayesha", got.FirstName)

	// 19:30 UTC is already the 11th in Karachi
	form := validForm()
	form.DeliveryDate = "2026-03-11"
	_, err = Validate(form, time.Date(2026, 3, 10, 19, 30, 0, 0, time.UTC), karachi, nil)
	require.NoError(t, err)
	form.DeliveryDate = "2026-03-10"
	_, err = Validate(form, time.Date(2026, 3, 10, 19, 30, 0, 0, time.UTC), karachi, nil)
	require.Error(t, err)
}

func TestTrackerTransitions(t *testing.T) {
	tr := NewTracker(0, nil)
	assert.True(t, pkgerrors.IsCode(tr.Transition("c", StateSubmitting), pkgerrors.CodeStateConflict))
	require.NoError(t, tr.begin("c"))
	assert.True(t, pkgerrors.IsCode(tr.begin("c"), pkgerrors.CodeStateConflict))
	require.NoError(t, tr.Transition("c", StateSubmitting))
	require.NoError(t, tr.Transition("c", StateFailed))
	require.NoError(t, tr.Transition("c", StateEditing))
	state, _ := tr.State("c")
	assert.Equal(t, StateEditing, state)

	assert.True(t, StateCompleted.CanTransition(StateEditing))
	assert.False(t, StateCompleted.CanTransition(StateSubmitting))
	tr.Forget("c")
	state, _ = tr.State("c")
	assert.Equal(t, StateEditing, state)
}
