package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/aquaflow-backend/internal/catalog"
	"github.com/angelmondragon/aquaflow-backend/internal/pricing"
	"github.com/angelmondragon/aquaflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/aquaflow-backend/pkg/errors"
	"github.com/angelmondragon/aquaflow-backend/pkg/logger"
)

type memStore struct {
	carts map[string]*Cart
	err   error
}

func newMemStore() *memStore { return &memStore{carts: map[string]*Cart{}} }

func (m *memStore) Get(_ context.Context, id string) (*Cart, error) {
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.carts[id]
	if !ok {
		return nil, nil
	}
	snap := c.Snapshot()
	return &snap, nil
}

func (m *memStore) Put(_ context.Context, id string, c *Cart) error {
	if m.err != nil {
		return m.err
	}
	snap := c.Snapshot()
	m.carts[id] = &snap
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	delete(m.carts, id)
	return nil
}

type fakeMirror struct {
	enabled bool
	state   *Mirrored
	saved   int
	saveErr error
	cleared bool
}

func mirrorOf(c *Cart) *Mirrored {
	m := c.Mirrored()
	return &m
}

func (f *fakeMirror) Enabled() bool { return f.enabled }
func (f *fakeMirror) Load() (*Mirrored, bool) {
	if f.state == nil {
		return nil, false
	}
	cp := *f.state
	return &cp, true
}
func (f *fakeMirror) Save(m Mirrored) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.state = &m
	f.saved++
	return nil
}
func (f *fakeMirror) Clear() {
	f.state = nil
	f.cleared = true
}

type fakeProducts map[string]catalog.Product

func (f fakeProducts) Get(_ context.Context, id string) (*catalog.Product, error) {
	p, ok := f[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return &p, nil
}

type fakePlans pricing.PlanLookup

func (f fakePlans) Lookup(context.Context) (pricing.PlanLookup, error) {
	return pricing.PlanLookup(f), nil
}

func newTestCartService(t *testing.T, store Store) Service {
	t.Helper()
	inactive := pump()
	inactive.ID = "9"
	inactive.IsActive = false
	svc, err := NewService(store,
		fakeProducts{"1": bottle(), "7": pump(), "9": inactive},
		fakePlans(testPlans()),
		pricing.Settings{Coupons: map[string]int{"WELCOME10": 10}},
		logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}}),
	)
	require.NoError(t, err)
	return svc
}

func TestAddIsIdempotentMerge(t *testing.T) {
	store := newMemStore()
	svc := newTestCartService(t, store)
	ctx := context.Background()
	input := AddItemInput{ProductID: "1", Quantity: 2, PurchaseType: enums.PurchaseTypeOneTime, HasBottleExchange: ptr(true)}

	_, err := svc.Add(ctx, "c1", nil, input)
	require.NoError(t, err)
	view, err := svc.Add(ctx, "c1", nil, input)
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, 4, view.TotalItems)
	assert.True(t, dec("1000").Equal(view.TotalPrice))
	assert.True(t, dec("250").Equal(view.Items[0].UnitPrice))
}

func TestAddRejectsInactiveProductAndUnknownPlan(t *testing.T) {
	svc := newTestCartService(t, newMemStore())
	ctx := context.Background()

	_, err := svc.Add(ctx, "c1", nil, AddItemInput{ProductID: "9", Quantity: 1, PurchaseType: enums.PurchaseTypeOneTime})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.Add(ctx, "c1", nil, AddItemInput{ProductID: "1", Quantity: 1, PurchaseType: enums.PurchaseTypeSubscription, SubscriptionPlanID: ptr("gold")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestViewNamesSubscriptionPlan(t *testing.T) {
	svc := newTestCartService(t, newMemStore())
	view, err := svc.Add(context.Background(), "c1", nil, AddItemInput{
		ProductID: "1", Quantity: 1, PurchaseType: enums.PurchaseTypeSubscription,
		SubscriptionPlanID: ptr("family"), HasBottleExchange: ptr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, "Family", view.Items[0].PlanName)
	assert.True(t, dec("212.5").Equal(view.Items[0].UnitPrice))
}

func TestRemoveLeavesZeroTotals(t *testing.T) {
	svc := newTestCartService(t, newMemStore())
	ctx := context.Background()
	_, err := svc.Add(ctx, "c1", nil, AddItemInput{ProductID: "7", Quantity: 3, PurchaseType: enums.PurchaseTypeOneTime})
	require.NoError(t, err)

	view, err := svc.Remove(ctx, "c1", nil, "7")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Zero(t, view.TotalItems)
	assert.True(t, view.TotalPrice.IsZero())
}

func TestUpdateQuantityUnknownLine(t *testing.T) {
	svc := newTestCartService(t, newMemStore())
	_, err := svc.UpdateQuantity(context.Background(), "c1", nil, LineKey{ProductID: "1", PurchaseType: enums.PurchaseTypeOneTime}, 2)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestLoadPrefersConsentedMirror(t *testing.T) {
	store := newMemStore()
	svc := newTestCartService(t, store)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "c1", &Cart{Items: []LineItem{{Product: pump(), Quantity: 1, PurchaseType: enums.PurchaseTypeOneTime}}}))

	mirror := &fakeMirror{enabled: true, state: mirrorOf(&Cart{Items: []LineItem{{Product: pump(), Quantity: 5, PurchaseType: enums.PurchaseTypeOneTime}}})}
	loaded, err := svc.Load(ctx, "c1", mirror)
	require.NoError(t, err)
	assert.Equal(t, 5, loaded.TotalItems())

	durable, err := store.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 5, durable.TotalItems())
}

func TestLoadKeepsDurableCopyWithoutMirror(t *testing.T) {
	store := newMemStore()
	svc := newTestCartService(t, store)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "c1", &Cart{Items: []LineItem{{Product: pump(), Quantity: 2, PurchaseType: enums.PurchaseTypeOneTime}}}))

	loaded, err := svc.Load(ctx, "c1", &fakeMirror{enabled: true})
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.TotalItems())

	withoutConsent := &fakeMirror{enabled: false, state: &Mirrored{}}
	loaded, err = svc.Load(ctx, "c1", withoutConsent)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.TotalItems())
}

func TestMutationsWriteMirrorOnlyWithConsent(t *testing.T) {
	svc := newTestCartService(t, newMemStore())
	ctx := context.Background()

	granted := &fakeMirror{enabled: true}
	_, err := svc.Add(ctx, "c1", granted, AddItemInput{ProductID: "7", Quantity: 1, PurchaseType: enums.PurchaseTypeOneTime})
	require.NoError(t, err)
	assert.Equal(t, 1, granted.saved)

	denied := &fakeMirror{enabled: false}
	_, err = svc.Add(ctx, "c2", denied, AddItemInput{ProductID: "7", Quantity: 1, PurchaseType: enums.PurchaseTypeOneTime})
	require.NoError(t, err)
	assert.Zero(t, denied.saved)
}

func TestLoadRehydratesMirrorFromCatalog(t *testing.T) {
	store := newMemStore()
	svc := newTestCartService(t, store)
	ctx := context.Background()

	mirror := &fakeMirror{enabled: true, state: &Mirrored{IsOpen: true, Lines: []MirroredLine{
		{ProductID: "1", Quantity: 2, PurchaseType: enums.PurchaseTypeOneTime, Exchange: ptr(true)},
		{ProductID: "9", Quantity: 1, PurchaseType: enums.PurchaseTypeOneTime},
		{ProductID: "gone", Quantity: 1, PurchaseType: enums.PurchaseTypeOneTime},
	}}}
	loaded, err := svc.Load(ctx, "c1", mirror)
	require.NoError(t, err)

	require.Len(t, loaded.Items, 1)
	assert.True(t, loaded.IsOpen)
	assert.Equal(t, "19L Bottle", loaded.Items[0].Product.Name)
	assert.True(t, dec("250").Equal(loaded.Items[0].Product.Price))
	assert.Equal(t, 2, loaded.Items[0].Quantity)
}

func TestFailedMirrorWriteClearsCookieAndKeepsDurableCart(t *testing.T) {
	store := newMemStore()
	svc := newTestCartService(t, store)
	ctx := context.Background()

	mirror := &fakeMirror{enabled: true}
	_, err := svc.Add(ctx, "c1", mirror, AddItemInput{ProductID: "1", Quantity: 1, PurchaseType: enums.PurchaseTypeOneTime})
	require.NoError(t, err)
	require.NotNil(t, mirror.state)

	mirror.saveErr = errors.New("securecookie: the value is too long")
	view, err := svc.Add(ctx, "c1", mirror, AddItemInput{ProductID: "7", Quantity: 1, PurchaseType: enums.PurchaseTypeOneTime})
	require.NoError(t, err)
	assert.Len(t, view.Items, 2)
	assert.True(t, mirror.cleared)
	assert.Nil(t, mirror.state)

	loaded, err := svc.Load(ctx, "c1", mirror)
	require.NoError(t, err)
	assert.Len(t, loaded.Items, 2)
}

func TestAddPastLineLimitIsRejected(t *testing.T) {
	store := newMemStore()
	svc := newTestCartService(t, store)
	ctx := context.Background()

	_, err := svc.Add(ctx, "c1", nil, AddItemInput{ProductID: "7", Quantity: 999, PurchaseType: enums.PurchaseTypeOneTime})
	require.NoError(t, err)
	_, err = svc.Add(ctx, "c1", nil, AddItemInput{ProductID: "7", Quantity: 1, PurchaseType: enums.PurchaseTypeOneTime})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	durable, err := store.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 999, durable.TotalItems())
}

func TestClearEmptiesStoreAndMirror(t *testing.T) {
	store := newMemStore()
	svc := newTestCartService(t, store)
	ctx := context.Background()
	mirror := &fakeMirror{enabled: true}
	_, err := svc.Add(ctx, "c1", mirror, AddItemInput{ProductID: "7", Quantity: 1, PurchaseType: enums.PurchaseTypeOneTime})
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, "c1", mirror))
	assert.True(t, mirror.cleared)
	durable, err := store.Get(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, durable.IsEmpty())
}

func TestToggleVisibility(t *testing.T) {
	svc := newTestCartService(t, newMemStore())
	view, err := svc.Toggle(context.Background(), "c1", nil)
	require.NoError(t, err)
	assert.True(t, view.IsOpen)
}

func TestStoreFailureIsDependencyError(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("redis down")
	svc := newTestCartService(t, store)
	_, err := svc.Load(context.Background(), "c1", nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestQuoteAppliesCoupon(t *testing.T) {
	svc := newTestCartService(t, newMemStore())
	c := &Cart{Items: []LineItem{{Product: pump(), Quantity: 2, PurchaseType: enums.PurchaseTypeOneTime}}}
	q, err := svc.Quote(context.Background(), c, "", "welcome10")
	require.NoError(t, err)
	assert.True(t, dec("1300").Equal(q.Subtotal))
	assert.True(t, dec("130").Equal(q.Discount))
}

type fakeKV struct {
	data map[string][]byte
	ttl  time.Duration
}

var errMissing = errors.New("missing")

func (f *fakeKV) GetBytes(_ context.Context, key string) ([]byte, error) {
	v, ok := f.data[key]
	if !ok {
		return nil, errMissing
	}
	return v, nil
}
func (f *fakeKV) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	f.data[key] = value.([]byte)
	f.ttl = ttl
	return nil
}
func (f *fakeKV) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}
func (f *fakeKV) CartKey(id string) string { return "aq:cart:" + id }

func TestRedisStoreRoundTrip(t *testing.T) {
	kv := &fakeKV{data: map[string][]byte{}}
	store, err := NewRedisStore(kv, time.Hour, func(err error) bool { return errors.Is(err, errMissing) })
	require.NoError(t, err)
	ctx := context.Background()

	missing, err := store.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	in := &Cart{IsOpen: true, Items: []LineItem{{Product: bottle(), Quantity: 2, PurchaseType: enums.PurchaseTypeSubscription, SubscriptionPlanID: ptr("family")}}}
	require.NoError(t, store.Put(ctx, "c1", in))
	assert.Equal(t, time.Hour, kv.ttl)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(kv.data["aq:cart:c1"], &raw))
	assert.Contains(t, raw, "items")

	out, err := store.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "family", *out.Items[0].SubscriptionPlanID)
	assert.True(t, out.IsOpen)

	require.NoError(t, store.Delete(ctx, "c1"))
	assert.Empty(t, kv.data)
}

func TestRedisStoreRejectsCorruptPayload(t *testing.T) {
	kv := &fakeKV{data: map[string][]byte{"aq:cart:c1": []byte("{")}}
	store, err := NewRedisStore(kv, time.Hour, func(err error) bool { return errors.Is(err, errMissing) })
	require.NoError(t, err)
	_, err = store.Get(context.Background(), "c1")
	assert.Error(t, err)
}
