package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/aquaflow-backend/internal/testdb"
	"github.com/angelmondragon/aquaflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/aquaflow-backend/pkg/errors"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	client := testdb.Open(t)
	svc, err := NewService(NewRepository(client.DB()), client)
	require.NoError(t, err)
	return svc
}

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestSeedIfEmptyOnlySeedsOnce(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	seeded, err := svc.SeedIfEmpty(ctx)
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = svc.SeedIfEmpty(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)

	products, err := svc.List(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, products, len(DefaultProducts()))
	assert.Equal(t, "1", products[0].ID)
	assert.True(t, products[0].HasExchange)
	require.NotNil(t, products[0].DepositPrice)
	assert.True(t, products[0].DepositPrice.Equal(dec("1000")))
}

func TestCreateValidatesFields(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), ProductInput{
		Name:        " ",
		Price:       dec("0"),
		Type:        "gadget",
		HasExchange: true,
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	fields, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	for _, field := range []string{"name", "price", "type", "depositPrice"} {
		assert.Contains(t, fields, field)
	}
}

func TestCreateUpdateDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	deposit := dec("800")
	created, err := svc.Create(ctx, ProductInput{
		Name:         "12L Bottle",
		Price:        dec("180"),
		Type:         enums.ProductTypeBottle,
		HasExchange:  true,
		DepositPrice: &deposit,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.IsActive)

	inactive := false
	updated, err := svc.Update(ctx, created.ID, ProductInput{
		Name:     "12L Bottle",
		Price:    dec("190"),
		Type:     enums.ProductTypeBottle,
		IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(dec("190")))
	assert.Nil(t, updated.DepositPrice, "deposit is dropped once the product no longer has exchange")
	assert.False(t, updated.IsActive)

	public, err := svc.List(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, public, "inactive products are hidden from the storefront")

	all, err := svc.List(ctx, ListFilter{IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.True(t, pkgerrors.IsCode(svc.Delete(ctx, created.ID), pkgerrors.CodeNotFound))
}

func TestListFilters(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_, err := svc.SeedIfEmpty(ctx)
	require.NoError(t, err)

	dispenser := enums.ProductTypeDispenser
	dispensers, err := svc.List(ctx, ListFilter{Type: &dispenser})
	require.NoError(t, err)
	require.Len(t, dispensers, 2)
	for _, p := range dispensers {
		assert.Equal(t, enums.ProductTypeDispenser, p.Type)
	}

	featured, err := svc.List(ctx, ListFilter{FeaturedOnly: true})
	require.NoError(t, err)
	for _, p := range featured {
		assert.True(t, p.Featured)
	}

	bad := enums.ProductType("gadget")
	_, err = svc.List(ctx, ListFilter{Type: &bad})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestResetDefaultsDiscardsCustomization(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_, err := svc.SeedIfEmpty(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "1"))
	_, err = svc.Create(ctx, ProductInput{Name: "Cooler", Price: dec("50"), Type: enums.ProductTypeAccessory})
	require.NoError(t, err)

	products, err := svc.ResetDefaults(ctx)
	require.NoError(t, err)
	require.Len(t, products, len(DefaultProducts()))
	for i, want := range DefaultProducts() {
		assert.Equal(t, want.ID, products[i].ID)
		assert.Equal(t, want.Name, products[i].Name)
		assert.True(t, want.Price.Equal(products[i].Price))
	}
}
