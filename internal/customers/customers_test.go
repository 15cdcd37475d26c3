package customers

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/aquaflow-backend/internal/orders"
	"github.com/angelmondragon/aquaflow-backend/pkg/types"
)

func order(first, email, phone, city string, total int64, at time.Time) orders.Order {
	return orders.Order{
		Customer:  types.CustomerDetails{FirstName: first, LastName: "Khan", Email: email, Phone: phone, City: city},
		Total:     decimal.NewFromInt(total),
		CreatedAt: at,
	}
}

type stubLister []orders.Order

func (s stubLister) List(context.Context, orders.ListFilter) ([]orders.Order, error) {
	return s, nil
}

func TestDeriveGroupsByEmailThenPhone(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	list := []orders.Order{
		order("Ayesha", "ayesha@example.com", "0300-1", "Lahore", 500, base),
		order("Ayesha B", "AYESHA@example.com", "0300-9", "Karachi", 750, base.Add(2*time.Hour)),
		order("Walk-in", "", "0311-5", "Karachi", 250, base.Add(time.Hour)),
		order("Walk-in", " ", "0311-5", "Karachi", 250, base.Add(30*time.Minute)),
		order("Nobody", "", "", "", 100, base),
	}

	got := Derive(list)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "ayesha@example.com", first.Key)
	assert.Equal(t, 2, first.TotalOrders)
	assert.True(t, decimal.NewFromInt(1250).Equal(first.TotalSpent))
	assert.Equal(t, "Ayesha B Khan", first.Name)
	assert.Equal(t, "Karachi", first.City)
	assert.Equal(t, "0300-9", first.Phone)

	second := got[1]
	assert.Equal(t, "0311-5", second.Key)
	assert.Equal(t, 2, second.TotalOrders)
	assert.Equal(t, base.Add(time.Hour), second.LastOrderDate)
}

func TestServiceListSearch(t *testing.T) {
	base := time.Now()
	svc, err := NewService(stubLister{
		order("Ayesha", "ayesha@example.com", "0300-1", "Lahore", 500, base),
		order("Bilal", "bilal@example.com", "0300-2", "Lahore", 500, base),
	})
	require.NoError(t, err)

	got, err := svc.List(context.Background(), "BILAL")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "bilal@example.com", got[0].Email)

	all, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
