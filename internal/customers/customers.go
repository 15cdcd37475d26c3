package customers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/aquaflow-backend/internal/orders"
)

// Customer is a view derived from orders. There is no customer table.
type Customer struct {
	Key           string          `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone"`
	City          string          `json:"city"`
	TotalOrders   int             `json:"totalOrders"`
	TotalSpent    decimal.Decimal `json:"totalSpent"`
	LastOrderDate time.Time       `json:"lastOrderDate"`
}

// Derive groups orders by lower-cased email, falling back to phone when the
// email is blank. Contact fields come from each group's most recent order.
func Derive(list []orders.Order) []Customer {
	byKey := map[string]*Customer{}
	for _, o := range list {
		key := groupKey(o)
		if key == "" {
			continue
		}
		c, ok := byKey[key]
		if !ok {
			c = &Customer{Key: key, TotalSpent: decimal.Zero}
			byKey[key] = c
		}
		c.TotalOrders++
		c.TotalSpent = c.TotalSpent.Add(o.Total)
		if c.LastOrderDate.IsZero() || o.CreatedAt.After(c.LastOrderDate) {
			c.LastOrderDate = o.CreatedAt
			c.Name = o.Customer.FullName()
			c.Email = o.Customer.Email
			c.Phone = o.Customer.Phone
			c.City = o.Customer.City
		}
	}

	out := make([]Customer, 0, len(byKey))
	for _, c := range byKey {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastOrderDate.Equal(out[j].LastOrderDate) {
			return out[i].LastOrderDate.After(out[j].LastOrderDate)
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func groupKey(o orders.Order) string {
	if email := strings.ToLower(strings.TrimSpace(o.Customer.Email)); email != "" {
		return email
	}
	return strings.TrimSpace(o.Customer.Phone)
}

type orderLister interface {
	List(ctx context.Context, filter orders.ListFilter) ([]orders.Order, error)
}

// Service lists derived customers for the back-office.
type Service struct {
	orders orderLister
}

// NewService builds a customer view over the order service.
func NewService(list orderLister) (*Service, error) {
	if list == nil {
		return nil, fmt.Errorf("order lister required")
	}
	return &Service{orders: list}, nil
}

// List returns customers, optionally filtered by a case-insensitive search
// over name, email and phone.
func (s *Service) List(ctx context.Context, search string) ([]Customer, error) {
	all, err := s.orders.List(ctx, orders.ListFilter{})
	if err != nil {
		return nil, err
	}
	derived := Derive(all)
	q := strings.ToLower(strings.TrimSpace(search))
	if q == "" {
		return derived, nil
	}
	out := derived[:0]
	for _, c := range derived {
		if strings.Contains(strings.ToLower(c.Name), q) ||
			strings.Contains(strings.ToLower(c.Email), q) ||
			strings.Contains(c.Phone, q) {
			out = append(out, c)
		}
	}
	return out, nil
}
