package orders

import (
	"context"

	"github.com/angelmondragon/aquaflow-backend/pkg/enums"
)

// Store persists orders. Implementations return a NOT_FOUND error for unknown ids.
type Store interface {
	// Create assigns an id when o.ID is empty and returns it.
	Create(ctx context.Context, o *Order) (string, error)
	// List returns every order, newest first.
	List(ctx context.Context) ([]Order, error)
	Get(ctx context.Context, id string) (*Order, error)
	UpdateStatus(ctx context.Context, id string, status enums.OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, id string, status enums.PaymentStatus) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
