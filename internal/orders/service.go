package orders

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/angelmondragon/aquaflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/aquaflow-backend/pkg/errors"
	"github.com/angelmondragon/aquaflow-backend/pkg/logger"
)

// ListFilter narrows the back-office order list.
type ListFilter struct {
	Status *enums.OrderStatus
	Search string
}

// Service exposes order management for the back-office.
type Service interface {
	List(ctx context.Context, filter ListFilter) ([]Order, error)
	Get(ctx context.Context, id string) (*Order, error)
	UpdateStatus(ctx context.Context, id string, status string) (*Order, error)
	UpdatePaymentStatus(ctx context.Context, id string, status string) (*Order, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	store Store
	logg  *logger.Logger
}

// NewService builds the back-office order service.
func NewService(store Store, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("order store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{store: store, logg: logg}, nil
}

// List fetches every order and filters in process, newest first.
func (s *service) List(ctx context.Context, filter ListFilter) ([]Order, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Order, 0, len(all))
	for _, o := range all {
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		if !o.matches(filter.Search) {
			continue
		}
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *service) Get(ctx context.Context, id string) (*Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	return s.store.Get(ctx, id)
}

// UpdateStatus sets any known status; transitions are not ordered.
func (s *service) UpdateStatus(ctx context.Context, id string, status string) (*Order, error) {
	parsed, err := enums.ParseOrderStatus(strings.TrimSpace(status))
	if err != nil {
		return nil, pkgerrors.FieldErrors("invalid order status", map[string]string{"status": err.Error()})
	}
	if err := s.store.UpdateStatus(ctx, id, parsed); err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithField(s.logg.WithOrderID(ctx, id), "status", parsed.String()), "order status updated")
	return s.store.Get(ctx, id)
}

func (s *service) UpdatePaymentStatus(ctx context.Context, id string, status string) (*Order, error) {
	parsed, err := enums.ParsePaymentStatus(strings.TrimSpace(status))
	if err != nil {
		return nil, pkgerrors.FieldErrors("invalid payment status", map[string]string{"paymentStatus": err.Error()})
	}
	if err := s.store.UpdatePaymentStatus(ctx, id, parsed); err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithField(s.logg.WithOrderID(ctx, id), "payment_status", parsed.String()), "order payment status updated")
	return s.store.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logg.Info(s.logg.WithOrderID(ctx, id), "order deleted")
	return nil
}
