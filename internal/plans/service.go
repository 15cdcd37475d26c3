package plans

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/aquaflow-backend/internal/pricing"
	"github.com/angelmondragon/aquaflow-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/aquaflow-backend/pkg/errors"
)

// Service manages the subscription plan registry.
type Service interface {
	List(ctx context.Context) ([]Plan, error)
	Get(ctx context.Context, id string) (*Plan, error)
	Create(ctx context.Context, input PlanInput) (*Plan, error)
	Update(ctx context.Context, id string, input PlanInput) (*Plan, error)
	Delete(ctx context.Context, id string) error
	ResetDefaults(ctx context.Context) ([]Plan, error)
	SeedIfEmpty(ctx context.Context) (bool, error)
	Lookup(ctx context.Context) (pricing.PlanLookup, error)
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	newID    func() string
}

// NewService constructs a plan registry service.
func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("plan repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient, newID: uuid.NewString}, nil
}

func (s *service) List(ctx context.Context) ([]Plan, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list plans")
	}
	out := make([]Plan, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromModel(row))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id string) (*Plan, error) {
	row, err := s.repo.FindByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "plan not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load plan")
	}
	p := fromModel(*row)
	return &p, nil
}

func (s *service) Create(ctx context.Context, input PlanInput) (*Plan, error) {
	input = normalize(input)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	last, err := s.repo.MaxSortOrder(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read plan order")
	}
	row := toModel(s.newID(), last+1, input)
	if err := s.repo.Create(ctx, &row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert plan")
	}
	p := fromModel(row)
	return &p, nil
}

func (s *service) Update(ctx context.Context, id string, input PlanInput) (*Plan, error) {
	input = normalize(input)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	existing, err := s.repo.FindByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "plan not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load plan")
	}
	row := toModel(existing.ID, existing.SortOrder, input)
	row.CreatedAt = existing.CreatedAt
	if err := s.repo.Save(ctx, &row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update plan")
	}
	p := fromModel(row)
	return &p, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, strings.TrimSpace(id)); err != nil {
		if isNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "plan not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete plan")
	}
	return nil
}

// ResetDefaults replaces the registry with exactly the built-in plans.
func (s *service) ResetDefaults(ctx context.Context) ([]Plan, error) {
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.DeleteAll(ctx); err != nil {
			return err
		}
		return insertDefaults(ctx, txRepo)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset plans")
	}
	return s.List(ctx)
}

func (s *service) SeedIfEmpty(ctx context.Context) (bool, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count plans")
	}
	if n > 0 {
		return false, nil
	}
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		return insertDefaults(ctx, s.repo.WithTx(tx))
	}); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed plans")
	}
	return true, nil
}

// Lookup snapshots the registry for pricing.
func (s *service) Lookup(ctx context.Context) (pricing.PlanLookup, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	lookup := make(pricing.PlanLookup, len(list))
	for _, p := range list {
		lookup[p.ID] = p.Terms()
	}
	return lookup, nil
}

func insertDefaults(ctx context.Context, repo *Repository) error {
	for i, input := range DefaultPlans() {
		row := toModel(defaultIDs[i], i+1, input)
		if err := repo.Create(ctx, &row); err != nil {
			return fmt.Errorf("insert plan %s: %w", row.ID, err)
		}
	}
	return nil
}

func normalize(in PlanInput) PlanInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Frequency = strings.TrimSpace(in.Frequency)
	in.Savings = strings.TrimSpace(in.Savings)
	features := make([]string, 0, len(in.Features))
	for _, f := range in.Features {
		if f = strings.TrimSpace(f); f != "" {
			features = append(features, f)
		}
	}
	in.Features = features
	return in
}

func validateInput(in PlanInput) error {
	fields := map[string]string{}
	if in.Name == "" {
		fields["name"] = "name is required"
	}
	if in.Frequency == "" {
		fields["frequency"] = "frequency is required"
	}
	if !in.Price.GreaterThan(decimal.Zero) {
		fields["price"] = "price must be greater than zero"
	}
	if in.Bottles < 1 {
		fields["bottles"] = "bottles must be at least 1"
	}
	if in.Discount.LessThan(decimal.Zero) || in.Discount.GreaterThan(decimal.NewFromInt(1)) {
		fields["discount"] = "discount must be between 0 and 1"
	} else if in.Savings != "" {
		if want := fmt.Sprintf("%d%%", discountPercent(in.Discount)); !strings.Contains(in.Savings, want) {
			fields["savings"] = fmt.Sprintf("savings label must mention %s to match the discount", want)
		}
	}
	if len(fields) > 0 {
		return pkgerrors.FieldErrors("invalid plan", fields)
	}
	return nil
}
