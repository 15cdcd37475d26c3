package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/aquaflow-backend/pkg/db"
	"github.com/angelmondragon/aquaflow-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/aquaflow-backend/pkg/errors"
)

// Service exposes catalog reads for the storefront and CRUD for the back-office.
type Service interface {
	List(ctx context.Context, filter ListFilter) ([]Product, error)
	Get(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, input ProductInput) (*Product, error)
	Update(ctx context.Context, id string, input ProductInput) (*Product, error)
	Delete(ctx context.Context, id string) error
	ResetDefaults(ctx context.Context) ([]Product, error)
	SeedIfEmpty(ctx context.Context) (bool, error)
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	newID    func() string
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient, newID: uuid.NewString}, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]Product, error) {
	if filter.Type != nil && !filter.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid product type %q", *filter.Type))
	}
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	out := make([]Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id string) (*Product, error) {
	row, err := s.repo.FindByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	p := FromModel(*row)
	return &p, nil
}

func (s *service) Create(ctx context.Context, input ProductInput) (*Product, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	next, err := s.repo.MaxSortOrder(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sort order")
	}
	row := &models.Product{ID: s.newID(), SortOrder: next + 1, IsActive: true}
	applyInput(row, input)
	if err := s.repo.Create(ctx, row); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "product already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert product")
	}
	p := FromModel(*row)
	return &p, nil
}

func (s *service) Update(ctx context.Context, id string, input ProductInput) (*Product, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	row, err := s.repo.FindByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	applyInput(row, input)
	if err := s.repo.Save(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	p := FromModel(*row)
	return &p, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, strings.TrimSpace(id)); err != nil {
		if isNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

// ResetDefaults discards every admin customization and restores the seed catalog.
func (s *service) ResetDefaults(ctx context.Context) ([]Product, error) {
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.DeleteAll(ctx); err != nil {
			return err
		}
		return insertDefaults(ctx, txRepo)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset catalog")
	}
	return s.List(ctx, ListFilter{IncludeInactive: true})
}

// SeedIfEmpty inserts the seed catalog when no products exist. It reports whether it seeded.
func (s *service) SeedIfEmpty(ctx context.Context) (bool, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products")
	}
	if n > 0 {
		return false, nil
	}
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		return insertDefaults(ctx, s.repo.WithTx(tx))
	}); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed catalog")
	}
	return true, nil
}

func insertDefaults(ctx context.Context, repo *Repository) error {
	for _, row := range DefaultProducts() {
		row := row
		if err := repo.Create(ctx, &row); err != nil {
			return fmt.Errorf("insert product %s: %w", row.ID, err)
		}
	}
	return nil
}

func validateInput(input ProductInput) error {
	fields := map[string]string{}
	if strings.TrimSpace(input.Name) == "" {
		fields["name"] = "name is required"
	}
	if !input.Price.GreaterThan(decimal.Zero) {
		fields["price"] = "price must be greater than zero"
	}
	if !input.Type.IsValid() {
		fields["type"] = "type must be one of bottle, dispenser, accessory"
	}
	if input.HasExchange && (input.DepositPrice == nil || !input.DepositPrice.GreaterThan(decimal.Zero)) {
		fields["depositPrice"] = "deposit price is required for exchangeable products"
	}
	if len(fields) > 0 {
		return pkgerrors.FieldErrors("invalid product", fields)
	}
	return nil
}

func applyInput(row *models.Product, input ProductInput) {
	row.Name = strings.TrimSpace(input.Name)
	row.Description = strings.TrimSpace(input.Description)
	row.Price = input.Price.Round(2)
	row.Image = strings.TrimSpace(input.Image)
	row.Size = strings.TrimSpace(input.Size)
	row.Type = input.Type
	row.Featured = input.Featured
	row.HasExchange = input.HasExchange
	row.DepositPrice = nil
	if input.HasExchange && input.DepositPrice != nil {
		d := input.DepositPrice.Round(2)
		row.DepositPrice = &d
	}
	if input.IsActive != nil {
		row.IsActive = *input.IsActive
	}
}
