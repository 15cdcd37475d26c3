package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/aquaflow-backend/pkg/db/models"
	"github.com/angelmondragon/aquaflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/aquaflow-backend/pkg/errors"
)

// SQLStore keeps orders in the relational orders table.
type SQLStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSQLStore builds an order store bound to the provided GORM DB.
func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

// WithTx returns a store bound to the provided transaction.
func (s *SQLStore) WithTx(tx *gorm.DB) *SQLStore {
	return &SQLStore{db: tx, now: s.now}
}

func (s *SQLStore) Create(ctx context.Context, o *Order) (string, error) {
	if o == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "order is required")
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	now := s.now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
	row := toModel(*o)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}
	return o.ID, nil
}

func (s *SQLStore) List(ctx context.Context) ([]Order, error) {
	var rows []models.Order
	if err := s.db.WithContext(ctx).Order("created_at DESC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	out := make([]Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromModel(row))
	}
	return out, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (*Order, error) {
	var row models.Order
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get order")
	}
	o := fromModel(row)
	return &o, nil
}

func (s *SQLStore) UpdateStatus(ctx context.Context, id string, status enums.OrderStatus) error {
	return s.update(ctx, id, "status", status)
}

func (s *SQLStore) UpdatePaymentStatus(ctx context.Context, id string, status enums.PaymentStatus) error {
	return s.update(ctx, id, "payment_status", status)
}

func (s *SQLStore) update(ctx context.Context, id, column string, value any) error {
	res := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).
		Updates(map[string]any{column: value, "updated_at": s.now().UTC()})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "update order")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Order{})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "delete order")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
