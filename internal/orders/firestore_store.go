package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"

	"github.com/angelmondragon/aquaflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/aquaflow-backend/pkg/errors"
	pfirestore "github.com/angelmondragon/aquaflow-backend/pkg/firestore"
	"github.com/angelmondragon/aquaflow-backend/pkg/types"
)

// FirestoreStore keeps orders as documents in a single collection.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
	now        func() time.Time
}

// NewFirestoreStore builds a document-backed order store.
func NewFirestoreStore(client *firestore.Client, collection string) (*FirestoreStore, error) {
	if client == nil {
		return nil, errors.New("firestore client required")
	}
	if collection == "" {
		collection = "orders"
	}
	return &FirestoreStore{client: client, collection: collection, now: time.Now}, nil
}

type subscriptionDocument struct {
	PlanID    string `firestore:"planId"`
	PlanName  string `firestore:"planName"`
	Frequency string `firestore:"frequency"`
	Bottles   int    `firestore:"bottles"`
	Savings   string `firestore:"savings"`
	Discount  string `firestore:"discount"`
}

type itemDocument struct {
	ProductID           string                `firestore:"productId"`
	Name                string                `firestore:"name"`
	Price               string                `firestore:"price"`
	UnitPrice           string                `firestore:"unitPrice"`
	LineTotal           string                `firestore:"lineTotal"`
	Quantity            int                   `firestore:"quantity"`
	PurchaseType        string                `firestore:"purchaseType"`
	HasBottleExchange   *bool                 `firestore:"hasBottleExchange,omitempty"`
	SubscriptionDetails *subscriptionDocument `firestore:"subscriptionDetails,omitempty"`
}

type customerDocument struct {
	UserID        string `firestore:"userId"`
	FirstName     string `firestore:"firstName"`
	LastName      string `firestore:"lastName"`
	Email         string `firestore:"email"`
	Phone         string `firestore:"phone"`
	Address       string `firestore:"address"`
	City          string `firestore:"city"`
	PostalCode    string `firestore:"postalCode"`
	Notes         string `firestore:"notes"`
	PaymentMethod string `firestore:"paymentMethod"`
}

// orderDocument stores money as decimal strings; Firestore has no exact decimal type.
type orderDocument struct {
	Items         []itemDocument   `firestore:"items"`
	Customer      customerDocument `firestore:"customerDetails"`
	Total         string           `firestore:"total"`
	Status        string           `firestore:"status"`
	PaymentStatus string           `firestore:"paymentStatus"`
	PaymentMethod string           `firestore:"paymentMethod"`
	DeliveryDate  string           `firestore:"deliveryDate"`
	DeliveryTime  string           `firestore:"deliveryTime"`
	CreatedAt     time.Time        `firestore:"createdAt"`
	UpdatedAt     time.Time        `firestore:"updatedAt"`
}

func (s *FirestoreStore) Create(ctx context.Context, o *Order) (string, error) {
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
	if _, err := s.client.Collection(s.collection).Doc(o.ID).Create(ctx, encodeOrder(*o)); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}
	return o.ID, nil
}

func (s *FirestoreStore) List(ctx context.Context) ([]Order, error) {
	iter := s.client.Collection(s.collection).OrderBy("createdAt", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var out []Order
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
		}
		o, err := decodeSnapshot(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (s *FirestoreStore) Get(ctx context.Context, id string) (*Order, error) {
	snap, err := s.client.Collection(s.collection).Doc(id).Get(ctx)
	if err != nil {
		if pfirestore.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get order")
	}
	o, err := decodeSnapshot(snap)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *FirestoreStore) UpdateStatus(ctx context.Context, id string, status enums.OrderStatus) error {
	return s.update(ctx, id, "status", status.String())
}

func (s *FirestoreStore) UpdatePaymentStatus(ctx context.Context, id string, status enums.PaymentStatus) error {
	return s.update(ctx, id, "paymentStatus", status.String())
}

func (s *FirestoreStore) update(ctx context.Context, id, path string, value string) error {
	_, err := s.client.Collection(s.collection).Doc(id).Update(ctx, []firestore.Update{
		{Path: path, Value: value},
		{Path: "updatedAt", Value: s.now().UTC()},
	})
	if err != nil {
		if pfirestore.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
	}
	return nil
}

func (s *FirestoreStore) Delete(ctx context.Context, id string) error {
	ref := s.client.Collection(s.collection).Doc(id)
	if _, err := ref.Delete(ctx, firestore.Exists); err != nil {
		if pfirestore.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
	}
	return nil
}

// Ping issues a single-document read against the collection.
func (s *FirestoreStore) Ping(ctx context.Context) error {
	iter := s.client.Collection(s.collection).Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return err
	}
	return nil
}

func encodeOrder(o Order) orderDocument {
	doc := orderDocument{
		Items: make([]itemDocument, 0, len(o.Items)),
		Customer: customerDocument{
			UserID:        o.Customer.UserID,
			FirstName:     o.Customer.FirstName,
			LastName:      o.Customer.LastName,
			Email:         o.Customer.Email,
			Phone:         o.Customer.Phone,
			Address:       o.Customer.Address,
			City:          o.Customer.City,
			PostalCode:    o.Customer.PostalCode,
			Notes:         o.Customer.Notes,
			PaymentMethod: o.Customer.PaymentMethod.String(),
		},
		Total:         o.Total.String(),
		Status:        o.Status.String(),
		PaymentStatus: o.PaymentStatus.String(),
		PaymentMethod: o.PaymentMethod.String(),
		DeliveryDate:  o.DeliveryDate,
		DeliveryTime:  o.DeliveryTime,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	for _, item := range o.Items {
		d := itemDocument{
			ProductID:         item.ProductID,
			Name:              item.Name,
			Price:             item.Price.String(),
			UnitPrice:         item.UnitPrice.String(),
			LineTotal:         item.LineTotal.String(),
			Quantity:          item.Quantity,
			PurchaseType:      item.PurchaseType.String(),
			HasBottleExchange: item.HasBottleExchange,
		}
		if sub := item.SubscriptionDetails; sub != nil {
			d.SubscriptionDetails = &subscriptionDocument{
				PlanID:    sub.PlanID,
				PlanName:  sub.PlanName,
				Frequency: sub.Frequency,
				Bottles:   sub.Bottles,
				Savings:   sub.Savings,
				Discount:  sub.Discount.String(),
			}
		}
		doc.Items = append(doc.Items, d)
	}
	return doc
}

func decodeSnapshot(snap *firestore.DocumentSnapshot) (Order, error) {
	var doc orderDocument
	if err := snap.DataTo(&doc); err != nil {
		return Order{}, fmt.Errorf("decode order %s: %w", snap.Ref.ID, err)
	}
	o, err := decodeOrder(snap.Ref.ID, doc)
	if err != nil {
		return Order{}, fmt.Errorf("decode order %s: %w", snap.Ref.ID, err)
	}
	return o, nil
}

func decodeOrder(id string, doc orderDocument) (Order, error) {
	total, err := parseMoney(doc.Total)
	if err != nil {
		return Order{}, err
	}
	o := Order{
		ID:    id,
		Items: make([]types.OrderItem, 0, len(doc.Items)),
		Customer: types.CustomerDetails{
			UserID:        doc.Customer.UserID,
			FirstName:     doc.Customer.FirstName,
			LastName:      doc.Customer.LastName,
			Email:         doc.Customer.Email,
			Phone:         doc.Customer.Phone,
			Address:       doc.Customer.Address,
			City:          doc.Customer.City,
			PostalCode:    doc.Customer.PostalCode,
			Notes:         doc.Customer.Notes,
			PaymentMethod: enums.PaymentMethod(doc.Customer.PaymentMethod),
		},
		Total:         total,
		Status:        enums.OrderStatus(doc.Status),
		PaymentStatus: enums.PaymentStatus(doc.PaymentStatus),
		PaymentMethod: enums.PaymentMethod(doc.PaymentMethod),
		DeliveryDate:  doc.DeliveryDate,
		DeliveryTime:  doc.DeliveryTime,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}
	for _, d := range doc.Items {
		item := types.OrderItem{
			ProductID:         d.ProductID,
			Name:              d.Name,
			Quantity:          d.Quantity,
			PurchaseType:      enums.PurchaseType(d.PurchaseType),
			HasBottleExchange: d.HasBottleExchange,
		}
		if item.Price, err = parseMoney(d.Price); err != nil {
			return Order{}, err
		}
		if item.UnitPrice, err = parseMoney(d.UnitPrice); err != nil {
			return Order{}, err
		}
		if item.LineTotal, err = parseMoney(d.LineTotal); err != nil {
			return Order{}, err
		}
		if sub := d.SubscriptionDetails; sub != nil {
			discount, err := parseMoney(sub.Discount)
			if err != nil {
				return Order{}, err
			}
			item.SubscriptionDetails = &types.SubscriptionSnapshot{
				PlanID:    sub.PlanID,
				PlanName:  sub.PlanName,
				Frequency: sub.Frequency,
				Bottles:   sub.Bottles,
				Savings:   sub.Savings,
				Discount:  discount,
			}
		}
		o.Items = append(o.Items, item)
	}
	return o, nil
}

func parseMoney(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}
