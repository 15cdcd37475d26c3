package orders

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/aquaflow-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/aquaflow-backend/pkg/db/types"
	"github.com/angelmondragon/aquaflow-backend/pkg/enums"
	"github.com/angelmondragon/aquaflow-backend/pkg/types"
)

// Order is a placed order as seen by checkout and the back-office.
type Order struct {
	ID            string                `json:"id"`
	Items         []types.OrderItem     `json:"items"`
	Customer      types.CustomerDetails `json:"customerDetails"`
	Total         decimal.Decimal       `json:"total"`
	Status        enums.OrderStatus     `json:"status"`
	PaymentStatus enums.PaymentStatus   `json:"paymentStatus"`
	PaymentMethod enums.PaymentMethod   `json:"paymentMethod"`
	DeliveryDate  string                `json:"deliveryDate"`
	DeliveryTime  string                `json:"deliveryTime"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
}

// ItemCount sums line quantities.
func (o Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// matches reports whether query occurs in the id, customer name, email or phone.
func (o Order) matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, field := range []string{o.ID, o.Customer.FullName(), o.Customer.Email, o.Customer.Phone} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func fromModel(m models.Order) Order {
	return Order{
		ID:            m.ID,
		Items:         m.Items.Val,
		Customer:      m.Customer.Val,
		Total:         m.Total,
		Status:        m.Status,
		PaymentStatus: m.PaymentStatus,
		PaymentMethod: m.PaymentMethod,
		DeliveryDate:  m.DeliveryDate,
		DeliveryTime:  m.DeliveryTime,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toModel(o Order) models.Order {
	items := o.Items
	if items == nil {
		items = []types.OrderItem{}
	}
	return models.Order{
		ID:            o.ID,
		Items:         dbtypes.NewJSON(items),
		Customer:      dbtypes.NewJSON(o.Customer),
		CustomerEmail: strings.ToLower(strings.TrimSpace(o.Customer.Email)),
		Total:         o.Total,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		PaymentMethod: o.PaymentMethod,
		DeliveryDate:  o.DeliveryDate,
		DeliveryTime:  o.DeliveryTime,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}
