package notifications

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/aquaflow-backend/internal/orders"
	"github.com/angelmondragon/aquaflow-backend/pkg/enums"
	"github.com/angelmondragon/aquaflow-backend/pkg/logger"
)

const (
	KindAdmin    = "admin"
	KindCustomer = "customer"
)

// SummaryLine is one order line as rendered in an email.
type SummaryLine struct {
	Name         string
	Quantity     int
	PurchaseType enums.PurchaseType
	PlanName     string
	LineTotal    decimal.Decimal
}

// Summary is everything an order email needs.
type Summary struct {
	OrderID       string
	CustomerName  string
	Email         string
	Phone         string
	Address       string
	City          string
	PostalCode    string
	Notes         string
	PaymentMethod enums.PaymentMethod
	DeliveryDate  string
	DeliveryTime  string
	Items         []SummaryLine
	Total         decimal.Decimal
}

// SummaryFromOrder flattens an order for the email templates.
func SummaryFromOrder(o orders.Order) Summary {
	s := Summary{
		OrderID:       o.ID,
		CustomerName:  o.Customer.FullName(),
		Email:         o.Customer.Email,
		Phone:         o.Customer.Phone,
		Address:       o.Customer.Address,
		City:          o.Customer.City,
		PostalCode:    o.Customer.PostalCode,
		Notes:         o.Customer.Notes,
		PaymentMethod: o.PaymentMethod,
		DeliveryDate:  o.DeliveryDate,
		DeliveryTime:  o.DeliveryTime,
		Total:         o.Total,
		Items:         make([]SummaryLine, 0, len(o.Items)),
	}
	for _, item := range o.Items {
		line := SummaryLine{
			Name:         item.Name,
			Quantity:     item.Quantity,
			PurchaseType: item.PurchaseType,
			LineTotal:    item.LineTotal,
		}
		if item.SubscriptionDetails != nil {
			line.PlanName = item.SubscriptionDetails.PlanName
		}
		s.Items = append(s.Items, line)
	}
	return s
}

// ItemsText renders the lines one per row for plain-text templates.
func (s Summary) ItemsText() string {
	var b strings.Builder
	for i, item := range s.Items {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s x%d", item.Name, item.Quantity)
		if item.PurchaseType == enums.PurchaseTypeSubscription && item.PlanName != "" {
			fmt.Fprintf(&b, " (%s subscription)", item.PlanName)
		}
		fmt.Fprintf(&b, " - Rs. %s", item.LineTotal.StringFixed(2))
	}
	return b.String()
}

// Notifier sends order emails. A nil error means the send succeeded.
type Notifier interface {
	SendAdminNotification(ctx context.Context, summary Summary) error
	SendCustomerConfirmation(ctx context.Context, summary Summary) error
}

// LogNotifier records the emails it would have sent. Used when no email
// provider is configured.
type LogNotifier struct {
	logg *logger.Logger
}

// NewLogNotifier builds a notifier that only logs.
func NewLogNotifier(logg *logger.Logger) *LogNotifier {
	return &LogNotifier{logg: logg}
}

func (n *LogNotifier) SendAdminNotification(ctx context.Context, summary Summary) error {
	n.logg.Info(n.logg.WithFields(ctx, map[string]any{
		"order_id": summary.OrderID,
		"kind":     KindAdmin,
		"total":    summary.Total.StringFixed(2),
	}), "order notification (log only)")
	return nil
}

func (n *LogNotifier) SendCustomerConfirmation(ctx context.Context, summary Summary) error {
	n.logg.Info(n.logg.WithFields(ctx, map[string]any{
		"order_id": summary.OrderID,
		"kind":     KindCustomer,
		"email":    summary.Email,
	}), "order confirmation (log only)")
	return nil
}
