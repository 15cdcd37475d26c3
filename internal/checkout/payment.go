package checkout

import (
	"context"
	"fmt"

	"github.com/angelmondragon/aquaflow-backend/pkg/config"
	"github.com/angelmondragon/aquaflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/aquaflow-backend/pkg/errors"
	"github.com/angelmondragon/aquaflow-backend/pkg/logger"
)

// Instructions tells the customer how to pay with the chosen method.
type Instructions struct {
	Method        enums.PaymentMethod `json:"method"`
	Title         string              `json:"title"`
	Steps         []string            `json:"steps"`
	Provider      string              `json:"provider,omitempty"`
	AccountTitle  string              `json:"accountTitle,omitempty"`
	AccountNumber string              `json:"accountNumber,omitempty"`
	WhatsApp      string              `json:"whatsApp,omitempty"`
}

// Payments serves static payment instructions. Mobile-wallet transfers are
// reconciled by hand; nothing here touches an order.
type Payments struct {
	cfg  config.StorefrontConfig
	logg *logger.Logger
}

// NewPayments builds the instructions provider.
func NewPayments(cfg config.StorefrontConfig, logg *logger.Logger) *Payments {
	return &Payments{cfg: cfg, logg: logg}
}

// Instructions returns the instructions for a payment method.
func (p *Payments) Instructions(method string) (*Instructions, error) {
	parsed, err := enums.ParsePaymentMethod(method)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment method not found")
	}
	switch parsed {
	case enums.PaymentMethodMobileWallet:
		return &Instructions{
			Method:        parsed,
			Title:         fmt.Sprintf("Pay with %s", p.cfg.WalletProvider),
			Provider:      p.cfg.WalletProvider,
			AccountTitle:  p.cfg.WalletAccountTitle,
			AccountNumber: p.cfg.WalletAccountNumber,
			WhatsApp:      p.cfg.WhatsAppNumber,
			Steps: []string{
				fmt.Sprintf("Send the order total to %s account %s (%s).", p.cfg.WalletProvider, p.cfg.WalletAccountNumber, p.cfg.WalletAccountTitle),
				fmt.Sprintf("Share the payment screenshot on WhatsApp at %s.", p.cfg.WhatsAppNumber),
				"Place your order; we confirm it once the transfer is verified.",
			},
		}, nil
	default:
		return &Instructions{
			Method: parsed,
			Title:  "Cash on delivery",
			Steps:  []string{"Pay the rider in cash when your order arrives."},
		}, nil
	}
}

// Acknowledge records that the customer says they sent a transfer.
func (p *Payments) Acknowledge(ctx context.Context, method, reference string) error {
	parsed, err := enums.ParsePaymentMethod(method)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "payment method not found")
	}
	if parsed != enums.PaymentMethodMobileWallet {
		return pkgerrors.New(pkgerrors.CodeValidation, "only mobile wallet payments can be acknowledged")
	}
	p.logg.Info(p.logg.WithFields(ctx, map[string]any{
		"payment_method": parsed.String(),
		"reference":      reference,
	}), "customer acknowledged wallet transfer")
	return nil
}
