package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/aquaflow-backend/pkg/config"
)

const defaultEmailJSTimeout = 15 * time.Second

// EmailJSClient sends template emails through the EmailJS REST API.
type EmailJSClient struct {
	cfg  config.NotificationsConfig
	http *http.Client
}

// NewEmailJSClient builds a client for the configured EmailJS account.
func NewEmailJSClient(cfg config.NotificationsConfig, httpClient *http.Client) (*EmailJSClient, error) {
	if !cfg.Enabled() {
		return nil, errors.New("emailjs: service id, public key and template ids are required")
	}
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("emailjs: endpoint is required")
	}
	if httpClient == nil {
		timeout := cfg.SendTimeout
		if timeout <= 0 {
			timeout = defaultEmailJSTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &EmailJSClient{cfg: cfg, http: httpClient}, nil
}

type emailJSRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken,omitempty"`
	TemplateParams map[string]string `json:"template_params"`
}

func (c *EmailJSClient) SendAdminNotification(ctx context.Context, summary Summary) error {
	params := c.baseParams(summary)
	params["to_email"] = c.cfg.AdminEmail
	return c.send(ctx, c.cfg.AdminTemplateID, params)
}

func (c *EmailJSClient) SendCustomerConfirmation(ctx context.Context, summary Summary) error {
	if strings.TrimSpace(summary.Email) == "" {
		return errors.New("emailjs: customer email is empty")
	}
	params := c.baseParams(summary)
	params["to_email"] = summary.Email
	params["to_name"] = summary.CustomerName
	return c.send(ctx, c.cfg.CustomerTemplateID, params)
}

func (c *EmailJSClient) baseParams(s Summary) map[string]string {
	return map[string]string{
		"order_id":       s.OrderID,
		"customer_name":  s.CustomerName,
		"customer_email": s.Email,
		"customer_phone": s.Phone,
		"address":        fmt.Sprintf("%s, %s %s", s.Address, s.City, s.PostalCode),
		"delivery_date":  s.DeliveryDate,
		"delivery_time":  s.DeliveryTime,
		"payment_method": s.PaymentMethod.String(),
		"notes":          s.Notes,
		"items":          s.ItemsText(),
		"total":          s.Total.StringFixed(2),
		"from_name":      c.cfg.ConfirmationFromName,
		"support_phone":  c.cfg.ConfirmationSupportLine,
	}
}

func (c *EmailJSClient) send(ctx context.Context, templateID string, params map[string]string) error {
	payload, err := json.Marshal(emailJSRequest{
		ServiceID:      c.cfg.ServiceID,
		TemplateID:     templateID,
		UserID:         c.cfg.PublicKey,
		AccessToken:    c.cfg.PrivateKey,
		TemplateParams: params,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("emailjs: send: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("emailjs: status %d: %s", resp.StatusCode, drainError(resp.Body))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func drainError(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 256))
	return strings.TrimSpace(string(b))
}
