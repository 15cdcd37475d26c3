package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/aquaflow-backend/internal/orders"
	"github.com/angelmondragon/aquaflow-backend/pkg/config"
	"github.com/angelmondragon/aquaflow-backend/pkg/enums"
	"github.com/angelmondragon/aquaflow-backend/pkg/logger"
	"github.com/angelmondragon/aquaflow-backend/pkg/types"
)

func testLogger(buf *bytes.Buffer) *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: buf})
}

func sampleSummary() Summary {
	return SummaryFromOrder(orders.Order{
		ID: "ord-1",
		Items: []types.OrderItem{
			{Name: "19L Bottle", Quantity: 2, PurchaseType: enums.PurchaseTypeSubscription, LineTotal: decimal.NewFromInt(425),
				SubscriptionDetails: &types.SubscriptionSnapshot{PlanName: "Family"}},
			{Name: "Pump", Quantity: 1, PurchaseType: enums.PurchaseTypeOneTime, LineTotal: decimal.NewFromInt(650)},
		},
		Customer: types.CustomerDetails{FirstName: "Ayesha", LastName: "Khan", Email: "ayesha@example.com", City: "Karachi"},
		Total:    decimal.NewFromInt(1075),
	})
}

func TestSummaryItemsText(t *testing.T) {
	s := sampleSummary()
	assert.Equal(t, "Ayesha Khan", s.CustomerName)
	assert.Equal(t, "19L Bottle x2 (Family subscription) - Rs. 425.00\nPump x1 - Rs. 650.00", s.ItemsText())
}

func TestEmailJSClientPostsTemplate(t *testing.T) {
	var got emailJSRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte("OK"))
	}))
	defer srv.Close()

	client, err := NewEmailJSClient(config.NotificationsConfig{
		Endpoint: srv.URL, ServiceID: "svc", PublicKey: "pub", PrivateKey: "priv",
		AdminTemplateID: "tpl_admin", CustomerTemplateID: "tpl_customer", AdminEmail: "ops@example.com",
	}, srv.Client())
	require.NoError(t, err)

	require.NoError(t, client.SendCustomerConfirmation(context.Background(), sampleSummary()))
	assert.Equal(t, "tpl_customer", got.TemplateID)
	assert.Equal(t, "pub", got.UserID)
	assert.Equal(t, "ayesha@example.com", got.TemplateParams["to_email"])
	assert.Equal(t, "1075.00", got.TemplateParams["total"])

	require.NoError(t, client.SendAdminNotification(context.Background(), sampleSummary()))
	assert.Equal(t, "tpl_admin", got.TemplateID)
	assert.Equal(t, "ops@example.com", got.TemplateParams["to_email"])
}

func TestEmailJSClientSurfacesHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "template not found", http.StatusBadRequest)
	}))
	defer srv.Close()

	client, err := NewEmailJSClient(config.NotificationsConfig{
		Endpoint: srv.URL, ServiceID: "svc", PublicKey: "pub", AdminTemplateID: "a", CustomerTemplateID: "c",
	}, srv.Client())
	require.NoError(t, err)

	err = client.SendAdminNotification(context.Background(), sampleSummary())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template not found")
}

func TestNewEmailJSClientRequiresConfig(t *testing.T) {
	_, err := NewEmailJSClient(config.NotificationsConfig{}, nil)
	assert.Error(t, err)
}

type stubNotifier struct {
	adminErr    error
	customerErr error
	release     chan struct{}
	mu          sync.Mutex
	calls       []string
}

func (s *stubNotifier) SendAdminNotification(ctx context.Context, _ Summary) error {
	return s.call(ctx, KindAdmin, s.adminErr)
}

func (s *stubNotifier) SendCustomerConfirmation(ctx context.Context, _ Summary) error {
	return s.call(ctx, KindCustomer, s.customerErr)
}

func (s *stubNotifier) call(ctx context.Context, kind string, err error) error {
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	s.calls = append(s.calls, kind)
	s.mu.Unlock()
	return err
}

type countingMetrics struct {
	mu  sync.Mutex
	ok  map[string]int
	bad map[string]int
}

func (c *countingMetrics) IncNotification(kind string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ok {
		c.ok[kind]++
	} else {
		c.bad[kind]++
	}
}

func TestDispatchDoesNotBlockAndSurvivesRequestCancel(t *testing.T) {
	notifier := &stubNotifier{release: make(chan struct{}), customerErr: errors.New("smtp down")}
	counter := &countingMetrics{ok: map[string]int{}, bad: map[string]int{}}
	var logs bytes.Buffer
	d, err := NewDispatcher(notifier, testLogger(&logs), counter, time.Second)
	require.NoError(t, err)

	reqCtx, cancel := context.WithCancel(context.Background())
	d.Dispatch(reqCtx, sampleSummary())
	cancel()

	close(notifier.release)
	require.NoError(t, d.Drain(context.Background()))

	assert.ElementsMatch(t, []string{KindAdmin, KindCustomer}, notifier.calls)
	assert.Equal(t, 1, counter.ok[KindAdmin])
	assert.Equal(t, 1, counter.bad[KindCustomer])
	assert.Contains(t, logs.String(), "order notification failed")
}

func TestDrainHonoursContext(t *testing.T) {
	notifier := &stubNotifier{release: make(chan struct{})}
	var logs bytes.Buffer
	d, err := NewDispatcher(notifier, testLogger(&logs), nil, time.Minute)
	require.NoError(t, err)

	d.Dispatch(context.Background(), sampleSummary())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Drain(ctx), context.DeadlineExceeded)

	close(notifier.release)
	require.NoError(t, d.Drain(context.Background()))
}

func TestLogNotifierNeverFails(t *testing.T) {
	var logs bytes.Buffer
	n := NewLogNotifier(testLogger(&logs))
	require.NoError(t, n.SendAdminNotification(context.Background(), sampleSummary()))
	require.NoError(t, n.SendCustomerConfirmation(context.Background(), sampleSummary()))
	assert.Contains(t, logs.String(), "log only")
}
