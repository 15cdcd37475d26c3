package notifications

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/aquaflow-backend/pkg/logger"
)

type sendCounter interface {
	IncNotification(kind string, ok bool)
}

// Dispatcher fires order emails in the background. The caller never waits
// on a send and never sees its error.
type Dispatcher struct {
	notifier Notifier
	logg     *logger.Logger
	counter  sendCounter
	timeout  time.Duration

	wg sync.WaitGroup
}

// NewDispatcher wires a notifier with logging and send metrics. counter may be nil.
func NewDispatcher(notifier Notifier, logg *logger.Logger, counter sendCounter, timeout time.Duration) (*Dispatcher, error) {
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if timeout <= 0 {
		timeout = defaultEmailJSTimeout
	}
	return &Dispatcher{notifier: notifier, logg: logg, counter: counter, timeout: timeout}, nil
}

// Dispatch sends the admin alert and the customer confirmation concurrently
// on a context detached from ctx.
func (d *Dispatcher) Dispatch(ctx context.Context, summary Summary) {
	bg := d.logg.WithOrderID(d.logg.Detached(ctx), summary.OrderID)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		sendCtx, cancel := context.WithTimeout(bg, d.timeout)
		defer cancel()

		var g errgroup.Group
		g.Go(func() error {
			d.record(sendCtx, KindAdmin, d.notifier.SendAdminNotification(sendCtx, summary))
			return nil
		})
		g.Go(func() error {
			d.record(sendCtx, KindCustomer, d.notifier.SendCustomerConfirmation(sendCtx, summary))
			return nil
		})
		_ = g.Wait()
	}()
}

func (d *Dispatcher) record(ctx context.Context, kind string, err error) {
	if d.counter != nil {
		d.counter.IncNotification(kind, err == nil)
	}
	if err != nil {
		d.logg.Error(d.logg.WithField(ctx, "kind", kind), "order notification failed", err)
		return
	}
	d.logg.Debug(d.logg.WithField(ctx, "kind", kind), "order notification sent")
}

// Drain waits for in-flight sends or until ctx is done.
func (d *Dispatcher) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
