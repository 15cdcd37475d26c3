package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Checkout outcomes.
const (
	OutcomeSuccess    = "success"
	OutcomeValidation = "validation"
	OutcomeEmptyCart  = "empty_cart"
	OutcomeFailed     = "failed"
	OutcomeReplayed   = "replayed"
)

// Storefront records checkout and notification activity.
type Storefront struct {
	checkoutDuration *prometheus.HistogramVec
	checkouts        *prometheus.CounterVec
	notifications    *prometheus.CounterVec
}

// NewStorefront registers the storefront collectors on reg. A nil registerer
// yields a no-op recorder.
func NewStorefront(reg prometheus.Registerer) *Storefront {
	if reg == nil {
		return &Storefront{}
	}
	checkoutDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout submissions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_submissions_total",
		Help: "Checkout submissions by outcome.",
	}, []string{"outcome"})
	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_sends_total",
		Help: "Order notification sends by kind and outcome.",
	}, []string{"kind", "outcome"})
	reg.MustRegister(checkoutDuration, checkouts, notifications)
	return &Storefront{
		checkoutDuration: checkoutDuration,
		checkouts:        checkouts,
		notifications:    notifications,
	}
}

// ObserveCheckout counts a submission and records how long it took.
func (s *Storefront) ObserveCheckout(outcome string, duration time.Duration) {
	if s == nil || s.checkouts == nil {
		return
	}
	outcome = normalizeLabel(outcome)
	s.checkouts.WithLabelValues(outcome).Inc()
	s.checkoutDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// IncNotification counts a notification send attempt.
func (s *Storefront) IncNotification(kind string, ok bool) {
	if s == nil || s.notifications == nil {
		return
	}
	outcome := OutcomeSuccess
	if !ok {
		outcome = OutcomeFailed
	}
	s.notifications.WithLabelValues(normalizeLabel(kind), outcome).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
