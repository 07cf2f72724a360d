package billing

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricsOnce sync.Once //nolint:gochecknoglobals
	events      *prometheus.CounterVec
)

func webhookEvents() *prometheus.CounterVec {
	metricsOnce.Do(func() {
		events = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rentfusion_stripe_webhook_events_total",
			Help: "Verified stripe webhook events by type.",
		}, []string{"type"})
	})

	return events
}
