package notify

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricsOnce   sync.Once //nolint:gochecknoglobals
	notifications *prometheus.CounterVec
)

func sent() *prometheus.CounterVec {
	metricsOnce.Do(func() {
		notifications = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rentfusion_notifications_total",
			Help: "Notification delivery attempts by channel and result.",
		}, []string{"channel", "result"})
	})

	return notifications
}
