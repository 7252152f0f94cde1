package httpx

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hostbr/deploybot/internal/service/adminlog"
)

// Metrics counts flow outcomes. It plugs into the administrative
// observer boundary so the orchestrator stays metrics-agnostic.
type Metrics struct {
	events *prometheus.CounterVec
}

// NewMetrics registers the bot's counters with the default registry.
func NewMetrics() *Metrics {
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "deploybot",
		Name:      "admin_events_total",
		Help:      "Administrative events by kind",
	}, []string{"kind"})

	if err := prometheus.Register(events); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			events = already.ExistingCollector.(*prometheus.CounterVec)
		}
	}
	return &Metrics{events: events}
}

// Emit implements adminlog.Notifier by counting the event kind.
func (m *Metrics) Emit(_ context.Context, event adminlog.Event) {
	m.events.With(prometheus.Labels{"kind": string(event.Kind)}).Inc()
}

var _ adminlog.Notifier = (*Metrics)(nil)
