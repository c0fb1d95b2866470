package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsObserver counts events by type and severity.
type MetricsObserver struct {
	events *prometheus.CounterVec
}

// NewMetricsObserver creates a MetricsObserver and registers its collector
// with reg. A nil reg uses the default Prometheus registerer.
func NewMetricsObserver(reg prometheus.Registerer) (*MetricsObserver, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "neuralcore",
		Name:      "events_total",
		Help:      "Pipeline events emitted, by event type and severity.",
	}, []string{"type", "level"})

	if err := reg.Register(events); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			events = already.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}

	return &MetricsObserver{events: events}, nil
}

func (m *MetricsObserver) OnEvent(ctx context.Context, event Event) {
	m.events.WithLabelValues(string(event.Type), event.Level.String()).Inc()
}

// Count returns the counter for an event type and level.
func (m *MetricsObserver) Count(eventType EventType, level Level) prometheus.Counter {
	return m.events.WithLabelValues(string(eventType), level.String())
}
