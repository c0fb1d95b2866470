package monitor

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tailored-agentic-units/neuralcore/transport"
)

// registerGauges exposes live session and link state.
func (m *Monitor) registerGauges(reg prometheus.Registerer) error {
	gauges := []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "neuralcore",
			Name:      "sessions",
			Help:      "Sessions currently held by the store.",
		}, func() float64 { return float64(m.store.Snapshot().Len()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "neuralcore",
			Name:      "link_connected",
			Help:      "1 while the pipeline connection is open.",
		}, func() float64 {
			if m.transport.Status() == transport.Connected {
				return 1
			}
			return 0
		}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "neuralcore",
			Name:      "frames_total",
			Help:      "Frames received from the pipeline.",
		}, func() float64 { return float64(m.transport.Metrics().Frames) }),
	}

	for _, g := range gauges {
		if err := reg.Register(g); err != nil {
			return err
		}
	}
	return nil
}
