package transport

import "sync/atomic"

// MetricsSnapshot is a point-in-time copy of connection counters.
type MetricsSnapshot struct {
	Dials       int64
	Connects    int64
	Disconnects int64
	Frames      int64
}

// Metrics counts connection lifecycle transitions and forwarded frames.
type Metrics struct {
	dials       atomic.Int64
	connects    atomic.Int64
	disconnects atomic.Int64
	frames      atomic.Int64
}

func (m *Metrics) recordDial()       { m.dials.Add(1) }
func (m *Metrics) recordConnect()    { m.connects.Add(1) }
func (m *Metrics) recordDisconnect() { m.disconnects.Add(1) }
func (m *Metrics) recordFrame()      { m.frames.Add(1) }

func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Dials:       m.dials.Load(),
		Connects:    m.connects.Load(),
		Disconnects: m.disconnects.Load(),
		Frames:      m.frames.Load(),
	}
}
