package monitor

import "github.com/tailored-agentic-units/neuralcore/observability"

// Monitor event types emitted by the processing loop.
const (
	EventRunStart     observability.EventType = "monitor.run.start"
	EventRunComplete  observability.EventType = "monitor.run.complete"
	EventFrameDropped observability.EventType = "monitor.frame.dropped"
	EventSystemEvent  observability.EventType = "monitor.system.event"
)
