package store

import "github.com/tailored-agentic-units/neuralcore/observability"

const (
	EventSessionCreate   observability.EventType = "store.session.create"
	EventSessionMerge    observability.EventType = "store.session.merge"
	EventSessionClose    observability.EventType = "store.session.close"
	EventMergeRejected   observability.EventType = "store.merge.rejected"
	EventBackfillInstall observability.EventType = "store.backfill.install"
)
