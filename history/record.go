package history

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/tailored-agentic-units/neuralcore/core/envelope"
)

// Record is one finalized decision as served by the decision log.
type Record struct {
	ID         RecordID
	Timestamp  time.Time
	Symbol     string
	Action     string
	Confidence *float64
	Reason     string
	Details    Details
}

// Details carries the optional context recorded with a decision.
type Details struct {
	InputData      any    `json:"input_data,omitempty"`
	ThoughtProcess string `json:"thought_process,omitempty"`
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID         RecordID        `json:"id"`
		Timestamp  json.RawMessage `json:"timestamp"`
		Symbol     string          `json:"symbol"`
		Action     string          `json:"action"`
		Confidence *float64        `json:"confidence"`
		Reason     string          `json:"reason"`
		Details    *Details        `json:"details"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	ts, _ := envelope.ParseTimestamp(raw.Timestamp)
	*r = Record{
		ID:         raw.ID,
		Timestamp:  ts,
		Symbol:     raw.Symbol,
		Action:     raw.Action,
		Confidence: raw.Confidence,
		Reason:     raw.Reason,
	}
	if raw.Details != nil {
		r.Details = *raw.Details
	}
	return nil
}

// RecordID is a decision id. The log serves integers; strings are accepted.
type RecordID string

func (id *RecordID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*id = RecordID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return err
	}
	*id = RecordID(n.String())
	return nil
}
