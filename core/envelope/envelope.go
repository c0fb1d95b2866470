// Package envelope decodes transport frames emitted by the decision pipeline
// into typed envelopes. Content is classified once at this boundary so that
// downstream consumers match on a tag instead of probing fields.
package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Kind is the declared message type of an envelope. The set is open;
// unrecognized values are carried through unchanged.
type Kind string

const (
	KindThoughtStream  Kind = "THOUGHT_STREAM"
	KindAnalysisReport Kind = "ANALYSIS_REPORT"
	KindActionRequest  Kind = "ACTION_REQUEST"
	KindSystemEvent    Kind = "SYSTEM_EVENT"
)

// Well-known sender identifiers.
const (
	SenderCoordinator = "coordinator"
	SenderTechnical   = "technical_consultant"
	SenderFundamental = "fundamental_consultant"
	SenderRisk        = "risk_consultant"
	SenderSystem      = "System"
)

// Envelope is one decoded transport message.
// Receiver is informational only.
type Envelope struct {
	Kind      Kind      `json:"type"`
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	Content   Content   `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Decode parses a raw frame. When the frame carries no usable timestamp the
// envelope is stamped with receivedAt. Frames that are not JSON objects
// return ErrMalformedFrame.
func Decode(frame []byte, receivedAt time.Time) (Envelope, error) {
	trimmed := bytes.TrimSpace(frame)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Envelope{}, ErrMalformedFrame
	}

	var raw struct {
		Kind      Kind            `json:"type"`
		Sender    string          `json:"sender"`
		Receiver  string          `json:"receiver"`
		Content   Content         `json:"content"`
		Timestamp json.RawMessage `json:"timestamp"`
	}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	ts, ok := ParseTimestamp(raw.Timestamp)
	if !ok {
		ts = receivedAt
	}

	return Envelope{
		Kind:      raw.Kind,
		Sender:    raw.Sender,
		Receiver:  raw.Receiver,
		Content:   raw.Content,
		Timestamp: ts,
	}, nil
}

// NewSystemEvent builds a SYSTEM_EVENT envelope from the System sender with
// a plain text message.
func NewSystemEvent(message string, at time.Time) Envelope {
	return Envelope{
		Kind:      KindSystemEvent,
		Sender:    SenderSystem,
		Receiver:  "all",
		Content:   TextContent(message),
		Timestamp: at,
	}
}

// MarshalJSON encodes the envelope in the same shape the transport delivers,
// so a marshalled envelope decodes back through Decode.
func (e Envelope) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind      Kind    `json:"type"`
		Sender    string  `json:"sender"`
		Receiver  string  `json:"receiver"`
		Content   Content `json:"content"`
		Timestamp string  `json:"timestamp"`
	}{
		Kind:      e.Kind,
		Sender:    e.Sender,
		Receiver:  e.Receiver,
		Content:   e.Content,
		Timestamp: e.Timestamp.Format(time.RFC3339Nano),
	})
}
