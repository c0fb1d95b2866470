package envelope

import (
	"bytes"
	"encoding/json"
)

// ContentKind tags the payload variant of an envelope's content.
type ContentKind int

const (
	// ContentEmpty marks absent or null content.
	ContentEmpty ContentKind = iota
	// ContentText is any non-object payload, usually free text.
	ContentText
	// ContentTrigger is an object announcing a new decision episode.
	ContentTrigger
	// ContentAction is an object carrying an action record.
	ContentAction
	// ContentStrategy is an object carrying a thought_process narrative.
	ContentStrategy
	// ContentObject is any other object, such as a consultant finding.
	ContentObject
)

func (k ContentKind) String() string {
	switch k {
	case ContentText:
		return "text"
	case ContentTrigger:
		return "trigger"
	case ContentAction:
		return "action"
	case ContentStrategy:
		return "strategy"
	case ContentObject:
		return "object"
	default:
		return "empty"
	}
}

// Trigger sub-types that open a new decision episode.
const (
	TriggerManualIntervention = "MANUAL_INTERVENTION"
	TriggerProximityAlert     = "PROXIMITY_ALERT"
)

// triggerManual is the value of the "trigger" field on manually initiated
// payloads.
const triggerManual = "MANUAL"

// Action is an action record found in content, either under "action" or
// under "result.action".
type Action struct {
	Type   string
	Fields map[string]any
}

// Content is the decoded payload of an envelope. Kind is assigned once at
// decode time; the typed fields below are extracted from object payloads so
// consumers never probe Fields directly. Value keeps the payload verbatim.
type Content struct {
	Kind  ContentKind
	Value any

	Text   string
	Fields map[string]any

	Type             string
	Reason           string
	Symbol           string
	Manual           bool
	TechnicalSummary any
	Data             any
	ThoughtProcess   string
	Action           *Action
	// HasActionType reports whether "action" is an object with a "type".
	HasActionType bool
}

// TextContent wraps a plain string payload.
func TextContent(text string) Content {
	return Content{Kind: ContentText, Value: text, Text: text}
}

// ObjectContent classifies an object payload.
func ObjectContent(fields map[string]any) Content {
	c := Content{Kind: ContentObject, Value: fields, Fields: fields}

	c.Type = stringField(fields, "type")
	c.Reason = stringField(fields, "reason")
	c.Symbol = stringField(fields, "symbol")
	c.Manual = stringField(fields, "trigger") == triggerManual
	c.TechnicalSummary = present(fields, "technical_summary")
	c.Data = present(fields, "data")
	c.ThoughtProcess = stringField(fields, "thought_process")

	if action, ok := fields["action"].(map[string]any); ok {
		c.Action = &Action{Type: stringField(action, "type"), Fields: action}
		c.HasActionType = present(action, "type") != nil
	} else if result, ok := fields["result"].(map[string]any); ok {
		if action, ok := result["action"].(map[string]any); ok {
			c.Action = &Action{Type: stringField(action, "type"), Fields: action}
		}
	}

	switch {
	case c.Type == TriggerManualIntervention || c.Type == TriggerProximityAlert:
		c.Kind = ContentTrigger
	case c.Action != nil:
		c.Kind = ContentAction
	case c.ThoughtProcess != "":
		c.Kind = ContentStrategy
	}

	return c
}

// IsObject reports whether the payload was a JSON object.
func (c Content) IsObject() bool {
	return c.Fields != nil
}

// IsTrigger reports whether the payload opens a new decision episode.
func (c Content) IsTrigger() bool {
	return c.Kind == ContentTrigger
}

// Raw returns the payload exactly as it was received.
func (c Content) Raw() any {
	return c.Value
}

func (c *Content) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*c = Content{}
		return nil
	}

	if trimmed[0] == '{' {
		var fields map[string]any
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return err
		}
		*c = ObjectContent(fields)
		return nil
	}

	var value any
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return err
	}
	text, _ := value.(string)
	*c = Content{Kind: ContentText, Value: value, Text: text}
	return nil
}

func (c Content) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Value)
}

// stringField returns fields[key] when it is a string, and "" otherwise.
func stringField(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}

// present returns fields[key] when it is set to a truthy value.
func present(fields map[string]any, key string) any {
	v, ok := fields[key]
	if !ok || v == nil {
		return nil
	}
	switch t := v.(type) {
	case string:
		if t == "" {
			return nil
		}
	case bool:
		if !t {
			return nil
		}
	case float64:
		if t == 0 {
			return nil
		}
	}
	return v
}
