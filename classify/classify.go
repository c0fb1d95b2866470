// Package classify decides, for each envelope, whether it opens a new
// decision session or merges into the session in progress, and extracts the
// fields it contributes. Classification is pure: it never mutates the
// session list it is given.
package classify

import (
	"regexp"

	"github.com/tailored-agentic-units/neuralcore/core/envelope"
	"github.com/tailored-agentic-units/neuralcore/session"
)

const (
	// DefaultPrimarySymbol is assigned to manually initiated triggers that
	// name no symbol.
	DefaultPrimarySymbol = "BTCUSDT"

	// DefaultConfidence is the confidence recorded on live verdicts.
	DefaultConfidence = 0.9

	// PendingReason is the trigger reason used when the opening envelope
	// carries none.
	PendingReason = "Thinking..."

	// FallbackVerdictReason is used when an action arrives without a
	// thought_process.
	FallbackVerdictReason = "Based on analysis."
)

var roleBySender = map[string]session.Role{
	envelope.SenderTechnical:   session.RoleTechnical,
	envelope.SenderFundamental: session.RoleFundamental,
	envelope.SenderRisk:        session.RoleRisk,
}

// RoleForSender maps a consultant sender identifier to its role.
func RoleForSender(sender string) (session.Role, bool) {
	role, ok := roleBySender[sender]
	return role, ok
}

var colonPattern = regexp.MustCompile(`[:：]\s*`)

// Normalize renders full- and half-width colons, with any trailing spaces,
// as ": ".
func Normalize(text string) string {
	return colonPattern.ReplaceAllString(text, ": ")
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithIDFunc overrides the session id generator.
func WithIDFunc(fn func() string) Option {
	return func(c *Classifier) { c.newID = fn }
}

// WithPrimarySymbol overrides the symbol assigned to manual triggers.
func WithPrimarySymbol(symbol string) Option {
	return func(c *Classifier) { c.primarySymbol = symbol }
}

// WithConfidence overrides the confidence recorded on verdicts.
func WithConfidence(confidence float64) Option {
	return func(c *Classifier) { c.confidence = confidence }
}

// Classifier turns envelopes into session patches.
type Classifier struct {
	primarySymbol string
	confidence    float64
	newID         func() string
}

// New creates a Classifier with default settings.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		primarySymbol: DefaultPrimarySymbol,
		confidence:    DefaultConfidence,
		newID:         session.NewID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns the patch for env given the current session list.
//
// A trigger payload, or any envelope arriving while the list is empty, opens
// a new session; the envelope's merge fields are applied to that session as
// well. Everything else is a merge into the last session.
func (c *Classifier) Classify(env envelope.Envelope, sessions []session.Session) session.Patch {
	partial := c.Extract(env)

	if env.Content.IsTrigger() || len(sessions) == 0 {
		return session.NewSessionPatch(c.open(env).Apply(partial))
	}

	return session.MergePatch(partial)
}

// Extract returns the merge fields env contributes. Non-object content
// contributes nothing.
func (c *Classifier) Extract(env envelope.Envelope) session.Partial {
	var p session.Partial

	content := env.Content
	if !content.IsObject() {
		return p
	}

	if content.ThoughtProcess != "" &&
		(env.Sender == envelope.SenderCoordinator || env.Kind == envelope.KindAnalysisReport) {
		p.SetStrategy(Normalize(content.ThoughtProcess))
	}

	if role, ok := RoleForSender(env.Sender); ok {
		p.SetFinding(role, content.Raw())
	}

	if (env.Kind == envelope.KindActionRequest || content.HasActionType) && content.Action != nil {
		reason := content.ThoughtProcess
		if reason == "" {
			reason = FallbackVerdictReason
		}
		p.SetVerdict(session.Verdict{
			Action:     content.Action.Type,
			Confidence: c.confidence,
			Reason:     reason,
		})
	}

	return p
}

func (c *Classifier) open(env envelope.Envelope) session.Session {
	s := session.Session{
		ID:            c.newID(),
		CreatedAt:     env.Timestamp,
		TriggerReason: PendingReason,
		Consultants:   make(map[session.Role]any),
	}

	content := env.Content
	if !content.IsObject() {
		return s
	}

	if content.Reason != "" {
		s.TriggerReason = content.Reason
	}

	switch {
	case content.Symbol != "":
		s.Symbol = content.Symbol
	case content.Manual:
		s.Symbol = c.primarySymbol
	}

	switch {
	case content.TechnicalSummary != nil:
		s.InputData = content.TechnicalSummary
	case content.Data != nil:
		s.InputData = content.Data
	default:
		s.InputData = content.Raw()
	}

	return s
}
