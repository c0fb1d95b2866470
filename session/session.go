// Package session defines the decision session reconstructed from the
// pipeline's message stream, and the partial updates merged into it.
package session

import (
	"maps"
	"time"

	"github.com/google/uuid"
)

// Role identifies a consultant contributing findings to a session.
type Role string

const (
	RoleTechnical   Role = "technical"
	RoleFundamental Role = "fundamental"
	RoleRisk        Role = "risk"
)

// Roles returns the consultant roles in display order.
func Roles() []Role {
	return []Role{RoleTechnical, RoleFundamental, RoleRisk}
}

// Verdict is the terminal record of a decision episode.
type Verdict struct {
	Action     string  `json:"action"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// Session is one reconstructed decision episode, from trigger to an optional
// verdict. A zero Strategy, Symbol or nil Verdict means the field is unset.
// A role missing from Consultants is still pending.
type Session struct {
	ID            string       `json:"id"`
	Symbol        string       `json:"symbol,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	TriggerReason string       `json:"trigger_reason"`
	InputData     any          `json:"input_data,omitempty"`
	Strategy      string       `json:"strategy,omitempty"`
	Consultants   map[Role]any `json:"consultants"`
	Verdict       *Verdict     `json:"verdict,omitempty"`
}

// NewID returns a unique, time-sortable UUIDv7 session identifier.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Closed reports whether the session has reached a verdict.
func (s Session) Closed() bool {
	return s.Verdict != nil
}

// Pending returns the consultant roles that have not reported yet.
func (s Session) Pending() []Role {
	var pending []Role
	for _, role := range Roles() {
		if _, ok := s.Consultants[role]; !ok {
			pending = append(pending, role)
		}
	}
	return pending
}

// Clone returns a copy that shares no mutable containers with s. Consultant
// findings and input data are payloads kept verbatim and are shared.
func (s Session) Clone() Session {
	c := s
	c.Consultants = maps.Clone(s.Consultants)
	if c.Consultants == nil {
		c.Consultants = make(map[Role]any)
	}
	if s.Verdict != nil {
		v := *s.Verdict
		c.Verdict = &v
	}
	return c
}

// Apply returns a new Session with the partial merged over s. Fields set on
// the partial win; consultant entries overwrite per role. s is not modified.
func (s Session) Apply(p Partial) Session {
	next := s.Clone()
	if p.Strategy != nil {
		next.Strategy = *p.Strategy
	}
	for role, finding := range p.Consultants {
		next.Consultants[role] = finding
	}
	if p.Verdict != nil {
		v := *p.Verdict
		next.Verdict = &v
	}
	return next
}
