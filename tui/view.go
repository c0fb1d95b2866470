package tui

import (
	"fmt"
	"strings"

	"github.com/tailored-agentic-units/neuralcore/activity"
	"github.com/tailored-agentic-units/neuralcore/session"
)

const timeLayout = "15:04:05"

// renderSession draws one session card. spin is shown while the session
// awaits a verdict.
func renderSession(s session.Session, st styles, spin string, width int) string {
	var b strings.Builder

	symbol := s.Symbol
	if symbol == "" {
		symbol = "any"
	}
	fmt.Fprintf(&b, "%s  %s  %s\n",
		st.symbol.Render(symbol),
		st.meta.Render(s.CreatedAt.Local().Format(timeLayout)),
		st.meta.Render(s.TriggerReason),
	)

	if s.Strategy != "" {
		b.WriteString(st.strategy.Render(s.Strategy))
		b.WriteString("\n")
	}

	roles := make([]string, 0, 3)
	for _, role := range session.Roles() {
		if _, ok := s.Consultants[role]; ok {
			roles = append(roles, st.done.Render("✓ "+string(role)))
		} else {
			roles = append(roles, st.pending.Render("· "+string(role)))
		}
	}
	b.WriteString(strings.Join(roles, "  "))
	b.WriteString("\n")

	if s.Verdict != nil {
		fmt.Fprintf(&b, "%s %s  %s",
			st.action(s.Verdict.Action).Render(s.Verdict.Action),
			st.meta.Render(fmt.Sprintf("%.0f%%", s.Verdict.Confidence*100)),
			s.Verdict.Reason,
		)
	} else {
		fmt.Fprintf(&b, "%s %s", spin, st.pending.Render("deliberating"))
	}

	card := st.card
	if width > 4 {
		card = card.Width(width - 2)
	}
	return card.Render(b.String())
}

// renderSessions draws sessions newest first.
func renderSessions(sessions []session.Session, st styles, spin string, width int) string {
	if len(sessions) == 0 {
		return st.empty.Render("No sessions for the selected symbols yet.")
	}
	cards := make([]string, 0, len(sessions))
	for i := len(sessions) - 1; i >= 0; i-- {
		cards = append(cards, renderSession(sessions[i], st, spin, width))
	}
	return strings.Join(cards, "\n")
}

// renderFeed draws the last n activity entries, newest last.
func renderFeed(entries []activity.Entry, n int, st styles) string {
	if len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, st.feedTitle.Render("Activity"))
	for _, e := range entries {
		sender := e.Sender
		if sender == "" {
			sender = string(e.Kind)
		}
		lines = append(lines, st.feedLine.Render(fmt.Sprintf("%s %-22s %s", e.At.Local().Format(timeLayout), sender, e.Summary)))
	}
	return strings.Join(lines, "\n")
}
