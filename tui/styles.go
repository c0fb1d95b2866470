package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title     lipgloss.Style
	online    lipgloss.Style
	offline   lipgloss.Style
	chipOn    lipgloss.Style
	chipOff   lipgloss.Style
	card      lipgloss.Style
	symbol    lipgloss.Style
	meta      lipgloss.Style
	strategy  lipgloss.Style
	done      lipgloss.Style
	pending   lipgloss.Style
	buy       lipgloss.Style
	sell      lipgloss.Style
	hold      lipgloss.Style
	feedLine  lipgloss.Style
	feedTitle lipgloss.Style
	help      lipgloss.Style
	errorText lipgloss.Style
	empty     lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69")),
		online:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		offline:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		chipOn:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		chipOff:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		card:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")).Padding(0, 1),
		symbol:    lipgloss.NewStyle().Bold(true),
		meta:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		strategy:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		done:      lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		pending:   lipgloss.NewStyle().Faint(true),
		buy:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		sell:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		hold:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("221")),
		feedLine:  lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		feedTitle: lipgloss.NewStyle().Bold(true),
		help:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		errorText: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		empty:     lipgloss.NewStyle().Faint(true),
	}
}

func (s styles) action(action string) lipgloss.Style {
	switch action {
	case "BUY", "LONG":
		return s.buy
	case "SELL", "SHORT":
		return s.sell
	default:
		return s.hold
	}
}
