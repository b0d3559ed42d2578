package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1).
			MarginBottom(1)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	fullStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	idStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Terminal draws the page as a column of cards, one per session.
func (d *Document) Terminal() string {
	frags := d.Fragments()
	if len(frags) == 0 {
		return mutedStyle.Render("no sessions") + "\n"
	}
	cards := make([]string, 0, len(frags))
	for _, f := range frags {
		cards = append(cards, renderCard(f))
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...) + "\n"
}

func renderCard(f SessionFragment) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(f.Header))
	b.WriteString(" " + idStyle.Render("["+f.ID+"]") + "\n")
	b.WriteString(mutedStyle.Render(f.TimeText) + "\n")
	if f.AddHidden {
		b.WriteString(fullStyle.Render(f.SeatsText+" (full)") + "\n")
	} else {
		b.WriteString(f.SeatsText + "\n")
	}
	for _, item := range f.Bookings {
		b.WriteString("  • " + item.Name + " " + idStyle.Render(item.ID) + "\n")
	}
	return cardStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// TerminalSession draws the card of one session.
func (d *Document) TerminalSession(tag string) (string, bool) {
	f, ok := d.Fragment(tag)
	if !ok {
		return "", false
	}
	return renderCard(f), true
}
