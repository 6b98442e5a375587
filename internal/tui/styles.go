package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lox/ginrummy/gin"
)

// Static styles for content elements
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true)

	HandInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	ActionsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true)

	RedCardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	BlackCardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true)

	MeldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	DeadwoodStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

// FormatCard colours a card by suit
func FormatCard(card gin.Card) string {
	if card.IsRed() {
		return RedCardStyle.Render(card.String())
	}
	return BlackCardStyle.Render(card.String())
}

// FormatCards formats cards with colors
func FormatCards(cards []gin.Card) string {
	if len(cards) == 0 {
		return "[]"
	}

	formatted := make([]string, len(cards))
	for i, card := range cards {
		formatted[i] = FormatCard(card)
	}
	return "[" + strings.Join(formatted, " ") + "]"
}

// FormatPartition renders melds one per line followed by the deadwood cards
// and their value.
func FormatPartition(p gin.Partition) string {
	var b strings.Builder
	for _, m := range p.Melds {
		b.WriteString(MeldStyle.Render(fmt.Sprintf("%-4s", m.Kind)))
		b.WriteString(" ")
		b.WriteString(FormatCards(m.Cards))
		b.WriteString("\n")
	}
	b.WriteString(DeadwoodStyle.Render(fmt.Sprintf("deadwood %d", p.Value())))
	if len(p.Deadwood) > 0 {
		b.WriteString(" ")
		b.WriteString(FormatCards(p.Deadwood))
	}
	return b.String()
}
