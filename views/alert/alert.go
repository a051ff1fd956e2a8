package alert

import (
	"charm-transfer-tui/notify"
	"charm-transfer-tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// Render renders the notification banner, or nothing when n is hidden
func Render(n notify.Notification, width int) string {
	if !n.Visible {
		return ""
	}

	color := styles.CAccent2
	icon := "ℹ"
	switch n.Severity {
	case notify.SeveritySuccess:
		color = styles.CAccent
		icon = "✓"
	case notify.SeverityError:
		color = styles.CError
		icon = "✗"
	}

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Foreground(color).
		Bold(true).
		Padding(0, 1).
		Width(max(0, width-2)).
		Render(icon + " " + n.Message)
}
