package connect

import (
	"charm-transfer-tui/connection"
	"charm-transfer-tui/styles"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Enabled reports whether the Connect button accepts input. It stays
// disabled until the eager attempt finished and while activating.
func Enabled(st connection.State, triedEager bool) bool {
	return triedEager && st.Status != connection.StatusActivating
}

// Render renders the connect card shown while no wallet is connected
func Render(st connection.State, triedEager bool, providerURL string, spinnerView string) string {
	h := styles.TitleStyle.Render("Connect Wallet")
	sub := styles.MutedStyle.Render("Provider: " + providerURL)

	button := styles.ButtonStyle.Render("Connect")
	if Enabled(st, triedEager) {
		button = styles.ActiveButtonStyle.Render("Connect")
	}

	var body string
	switch {
	case st.Status == connection.StatusActivating:
		body = spinnerView + " waiting for the wallet…\n\n" + button
	case st.Status == connection.StatusErrored:
		msg := lipgloss.NewStyle().Foreground(styles.CWarn).Render("⚠ " + st.Err.Message())
		body = msg + "\n\n" + button
	case !triedEager:
		body = spinnerView + " looking for an authorized wallet…\n\n" + button
	default:
		body = button
	}

	return h + "\n" + sub + "\n\n" + body
}

// Nav returns the navigation bar for the connect view
func Nav(width int, st connection.State, triedEager bool) string {
	keys := []string{}
	if Enabled(st, triedEager) {
		keys = append(keys, styles.Key("Enter")+" connect")
	}
	if st.Status == connection.StatusActivating {
		keys = append(keys, styles.Key("d")+" cancel")
	}
	keys = append(keys,
		styles.Key("l")+" logger",
		styles.Key("Esc")+" dismiss",
		styles.Key("q")+" quit",
	)

	return styles.NavStyle.Width(width).Render(strings.Join(keys, "   "))
}
