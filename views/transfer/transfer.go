package transfer

import (
	"charm-transfer-tui/helpers"
	"charm-transfer-tui/styles"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/ethereum/go-ethereum/common"
)

// Card is the state of the transfer card.
type Card struct {
	Form        *huh.Form
	Active      bool
	Address     string
	Amount      string
	Pending     bool
	LastTxHash  common.Hash
	SpinnerView string
}

// Render renders the transfer card
func Render(c Card) string {
	h := styles.TitleStyle.Render("Transfer")

	var body string
	if c.Active && c.Form != nil {
		body = c.Form.View() + "\n" +
			styles.MutedStyle.Render("Sending ") +
			lipgloss.NewStyle().Foreground(styles.CAccent).Render(helpers.FormatAmount(c.Amount))
	} else {
		to := c.Address
		if to == "" {
			to = "—"
		} else {
			to = helpers.ShortenAddr(to)
		}
		body = strings.Join([]string{
			styles.MutedStyle.Render("To      ") + to,
			styles.MutedStyle.Render("Amount  ") + helpers.FormatAmount(c.Amount),
			"",
			styles.ButtonStyle.Render("Send"),
		}, "\n")
	}

	lines := []string{h, "", body}

	if c.Pending {
		lines = append(lines, "", c.SpinnerView+" waiting for the wallet…")
	}
	if c.LastTxHash != (common.Hash{}) {
		lines = append(lines, "",
			styles.MutedStyle.Render("Last tx  ")+helpers.ShortenAddr(c.LastTxHash.Hex())+
				styles.MutedStyle.Render("  (x to copy)"))
	}

	return strings.Join(lines, "\n")
}
