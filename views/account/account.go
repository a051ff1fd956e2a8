package account

import (
	"charm-transfer-tui/helpers"
	"charm-transfer-tui/styles"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/mdp/qrterminal/v3"
)

// Info is everything the account card shows.
type Info struct {
	Account     common.Address
	ChainID     *big.Int
	ConnectorID string

	Balance    *big.Int
	BalanceErr string
	Loading    bool
	LoadedAt   time.Time

	Signature hexutil.Bytes
	Verified  bool
	Signing   bool

	ShowQR      bool
	CopiedMsg   string
	SpinnerView string
}

// Nav returns the navigation bar while a wallet is connected
func Nav(width int, formActive bool) string {
	var left string
	if formActive {
		left = strings.Join([]string{
			styles.Key("Tab") + " next field",
			styles.Key("Enter") + " send",
			styles.Key("Esc") + " cancel",
		}, "   ")
	} else {
		left = strings.Join([]string{
			styles.Key("t") + " transfer",
			styles.Key("s") + " sign",
			styles.Key("c") + " copy address",
			styles.Key("r") + " refresh",
			styles.Key("v") + " QR",
			styles.Key("d") + " disconnect",
			styles.Key("l") + " logger",
			styles.Key("q") + " quit",
		}, "   ")
	}

	return styles.NavStyle.Width(width).Render(left)
}

// Render renders the connected account card
func Render(info Info) string {
	h := styles.TitleStyle.Render("Account")

	addr := info.Account.Hex()
	addrStyle := lipgloss.NewStyle().Foreground(styles.CMuted).Underline(true)
	sub := addrStyle.Render(addr)
	if url := helpers.ExplorerAddressURL(info.ChainID, addr); url != "" {
		// OSC 8 hyperlink: \x1b]8;;URL\x1b\\TEXT\x1b]8;;\x1b\\
		sub = fmt.Sprintf("\x1b]8;;%s\x1b\\%s\x1b]8;;\x1b\\", url, sub)
	}
	if info.CopiedMsg != "" {
		sub += "  " + lipgloss.NewStyle().Foreground(styles.CAccent).Render(info.CopiedMsg)
	}

	label := lipgloss.NewStyle().Foreground(styles.CAccent2).Bold(true)
	value := lipgloss.NewStyle().Foreground(styles.CText)

	chainLine := fmt.Sprintf("%s  %s", label.Render("Chain"), value.Render(helpers.ChainName(info.ChainID)))
	if info.ConnectorID != "" {
		chainLine += styles.MutedStyle.Render("  via " + info.ConnectorID)
	}

	var balance string
	switch {
	case info.Loading:
		balance = info.SpinnerView + " fetching balance…"
	case info.BalanceErr != "":
		balance = lipgloss.NewStyle().Foreground(styles.CWarn).Render("⚠ " + info.BalanceErr)
	default:
		balance = value.Render(helpers.FormatETH(info.Balance)) +
			styles.MutedStyle.Render("  at "+helpers.LoadedAt(info.LoadedAt, false))
	}
	ethLine := fmt.Sprintf("%s    %s", label.Render("ETH"), balance)

	lines := []string{h, sub, "", chainLine, ethLine}

	switch {
	case info.Signing:
		lines = append(lines, "", info.SpinnerView+" waiting for signature…")
	case len(info.Signature) > 0:
		mark := lipgloss.NewStyle().Foreground(styles.CWarn).Render("unverified")
		if info.Verified {
			mark = lipgloss.NewStyle().Foreground(styles.CAccent).Render("✓ verified")
		}
		lines = append(lines, "",
			label.Render("Signature")+"  "+mark+"  "+styles.MutedStyle.Render("(y to copy)"),
			styles.MutedStyle.Render(helpers.ShortenAddr(info.Signature.String())),
		)
	}

	if info.ShowQR {
		lines = append(lines, "", ReceiveQR(addr, info.ChainID))
	}

	return strings.Join(lines, "\n")
}

// ReceiveQR renders the EIP-681 receive link as a terminal QR code.
func ReceiveQR(addr string, chainID *big.Int) string {
	var b strings.Builder
	qrterminal.GenerateHalfBlock(helpers.ReceiveURI(addr, chainID), qrterminal.L, &b)
	return b.String()
}
