package helpers

import (
	"image/color"
	"math/big"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/gamut"
)

// ShortenAddr shortens an Ethereum address for display
func ShortenAddr(addr string) string {
	if len(addr) < 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}

// FormatETH formats Wei to ETH with proper decimals
func FormatETH(wei *big.Int) string {
	if wei == nil {
		return "0 ETH"
	}
	eth := new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(1e18))
	return eth.Text('f', 6) + " ETH"
}

// ChainName returns a readable name for well-known chain ids
func ChainName(id *big.Int) string {
	if id == nil {
		return "unknown"
	}
	switch id.Int64() {
	case 1:
		return "Mainnet"
	case 3:
		return "Ropsten"
	case 5:
		return "Goerli"
	case 10:
		return "Optimism"
	case 137:
		return "Polygon"
	case 8453:
		return "Base"
	case 42161:
		return "Arbitrum One"
	case 11155111:
		return "Sepolia"
	}
	return "chain " + id.String()
}

// ExplorerAddressURL links addr on the chain's block explorer, empty for
// chains without a known explorer.
func ExplorerAddressURL(id *big.Int, addr string) string {
	if id == nil {
		return ""
	}
	var base string
	switch id.Int64() {
	case 1:
		base = "https://etherscan.io"
	case 11155111:
		base = "https://sepolia.etherscan.io"
	case 10:
		base = "https://optimistic.etherscan.io"
	case 137:
		base = "https://polygonscan.com"
	case 8453:
		base = "https://basescan.org"
	case 42161:
		base = "https://arbiscan.io"
	default:
		return ""
	}
	return base + "/address/" + addr
}

// ReceiveURI builds the EIP-681 payment link for addr on chain id.
func ReceiveURI(addr string, id *big.Int) string {
	if id == nil || id.Sign() == 0 {
		return "ethereum:" + addr
	}
	return "ethereum:" + addr + "@" + id.String()
}

// LoadedAt formats the loaded timestamp
func LoadedAt(t time.Time, loading bool) string {
	if loading {
		return "loading…"
	}
	if t.IsZero() {
		return "never"
	}
	return t.Format("15:04:05")
}

// FadeString creates a gradient colored string
func FadeString(s string, firstColor string, lastColor string) string {
	blends := gamut.Blends(lipgloss.Color(firstColor), lipgloss.Color(lastColor), len(s))
	return rainbow(lipgloss.NewStyle(), s, blends)
}

func rainbow(baseStyle lipgloss.Style, str string, colors []color.Color) string {
	var b strings.Builder
	for i, c := range str {
		col, _ := colorful.MakeColor(colors[i%len(colors)])
		b.WriteString(baseStyle.Foreground(lipgloss.Color(col.Hex())).Render(string(c)))
	}
	return b.String()
}

// Max returns the maximum of two integers
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Min returns the minimum of two integers
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
