package helpers

import (
	"math/big"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// EtherDecimals is the number of fractional digits of the native currency.
const EtherDecimals = 18

// AmountPrefix is shown in front of amounts typed into the transfer form.
const AmountPrefix = "ETH "

// ErrAmountParse marks every failure of ToSmallestUnit.
var ErrAmountParse = errors.New("amount parse error")

var decimalRe = regexp.MustCompile(`^([0-9]+\.?[0-9]*|\.[0-9]+)$`)

// IsValidAddress checks if a string is a valid Ethereum address.
// Mixed-case input must carry a correct EIP-55 checksum.
func IsValidAddress(s string) bool {
	if !strings.HasPrefix(s, "0x") || !common.IsHexAddress(s) {
		return false
	}
	body := s[2:]
	if body == strings.ToLower(body) || body == strings.ToUpper(body) {
		return true
	}
	return common.HexToAddress(s).Hex() == s
}

// ToSmallestUnit parses a base-10 amount of ether into wei.
func ToSmallestUnit(amount string) (*big.Int, error) {
	if !decimalRe.MatchString(amount) {
		return nil, errors.Wrapf(ErrAmountParse, "malformed amount %q", amount)
	}
	normalized := strings.TrimSuffix(amount, ".")
	if strings.HasPrefix(normalized, ".") {
		normalized = "0" + normalized
	}
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return nil, errors.Wrapf(ErrAmountParse, "malformed amount %q: %v", amount, err)
	}
	wei := d.Shift(EtherDecimals)
	if !wei.IsInteger() {
		return nil, errors.Wrapf(ErrAmountParse, "%q has more than %d fractional digits", amount, EtherDecimals)
	}
	return wei.BigInt(), nil
}

// NormalizeAmount strips the display prefix, thousands separators and
// surrounding spaces from a typed amount.
func NormalizeAmount(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, strings.TrimSpace(AmountPrefix))
	s = strings.ReplaceAll(s, ",", "")
	return strings.TrimSpace(s)
}

// FormatAmount renders a typed amount the way the transfer card shows it,
// e.g. "1234.5" -> "ETH 1,234.5". Input that is not a plain decimal is
// returned with the prefix only.
func FormatAmount(s string) string {
	s = NormalizeAmount(s)
	if s == "" {
		return AmountPrefix + "0"
	}
	if !decimalRe.MatchString(s) {
		return AmountPrefix + s
	}
	whole, frac, hasDot := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	n, ok := new(big.Int).SetString(whole, 10)
	if !ok {
		return AmountPrefix + s
	}
	out := AmountPrefix + humanize.BigComma(n)
	if hasDot {
		out += "." + frac
	}
	return out
}
