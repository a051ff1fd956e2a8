package transfer

import (
	"context"
	"encoding/json"
	"strings"

	"charm-transfer-tui/bridge"
	"charm-transfer-tui/helpers"
	"charm-transfer-tui/notify"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

const (
	msgDone    = "Transfer Done"
	msgPending = "A transfer is already waiting for the wallet"
	msgOffline = "Connect a wallet first"
)

// Request is a transfer as entered by the user.
type Request struct {
	Sender    common.Address
	Recipient string
	Amount    string
}

// TxArgs is the eth_sendTransaction parameter object.
type TxArgs struct {
	From  common.Address `json:"from"`
	To    common.Address `json:"to"`
	Value *hexutil.Big   `json:"value"`
}

// Args validates r and converts the amount to wei. The returned error is a
// *bridge.Error tagged InvalidRecipient or AmountParse.
func (r Request) Args() (TxArgs, error) {
	if !helpers.IsValidAddress(r.Recipient) {
		return TxArgs{}, &bridge.Error{
			Kind: bridge.KindInvalidRecipient,
			Err:  errors.Newf("invalid recipient %q", r.Recipient),
		}
	}
	wei, err := helpers.ToSmallestUnit(helpers.NormalizeAmount(r.Amount))
	if err != nil {
		return TxArgs{}, &bridge.Error{Kind: bridge.KindAmountParse, Err: err}
	}
	return TxArgs{
		From:  r.Sender,
		To:    common.HexToAddress(r.Recipient),
		Value: (*hexutil.Big)(wei),
	}, nil
}

// ResultMsg reports the wallet's answer to a submitted transfer.
type ResultMsg struct {
	Request Request
	TxHash  common.Hash
	Err     error
}

// Controller holds the transfer form fields and dispatches submissions.
type Controller struct {
	Address string
	Amount  string

	logger  *log.Logger
	pending bool
}

// New returns an empty controller.
func New(logger *log.Logger) *Controller {
	return &Controller{logger: logger}
}

// Pending reports whether a submission is waiting for the wallet.
func (c *Controller) Pending() bool { return c.pending }

// Submit validates the fields and returns the command that forwards a single
// eth_sendTransaction through h. Validation failures return an error
// notification and no command.
func (c *Controller) Submit(h bridge.Handle, account common.Address) (notify.Notification, tea.Cmd) {
	if h == nil {
		return notify.Error(msgOffline), nil
	}
	if c.pending {
		return notify.Info(msgPending), nil
	}

	req := Request{
		Sender:    account,
		Recipient: strings.TrimSpace(c.Address),
		Amount:    c.Amount,
	}
	args, err := req.Args()
	if err != nil {
		kind := bridge.KindOf(err)
		c.logger.Debug("transfer rejected before dispatch", "kind", kind, "err", err)
		return notify.Error(kind.Message()), nil
	}

	c.pending = true
	c.logger.Info("sending transaction",
		"from", args.From.Hex(),
		"to", args.To.Hex(),
		"value", args.Value.String(),
	)
	return notify.Notification{}, send(h, req, args)
}

// Resolve clears the pending flag and maps the wallet's answer to a
// notification.
func (c *Controller) Resolve(msg ResultMsg) notify.Notification {
	c.pending = false

	if msg.Err == nil {
		c.logger.Info("transaction accepted", "hash", msg.TxHash.Hex())
		return notify.Success(msgDone)
	}
	e := bridge.ClassifySend(msg.Err)
	if e.Kind == bridge.KindUnknown {
		c.logger.Error("transaction failed", "err", msg.Err)
	} else {
		c.logger.Warn("transaction rejected", "kind", e.Kind)
	}
	return notify.Error(e.Kind.Message())
}

func send(h bridge.Handle, req Request, args TxArgs) tea.Cmd {
	return func() tea.Msg {
		raw, err := h.Send(context.Background(), "eth_sendTransaction", args)
		if err != nil {
			return ResultMsg{Request: req, Err: err}
		}
		var hash common.Hash
		if err := json.Unmarshal(raw, &hash); err != nil {
			// Accepted even if the hash does not decode.
			return ResultMsg{Request: req}
		}
		return ResultMsg{Request: req, TxHash: hash}
	}
}

// AcceptAmountInput reports whether typing runes after current still leaves a
// well-formed amount: digits, one decimal point, comma grouping and at most
// 18 fractional digits.
func AcceptAmountInput(current string, runes []rune) bool {
	next := strings.TrimPrefix(current, helpers.AmountPrefix) + string(runes)
	dot := false
	frac := 0
	for _, r := range next {
		switch {
		case r == '.':
			if dot {
				return false
			}
			dot = true
		case r == ',':
			if dot {
				return false
			}
		case r >= '0' && r <= '9':
			if dot {
				frac++
			}
		default:
			return false
		}
	}
	return frac <= helpers.EtherDecimals
}
