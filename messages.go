package main

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// -------------------- TEA MESSAGES --------------------
// All custom message types for The Elm Architecture

// clipboardCopiedMsg indicates clipboard copy completed
type clipboardCopiedMsg struct {
	what string
}

// clearClipboardMsg clears the clipboard feedback
type clearClipboardMsg struct{}

// logInitMsg signals that log viewport should be initialized
type logInitMsg struct{}

// balanceLoadedMsg contains the native balance of account
type balanceLoadedMsg struct {
	account common.Address
	wei     *big.Int
	err     error
}

// signedMsg contains the result of the sign-in message request
type signedMsg struct {
	account  common.Address
	sig      hexutil.Bytes
	verified bool
	err      error
}
