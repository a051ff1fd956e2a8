package bridge

import (
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/rpc"
)

// Kind tags every failure the UI can surface.
type Kind int

const (
	KindUnknown Kind = iota
	KindNoProvider
	KindUnsupportedNetwork
	KindUserRejected
	KindInvalidRecipient
	KindAmountParse
	KindTransactionRejected
)

// EIP-1193 provider error codes.
const (
	CodeUserRejected      = 4001
	CodeUnauthorized      = 4100
	CodeDisconnected      = 4900
	CodeChainDisconnected = 4901
)

const codeMethodNotFound = -32601

func (k Kind) String() string {
	switch k {
	case KindNoProvider:
		return "NoProviderFound"
	case KindUnsupportedNetwork:
		return "UnsupportedNetwork"
	case KindUserRejected:
		return "UserRejected"
	case KindInvalidRecipient:
		return "InvalidRecipientAddress"
	case KindAmountParse:
		return "AmountParseError"
	case KindTransactionRejected:
		return "TransactionRejectedByWallet"
	default:
		return "UnknownConnectorError"
	}
}

// Message is the user-facing text for the kind.
func (k Kind) Message() string {
	switch k {
	case KindNoProvider:
		return "No Ethereum browser extension detected, install MetaMask on desktop or visit from a dApp browser on mobile."
	case KindUnsupportedNetwork:
		return "You're connected to an unsupported network."
	case KindUserRejected:
		return "Please authorize this application to access your Ethereum account."
	case KindInvalidRecipient:
		return "Invalid Address"
	case KindAmountParse:
		return "Invalid Amount"
	case KindTransactionRejected:
		return "Transaction rejected by wallet"
	default:
		return "An unknown error occurred. Check the log for more details."
	}
}

// Error carries a Kind together with the underlying cause.
type Error struct {
	Kind Kind
	Err  error
}

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the Kind from err, KindUnknown if err was not tagged.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// ErrorCode returns the JSON-RPC error code carried by err, if any.
func ErrorCode(err error) (int, bool) {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return rpcErr.ErrorCode(), true
	}
	return 0, false
}

// IsUserRejection reports whether the wallet answered with EIP-1193 code 4001.
func IsUserRejection(err error) bool {
	code, ok := ErrorCode(err)
	return ok && code == CodeUserRejected
}

// IsTransportFailure reports whether err came without any JSON-RPC answer,
// i.e. nothing that speaks the provider protocol is listening.
func IsTransportFailure(err error) bool {
	if err == nil {
		return false
	}
	_, ok := ErrorCode(err)
	return !ok
}

// ClassifySend tags an error returned by a transaction request.
func ClassifySend(err error) *Error {
	if err == nil {
		return nil
	}
	if IsUserRejection(err) {
		return newError(KindTransactionRejected, err)
	}
	return newError(KindUnknown, err)
}
