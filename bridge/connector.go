package bridge

import (
	"context"
	"encoding/json"
	"math/big"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

const (
	// DefaultProbeTimeout bounds the dial and the first eth_chainId call.
	DefaultProbeTimeout = 8 * time.Second
	// DefaultPollInterval is used when the transport cannot push events.
	DefaultPollInterval = 12 * time.Second
)

// Handle is the request-sending capability handed to downstream consumers
// while a wallet is connected.
type Handle interface {
	Send(ctx context.Context, method string, params ...any) (json.RawMessage, error)
	Balance(ctx context.Context, account common.Address) (*big.Int, error)
}

// Conn is an activated wallet connection.
type Conn interface {
	Handle
	Account() common.Address
	ChainID() *big.Int
	Watch(ctx context.Context) (*Subscription, error)
	Close()
}

// Connector abstracts one wallet-injection mechanism.
type Connector interface {
	ID() string
	// IsAuthorized reports whether the wallet already granted an account,
	// without prompting the user.
	IsAuthorized(ctx context.Context) bool
	Activate(ctx context.Context) (Conn, error)
}

// DialFunc opens a JSON-RPC client to the provider.
type DialFunc func(ctx context.Context, url string) (*rpc.Client, error)

// InjectedConfig configures an InjectedConnector.
type InjectedConfig struct {
	URL             string
	SupportedChains []*big.Int // empty means any chain
	ProbeTimeout    time.Duration
	PollInterval    time.Duration
	Dial            DialFunc
}

// InjectedConnector talks to a wallet that exposes an EIP-1193 style
// JSON-RPC endpoint (Frame, a wallet bridge, a dev node with unlocked accounts).
type InjectedConnector struct {
	cfg InjectedConfig
}

// NewInjectedConnector fills in defaults for cfg.
func NewInjectedConnector(cfg InjectedConfig) *InjectedConnector {
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = DefaultProbeTimeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Dial == nil {
		cfg.Dial = rpc.DialContext
	}
	return &InjectedConnector{cfg: cfg}
}

// ID implements Connector.
func (c *InjectedConnector) ID() string { return "injected" }

// URL returns the provider endpoint.
func (c *InjectedConnector) URL() string { return c.cfg.URL }

// Supports reports whether chainID is one of the configured chains.
func (c *InjectedConnector) Supports(chainID *big.Int) bool {
	if len(c.cfg.SupportedChains) == 0 {
		return true
	}
	if chainID == nil {
		return false
	}
	for _, id := range c.cfg.SupportedChains {
		if id.Cmp(chainID) == 0 {
			return true
		}
	}
	return false
}

// IsAuthorized implements Connector.
func (c *InjectedConnector) IsAuthorized(ctx context.Context) bool {
	client, _, err := c.probe(ctx)
	if err != nil {
		return false
	}
	defer client.Close()

	var accounts []common.Address
	if err := client.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return false
	}
	return len(accounts) > 0
}

// Activate implements Connector. The returned error is always a *Error.
func (c *InjectedConnector) Activate(ctx context.Context) (Conn, error) {
	client, chainID, err := c.probe(ctx)
	if err != nil {
		return nil, err
	}

	var accounts []common.Address
	if err := client.CallContext(ctx, &accounts, "eth_requestAccounts"); err != nil {
		client.Close()
		return nil, classifyActivation(err)
	}
	if len(accounts) == 0 {
		client.Close()
		return nil, newError(KindUserRejected, errors.New("wallet returned no accounts"))
	}
	if !c.Supports(chainID) {
		client.Close()
		return nil, newError(KindUnsupportedNetwork, errors.Newf("chain id %s is not supported", chainID))
	}

	return &Session{
		client:       client,
		account:      accounts[0],
		chainID:      chainID,
		pollInterval: c.cfg.PollInterval,
	}, nil
}

// probe dials the provider and reads its chain id, both bounded by the
// probe timeout.
func (c *InjectedConnector) probe(ctx context.Context) (*rpc.Client, *big.Int, error) {
	if c.cfg.URL == "" {
		return nil, nil, newError(KindNoProvider, errors.New("no provider url configured"))
	}

	probeCtx, cancel := context.WithTimeout(ctx, c.cfg.ProbeTimeout)
	defer cancel()

	client, err := c.cfg.Dial(probeCtx, c.cfg.URL)
	if err != nil {
		return nil, nil, newError(KindNoProvider, errors.Wrapf(err, "dial %s", c.cfg.URL))
	}

	var chainID hexutil.Big
	if err := client.CallContext(probeCtx, &chainID, "eth_chainId"); err != nil {
		client.Close()
		return nil, nil, classifyActivation(errors.Wrap(err, "eth_chainId"))
	}
	return client, chainID.ToInt(), nil
}

func classifyActivation(err error) *Error {
	if code, ok := ErrorCode(err); ok {
		if code == CodeUserRejected || code == CodeUnauthorized {
			return newError(KindUserRejected, err)
		}
		return newError(KindUnknown, err)
	}
	if errors.Is(err, context.Canceled) {
		return newError(KindUnknown, err)
	}
	return newError(KindNoProvider, err)
}
