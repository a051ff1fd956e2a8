package bridge

import (
	"context"
	"encoding/json"
	"math/big"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// BalanceTimeout bounds a balance read.
const BalanceTimeout = 12 * time.Second

// Session is an activated connection to an injected wallet.
type Session struct {
	client       *rpc.Client
	account      common.Address
	chainID      *big.Int
	pollInterval time.Duration
}

// Account returns the account granted at activation.
func (s *Session) Account() common.Address { return s.account }

// ChainID returns the chain id seen at activation.
func (s *Session) ChainID() *big.Int { return new(big.Int).Set(s.chainID) }

// Send forwards a raw request to the wallet.
func (s *Session) Send(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	var result json.RawMessage
	if err := s.client.CallContext(ctx, &result, method, params...); err != nil {
		return nil, errors.Wrap(err, method)
	}
	return result, nil
}

// Balance fetches the native balance of account at the latest block.
func (s *Session) Balance(ctx context.Context, account common.Address) (*big.Int, error) {
	ctx, cancel := context.WithTimeout(ctx, BalanceTimeout)
	defer cancel()

	wei, err := ethclient.NewClient(s.client).BalanceAt(ctx, account, nil)
	if err != nil {
		return nil, errors.Wrap(err, "eth_getBalance")
	}
	return wei, nil
}

// Watch subscribes to accountsChanged and chainChanged. Transports without
// notifications (HTTP) and wallets without those subscriptions are polled
// instead.
func (s *Session) Watch(ctx context.Context) (*Subscription, error) {
	accountsCh := make(chan []common.Address, 4)
	accountsSub, err := s.client.Subscribe(ctx, "eth", accountsCh, "accountsChanged")
	if err != nil {
		if pushUnsupported(err) {
			return s.poll(ctx), nil
		}
		return nil, errors.Wrap(err, "subscribe accountsChanged")
	}

	chainCh := make(chan hexutil.Big, 4)
	chainSub, err := s.client.Subscribe(ctx, "eth", chainCh, "chainChanged")
	if err != nil {
		accountsSub.Unsubscribe()
		if pushUnsupported(err) {
			return s.poll(ctx), nil
		}
		return nil, errors.Wrap(err, "subscribe chainChanged")
	}

	return StartSubscription(ctx, func(ctx context.Context, emit func(Event) bool) {
		defer accountsSub.Unsubscribe()
		defer chainSub.Unsubscribe()

		for {
			select {
			case <-ctx.Done():
				return
			case accounts := <-accountsCh:
				if !emit(Event{Kind: EventAccountsChanged, Accounts: accounts}) {
					return
				}
			case id := <-chainCh:
				if !emit(Event{Kind: EventChainChanged, ChainID: id.ToInt()}) {
					return
				}
			case err := <-accountsSub.Err():
				emit(Event{Kind: EventDisconnected, Err: err})
				return
			case err := <-chainSub.Err():
				emit(Event{Kind: EventDisconnected, Err: err})
				return
			}
		}
	}), nil
}

func (s *Session) poll(ctx context.Context) *Subscription {
	return StartSubscription(ctx, func(ctx context.Context, emit func(Event) bool) {
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		accounts := []common.Address{s.account}
		chainID := new(big.Int).Set(s.chainID)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			var current []common.Address
			if err := s.client.CallContext(ctx, &current, "eth_accounts"); err != nil {
				if ctx.Err() != nil {
					return
				}
				if lostProvider(err) {
					emit(Event{Kind: EventDisconnected, Err: err})
					return
				}
				continue
			}
			if !sameAccounts(current, accounts) {
				accounts = current
				if !emit(Event{Kind: EventAccountsChanged, Accounts: current}) {
					return
				}
			}

			var id hexutil.Big
			if err := s.client.CallContext(ctx, &id, "eth_chainId"); err != nil {
				continue
			}
			if id.ToInt().Cmp(chainID) != 0 {
				chainID = id.ToInt()
				if !emit(Event{Kind: EventChainChanged, ChainID: new(big.Int).Set(chainID)}) {
					return
				}
			}
		}
	})
}

// Close releases the underlying client.
func (s *Session) Close() {
	s.client.Close()
}

func pushUnsupported(err error) bool {
	if errors.Is(err, rpc.ErrNotificationsUnsupported) {
		return true
	}
	code, ok := ErrorCode(err)
	return ok && code == codeMethodNotFound
}

func lostProvider(err error) bool {
	if IsTransportFailure(err) {
		return true
	}
	code, _ := ErrorCode(err)
	return code == CodeDisconnected || code == CodeChainDisconnected
}
