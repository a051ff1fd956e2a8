package bridge

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// walletError mimics an EIP-1193 provider error.
type walletError struct {
	code int
	msg  string
}

func (e walletError) Error() string  { return e.msg }
func (e walletError) ErrorCode() int { return e.code }

var errUserRejected = walletError{code: CodeUserRejected, msg: "User rejected the request."}

type sendArgs struct {
	From  common.Address  `json:"from"`
	To    *common.Address `json:"to"`
	Value *hexutil.Big    `json:"value"`
}

// fakeWallet is an in-process stand-in for an injected wallet.
type fakeWallet struct {
	mu             sync.Mutex
	key            *ecdsa.PrivateKey
	granted        bool
	rejectRequests bool
	rejectSends    bool
	chainID        int64
	balance        *big.Int
	sent           []sendArgs

	accountsFeed chan []common.Address
	chainFeed    chan *hexutil.Big
}

func newFakeWallet(t *testing.T) *fakeWallet {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return &fakeWallet{
		key:          key,
		chainID:      11155111,
		balance:      big.NewInt(42),
		accountsFeed: make(chan []common.Address),
		chainFeed:    make(chan *hexutil.Big),
	}
}

func (w *fakeWallet) address() common.Address {
	return crypto.PubkeyToAddress(w.key.PublicKey)
}

func (w *fakeWallet) setChain(id int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.chainID = id
}

func (w *fakeWallet) revoke() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.granted = false
}

// pollingAPI carries the request methods only.
type pollingAPI struct{ w *fakeWallet }

func (api *pollingAPI) ChainId() *hexutil.Big {
	api.w.mu.Lock()
	defer api.w.mu.Unlock()
	return (*hexutil.Big)(big.NewInt(api.w.chainID))
}

func (api *pollingAPI) Accounts() []common.Address {
	api.w.mu.Lock()
	defer api.w.mu.Unlock()
	if !api.w.granted {
		return []common.Address{}
	}
	return []common.Address{api.w.address()}
}

func (api *pollingAPI) RequestAccounts() ([]common.Address, error) {
	api.w.mu.Lock()
	defer api.w.mu.Unlock()
	if api.w.rejectRequests {
		return nil, errUserRejected
	}
	api.w.granted = true
	return []common.Address{api.w.address()}, nil
}

func (api *pollingAPI) SendTransaction(args sendArgs) (common.Hash, error) {
	api.w.mu.Lock()
	defer api.w.mu.Unlock()
	if api.w.rejectSends {
		return common.Hash{}, errUserRejected
	}
	api.w.sent = append(api.w.sent, args)
	return common.HexToHash("0x01"), nil
}

func (api *pollingAPI) GetBalance(account common.Address, block string) (*hexutil.Big, error) {
	api.w.mu.Lock()
	defer api.w.mu.Unlock()
	return (*hexutil.Big)(api.w.balance), nil
}

// pushAPI adds the EIP-1193 event subscriptions.
type pushAPI struct{ pollingAPI }

func (api *pushAPI) AccountsChanged(ctx context.Context) (*rpc.Subscription, error) {
	notifier, ok := rpc.NotifierFromContext(ctx)
	if !ok {
		return &rpc.Subscription{}, rpc.ErrNotificationsUnsupported
	}
	sub := notifier.CreateSubscription()
	go func() {
		for {
			select {
			case accounts := <-api.w.accountsFeed:
				_ = notifier.Notify(sub.ID, accounts)
			case <-sub.Err():
				return
			}
		}
	}()
	return sub, nil
}

func (api *pushAPI) ChainChanged(ctx context.Context) (*rpc.Subscription, error) {
	notifier, ok := rpc.NotifierFromContext(ctx)
	if !ok {
		return &rpc.Subscription{}, rpc.ErrNotificationsUnsupported
	}
	sub := notifier.CreateSubscription()
	go func() {
		for {
			select {
			case id := <-api.w.chainFeed:
				_ = notifier.Notify(sub.ID, id)
			case <-sub.Err():
				return
			}
		}
	}()
	return sub, nil
}

type personalAPI struct{ w *fakeWallet }

func (api *personalAPI) Sign(data hexutil.Bytes, account common.Address) (hexutil.Bytes, error) {
	api.w.mu.Lock()
	defer api.w.mu.Unlock()
	if api.w.rejectRequests {
		return nil, errUserRejected
	}
	sig, err := crypto.Sign(accounts.TextHash(data), api.w.key)
	if err != nil {
		return nil, err
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}

func serveWallet(t *testing.T, w *fakeWallet, push bool) DialFunc {
	t.Helper()
	srv := rpc.NewServer()
	t.Cleanup(srv.Stop)

	var eth any = &pollingAPI{w: w}
	if push {
		eth = &pushAPI{pollingAPI{w: w}}
	}
	require.NoError(t, srv.RegisterName("eth", eth))
	require.NoError(t, srv.RegisterName("personal", &personalAPI{w: w}))

	return func(context.Context, string) (*rpc.Client, error) {
		return rpc.DialInProc(srv), nil
	}
}

func newTestConnector(dial DialFunc, chains ...int64) *InjectedConnector {
	cfg := InjectedConfig{
		URL:          "inproc://wallet",
		ProbeTimeout: time.Second,
		PollInterval: 10 * time.Millisecond,
		Dial:         dial,
	}
	for _, id := range chains {
		cfg.SupportedChains = append(cfg.SupportedChains, big.NewInt(id))
	}
	return NewInjectedConnector(cfg)
}

func nextEvent(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		require.True(t, ok, "events channel closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for provider event")
		return Event{}
	}
}

func TestActivate(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		w := newFakeWallet(t)
		c := newTestConnector(serveWallet(t, w, true), 11155111)

		conn, err := c.Activate(ctx)
		require.NoError(t, err)
		defer conn.Close()

		assert.Equal(t, w.address(), conn.Account())
		assert.Equal(t, int64(11155111), conn.ChainID().Int64())
		assert.Equal(t, "injected", c.ID())
	})

	t.Run("user rejected", func(t *testing.T) {
		w := newFakeWallet(t)
		w.rejectRequests = true
		c := newTestConnector(serveWallet(t, w, true))

		_, err := c.Activate(ctx)
		require.Error(t, err)
		assert.Equal(t, KindUserRejected, KindOf(err))
	})

	t.Run("unsupported network", func(t *testing.T) {
		w := newFakeWallet(t)
		w.chainID = 1
		c := newTestConnector(serveWallet(t, w, true), 11155111)

		_, err := c.Activate(ctx)
		require.Error(t, err)
		assert.Equal(t, KindUnsupportedNetwork, KindOf(err))
	})

	t.Run("dial failure", func(t *testing.T) {
		c := newTestConnector(func(context.Context, string) (*rpc.Client, error) {
			return nil, errors.New("connection refused")
		})

		_, err := c.Activate(ctx)
		require.Error(t, err)
		assert.Equal(t, KindNoProvider, KindOf(err))
		assert.Equal(t, KindNoProvider.Message(), "No Ethereum browser extension detected, install MetaMask on desktop or visit from a dApp browser on mobile.")
	})

	t.Run("nothing listening", func(t *testing.T) {
		c := NewInjectedConnector(InjectedConfig{URL: "http://127.0.0.1:1", ProbeTimeout: 2 * time.Second})

		_, err := c.Activate(ctx)
		require.Error(t, err)
		assert.Equal(t, KindNoProvider, KindOf(err))
	})

	t.Run("no url", func(t *testing.T) {
		_, err := NewInjectedConnector(InjectedConfig{}).Activate(ctx)
		assert.Equal(t, KindNoProvider, KindOf(err))
	})
}

func TestIsAuthorized(t *testing.T) {
	ctx := context.Background()
	w := newFakeWallet(t)
	c := newTestConnector(serveWallet(t, w, true))

	assert.False(t, c.IsAuthorized(ctx))

	conn, err := c.Activate(ctx)
	require.NoError(t, err)
	conn.Close()

	assert.True(t, c.IsAuthorized(ctx))

	failing := newTestConnector(func(context.Context, string) (*rpc.Client, error) {
		return nil, errors.New("refused")
	})
	assert.False(t, failing.IsAuthorized(ctx))
}

func TestSessionSend(t *testing.T) {
	ctx := context.Background()
	w := newFakeWallet(t)
	conn, err := newTestConnector(serveWallet(t, w, true)).Activate(ctx)
	require.NoError(t, err)
	defer conn.Close()

	to := common.HexToAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	raw, err := conn.Send(ctx, "eth_sendTransaction", map[string]any{
		"from":  conn.Account(),
		"to":    to,
		"value": "0xde0b6b3a7640000",
	})
	require.NoError(t, err)

	var hash common.Hash
	require.NoError(t, json.Unmarshal(raw, &hash))
	assert.Equal(t, common.HexToHash("0x01"), hash)
	require.Len(t, w.sent, 1)
	assert.Equal(t, to, *w.sent[0].To)
	assert.Equal(t, "0xde0b6b3a7640000", w.sent[0].Value.String())

	w.rejectSends = true
	_, err = conn.Send(ctx, "eth_sendTransaction", map[string]any{"from": conn.Account()})
	require.Error(t, err)
	assert.Equal(t, KindTransactionRejected, ClassifySend(err).Kind)

	balance, err := conn.Balance(ctx, conn.Account())
	require.NoError(t, err)
	assert.Equal(t, int64(42), balance.Int64())
}

func TestSignMessage(t *testing.T) {
	ctx := context.Background()
	w := newFakeWallet(t)
	conn, err := newTestConnector(serveWallet(t, w, true)).Activate(ctx)
	require.NoError(t, err)
	defer conn.Close()

	sig, err := SignMessage(ctx, conn, conn.Account(), "👋")
	require.NoError(t, err)
	assert.True(t, VerifySignature(conn.Account(), "👋", sig))
	assert.False(t, VerifySignature(conn.Account(), "hello", sig))
	assert.False(t, VerifySignature(common.Address{}, "👋", sig))
	assert.False(t, VerifySignature(conn.Account(), "👋", sig[:10]))
}

func TestWatchPush(t *testing.T) {
	ctx := context.Background()
	w := newFakeWallet(t)
	conn, err := newTestConnector(serveWallet(t, w, true)).Activate(ctx)
	require.NoError(t, err)
	defer conn.Close()

	sub, err := conn.Watch(ctx)
	require.NoError(t, err)

	other := common.HexToAddress("0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359")
	w.accountsFeed <- []common.Address{other}
	ev := nextEvent(t, sub)
	assert.Equal(t, EventAccountsChanged, ev.Kind)
	assert.Equal(t, []common.Address{other}, ev.Accounts)

	w.chainFeed <- (*hexutil.Big)(big.NewInt(1))
	ev = nextEvent(t, sub)
	assert.Equal(t, EventChainChanged, ev.Kind)
	assert.Equal(t, int64(1), ev.ChainID.Int64())

	sub.Unsubscribe()
	_, open := <-sub.Events()
	assert.False(t, open)
	sub.Unsubscribe()
}

func TestWatchPollFallback(t *testing.T) {
	ctx := context.Background()
	w := newFakeWallet(t)
	conn, err := newTestConnector(serveWallet(t, w, false)).Activate(ctx)
	require.NoError(t, err)
	defer conn.Close()

	sub, err := conn.Watch(ctx)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	w.setChain(5)
	ev := nextEvent(t, sub)
	assert.Equal(t, EventChainChanged, ev.Kind)
	assert.Equal(t, int64(5), ev.ChainID.Int64())

	w.revoke()
	ev = nextEvent(t, sub)
	assert.Equal(t, EventAccountsChanged, ev.Kind)
	assert.Empty(t, ev.Accounts)
}

func TestWatchPollDisconnect(t *testing.T) {
	ctx := context.Background()
	w := newFakeWallet(t)
	conn, err := newTestConnector(serveWallet(t, w, false)).Activate(ctx)
	require.NoError(t, err)

	sub, err := conn.Watch(ctx)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	conn.Close()
	ev := nextEvent(t, sub)
	assert.Equal(t, EventDisconnected, ev.Kind)
	assert.Error(t, ev.Err)
}
