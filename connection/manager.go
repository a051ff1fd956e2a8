package connection

import (
	"context"
	"io"
	"math/big"

	"charm-transfer-tui/bridge"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/common"
)

// Status is the connector lifecycle state shown in the UI.
type Status int

const (
	StatusDisconnected Status = iota
	StatusActivating
	StatusConnected
	StatusErrored
)

func (s Status) String() string {
	switch s {
	case StatusActivating:
		return "activating"
	case StatusConnected:
		return "connected"
	case StatusErrored:
		return "errored"
	default:
		return "disconnected"
	}
}

// State is a snapshot of the connection. Account, ChainID and Handle are set
// only while Connected; Err only while Errored.
type State struct {
	Status      Status
	ConnectorID string
	Account     common.Address
	ChainID     *big.Int
	Handle      bridge.Handle
	Err         bridge.Kind
}

// Connected reports whether a handle is available.
func (s State) Connected() bool { return s.Status == StatusConnected }

// ActivatedMsg carries the result of an activation attempt, including the
// provider event subscription acquired off the Update loop.
type ActivatedMsg struct {
	attempt  int
	eager    bool
	conn     bridge.Conn
	sub      *bridge.Subscription
	err      error
	watchErr error
}

// EventMsg carries a provider event for the current connection.
type EventMsg struct {
	attempt int
	Event   bridge.Event
}

// EventsClosedMsg signals that the provider event stream ended.
type EventsClosedMsg struct {
	attempt int
}

// Manager tracks the lifecycle of the single supported connector.
type Manager struct {
	connector bridge.Connector
	logger    *log.Logger
	supports  func(*big.Int) bool

	state   State
	attempt int
	cancel  context.CancelFunc

	conn       bridge.Conn
	sub        *bridge.Subscription
	triedEager bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithChainFilter decides which chains stay connected after a chainChanged
// event.
func WithChainFilter(supports func(*big.Int) bool) Option {
	return func(m *Manager) { m.supports = supports }
}

// New creates a manager in the Disconnected state.
func New(connector bridge.Connector, opts ...Option) *Manager {
	m := &Manager{
		connector: connector,
		supports:  func(*big.Int) bool { return true },
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = log.New(io.Discard)
	}
	return m
}

// State returns the current snapshot.
func (m *Manager) State() State { return m.state }

// TriedEager reports whether the eager attempt has finished.
func (m *Manager) TriedEager() bool { return m.triedEager }

// Eager silently reconnects if the wallet already authorized an account.
func (m *Manager) Eager() tea.Cmd {
	if m.state.Status == StatusActivating || m.state.Status == StatusConnected {
		return nil
	}
	ctx := m.begin()
	attempt := m.attempt
	connector := m.connector
	return func() tea.Msg {
		if !connector.IsAuthorized(ctx) {
			return ActivatedMsg{attempt: attempt, eager: true}
		}
		conn, err := connector.Activate(ctx)
		return activation(ctx, ActivatedMsg{attempt: attempt, eager: true, conn: conn, err: err})
	}
}

// Connect requests activation. It is a no-op while an activation is in
// flight or a wallet is already connected.
func (m *Manager) Connect() tea.Cmd {
	if m.state.Status == StatusActivating || m.state.Status == StatusConnected {
		return nil
	}
	ctx := m.begin()
	attempt := m.attempt
	connector := m.connector
	m.logger.Info("activating connector", "connector", connector.ID())
	return func() tea.Msg {
		conn, err := connector.Activate(ctx)
		return activation(ctx, ActivatedMsg{attempt: attempt, conn: conn, err: err})
	}
}

// activation subscribes to provider events for a successful attempt. The
// subscription lives as long as the attempt context.
func activation(ctx context.Context, msg ActivatedMsg) ActivatedMsg {
	if msg.err != nil || msg.conn == nil {
		return msg
	}
	msg.sub, msg.watchErr = msg.conn.Watch(ctx)
	return msg
}

// Disconnect clears the connection from any state, abandoning an in-flight
// activation. An abandoned eager attempt counts as tried.
func (m *Manager) Disconnect() {
	if m.state.Status != StatusDisconnected {
		m.logger.Info("disconnecting", "from", m.state.Status)
	}
	m.triedEager = true
	m.attempt++
	m.release()
	m.state = State{Status: StatusDisconnected}
}

// Close releases everything held by the manager.
func (m *Manager) Close() {
	m.Disconnect()
}

// Update consumes the manager's own messages and returns follow-up commands.
func (m *Manager) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case ActivatedMsg:
		return m.activated(msg)
	case EventMsg:
		if msg.attempt != m.attempt || m.sub == nil {
			return nil
		}
		m.handleEvent(msg.Event)
		if m.sub == nil {
			return nil
		}
		return waitForEvent(m.attempt, m.sub)
	case EventsClosedMsg:
		if msg.attempt == m.attempt && m.state.Status == StatusConnected {
			m.logger.Warn("provider event stream closed")
			m.Disconnect()
		}
	}
	return nil
}

func (m *Manager) activated(msg ActivatedMsg) tea.Cmd {
	if msg.attempt != m.attempt {
		// Superseded by Disconnect or a newer attempt.
		if msg.sub != nil {
			msg.sub.Unsubscribe()
		}
		if msg.conn != nil {
			msg.conn.Close()
		}
		return nil
	}
	if msg.eager {
		m.triedEager = true
	}

	if msg.err != nil || msg.conn == nil {
		m.release()
		if msg.err == nil {
			m.state = State{Status: StatusDisconnected}
			return nil
		}
		kind := bridge.KindOf(msg.err)
		if msg.eager {
			m.logger.Debug("eager connection failed", "kind", kind, "err", msg.err)
			m.state = State{Status: StatusDisconnected}
			return nil
		}
		if kind == bridge.KindUnknown {
			m.logger.Error("activation failed", "err", msg.err)
		} else {
			m.logger.Warn("activation failed", "kind", kind)
		}
		m.state = State{Status: StatusErrored, Err: kind}
		return nil
	}

	m.conn = msg.conn
	m.sub = msg.sub
	m.state = State{
		Status:      StatusConnected,
		ConnectorID: m.connector.ID(),
		Account:     msg.conn.Account(),
		ChainID:     msg.conn.ChainID(),
		Handle:      msg.conn,
	}
	m.logger.Info("connected", "account", m.state.Account.Hex(), "chain", m.state.ChainID)

	if m.sub == nil {
		m.logger.Warn("provider events unavailable", "err", msg.watchErr)
		return nil
	}
	return waitForEvent(m.attempt, m.sub)
}

func (m *Manager) handleEvent(ev bridge.Event) {
	switch ev.Kind {
	case bridge.EventAccountsChanged:
		if len(ev.Accounts) == 0 {
			m.logger.Info("wallet locked or access revoked")
			m.Disconnect()
			return
		}
		m.logger.Info("account changed", "account", ev.Accounts[0].Hex())
		m.state.Account = ev.Accounts[0]
	case bridge.EventChainChanged:
		if !m.supports(ev.ChainID) {
			m.logger.Warn("switched to unsupported chain", "chain", ev.ChainID)
			m.attempt++
			m.release()
			m.state = State{Status: StatusErrored, Err: bridge.KindUnsupportedNetwork}
			return
		}
		m.logger.Info("chain changed", "chain", ev.ChainID)
		m.state.ChainID = ev.ChainID
	case bridge.EventDisconnected:
		m.logger.Info("provider disconnected", "err", ev.Err)
		m.Disconnect()
	}
}

// begin enters Activating and returns the context of the new attempt.
func (m *Manager) begin() context.Context {
	m.attempt++
	m.release()
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.state = State{Status: StatusActivating, ConnectorID: m.connector.ID()}
	return ctx
}

// release cancels pending work and frees the subscription and connection.
func (m *Manager) release() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.sub != nil {
		m.sub.Unsubscribe()
		m.sub = nil
	}
	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
	}
}

func waitForEvent(attempt int, sub *bridge.Subscription) tea.Cmd {
	events := sub.Events()
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return EventsClosedMsg{attempt: attempt}
		}
		return EventMsg{attempt: attempt, Event: ev}
	}
}
