package main

import (
	"time"

	"charm-transfer-tui/config"
	"charm-transfer-tui/connection"
	"charm-transfer-tui/helpers"
	"charm-transfer-tui/notify"
	"charm-transfer-tui/transfer"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
)

const amountKey = "amount"

func (m *model) createTransferForm() {
	m.transferForm = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("address").
				Title("Address").
				Description("Recipient account (Ctrl+v to paste)").
				Value(&m.transfer.Address).
				Placeholder("0x...").
				CharLimit(42),

			huh.NewInput().
				Key(amountKey).
				Title("Amount").
				Description("Up to 18 decimals").
				Prompt(helpers.AmountPrefix).
				Value(&m.transfer.Amount).
				Placeholder("0.0"),
		),
	).WithTheme(huh.ThemeCatppuccin()).WithShowHelp(false)

	// Initialize the form
	m.transferForm.Init()
}

// -------------------- UPDATE --------------------

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	prev := m.manager.State()
	cmd := m.update(msg)
	return m, tea.Batch(cmd, m.syncConnection(prev), m.syncLog())
}

func (m *model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {

	case logInitMsg:
		if !m.logEnabled {
			return nil
		}
		m.logReady = true
		m.logger.Info("Logger enabled")
		m.updateLogViewport()
		return nil

	case connection.ActivatedMsg, connection.EventMsg, connection.EventsClosedMsg:
		return m.manager.Update(msg)

	case notify.DismissMsg:
		m.board.Update(msg)
		return nil

	case transfer.ResultMsg:
		n := m.transfer.Resolve(msg)
		cmds := []tea.Cmd{m.board.Show(n)}
		if msg.Err == nil {
			m.lastTxHash = msg.TxHash
			cmds = append(cmds, m.refreshBalance())
		}
		return tea.Batch(cmds...)

	case balanceLoadedMsg:
		st := m.manager.State()
		if !st.Connected() || msg.account != st.Account {
			return nil
		}
		m.balanceLoading = false
		if msg.err != nil {
			m.balanceErr = "Failed to load balance."
			m.logger.Error("balance", "account", helpers.ShortenAddr(msg.account.Hex()), "err", msg.err)
			return nil
		}
		m.balance = msg.wei
		m.balanceAt = time.Now()
		m.logger.Info("✓", "msg", "balance loaded", "eth", helpers.FormatETH(msg.wei))
		return nil

	case signedMsg:
		m.signing = false
		if msg.account != m.manager.State().Account {
			return nil
		}
		if msg.err != nil {
			m.logger.Warn("sign-in message failed", "err", msg.err)
			return m.board.Show(notify.Error("Failure! " + errors.UnwrapAll(msg.err).Error()))
		}
		m.signature = msg.sig
		m.verified = msg.verified
		m.logger.Info("message signed", "signature", msg.sig.String(), "verified", msg.verified)
		return m.board.Show(notify.Success("Success! Message signed"))

	case clipboardCopiedMsg:
		m.copiedMsg = "✓ Copied " + msg.what
		return clearClipboard()

	case clearClipboardMsg:
		m.copiedMsg = ""
		return nil

	case tea.WindowSizeMsg:
		m.w, m.h = msg.Width, msg.Height

		// Only initialize viewport if log is enabled
		if m.logEnabled {
			// Width accounts for border and padding
			m.logViewport.Width = max(0, msg.Width-6)
			if m.logReady {
				m.updateLogViewport()
			}
		}
		return nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		var cmds []tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)
		// Update log spinner too if log is enabled but not ready
		if m.logEnabled && !m.logReady {
			m.logSpinner, cmd = m.logSpinner.Update(msg)
			cmds = append(cmds, cmd)
		}
		return tea.Batch(cmds...)

	case tea.KeyMsg:
		if m.formActive {
			return m.updateForm(msg)
		}
		return m.handleKey(msg)
	}

	// huh keeps its own messages in flight between fields.
	if m.formActive {
		return m.updateForm(msg)
	}
	return nil
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	// global keys
	switch msg.String() {
	case "ctrl+c", "q":
		m.manager.Close()
		return tea.Quit

	case "l", "L":
		return m.toggleLogger()

	case "esc":
		m.board.Dismiss()
		return nil

	case "d":
		m.manager.Disconnect()
		return nil

	case "pageup", "pagedown":
		// Allow scrolling in log viewport when enabled
		if m.logEnabled && m.logReady {
			var cmd tea.Cmd
			m.logViewport, cmd = m.logViewport.Update(msg)
			return cmd
		}
		return nil
	}

	st := m.manager.State()
	if !st.Connected() {
		switch msg.String() {
		case "enter", "c":
			if !m.manager.TriedEager() {
				return nil
			}
			return m.manager.Connect()
		}
		return nil
	}

	switch msg.String() {
	case "enter", "t":
		m.formActive = true
		m.createTransferForm()
		return nil
	case "s":
		if m.signing {
			return nil
		}
		m.signing = true
		m.logger.Info("requesting signature", "message", m.cfg.SignMessage)
		return signMessage(st.Handle, st.Account, m.cfg.SignMessage)
	case "c":
		return copyToClipboard(st.Account.Hex(), "address")
	case "y":
		if len(m.signature) > 0 {
			return copyToClipboard(m.signature.String(), "signature")
		}
	case "x":
		if m.lastTxHash != (common.Hash{}) {
			return copyToClipboard(m.lastTxHash.Hex(), "transaction hash")
		}
	case "r":
		return m.refreshBalance()
	case "v":
		m.showQR = !m.showQR
	}
	return nil
}

// updateForm forwards msg to the transfer form and submits on completion.
func (m *model) updateForm(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "ctrl+c":
			m.manager.Close()
			return tea.Quit
		case "esc":
			m.formActive = false
			return nil
		}
		if keyMsg.Type == tea.KeyRunes && !m.acceptRunes(keyMsg.Runes) {
			return nil
		}
	}

	form, cmd := m.transferForm.Update(msg)
	f, ok := form.(*huh.Form)
	if !ok {
		return cmd
	}
	m.transferForm = f

	switch m.transferForm.State {
	case huh.StateCompleted:
		m.formActive = false
		m.createTransferForm()
		return m.submitTransfer()
	case huh.StateAborted:
		m.formActive = false
		m.createTransferForm()
		return nil
	}
	return cmd
}

// acceptRunes filters typing in the amount field.
func (m *model) acceptRunes(runes []rune) bool {
	field := m.transferForm.GetFocusedField()
	if field == nil || field.GetKey() != amountKey {
		return true
	}
	current, _ := field.GetValue().(string)
	return transfer.AcceptAmountInput(current, runes)
}

func (m *model) submitTransfer() tea.Cmd {
	st := m.manager.State()
	n, cmd := m.transfer.Submit(st.Handle, st.Account)
	if n.Visible {
		return tea.Batch(m.board.Show(n), cmd)
	}
	return cmd
}

func (m *model) toggleLogger() tea.Cmd {
	m.logEnabled = !m.logEnabled
	m.cfg.Logger = m.logEnabled
	if err := config.Save(m.configPath, m.cfg); err != nil {
		m.logger.Warn("config not saved", "err", err)
	}

	if m.logEnabled {
		// Initialize viewport when enabling
		if m.w > 0 {
			m.logViewport.Width = m.w - 6
		}
		m.logReady = false
		return tea.Batch(initLogViewport(), m.logSpinner.Tick)
	}
	// Clear logs when disabling
	m.logBuffer.Reset()
	m.logReady = false
	return nil
}

// syncConnection reacts to connection state changes made by the manager.
func (m *model) syncConnection(prev connection.State) tea.Cmd {
	st := m.manager.State()

	switch st.Status {
	case connection.StatusErrored:
		if prev.Status != connection.StatusErrored || prev.Err != st.Err {
			m.clearAccount()
			m.formActive = false
			return m.board.Show(notify.Error(st.Err.Message()))
		}
	case connection.StatusConnected:
		if !prev.Connected() || prev.Account != st.Account {
			m.clearAccount()
			return m.refreshBalance()
		}
		if prev.ChainID == nil || prev.ChainID.Cmp(st.ChainID) != 0 {
			return m.refreshBalance()
		}
	default:
		if prev.Connected() {
			m.clearAccount()
			m.formActive = false
		}
	}
	return nil
}

// syncLog refreshes the log panel when new entries were written.
func (m *model) syncLog() tea.Cmd {
	if !m.logEnabled || !m.logReady {
		return nil
	}
	if n := m.logBuffer.Len(); n != m.logLen {
		m.logLen = n
		m.updateLogViewport()
	}
	return nil
}
