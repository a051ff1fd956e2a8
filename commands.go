package main

import (
	"context"
	"strings"
	"sync"
	"time"

	"charm-transfer-tui/bridge"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/common"
)

// -------------------- COMMAND FUNCTIONS --------------------
// Functions that return tea.Cmd for async operations

// initLogViewport initializes the log viewport
func initLogViewport() tea.Cmd {
	return func() tea.Msg {
		return logInitMsg{}
	}
}

// loadBalance fetches the account balance through the wallet
func loadBalance(h bridge.Handle, account common.Address) tea.Cmd {
	return func() tea.Msg {
		wei, err := h.Balance(context.Background(), account)
		return balanceLoadedMsg{account: account, wei: wei, err: err}
	}
}

// signMessage asks the wallet to sign the configured hello message
func signMessage(h bridge.Handle, account common.Address, message string) tea.Cmd {
	return func() tea.Msg {
		sig, err := bridge.SignMessage(context.Background(), h, account, message)
		if err != nil {
			return signedMsg{account: account, err: err}
		}
		return signedMsg{
			account:  account,
			sig:      sig,
			verified: bridge.VerifySignature(account, message, sig),
		}
	}
}

// copyToClipboard copies text to clipboard
func copyToClipboard(text, what string) tea.Cmd {
	return func() tea.Msg {
		err := clipboard.WriteAll(text)
		if err == nil {
			return clipboardCopiedMsg{what: what}
		}
		return nil
	}
}

// clearClipboard waits 2 seconds then clears clipboard feedback
func clearClipboard() tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return clearClipboardMsg{}
	})
}

// -------------------- LOGGER --------------------

// logBuffer backs the log panel. Commands and the desktop sender log from
// their own goroutines while View reads it.
type logBuffer struct {
	mu sync.Mutex
	b  strings.Builder
}

func (l *logBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func (l *logBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.String()
}

func (l *logBuffer) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Len()
}

func (l *logBuffer) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.b.Reset()
}

// newLogger creates a logger that writes to the log panel buffer
func newLogger(buf *logBuffer) *log.Logger {
	logger := log.NewWithOptions(buf, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Prefix:          "",
	})
	// Set log level and styling
	logger.SetLevel(log.DebugLevel)
	logger.SetStyles(&log.Styles{
		Timestamp: lipgloss.NewStyle().Foreground(cMuted),
		Caller:    lipgloss.NewStyle().Faint(true),
		Prefix:    lipgloss.NewStyle().Bold(true).Foreground(cAccent2),
		Message:   lipgloss.NewStyle().Foreground(cText),
		Key:       lipgloss.NewStyle().Foreground(cAccent),
		Value:     lipgloss.NewStyle().Foreground(cText),
		Separator: lipgloss.NewStyle().Faint(true),
		Levels: map[log.Level]lipgloss.Style{
			log.DebugLevel: lipgloss.NewStyle().Foreground(cMuted).SetString("DEBUG"),
			log.InfoLevel:  lipgloss.NewStyle().Foreground(cAccent2).SetString("INFO"),
			log.WarnLevel:  lipgloss.NewStyle().Foreground(cWarn).SetString("WARN"),
			log.ErrorLevel: lipgloss.NewStyle().Foreground(cError).SetString("ERROR"),
		},
	})
	return logger
}

// updateLogViewport refreshes the viewport content with log output
func (m *model) updateLogViewport() {
	if !m.logReady || m.logBuffer == nil {
		return
	}

	m.logViewport.SetContent(m.logBuffer.String())
	// Scroll to bottom to show latest entries
	m.logViewport.GotoBottom()
}

// refreshBalance reloads the balance of the connected account
func (m *model) refreshBalance() tea.Cmd {
	st := m.manager.State()
	if !st.Connected() {
		return nil
	}
	m.balanceLoading = true
	m.balanceErr = ""
	return loadBalance(st.Handle, st.Account)
}

// clearAccount forgets everything shown for the previous account
func (m *model) clearAccount() {
	m.balance = nil
	m.balanceErr = ""
	m.balanceLoading = false
	m.signature = nil
	m.verified = false
	m.signing = false
	m.showQR = false
}
