package main

import (
	"strings"

	"charm-transfer-tui/connection"
	"charm-transfer-tui/helpers"
	"charm-transfer-tui/views/account"
	"charm-transfer-tui/views/alert"
	"charm-transfer-tui/views/connect"
	logview "charm-transfer-tui/views/log"
	transferview "charm-transfer-tui/views/transfer"

	"github.com/charmbracelet/lipgloss"
)

// -------------------- VIEW --------------------

func (m *model) globalHeader() string {
	availableWidth := max(0, m.w-8) // Account for panel padding
	st := m.manager.State()

	var addrDisplay string
	if st.Connected() {
		addrDisplay = lipgloss.NewStyle().
			Foreground(cAccent2).
			Bold(true).
			Render("Account: " + helpers.FadeString(helpers.ShortenAddr(st.Account.Hex()), "#F25D94", "#EDFF82"))
	} else {
		addrDisplay = lipgloss.NewStyle().
			Foreground(cMuted).
			Render("Account: not connected")
	}

	var statusIcon string
	var statusColor lipgloss.Color
	var statusText string

	switch st.Status {
	case connection.StatusActivating:
		statusIcon = "○"
		statusColor = cWarn
		statusText = "Connecting..."
	case connection.StatusConnected:
		statusIcon = "●"
		statusColor = cAccent
		statusText = helpers.ChainName(st.ChainID)
	case connection.StatusErrored:
		statusIcon = "○"
		statusColor = cError
		statusText = "Connection Failed"
	default:
		statusIcon = "○"
		statusColor = cMuted
		statusText = "Disconnected"
	}

	statusDisplay := lipgloss.NewStyle().
		Foreground(statusColor).
		Bold(true).
		Render(statusIcon + " " + statusText)

	titleText := lipgloss.NewStyle().
		Foreground(cAccent).
		Bold(true).
		Render(helpers.FadeString("charm transfer", "#7EE787", "#82CFFD"))

	addrWidth := lipgloss.Width(addrDisplay)
	statusWidth := lipgloss.Width(statusDisplay)
	titleWidth := lipgloss.Width(titleText)
	totalOtherWidth := addrWidth + statusWidth + titleWidth

	var headerLine string
	if totalOtherWidth+4 > availableWidth {
		// Not enough space, stack vertically
		headerLine = addrDisplay + "\n" + titleText + "\n" + statusDisplay
	} else {
		// Three-column layout: Account | Title (centered) | Status
		remainingSpace := availableWidth - totalOtherWidth
		leftPadding := remainingSpace / 2
		rightPadding := remainingSpace - leftPadding

		headerLine = addrDisplay +
			strings.Repeat(" ", max(1, leftPadding)) +
			titleText +
			strings.Repeat(" ", max(1, rightPadding)) +
			statusDisplay
	}

	separator := lipgloss.NewStyle().
		Foreground(cBorder).
		Render(strings.Repeat("─", availableWidth))

	return headerLine + "\n" + separator
}

func (m *model) View() string {
	headerPanel := panelStyle.Width(max(0, m.w-2)).Render(m.globalHeader())

	st := m.manager.State()

	var pageContent string
	var nav string
	if st.Connected() {
		accountContent := account.Render(account.Info{
			Account:     st.Account,
			ChainID:     st.ChainID,
			ConnectorID: st.ConnectorID,
			Balance:     m.balance,
			BalanceErr:  m.balanceErr,
			Loading:     m.balanceLoading,
			LoadedAt:    m.balanceAt,
			Signature:   m.signature,
			Verified:    m.verified,
			Signing:     m.signing,
			ShowQR:      m.showQR,
			CopiedMsg:   m.copiedMsg,
			SpinnerView: m.spin.View(),
		})
		transferContent := transferview.Render(transferview.Card{
			Form:        m.transferForm,
			Active:      m.formActive,
			Address:     m.transfer.Address,
			Amount:      m.transfer.Amount,
			Pending:     m.transfer.Pending(),
			LastTxHash:  m.lastTxHash,
			SpinnerView: m.spin.View(),
		})

		// Split view when there is room for both cards
		half := max(0, (m.w-4)/2)
		if half >= 48 {
			left := panelStyle.Width(half).Render(accountContent)
			right := panelStyle.Width(max(0, m.w-2-half-2)).Render(transferContent)
			pageContent = lipgloss.JoinHorizontal(lipgloss.Top, left, right)
		} else {
			pageContent = panelStyle.Width(max(0, m.w-2)).Render(accountContent) + "\n" +
				panelStyle.Width(max(0, m.w-2)).Render(transferContent)
		}
		nav = account.Nav(max(0, m.w-2), m.formActive)
	} else {
		pageContent = panelStyle.Width(max(0, m.w-2)).Render(
			connect.Render(st, m.manager.TriedEager(), m.connector.URL(), m.spin.View()),
		)
		nav = connect.Nav(max(0, m.w-2), st, m.manager.TriedEager())
	}

	parts := []string{headerPanel, pageContent}
	if banner := alert.Render(m.board.Current(), m.w); banner != "" {
		parts = append(parts, banner)
	}
	if m.logEnabled {
		parts = append(parts, logview.Render(m.w, m.h, m.logReady, m.logSpinner.View(), m.logViewport))
	}
	parts = append(parts, nav)

	return appStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
