package main

import (
	"math/big"
	"time"

	"charm-transfer-tui/bridge"
	"charm-transfer-tui/config"
	"charm-transfer-tui/connection"
	"charm-transfer-tui/notify"
	"charm-transfer-tui/styles"
	"charm-transfer-tui/transfer"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// -------------------- MODEL --------------------

// model represents the application state following The Elm Architecture
type model struct {
	w, h int

	cfg        config.Config
	configPath string

	// wallet connection
	connector *bridge.InjectedConnector
	manager   *connection.Manager

	// transfer card
	transfer     *transfer.Controller
	transferForm *huh.Form
	formActive   bool
	lastTxHash   common.Hash

	// notifications
	board *notify.Board

	// account card
	spin           spinner.Model
	balance        *big.Int
	balanceErr     string
	balanceLoading bool
	balanceAt      time.Time
	showQR         bool

	// sign-in message
	signing   bool
	signature hexutil.Bytes
	verified  bool

	// clipboard feedback
	copiedMsg string

	// logger panel
	logEnabled  bool
	logger      *log.Logger
	logBuffer   *logBuffer
	logLen      int
	logViewport viewport.Model
	logReady    bool
	logSpinner  spinner.Model
}

// -------------------- INIT --------------------

// newModel wires the connector, manager and transfer controller from cfg.
// providerURL comes from the command line and may be empty.
func newModel(cfg config.Config, configPath, providerURL string) model {
	buf := &logBuffer{}
	logger := newLogger(buf)

	connector := bridge.NewInjectedConnector(bridge.InjectedConfig{
		URL:             cfg.ProviderURL(providerURL),
		SupportedChains: cfg.ChainIDs(),
		PollInterval:    cfg.PollInterval(),
	})

	var sender notify.Sender
	if cfg.DesktopNotifications {
		sender = notify.NewDesktopSender("charm-transfer", logger)
	}

	// spinner
	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = lipgloss.NewStyle().Foreground(styles.CAccent2)

	// Initialize log viewport
	vp := viewport.New(0, 20) // Will be resized in Update on first WindowSizeMsg
	vp.Style = lipgloss.NewStyle().
		Foreground(styles.CText).
		Background(styles.CPanel)

	// Initialize log spinner
	logSpin := spinner.New()
	logSpin.Spinner = spinner.Dot
	logSpin.Style = lipgloss.NewStyle().Foreground(styles.CAccent2)

	m := model{
		cfg:        cfg,
		configPath: configPath,
		connector:  connector,
		manager: connection.New(connector,
			connection.WithLogger(logger),
			connection.WithChainFilter(connector.Supports),
		),
		transfer:    transfer.New(logger),
		board:       notify.NewBoard(sender),
		spin:        sp,
		logEnabled:  cfg.Logger,
		logger:      logger,
		logBuffer:   buf,
		logViewport: vp,
		logSpinner:  logSpin,
	}
	m.createTransferForm()

	return m
}

// Init implements tea.Model interface and returns initial commands
func (m *model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spin.Tick}
	if m.logEnabled {
		cmds = append(cmds, initLogViewport(), m.logSpinner.Tick)
	}
	m.logger.Info("provider", "url", m.connector.URL())
	cmds = append(cmds, m.manager.Eager())
	return tea.Batch(cmds...)
}
