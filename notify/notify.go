package notify

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// AutoDismiss is how long a notification stays on screen.
const AutoDismiss = 3000 * time.Millisecond

// Severity of a notification.
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// Notification is a transient banner raised by the outcome of a user action.
type Notification struct {
	ID          int
	Visible     bool
	Severity    Severity
	Message     string
	AutoDismiss time.Duration
}

func newNotification(sev Severity, msg string) Notification {
	return Notification{Visible: true, Severity: sev, Message: msg, AutoDismiss: AutoDismiss}
}

// Info builds an info notification.
func Info(msg string) Notification { return newNotification(SeverityInfo, msg) }

// Success builds a success notification.
func Success(msg string) Notification { return newNotification(SeveritySuccess, msg) }

// Error builds an error notification.
func Error(msg string) Notification { return newNotification(SeverityError, msg) }

// DismissMsg asks the board to hide notification ID.
type DismissMsg struct {
	ID int
}

// Board holds the notification currently on screen. Showing a new one
// replaces the old one; dismiss ticks of replaced notifications are ignored.
type Board struct {
	current Notification
	seq     int
	sender  Sender
}

// NewBoard creates a board. sender may be nil.
func NewBoard(sender Sender) *Board {
	return &Board{sender: sender}
}

// Show displays n and returns the command that dismisses it later.
// A notification without Visible set is ignored.
func (b *Board) Show(n Notification) tea.Cmd {
	if !n.Visible {
		return nil
	}
	b.seq++
	n.ID = b.seq
	if n.AutoDismiss <= 0 {
		n.AutoDismiss = AutoDismiss
	}
	b.current = n

	if b.sender != nil && n.Severity != SeverityInfo {
		b.sender.Send(Payload{Title: titleFor(n.Severity), Content: n.Message})
	}

	id := n.ID
	return tea.Tick(n.AutoDismiss, func(time.Time) tea.Msg {
		return DismissMsg{ID: id}
	})
}

// Dismiss hides whatever is on screen.
func (b *Board) Dismiss() {
	b.current = Notification{}
}

// Update handles DismissMsg. It reports whether msg was consumed.
func (b *Board) Update(msg tea.Msg) bool {
	d, ok := msg.(DismissMsg)
	if !ok {
		return false
	}
	if d.ID == b.current.ID {
		b.Dismiss()
	}
	return true
}

// Current returns the notification on screen; Visible is false if none.
func (b *Board) Current() Notification {
	return b.current
}

func titleFor(sev Severity) string {
	switch sev {
	case SeveritySuccess:
		return "Success"
	case SeverityError:
		return "Error"
	default:
		return "Info"
	}
}
