package notify

import (
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gen2brain/beeep"
)

// Payload is a desktop notification.
type Payload struct {
	Title   string
	Content string
}

// Sender delivers notifications outside the terminal.
type Sender interface {
	Send(payload Payload)
}

// DesktopSender sends native desktop notifications.
type DesktopSender struct {
	logger *log.Logger
}

// NewDesktopSender returns a sender backed by the OS notification center.
func NewDesktopSender(appName string, logger *log.Logger) *DesktopSender {
	if appName != "" {
		beeep.AppName = appName
	}
	return &DesktopSender{logger: logger}
}

func (s *DesktopSender) Send(p Payload) {
	title := strings.TrimSpace(p.Title)
	content := strings.TrimSpace(p.Content)
	if title == "" && content == "" {
		return
	}
	// beeep may shell out (notify-send, osascript); keep it off the update loop.
	go func() {
		if err := beeep.Notify(title, content, ""); err != nil && s.logger != nil {
			s.logger.Warn("desktop notification failed", "err", err)
		}
	}()
}
