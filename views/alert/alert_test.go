package alert

import (
	"testing"

	"charm-transfer-tui/notify"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	assert.Empty(t, Render(notify.Notification{}, 80))
	assert.Contains(t, Render(notify.Error("Invalid Address"), 80), "✗ Invalid Address")
	assert.Contains(t, Render(notify.Success("Transfer Done"), 80), "✓ Transfer Done")
}
