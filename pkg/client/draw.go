package client

import (
	"fmt"

	"github.com/QYUbit/Tickline/pkg/ecs"
	"github.com/QYUbit/Tickline/pkg/protocol"
)

const (
	MessageServerFull  = "Cannot connect, server is full"
	MessageLost        = "Connection to the server was lost"
	MessageUnreachable = "Cannot reach the server"
	MessageConnecting  = "Connecting to server..."
)

var addressBox = protocol.Rectangle{X: protocol.GameWidth/2 - 170, Y: 180, Width: 365, Height: 50}

// StatusMessage returns the centered gameplay message, or "" while playing.
func (c *Client) StatusMessage() string {
	switch {
	case c.disconnected && c.closeCode == protocol.ServerFullCode:
		return MessageServerFull
	case c.disconnected && c.closeCode == CloseCodeUnreachable:
		return MessageUnreachable
	case c.disconnected:
		return MessageLost
	case c.connected && c.spawned:
		return ""
	}
	return MessageConnecting
}

func (c *Client) draw() {
	if c.render == nil {
		return
	}
	c.render.Clear()

	switch c.screen {
	case ScreenTitle:
		c.render.DrawText("TICKLINE", 340, 200, StyleTitle)
		c.render.DrawText("Press ENTER to start", 300, 260, StyleHint)

	case ScreenAddress:
		c.drawAddress()

	case ScreenGameplay:
		if msg := c.StatusMessage(); msg != "" {
			c.render.DrawText(msg, 265, 280, StyleError)
			break
		}
		c.world.RunPhase(ecs.PhaseRender)
		c.drawHUD()
	}

	c.render.Present()
}

func (c *Client) drawAddress() {
	c.render.DrawText("Server address", int(addressBox.X), int(addressBox.Y)-40, StyleNormal)
	c.render.DrawBox(addressBox, StyleInput)

	text := string(c.address)
	if len(c.address) < MaxAddressLength && (c.frames/20)%2 == 0 {
		text += "_"
	}
	c.render.DrawText(text, int(addressBox.X)+5, int(addressBox.Y)+8, StyleInput)

	c.render.DrawText(fmt.Sprintf("INPUT CHARS: %d/%d", len(c.address), MaxAddressLength), 315, 250, StyleHint)
	if len(c.address) >= MaxAddressLength {
		c.render.DrawText("Press BACKSPACE to delete chars...", 230, 300, StyleHint)
	}
}

func (c *Client) drawHUD() {
	c.render.DrawText(fmt.Sprintf("PLAYER %d", c.clientID), 10, 10, StyleNormal)
	c.render.DrawText(fmt.Sprintf("WAVE %d", c.wave), 10, 30, StyleNormal)
	if c.countdown > 0 {
		c.render.DrawText(fmt.Sprintf("NEXT %.1fs", c.countdown), 10, 50, StyleHint)
	}
}
