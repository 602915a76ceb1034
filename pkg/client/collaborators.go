package client

import (
	"github.com/QYUbit/Tickline/pkg/game"
	"github.com/QYUbit/Tickline/pkg/protocol"
)

type Key int

const (
	KeyUp Key = iota
	KeyDown
	KeyLeft
	KeyRight
	KeyW
	KeyA
	KeyS
	KeyD
	KeySpace
	KeyEnter
	KeyBackspace
	KeyEscape
)

// Input is queried once per frame. Pressed edges and typed characters are
// valid until EndFrame.
type Input interface {
	IsKeyDown(k Key) bool
	IsKeyPressed(k Key) bool
	CharsPressed() []rune
	EndFrame()
}

type TextStyle int

const (
	StyleNormal TextStyle = iota
	StyleTitle
	StyleHint
	StyleError
	StyleInput
)

// Renderer draws in playfield coordinates (protocol.GameWidth by
// protocol.GameHeight).
type Renderer interface {
	game.Canvas
	Clear()
	DrawText(text string, x, y int, style TextStyle)
	DrawBox(r protocol.Rectangle, style TextStyle)
	Present()
}
