// Package term renders the client in a terminal with tcell and turns tcell
// key events into client.Input.
package term

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/QYUbit/Tickline/pkg/client"
	"github.com/QYUbit/Tickline/pkg/game"
	"github.com/QYUbit/Tickline/pkg/protocol"
)

var (
	styleNormal = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleTitle  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleHint   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleError  = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleInput  = tcell.StyleDefault.Foreground(tcell.ColorAqua)

	stylePlayer  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleLocal   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleMissile = tcell.StyleDefault.Foreground(tcell.ColorOrange)
	styleMob     = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

// Renderer maps the playfield onto the whole terminal. Every sprite covers
// at least one cell.
type Renderer struct {
	screen tcell.Screen
}

func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{screen: screen}
}

func (r *Renderer) Clear() {
	r.screen.Clear()
}

func (r *Renderer) Present() {
	r.screen.Show()
}

// cell converts playfield coordinates to a terminal cell.
func (r *Renderer) cell(x, y float32) (int, int) {
	w, h := r.screen.Size()
	return int(x * float32(w) / protocol.GameWidth), int(y * float32(h) / protocol.GameHeight)
}

func (r *Renderer) DrawSprite(tex game.Texture, src, dst protocol.Rectangle, outline bool) {
	var (
		glyph rune
		style tcell.Style
	)
	switch tex {
	case game.TexturePlayer:
		glyph, style = '▶', stylePlayer
		if outline {
			style = styleLocal
		}
	case game.TextureMissile:
		glyph, style = '-', styleMissile
	case game.TextureMob:
		glyph, style = 'M', styleMob
	default:
		return
	}

	x0, y0 := r.cell(dst.X, dst.Y)
	x1, y1 := r.cell(dst.X+dst.Width, dst.Y+dst.Height)
	x1, y1 = max(x1, x0+1), max(y1, y0+1)

	w, h := r.screen.Size()
	for y := max(y0, 0); y < min(y1, h); y++ {
		for x := max(x0, 0); x < min(x1, w); x++ {
			r.screen.SetContent(x, y, glyph, nil, style)
		}
	}
}

func (r *Renderer) DrawText(text string, x, y int, style client.TextStyle) {
	col, row := r.cell(float32(x), float32(y))
	r.putText(col, row, text, textStyle(style))
}

func (r *Renderer) putText(x, y int, s string, st tcell.Style) {
	w, _ := r.screen.Size()
	for _, c := range s {
		if x >= w {
			break
		}
		r.screen.SetContent(x, y, c, nil, st)
		x += max(runewidth.RuneWidth(c), 1)
	}
}

func (r *Renderer) DrawBox(rect protocol.Rectangle, style client.TextStyle) {
	st := textStyle(style)
	x0, y0 := r.cell(rect.X, rect.Y)
	x1, y1 := r.cell(rect.X+rect.Width, rect.Y+rect.Height)
	x1, y1 = max(x1, x0+1), max(y1, y0+1)

	for x := x0 + 1; x < x1; x++ {
		r.screen.SetContent(x, y0, '─', nil, st)
		r.screen.SetContent(x, y1, '─', nil, st)
	}
	for y := y0 + 1; y < y1; y++ {
		r.screen.SetContent(x0, y, '│', nil, st)
		r.screen.SetContent(x1, y, '│', nil, st)
	}
	r.screen.SetContent(x0, y0, '┌', nil, st)
	r.screen.SetContent(x1, y0, '┐', nil, st)
	r.screen.SetContent(x0, y1, '└', nil, st)
	r.screen.SetContent(x1, y1, '┘', nil, st)
}

func textStyle(s client.TextStyle) tcell.Style {
	switch s {
	case client.StyleTitle:
		return styleTitle
	case client.StyleHint:
		return styleHint
	case client.StyleError:
		return styleError
	case client.StyleInput:
		return styleInput
	}
	return styleNormal
}
