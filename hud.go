// hud.go - on-screen cycle-counter / loader-progress overlay

/*
(c) 2026 Gigatron-Go contributors
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

// HUD draws a single line of diagnostic text (cycle count, and loader
// progress while a GT1 transfer is in flight) over the top-left corner of
// the video output. It is purely a debugging aid: spec.md names no HUD
// requirement, so this never touches CORE state, only reads it.
type HUD struct {
	face   *basicfont.Face
	color  color.Color
	enabled bool
}

// NewHUD returns a disabled HUD using the stock 7x13 bitmap face.
func NewHUD() *HUD {
	return &HUD{
		face:  basicfont.Face7x13,
		color: color.RGBA{R: 0x30, G: 0xFF, B: 0x30, A: 0xFF},
	}
}

// SetEnabled toggles whether Draw renders anything.
func (h *HUD) SetEnabled(enabled bool) { h.enabled = enabled }

// Enabled reports the current toggle state.
func (h *HUD) Enabled() bool { return h.enabled }

// Draw renders the overlay text onto screen for the given machine state.
// loaderActive/loaderProgress are only meaningful while a GT1 transfer is
// running; progress is in [0, 1].
func (h *HUD) Draw(screen *ebiten.Image, cycle uint64, frameCount uint64, loaderActive bool, loaderProgress float64) {
	if !h.enabled {
		return
	}

	line := fmt.Sprintf("cycle %d  frame %d", cycle, frameCount)
	if loaderActive {
		line += fmt.Sprintf("  loading %.0f%%", loaderProgress*100)
	}
	text.Draw(screen, line, h.face, 4, 14, h.color)
}
