//go:build !headless

// monitor_overlay.go - renders recent monitor output atop the guest window
//
// Grounded in the teacher's debug_overlay.go concept (text layered over
// live video output) and in the indirect golang.org/x/image dependency the
// teacher already carries for ebiten's text rendering. basicfont.Face7x13
// is the same bitmap font family x/image ships for exactly this purpose.

package main

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

const overlayMaxLines = 6

// monitorOverlay draws the last few monitor log lines in the corner of the
// guest framebuffer window, the way a debug HUD layers over emulated video.
type monitorOverlay struct {
	lines func() []string
	face  *basicfont.Face
}

func newMonitorOverlay() *monitorOverlay {
	return &monitorOverlay{face: basicfont.Face7x13}
}

func (o *monitorOverlay) draw(screen *ebiten.Image) {
	if o.lines == nil {
		return
	}
	lines := o.lines()
	if len(lines) > overlayMaxLines {
		lines = lines[len(lines)-overlayMaxLines:]
	}
	y := 14
	for _, line := range lines {
		text.Draw(screen, line, o.face, 4, y, color.RGBA{0, 255, 0, 255})
		y += 14
	}
}
