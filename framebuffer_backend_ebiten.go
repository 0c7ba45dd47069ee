//go:build !headless

// framebuffer_backend_ebiten.go - windowed presentation of the guest framebuffer
//
// Adapted from the teacher's video_backend_ebiten.go: an ebiten.Game whose
// Draw blits a byte buffer into an ebiten.Image via WritePixels, run on its
// own goroutine started from Start(). Audio, clipboard and fullscreen-
// toggle handling from the teacher's EbitenOutput are dropped — this
// device has no audio and no clipboard flow — but the windowed blit loop
// and the vsync handshake are kept as-is.

package main

import (
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
)

type ebitenFramebufferBackend struct {
	mu            sync.Mutex
	width, height int
	pixels        []byte
	started       bool
	vsyncOnce     sync.Once
	vsyncChan     chan struct{}

	overlay *monitorOverlay
}

func newDefaultFramebufferBackend() FramebufferBackend {
	return &ebitenFramebufferBackend{
		width:     400,
		height:    300,
		pixels:    make([]byte, 400*300*4),
		vsyncChan: make(chan struct{}, 1),
		overlay:   newMonitorOverlay(),
	}
}

// AttachOverlay lets main.go wire the monitor's recent output lines onto
// the guest window, the way debug_overlay.go layers text atop the teacher's
// video output.
func (e *ebitenFramebufferBackend) AttachOverlay(lines func() []string) {
	e.overlay.lines = lines
}

func (e *ebitenFramebufferBackend) Start() {
	if e.started {
		return
	}
	e.started = true
	ebiten.SetWindowSize(e.width*2, e.height*2)
	ebiten.SetWindowTitle("rv32mon")
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)
	go ebiten.RunGame(e)
	<-e.vsyncChan
}

func (e *ebitenFramebufferBackend) Present(pixels []byte, width, height int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if width != e.width || height != e.height || len(e.pixels) != len(pixels) {
		e.width, e.height = width, height
		e.pixels = make([]byte, len(pixels))
	}
	copy(e.pixels, pixels)
}

// Update implements ebiten.Game.
func (e *ebitenFramebufferBackend) Update() error {
	return nil
}

// Draw implements ebiten.Game.
func (e *ebitenFramebufferBackend) Draw(screen *ebiten.Image) {
	e.vsyncOnce.Do(func() { e.vsyncChan <- struct{}{} })

	e.mu.Lock()
	img := ebiten.NewImage(e.width, e.height)
	img.WritePixels(e.pixels)
	e.mu.Unlock()

	op := &ebiten.DrawImageOptions{}
	screen.DrawImage(img, op)
	e.overlay.draw(screen)
}

// Layout implements ebiten.Game.
func (e *ebitenFramebufferBackend) Layout(outsideWidth, outsideHeight int) (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.width, e.height
}
