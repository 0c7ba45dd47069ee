//go:build headless

// framebuffer_backend_headless.go - no-op presentation for headless builds
//
// Adapted from the teacher's video_backend_headless.go: the same interface
// as the windowed backend, but Present only tracks a frame counter.
// Selected by the headless build tag, for builds with no display to draw a
// window on; the -b and -headless flags do not select it.

package main

import "sync/atomic"

type headlessFramebufferBackend struct {
	frames atomic.Uint64
}

func newDefaultFramebufferBackend() FramebufferBackend {
	return &headlessFramebufferBackend{}
}

// Start is a no-op: there is no window to pump. Present purely here to
// satisfy the same starter interface the ebiten backend implements, so
// RunSupervisor can call Start unconditionally without a build-tagged branch.
func (h *headlessFramebufferBackend) Start() {}

func (h *headlessFramebufferBackend) Present(pixels []byte, width, height int) {
	h.frames.Add(1)
}

func (h *headlessFramebufferBackend) FrameCount() uint64 {
	return h.frames.Load()
}
