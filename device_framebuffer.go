// device_framebuffer.go - framebuffer control registers and pixel backing store
//
// Grounded on original_source/.../nanos-lite/src/device.c's fb_write: the
// guest's /dev/fb writes must be 4-byte aligned with 4-byte-multiple
// lengths, and a write spanning multiple rows is split at row boundaries,
// each row issued as its own blit. The MMIO control registers (§4.7) are a
// second, independent path to the same backing store: a guest writes
// FB_SRC/X/Y/W/H then triggers a blit by writing FB_CMD_REG, which copies
// w*h pixels from guest memory at FB_SRC into the backing store at (x,y).

package main

import (
	"encoding/binary"
)

// FramebufferBackend is the presentation side: something that can take a
// freshly updated pixel buffer and show it. Implemented by the ebiten and
// headless backends (framebuffer_backend_ebiten.go / _headless.go).
type FramebufferBackend interface {
	Present(pixels []byte, width, height int)
}

// FramebufferDevice owns the linear 32bpp backing store and the MMIO blit
// command registers.
type FramebufferDevice struct {
	bus           *SystemBus
	width, height int
	pixels        []byte // row-major, 4 bytes per pixel, little-endian ARGB

	backend FramebufferBackend

	x, y, w, h, src uint32
}

func NewFramebufferDevice(bus *SystemBus, width, height int) *FramebufferDevice {
	return &FramebufferDevice{
		bus:     bus,
		width:   width,
		height:  height,
		pixels:  make([]byte, width*height*4),
		backend: newDefaultFramebufferBackend(),
	}
}

func (f *FramebufferDevice) Width() int  { return f.width }
func (f *FramebufferDevice) Height() int { return f.height }

// SetBackend swaps the presentation backend (used by main.go to attach the
// windowed ebiten backend in non-headless builds).
func (f *FramebufferDevice) SetBackend(b FramebufferBackend) { f.backend = b }

func (f *FramebufferDevice) MapInto(bus *SystemBus) {
	bus.MapIO(FB_X_REG, FB_X_REG+3, f.readReg, f.writeReg)
	bus.MapIO(FB_Y_REG, FB_Y_REG+3, f.readReg, f.writeReg)
	bus.MapIO(FB_W_REG, FB_W_REG+3, f.readReg, f.writeReg)
	bus.MapIO(FB_H_REG, FB_H_REG+3, f.readReg, f.writeReg)
	bus.MapIO(FB_SRC_REG, FB_SRC_REG+3, f.readReg, f.writeReg)
	bus.MapIO(FB_CMD_REG, FB_CMD_REG+3, f.readReg, f.writeReg)
}

func (f *FramebufferDevice) readReg(addr uint32) uint32 {
	switch addr {
	case FB_X_REG:
		return f.x
	case FB_Y_REG:
		return f.y
	case FB_W_REG:
		return f.w
	case FB_H_REG:
		return f.h
	case FB_SRC_REG:
		return f.src
	}
	return 0
}

func (f *FramebufferDevice) writeReg(addr uint32, value uint32) {
	switch addr {
	case FB_X_REG:
		f.x = value
	case FB_Y_REG:
		f.y = value
	case FB_W_REG:
		f.w = value
	case FB_H_REG:
		f.h = value
	case FB_SRC_REG:
		f.src = value
	case FB_CMD_REG:
		sync := value&1 != 0
		f.blitFromGuest(f.x, f.y, f.w, f.h, f.src, sync)
	}
}

// blitFromGuest copies a w*h rectangle of 32bpp pixels starting at guest
// address src into the backing store at (x, y).
func (f *FramebufferDevice) blitFromGuest(x, y, w, h, src uint32, sync bool) {
	for row := uint32(0); row < h; row++ {
		for col := uint32(0); col < w; col++ {
			px, err := f.bus.Read32(src + (row*w+col)*4)
			if err != nil {
				return
			}
			f.setPixel(x+col, y+row, px)
		}
	}
	if sync {
		f.Present()
	}
}

func (f *FramebufferDevice) setPixel(x, y uint32, argb uint32) {
	if int(x) >= f.width || int(y) >= f.height {
		return
	}
	off := (int(y)*f.width + int(x)) * 4
	binary.LittleEndian.PutUint32(f.pixels[off:off+4], argb)
}

// Present hands the current backing store to the display backend.
func (f *FramebufferDevice) Present() {
	if f.backend != nil {
		f.backend.Present(f.pixels, f.width, f.height)
	}
}

// WriteFB implements the /dev/fb write path (§4.8): offset must be 4-byte
// aligned, the length is rounded down to a multiple of 4 and clamped to the
// end of the screen, and the write is split at row boundaries, each row
// blitted independently. Returns the number of bytes actually written.
func (f *FramebufferDevice) WriteFB(offset uint32, data []byte) int {
	if offset%4 != 0 {
		return 0
	}
	n := len(data) &^ 0x3
	fbBytes := uint32(f.width * f.height * 4)
	if offset >= fbBytes {
		return 0
	}
	if uint32(n) > fbBytes-offset {
		n = int(fbBytes - offset)
	}
	if n == 0 {
		return 0
	}
	rowBytes := uint32(f.width * 4)
	written := 0
	pos := offset
	remaining := data[:n]
	for len(remaining) > 0 {
		rowOff := pos % rowBytes
		chunk := rowBytes - rowOff
		if chunk > uint32(len(remaining)) {
			chunk = uint32(len(remaining))
		}
		y := pos / rowBytes
		x := rowOff / 4
		w := chunk / 4
		f.blitRowFromBytes(x, y, w, remaining[:chunk])
		pos += chunk
		remaining = remaining[chunk:]
		written += int(chunk)
	}
	f.Present()
	return written
}

func (f *FramebufferDevice) blitRowFromBytes(x, y, w uint32, data []byte) {
	for col := uint32(0); col < w; col++ {
		px := binary.LittleEndian.Uint32(data[col*4 : col*4+4])
		f.setPixel(x+col, y, px)
	}
}
