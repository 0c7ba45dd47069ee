package main

import (
	"bytes"
	"testing"
)

func TestRTCLoMonotonic(t *testing.T) {
	r := NewRTCDevice()
	lo1 := r.HandleRead(RTC_LO)
	lo2 := r.HandleRead(RTC_LO)
	if lo2 < lo1 {
		t.Fatalf("expected monotonically non-decreasing uptime, got %d then %d", lo1, lo2)
	}
}

func TestSerialWriteForwardsBytes(t *testing.T) {
	var buf bytes.Buffer
	s := NewSerialDevice(&buf)
	s.HandleWrite(SERIAL_PORT, 'H')
	s.HandleWrite(SERIAL_PORT, 'i')
	if buf.String() != "Hi" {
		t.Fatalf("expected %q, got %q", "Hi", buf.String())
	}
}

func TestKeyboardEventRoundTrip(t *testing.T) {
	k := NewKeyboardDevice()
	k.PushEvent(true, 30) // "W" per the QWERTY-row keyNames table
	v := k.HandleRead(KBD_PORT)
	if v&kbdKeydownMask == 0 {
		t.Fatal("expected keydown bit set")
	}
	if v&kbdScancodeMask != 30 {
		t.Fatalf("expected scancode 30, got %d", v&kbdScancodeMask)
	}
}

func TestKeyboardNoPendingEventReadsZero(t *testing.T) {
	k := NewKeyboardDevice()
	if v := k.HandleRead(KBD_PORT); v != 0 {
		t.Fatalf("expected 0 with no pending event, got %d", v)
	}
}

func TestKeyboardEventsSharedBetweenMMIOAndDevEvents(t *testing.T) {
	k := NewKeyboardDevice()
	k.PushEvent(true, 1)
	k.PushEvent(false, 1)

	// First consumer (MMIO) drains the down event...
	v := k.HandleRead(KBD_PORT)
	if v&kbdKeydownMask == 0 {
		t.Fatal("expected first dequeue to be the keydown event")
	}
	// ...so /dev/events only sees what remains: the up event.
	s := k.ReadEventString()
	if s != "ku "+scancodeName(1) {
		t.Fatalf("expected /dev/events to see the leftover up event, got %q", s)
	}
}

func TestFramebufferBlitAndPresent(t *testing.T) {
	bus := NewSystemBus(GUEST_RAM_BASE, 0x10000)
	fb := NewFramebufferDevice(bus, 4, 4)
	fb.SetBackend(&captureBackend{})

	srcAddr := uint32(GUEST_RAM_BASE + 0x100)
	if err := bus.Write32(srcAddr, 0x11223344); err != nil {
		t.Fatalf("write32: %v", err)
	}
	fb.blitFromGuest(0, 0, 1, 1, srcAddr, true)

	cap := fb.backend.(*captureBackend)
	if cap.lastWidth != 4 || cap.lastHeight != 4 {
		t.Fatalf("expected Present to report 4x4, got %dx%d", cap.lastWidth, cap.lastHeight)
	}
}

func TestFramebufferWriteFBRequiresAlignment(t *testing.T) {
	bus := NewSystemBus(GUEST_RAM_BASE, 0x10000)
	fb := NewFramebufferDevice(bus, 4, 4)
	fb.SetBackend(&captureBackend{})
	if n := fb.WriteFB(1, []byte{0, 0, 0, 0}); n != 0 {
		t.Fatalf("expected unaligned offset to write 0 bytes, got %d", n)
	}
}

type captureBackend struct {
	lastWidth, lastHeight int
}

func (c *captureBackend) Present(pixels []byte, width, height int) {
	c.lastWidth, c.lastHeight = width, height
}
