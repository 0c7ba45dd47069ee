// device_keyboard.go - single-register keyboard device plus scancode names
//
// Grounded on original_source/.../abstract-machine/am/src/platform/nemu/
// ioe/input.c (KEYDOWN_MASK=0x8000, keycode in the low 15 bits, zero means
// no event) and nanos-lite/src/device.c's events_read (formats "kd NAME"/
// "ku NAME"). The keyname table mirrors the AM_KEYS(NAME) macro expansion:
// roughly 80 entries covering letters, digits, arrows, function keys,
// modifiers and a handful of named keys.
//
// Per spec's Open Questions, the MMIO register and /dev/events both drain
// the same underlying event queue — whichever reads first consumes the
// pending event. This is documented, not a bug, and is implemented here by
// giving both consumers the same dequeue method.

package main

import (
	"fmt"
	"sync"
)

const (
	kbdKeydownMask = 0x8000
	kbdScancodeMask = 0x7fff
)

var keyNames = [...]string{
	"NONE", "ESCAPE", "F1", "F2", "F3", "F4", "F5", "F6", "F7", "F8", "F9", "F10", "F11", "F12",
	"GRAVE", "1", "2", "3", "4", "5", "6", "7", "8", "9", "0", "MINUS", "EQUALS", "BACKSPACE",
	"TAB", "Q", "W", "E", "R", "T", "Y", "U", "I", "O", "P", "LEFTBRACKET", "RIGHTBRACKET", "BACKSLASH",
	"CAPSLOCK", "A", "S", "D", "F", "G", "H", "J", "K", "L", "SEMICOLON", "APOSTROPHE", "RETURN",
	"LSHIFT", "Z", "X", "C", "V", "B", "N", "M", "COMMA", "PERIOD", "SLASH", "RSHIFT",
	"LCTRL", "APPLICATION", "LALT", "SPACE", "RALT", "RCTRL",
	"UP", "DOWN", "LEFT", "RIGHT",
	"INSERT", "DELETE", "HOME", "END", "PAGEUP", "PAGEDOWN",
}

func scancodeName(code uint32) string {
	if int(code) < len(keyNames) {
		return keyNames[code]
	}
	return fmt.Sprintf("UNKNOWN(%d)", code)
}

// keyEvent is one pending keyboard transition.
type keyEvent struct {
	down     bool
	scancode uint32
}

// KeyboardDevice is a single-event queue behind a 32-bit MMIO register;
// host input (see keyboard_host.go) pushes events, the guest drains them
// either through MMIO polling or the VFS's /dev/events pseudo-file.
type KeyboardDevice struct {
	mu     sync.Mutex
	events []keyEvent
}

func NewKeyboardDevice() *KeyboardDevice {
	return &KeyboardDevice{}
}

// PushEvent is called by the host input adapter when a key transitions.
func (k *KeyboardDevice) PushEvent(down bool, scancode uint32) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.events = append(k.events, keyEvent{down: down, scancode: scancode})
}

// dequeue pops the oldest pending event, or reports none pending.
func (k *KeyboardDevice) dequeue() (keyEvent, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if len(k.events) == 0 {
		return keyEvent{}, false
	}
	e := k.events[0]
	k.events = k.events[1:]
	return e, true
}

// HandleRead services a guest read of the keyboard MMIO register: zero
// means no event, otherwise bit 15 is the keydown flag and bits 0..14 are
// the scancode.
func (k *KeyboardDevice) HandleRead(addr uint32) uint32 {
	e, ok := k.dequeue()
	if !ok {
		return 0
	}
	v := e.scancode & kbdScancodeMask
	if e.down {
		v |= kbdKeydownMask
	}
	return v
}

// ReadEventString formats the next pending event as "kd NAME"/"ku NAME"
// for /dev/events, or "" if none is pending.
func (k *KeyboardDevice) ReadEventString() string {
	e, ok := k.dequeue()
	if !ok {
		return ""
	}
	dir := "ku"
	if e.down {
		dir = "kd"
	}
	return fmt.Sprintf("%s %s", dir, scancodeName(e.scancode))
}
