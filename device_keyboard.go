// device_keyboard.go - Keyboard MMIO: AM-keycode dequeue
//
// Grounded on original_source/src/device/keyboard.rs and spec.md §6.
// The ASCII->AM-keycode table is supplemented (SPEC_FULL §6) so a host
// key-event backend (ebiten) can synthesize plausible keycodes instead
// of requiring pre-encoded guest input.

package main

import "sync"

// Keyboard implements MMIOCallback for the single 32-bit keycode
// register: read dequeues one code (0 if empty); bit 15 is set on
// keydown and clear on keyup.
type Keyboard struct {
	mu    sync.Mutex
	queue []uint32
}

func NewKeyboard() *Keyboard {
	return &Keyboard{}
}

func (k *Keyboard) Read(addr, length uint32) uint32 {
	k.mu.Lock()
	defer k.mu.Unlock()
	if len(k.queue) == 0 {
		return 0
	}
	v := k.queue[0]
	k.queue = k.queue[1:]
	return v
}

func (k *Keyboard) Write(addr, length, data uint32) {
	// read-only device
}

// PushEvent enqueues a scancode with bit 15 reflecting key state, called
// by the host key-event backend.
func (k *Keyboard) PushEvent(scancode uint16, down bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v := uint32(scancode)
	if down {
		v |= 1 << 15
	}
	k.queue = append(k.queue, v)
}

// amKeycodeTable maps a small set of printable ASCII characters to
// plausible AM-style scancodes, letting the ebiten backend synthesize
// keyboard input without a full keymap.
var amKeycodeTable = map[rune]uint16{
	'a': 0x1E, 'b': 0x30, 'c': 0x2E, 'd': 0x20, 'e': 0x12, 'f': 0x21,
	'g': 0x22, 'h': 0x23, 'i': 0x17, 'j': 0x24, 'k': 0x25, 'l': 0x26,
	'm': 0x32, 'n': 0x31, 'o': 0x18, 'p': 0x19, 'q': 0x10, 'r': 0x13,
	's': 0x1F, 't': 0x14, 'u': 0x16, 'v': 0x2F, 'w': 0x11, 'x': 0x2D,
	'y': 0x15, 'z': 0x2C,
	'0': 0x0B, '1': 0x02, '2': 0x03, '3': 0x04, '4': 0x05,
	'5': 0x06, '6': 0x07, '7': 0x08, '8': 0x09, '9': 0x0A,
	' ': 0x39, '\n': 0x1C, '\t': 0x0F, '\b': 0x0E,
}

// AMKeycodeForRune looks up the scancode for a printable rune, reporting
// false when the rune has no mapping.
func AMKeycodeForRune(r rune) (uint16, bool) {
	if r >= 'A' && r <= 'Z' {
		r = r - 'A' + 'a'
	}
	code, ok := amKeycodeTable[r]
	return code, ok
}
