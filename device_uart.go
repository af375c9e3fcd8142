// device_uart.go - Minimal byte-oriented UART
//
// Grounded on original_source/src/device/serial.rs and the teacher's
// TerminalMMIO (terminal_io.go): an onCharOutput-style callback fires on
// TX writes rather than the device owning host stdout directly, keeping
// the device testable without capturing real output.

package main

// UART implements MMIOCallback for the 8-byte UART region (spec.md §6):
// byte 0 is TX, byte 5 is LSR ("TX empty").
type UART struct {
	onTX func(b byte)
	rx   byte
}

func NewUART(onTX func(b byte)) *UART {
	return &UART{onTX: onTX}
}

func (u *UART) Read(addr, length uint32) uint32 {
	switch addr - UartBase {
	case 0:
		return uint32(u.rx)
	case 5:
		return 0x20 // LSR: TX empty
	default:
		return 0
	}
}

func (u *UART) Write(addr, length, data uint32) {
	if addr-UartBase == 0 {
		if u.onTX != nil {
			u.onTX(byte(data))
		}
	}
}
