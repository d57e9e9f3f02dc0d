// Package addr names the windows of the 16-bit address space and the few
// well-known registers inside them.
package addr

// memory windows, bounds inclusive
const (
	ROMStart uint16 = 0x0000
	ROMEnd   uint16 = 0x7FFF

	WRAMStart uint16 = 0xC000
	WRAMEnd   uint16 = 0xDFFF

	IOStart uint16 = 0xFF00
	IOEnd   uint16 = 0xFF4B

	HRAMStart uint16 = 0xFF80
	HRAMEnd   uint16 = 0xFFFE

	// Interrupt Enable register.
	IE uint16 = 0xFFFF
)

// Size returns the number of bytes in the inclusive window [start, end].
func Size(start, end uint16) int {
	return int(end) - int(start) + 1
}

// IF is the Interrupt Flag register.
const IF uint16 = 0xFF0F

// HighPage is OR-ed with an 8-bit operand by the LDH and LD (C) forms.
const HighPage uint16 = 0xFF00

// Post-boot register values.
const (
	BootAF uint16 = 0x01B0
	BootBC uint16 = 0x0013
	BootDE uint16 = 0x00D8
	BootHL uint16 = 0x014D
	BootSP uint16 = 0xFFFE
	BootPC uint16 = 0x0100
)
