package cpu

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownOpcode is returned when no instruction matches a fetched opcode.
	ErrUnknownOpcode = errors.New("unknown opcode")
	// ErrPCOutOfRange is returned when an instruction moves PC outside the
	// 16-bit address space.
	ErrPCOutOfRange = errors.New("program counter out of range")
	// ErrFaulted is returned by Step once the CPU has faulted.
	ErrFaulted = errors.New("cpu faulted")
)

// OpcodeError reports an opcode without an instruction descriptor. Extended
// opcodes are reported at or above 0x100.
type OpcodeError struct {
	Address uint16
	Opcode  uint16
}

func (e *OpcodeError) Error() string {
	if e.Opcode >= prefixedBase {
		return fmt.Sprintf("%s: 0xCB 0x%02X at 0x%04X", ErrUnknownOpcode, uint8(e.Opcode), e.Address)
	}
	return fmt.Sprintf("%s: 0x%02X at 0x%04X", ErrUnknownOpcode, e.Opcode, e.Address)
}

func (e *OpcodeError) Unwrap() error { return ErrUnknownOpcode }

// PCError reports the out of range target computed by the instruction at PC.
type PCError struct {
	PC     uint16
	Target int32
}

func (e *PCError) Error() string {
	return fmt.Sprintf("%s: instruction at 0x%04X targets %d", ErrPCOutOfRange, e.PC, e.Target)
}

func (e *PCError) Unwrap() error { return ErrPCOutOfRange }
