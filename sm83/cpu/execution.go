package cpu

import (
	"fmt"

	"github.com/valerio/go-sm83/sm83/bit"
	"github.com/valerio/go-sm83/sm83/storage"
)

// Offset is the change an instruction applies to PC once it has run.
type Offset int32

// execution carries the state of one instruction while it runs. Accessors
// stop touching the CPU after the first error, which is kept in err and
// turned into a fault by Step.
type execution struct {
	cpu *CPU
	in  *Instruction
	pc  uint16
	err error
}

func (x *execution) fail(err error) {
	if x.err == nil {
		x.err = err
	}
}

func (x *execution) get8(r Register) uint8 {
	if x.err != nil {
		return 0
	}
	v, err := x.cpu.Get8(Reg(r))
	x.fail(err)
	return v
}

func (x *execution) set8(r Register, v uint8) {
	if x.err != nil {
		return
	}
	x.fail(x.cpu.Set8(Reg(r), v))
}

func (x *execution) get16(r Register) uint16 {
	if x.err != nil {
		return 0
	}
	v, err := x.cpu.Get16(Reg(r))
	x.fail(err)
	return v
}

func (x *execution) set16(r Register, v uint16) {
	if x.err != nil {
		return
	}
	x.fail(x.cpu.Set16(Reg(r), v))
}

func (x *execution) load8(address uint16) uint8 {
	if x.err != nil {
		return 0
	}
	v, err := x.cpu.Get8(Mem(address))
	x.fail(err)
	return v
}

func (x *execution) store8(address uint16, v uint8) {
	if x.err != nil {
		return
	}
	x.fail(x.cpu.Set8(Mem(address), v))
}

func (x *execution) load16(address uint16) uint16 {
	if x.err != nil {
		return 0
	}
	v, err := x.cpu.Get16(Mem(address))
	x.fail(err)
	return v
}

func (x *execution) store16(address uint16, v uint16) {
	if x.err != nil {
		return
	}
	x.fail(x.cpu.Set16(Mem(address), v))
}

func (x *execution) flag(f Flag) bool {
	return bit.IsSet(uint8(f), x.get8(F))
}

func (x *execution) setFlag(f Flag, on bool) {
	x.set8(F, bit.SetTo(uint8(f), x.get8(F), on))
}

// setFlags assigns all four flags at once.
func (x *execution) setFlags(zero, sub, half, carry bool) {
	x.setFlag(Zero, zero)
	x.setFlag(Subtraction, sub)
	x.setFlag(HalfCarry, half)
	x.setFlag(Carry, carry)
}

// operandAddress returns the address of the immediate byte at index i.
func (x *execution) operandAddress(i int) uint16 {
	a := int(x.pc) + x.in.opcodeLength() + i
	if a > 0xFFFF {
		x.fail(fmt.Errorf("%w: operand of instruction at 0x%04X runs past the address space", storage.ErrMemoryFault, x.pc))
		return 0
	}
	return uint16(a)
}

// d8 reads the 8-bit immediate.
func (x *execution) d8() uint8 {
	a := x.operandAddress(0)
	return x.load8(a)
}

// r8 reads the 8-bit immediate as a signed displacement.
func (x *execution) r8() int8 {
	return int8(x.d8())
}

// d16 reads the 16-bit immediate.
func (x *execution) d16() uint16 {
	a := x.operandAddress(0)
	x.operandAddress(1)
	return x.load16(a)
}

func (x *execution) push(v uint16) {
	sp := x.get16(SP) - 2
	x.set16(SP, sp)
	x.store16(sp, v)
}

func (x *execution) pop() uint16 {
	sp := x.get16(SP)
	v := x.load16(sp)
	x.set16(SP, sp+2)
	return v
}

// next advances PC past the instruction.
func (x *execution) next() Offset {
	return Offset(x.in.Length())
}

// relative advances PC past the instruction and then by d.
func (x *execution) relative(d int8) Offset {
	return Offset(x.in.Length()) + Offset(d)
}

// jump overwrites PC.
func (x *execution) jump(target uint16) Offset {
	x.set16(PC, target)
	return 0
}

// returnAddress is the address of the instruction following this one.
func (x *execution) returnAddress() uint16 {
	a := int32(x.pc) + int32(x.in.Length())
	if a > 0xFFFF {
		x.fail(&PCError{PC: x.pc, Target: a})
		return 0
	}
	return uint16(a)
}

// target is an 8-bit operand encoded in 3 bits of an opcode: a register or
// the byte addressed by HL.
type target struct {
	reg      Register
	indirect bool
}

// targets in opcode encoding order
var targets = [8]target{{reg: B}, {reg: C}, {reg: D}, {reg: E}, {reg: H}, {reg: L}, {indirect: true}, {reg: A}}

func (t target) String() string {
	if t.indirect {
		return "(HL)"
	}
	return t.reg.String()
}

func (t target) operand() Operand {
	if t.indirect {
		return Indirect(HL)
	}
	return R(t.reg)
}

func (x *execution) read(t target) uint8 {
	if t.indirect {
		return x.load8(x.get16(HL))
	}
	return x.get8(t.reg)
}

func (x *execution) write(t target, v uint8) {
	if t.indirect {
		x.store8(x.get16(HL), v)
		return
	}
	x.set8(t.reg, v)
}
