package cpu

import (
	"cmp"
	"fmt"
	"slices"
)

const (
	// prefix selects the extended opcode table.
	prefix uint8 = 0xCB
	// prefixedBase is OR-ed into extended opcodes so they sort after, and
	// never collide with, the primary ones.
	prefixedBase uint16 = 0x100
)

// OperandKind is the shape of an instruction operand.
type OperandKind uint8

const (
	OperandNone OperandKind = iota
	OperandImm8
	OperandImm16
	OperandRegister
)

// Operand describes one operand of an instruction.
type Operand struct {
	Kind OperandKind
	Reg  Register
	// Indirect marks a register operand used as an address, as in (HL).
	Indirect bool
}

var (
	none = Operand{}
	d8   = Operand{Kind: OperandImm8}
	d16  = Operand{Kind: OperandImm16}
)

// R returns a register operand.
func R(r Register) Operand {
	return Operand{Kind: OperandRegister, Reg: r}
}

// Indirect returns a register operand holding an address.
func Indirect(r Register) Operand {
	return Operand{Kind: OperandRegister, Reg: r, Indirect: true}
}

// Size is the number of immediate bytes the operand takes.
func (o Operand) Size() int {
	switch o.Kind {
	case OperandImm8:
		return 1
	case OperandImm16:
		return 2
	default:
		return 0
	}
}

func (o Operand) String() string {
	switch o.Kind {
	case OperandImm8:
		return "d8"
	case OperandImm16:
		return "d16"
	case OperandRegister:
		if o.Indirect {
			return "(" + o.Reg.String() + ")"
		}
		return o.Reg.String()
	default:
		return ""
	}
}

// Instruction describes one opcode. Opcodes at or above 0x100 are the 0xCB
// prefixed ones.
type Instruction struct {
	Opcode uint16
	// Mnemonic is an assembly template. The tokens d8, d16, a8, a16 and r8
	// stand for the immediate operand.
	Mnemonic string
	Op1, Op2 Operand

	run func(*execution) Offset
}

// Prefixed reports whether the instruction is in the 0xCB table.
func (in *Instruction) Prefixed() bool {
	return in.Opcode >= prefixedBase
}

func (in *Instruction) opcodeLength() int {
	if in.Prefixed() {
		return 2
	}
	return 1
}

// Length is the encoded size of the instruction in bytes.
func (in *Instruction) Length() int {
	return in.opcodeLength() + in.Op1.Size() + in.Op2.Size()
}

func (in *Instruction) String() string {
	return in.Mnemonic
}

func op(opcode uint16, mnemonic string, op1, op2 Operand, run func(*execution) Offset) *Instruction {
	return &Instruction{Opcode: opcode, Mnemonic: mnemonic, Op1: op1, Op2: op2, run: run}
}

func prefixed(opcode uint8, mnemonic string, op1 Operand, run func(*execution) Offset) *Instruction {
	return op(prefixedBase|uint16(opcode), mnemonic, op1, none, run)
}

// table is the sorted instruction set.
var table []*Instruction

func init() {
	t, err := newTable(loadInstructions(), aluInstructions(), controlInstructions(), bitInstructions())
	if err != nil {
		panic(err)
	}
	table = t
}

// newTable merges instruction groups into one table sorted by opcode.
func newTable(groups ...[]*Instruction) ([]*Instruction, error) {
	var t []*Instruction
	for _, g := range groups {
		t = append(t, g...)
	}
	slices.SortFunc(t, func(a, b *Instruction) int {
		return cmp.Compare(a.Opcode, b.Opcode)
	})
	for i := 1; i < len(t); i++ {
		if t[i].Opcode == t[i-1].Opcode {
			return nil, fmt.Errorf("opcode 0x%03X registered twice: %q and %q", t[i].Opcode, t[i-1].Mnemonic, t[i].Mnemonic)
		}
	}
	return t, nil
}

func search(t []*Instruction, opcode uint16) (*Instruction, bool) {
	i, found := slices.BinarySearchFunc(t, opcode, func(in *Instruction, opcode uint16) int {
		return cmp.Compare(in.Opcode, opcode)
	})
	if !found {
		return nil, false
	}
	return t[i], true
}

// Lookup returns the instruction for an opcode byte, from the extended
// table when prefixed is set.
func Lookup(opcode uint8, prefixed bool) (*Instruction, bool) {
	code := uint16(opcode)
	if prefixed {
		code |= prefixedBase
	}
	return search(table, code)
}

// Instructions returns every known instruction sorted by opcode.
func Instructions() []*Instruction {
	return slices.Clone(table)
}
