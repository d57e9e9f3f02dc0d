package cpu

import "github.com/valerio/go-sm83/sm83/bit"

func (x *execution) add(v uint8) {
	a := x.get8(A)
	result := a + v
	x.setFlags(result == 0, false, bit.HalfCarryAdd(a, v, 0), uint16(a)+uint16(v) > 0xFF)
	x.set8(A, result)
}

func (x *execution) sub(v uint8) {
	a := x.get8(A)
	result := a - v
	x.setFlags(result == 0, true, bit.HalfBorrowSub(a, v, 0), a < v)
	x.set8(A, result)
}

func (x *execution) and(v uint8) {
	result := x.get8(A) & v
	x.setFlags(result == 0, false, true, false)
	x.set8(A, result)
}

// xor and or clear the whole flag byte before setting Zero.
func (x *execution) xor(v uint8) {
	result := x.get8(A) ^ v
	x.set8(A, result)
	x.set8(F, 0)
	x.setFlag(Zero, result == 0)
}

func (x *execution) or(v uint8) {
	result := x.get8(A) | v
	x.set8(A, result)
	x.set8(F, 0)
	x.setFlag(Zero, result == 0)
}

// cp only reports equality through Zero.
func (x *execution) cp(v uint8) {
	x.setFlag(Zero, x.get8(A) == v)
}

func (x *execution) inc(t target) {
	v := x.read(t)
	result := v + 1
	x.setFlag(Zero, result == 0)
	x.setFlag(Subtraction, false)
	x.setFlag(HalfCarry, v&0xF == 0xF)
	x.write(t, result)
}

func (x *execution) dec(t target) {
	v := x.read(t)
	result := v - 1
	x.setFlag(Zero, result == 0)
	x.setFlag(Subtraction, true)
	x.setFlag(HalfCarry, v&0xF == 0)
	x.write(t, result)
}

type aluOp struct {
	name string
	base uint16
	imm  uint16
	fn   func(*execution, uint8)
}

var aluOps = []aluOp{
	{"ADD A,", 0x80, 0xC6, (*execution).add},
	{"SUB ", 0x90, 0xD6, (*execution).sub},
	{"AND ", 0xA0, 0xE6, (*execution).and},
	{"XOR ", 0xA8, 0xEE, (*execution).xor},
	{"OR ", 0xB0, 0xF6, (*execution).or},
}

func aluInstructions() []*Instruction {
	var set []*Instruction

	for _, o := range aluOps {
		for i, t := range targets {
			set = append(set, op(o.base+uint16(i), o.name+t.String(), R(A), t.operand(), func(x *execution) Offset {
				o.fn(x, x.read(t))
				return x.next()
			}))
		}
		set = append(set, op(o.imm, o.name+"d8", R(A), d8, func(x *execution) Offset {
			o.fn(x, x.d8())
			return x.next()
		}))
	}

	set = append(set, op(0xFE, "CP d8", R(A), d8, func(x *execution) Offset {
		x.cp(x.d8())
		return x.next()
	}))

	for i, t := range targets {
		set = append(set,
			op(uint16(0x04+i*8), "INC "+t.String(), t.operand(), none, func(x *execution) Offset {
				x.inc(t)
				return x.next()
			}),
			op(uint16(0x05+i*8), "DEC "+t.String(), t.operand(), none, func(x *execution) Offset {
				x.dec(t)
				return x.next()
			}),
		)
	}

	for i, r := range pairs {
		set = append(set,
			op(uint16(0x03+i*0x10), "INC "+r.String(), R(r), none, func(x *execution) Offset {
				x.set16(r, x.get16(r)+1)
				return x.next()
			}),
			op(uint16(0x0B+i*0x10), "DEC "+r.String(), R(r), none, func(x *execution) Offset {
				x.set16(r, x.get16(r)-1)
				return x.next()
			}),
		)
	}

	set = append(set,
		op(0x2F, "CPL", none, none, func(x *execution) Offset {
			x.set8(A, ^x.get8(A))
			x.setFlag(Subtraction, true)
			x.setFlag(HalfCarry, true)
			return x.next()
		}),
		op(0x37, "SCF", none, none, func(x *execution) Offset {
			x.setFlag(Subtraction, false)
			x.setFlag(HalfCarry, false)
			x.setFlag(Carry, true)
			return x.next()
		}),
		op(0x3F, "CCF", none, none, func(x *execution) Offset {
			x.setFlag(Subtraction, false)
			x.setFlag(HalfCarry, false)
			x.setFlag(Carry, !x.flag(Carry))
			return x.next()
		}),
	)

	return set
}
