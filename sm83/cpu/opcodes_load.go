package cpu

import (
	"fmt"

	"github.com/valerio/go-sm83/sm83/addr"
)

var pairs = [4]Register{BC, DE, HL, SP}

// stackPairs replaces SP with AF for PUSH and POP.
var stackPairs = [4]Register{BC, DE, HL, AF}

func loadInstructions() []*Instruction {
	var set []*Instruction

	for i, r := range pairs {
		set = append(set, op(uint16(0x01+i*0x10), "LD "+r.String()+",d16", R(r), d16, func(x *execution) Offset {
			x.set16(r, x.d16())
			return x.next()
		}))
	}

	for i, t := range targets {
		set = append(set, op(uint16(0x06+i*8), "LD "+t.String()+",d8", t.operand(), d8, func(x *execution) Offset {
			v := x.d8()
			x.write(t, v)
			return x.next()
		}))
	}

	for di, dst := range targets {
		for si, src := range targets {
			// (HL),(HL) is HALT
			if dst.indirect && src.indirect {
				continue
			}
			code := uint16(0x40 + di*8 + si)
			set = append(set, op(code, fmt.Sprintf("LD %s,%s", dst, src), dst.operand(), src.operand(), func(x *execution) Offset {
				x.write(dst, x.read(src))
				return x.next()
			}))
		}
	}

	set = append(set,
		op(0x02, "LD (BC),A", Indirect(BC), R(A), func(x *execution) Offset {
			x.store8(x.get16(BC), x.get8(A))
			return x.next()
		}),
		op(0x12, "LD (DE),A", Indirect(DE), R(A), func(x *execution) Offset {
			x.store8(x.get16(DE), x.get8(A))
			return x.next()
		}),
		op(0x0A, "LD A,(BC)", R(A), Indirect(BC), func(x *execution) Offset {
			x.set8(A, x.load8(x.get16(BC)))
			return x.next()
		}),
		op(0x1A, "LD A,(DE)", R(A), Indirect(DE), func(x *execution) Offset {
			x.set8(A, x.load8(x.get16(DE)))
			return x.next()
		}),
		op(0x22, "LD (HL+),A", Indirect(HL), R(A), func(x *execution) Offset {
			hl := x.get16(HL)
			x.set16(HL, hl+1)
			x.store8(hl, x.get8(A))
			return x.next()
		}),
		op(0x32, "LD (HL-),A", Indirect(HL), R(A), func(x *execution) Offset {
			hl := x.get16(HL)
			x.set16(HL, hl-1)
			x.store8(hl, x.get8(A))
			return x.next()
		}),
		op(0x2A, "LD A,(HL+)", R(A), Indirect(HL), func(x *execution) Offset {
			hl := x.get16(HL)
			x.set8(A, x.load8(hl))
			x.set16(HL, hl+1)
			return x.next()
		}),
		op(0x3A, "LD A,(HL-)", R(A), Indirect(HL), func(x *execution) Offset {
			hl := x.get16(HL)
			x.set8(A, x.load8(hl))
			x.set16(HL, hl-1)
			return x.next()
		}),
		op(0xE0, "LDH (a8),A", d8, R(A), func(x *execution) Offset {
			a := addr.HighPage | uint16(x.d8())
			x.store8(a, x.get8(A))
			return x.next()
		}),
		op(0xF0, "LDH A,(a8)", R(A), d8, func(x *execution) Offset {
			a := addr.HighPage | uint16(x.d8())
			x.set8(A, x.load8(a))
			return x.next()
		}),
		op(0xE2, "LD (C),A", Indirect(C), R(A), func(x *execution) Offset {
			x.store8(addr.HighPage|uint16(x.get8(C)), x.get8(A))
			return x.next()
		}),
		op(0xF2, "LD A,(C)", R(A), Indirect(C), func(x *execution) Offset {
			x.set8(A, x.load8(addr.HighPage|uint16(x.get8(C))))
			return x.next()
		}),
		op(0xEA, "LD (a16),A", d16, R(A), func(x *execution) Offset {
			a := x.d16()
			x.store8(a, x.get8(A))
			return x.next()
		}),
		op(0xFA, "LD A,(a16)", R(A), d16, func(x *execution) Offset {
			x.set8(A, x.load8(x.d16()))
			return x.next()
		}),
		op(0x08, "LD (a16),SP", d16, R(SP), func(x *execution) Offset {
			a := x.d16()
			x.store16(a, x.get16(SP))
			return x.next()
		}),
		op(0xF9, "LD SP,HL", R(SP), R(HL), func(x *execution) Offset {
			x.set16(SP, x.get16(HL))
			return x.next()
		}),
	)

	for i, r := range stackPairs {
		set = append(set,
			op(uint16(0xC5+i*0x10), "PUSH "+r.String(), R(r), none, func(x *execution) Offset {
				x.push(x.get16(r))
				return x.next()
			}),
			op(uint16(0xC1+i*0x10), "POP "+r.String(), R(r), none, func(x *execution) Offset {
				v := x.pop()
				if r == AF {
					// the low nibble of F does not exist in hardware
					v &= 0xFFF0
				}
				x.set16(r, v)
				return x.next()
			}),
		)
	}

	return set
}
