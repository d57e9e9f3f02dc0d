package cpu

import "fmt"

// condition is a flag test used by the conditional jumps, calls and returns.
type condition struct {
	name string
	flag Flag
	want bool
}

// conditions in opcode encoding order
var conditions = [4]condition{
	{"NZ", Zero, false},
	{"Z", Zero, true},
	{"NC", Carry, false},
	{"C", Carry, true},
}

func (x *execution) holds(c condition) bool {
	return x.flag(c.flag) == c.want
}

func (x *execution) call(target uint16) Offset {
	ret := x.returnAddress()
	x.push(ret)
	return x.jump(target)
}

func controlInstructions() []*Instruction {
	set := []*Instruction{
		op(0x00, "NOP", none, none, func(x *execution) Offset {
			return x.next()
		}),
		op(0x18, "JR r8", d8, none, func(x *execution) Offset {
			return x.relative(x.r8())
		}),
		op(0xC3, "JP a16", d16, none, func(x *execution) Offset {
			return x.jump(x.d16())
		}),
		op(0xE9, "JP HL", R(HL), none, func(x *execution) Offset {
			return x.jump(x.get16(HL))
		}),
		op(0xCD, "CALL a16", d16, none, func(x *execution) Offset {
			return x.call(x.d16())
		}),
		op(0xC9, "RET", none, none, func(x *execution) Offset {
			return x.jump(x.pop())
		}),
		op(0xD9, "RETI", none, none, func(x *execution) Offset {
			x.set8(IME, 1)
			return x.jump(x.pop())
		}),
		op(0xF3, "DI", none, none, func(x *execution) Offset {
			x.set8(IME, 0)
			return x.next()
		}),
		op(0xFB, "EI", none, none, func(x *execution) Offset {
			x.set8(IME, 1)
			return x.next()
		}),
	}

	for i, c := range conditions {
		set = append(set,
			op(uint16(0x20+i*8), "JR "+c.name+",r8", d8, none, func(x *execution) Offset {
				d := x.r8()
				if x.holds(c) {
					return x.relative(d)
				}
				return x.next()
			}),
			op(uint16(0xC2+i*8), "JP "+c.name+",a16", d16, none, func(x *execution) Offset {
				target := x.d16()
				if x.holds(c) {
					return x.jump(target)
				}
				return x.next()
			}),
			op(uint16(0xC4+i*8), "CALL "+c.name+",a16", d16, none, func(x *execution) Offset {
				target := x.d16()
				if x.holds(c) {
					return x.call(target)
				}
				return x.next()
			}),
			op(uint16(0xC0+i*8), "RET "+c.name, none, none, func(x *execution) Offset {
				if x.holds(c) {
					return x.jump(x.pop())
				}
				return x.next()
			}),
		)
	}

	for n := uint16(0); n < 8; n++ {
		vector := n * 8
		set = append(set, op(0xC7+vector, fmt.Sprintf("RST %02XH", vector), none, none, func(x *execution) Offset {
			return x.call(vector)
		}))
	}

	return set
}
