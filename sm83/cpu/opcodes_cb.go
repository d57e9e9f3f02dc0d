package cpu

import (
	"fmt"

	"github.com/valerio/go-sm83/sm83/bit"
)

// shiftOp computes the result and the bit shifted out for one of the
// rotate and shift instructions; carry is the Carry flag before it runs.
type shiftOp struct {
	name string
	fn   func(v uint8, carry bool) (result uint8, out bool)
}

// shiftOps in opcode encoding order, from 0x00 in steps of 8. 0x30 is SWAP.
var shiftOps = [8]shiftOp{
	{"RLC", func(v uint8, _ bool) (uint8, bool) { return v<<1 | v>>7, v&0x80 != 0 }},
	{"RRC", func(v uint8, _ bool) (uint8, bool) { return v>>1 | v<<7, v&0x01 != 0 }},
	{"RL", func(v uint8, c bool) (uint8, bool) { return v<<1 | carryBit(c), v&0x80 != 0 }},
	{"RR", func(v uint8, c bool) (uint8, bool) { return v>>1 | carryBit(c)<<7, v&0x01 != 0 }},
	{"SLA", func(v uint8, _ bool) (uint8, bool) { return v << 1, v&0x80 != 0 }},
	{"SRA", func(v uint8, _ bool) (uint8, bool) { return v>>1 | v&0x80, v&0x01 != 0 }},
	{},
	{"SRL", func(v uint8, _ bool) (uint8, bool) { return v >> 1, v&0x01 != 0 }},
}

func carryBit(c bool) uint8 {
	if c {
		return 1
	}
	return 0
}

func bitInstructions() []*Instruction {
	var set []*Instruction

	for row, s := range shiftOps {
		if s.fn == nil {
			continue
		}
		for i, t := range targets {
			set = append(set, prefixed(uint8(row*8+i), s.name+" "+t.String(), t.operand(), func(x *execution) Offset {
				result, out := s.fn(x.read(t), x.flag(Carry))
				x.setFlags(result == 0, false, false, out)
				x.write(t, result)
				return x.next()
			}))
		}
	}

	for i, t := range targets {
		set = append(set, prefixed(uint8(0x30+i), "SWAP "+t.String(), t.operand(), func(x *execution) Offset {
			result := bit.Swap(x.read(t))
			x.setFlags(result == 0, false, false, false)
			x.write(t, result)
			return x.next()
		}))

		for b := uint8(0); b < 8; b++ {
			code := b*8 + uint8(i)
			set = append(set,
				prefixed(0x40+code, fmt.Sprintf("BIT %d,%s", b, t), t.operand(), func(x *execution) Offset {
					v := x.read(t)
					x.setFlag(Zero, !bit.IsSet(b, v))
					x.setFlag(Subtraction, false)
					x.setFlag(HalfCarry, true)
					return x.next()
				}),
				prefixed(0x80+code, fmt.Sprintf("RES %d,%s", b, t), t.operand(), func(x *execution) Offset {
					x.write(t, bit.Clear(b, x.read(t)))
					return x.next()
				}),
				prefixed(0xC0+code, fmt.Sprintf("SET %d,%s", b, t), t.operand(), func(x *execution) Offset {
					x.write(t, bit.Set(b, x.read(t)))
					return x.next()
				}),
			)
		}
	}

	return set
}
