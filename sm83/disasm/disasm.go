package disasm

import (
	"fmt"
	"strings"

	"github.com/valerio/go-sm83/sm83/bit"
	"github.com/valerio/go-sm83/sm83/cpu"
)

// Reader gives the disassembler read access to memory.
type Reader interface {
	Read8(address uint16) (uint8, error)
}

// Line represents a single disassembled instruction
type Line struct {
	Address     uint16  `json:"address"`
	Instruction string  `json:"instruction"`
	Length      int     `json:"length"`
	Bytes       []uint8 `json:"bytes"`
}

// DisassembleAt disassembles the instruction at the given program counter.
// Opcodes without a descriptor are rendered as a single DB byte.
func DisassembleAt(pc uint16, r Reader) (Line, error) {
	opcode, err := r.Read8(pc)
	if err != nil {
		return Line{}, err
	}

	code := []uint8{opcode}
	prefixed := opcode == 0xCB
	if prefixed {
		if pc == 0xFFFF {
			return Line{Address: pc, Instruction: "DB $CB", Length: 1, Bytes: code}, nil
		}
		next, err := r.Read8(pc + 1)
		if err != nil {
			return Line{}, err
		}
		opcode = next
		code = append(code, next)
	}

	in, ok := cpu.Lookup(opcode, prefixed)
	if !ok {
		return Line{Address: pc, Instruction: fmt.Sprintf("DB $%02X", code[0]), Length: 1, Bytes: code[:1]}, nil
	}

	for len(code) < in.Length() {
		a := int(pc) + len(code)
		if a > 0xFFFF {
			return Line{}, fmt.Errorf("instruction at 0x%04X runs past the address space", pc)
		}
		v, err := r.Read8(uint16(a))
		if err != nil {
			return Line{}, err
		}
		code = append(code, v)
	}

	operands := code[len(code)-in.Op1.Size()-in.Op2.Size():]
	return Line{
		Address:     pc,
		Instruction: render(in, pc, operands),
		Length:      in.Length(),
		Bytes:       code,
	}, nil
}

// render substitutes the immediate operand into the mnemonic template.
func render(in *cpu.Instruction, pc uint16, operands []uint8) string {
	m := in.Mnemonic
	switch len(operands) {
	case 1:
		v := operands[0]
		switch {
		case strings.Contains(m, "r8"):
			target := uint16(int(pc) + in.Length() + int(int8(v)))
			return strings.Replace(m, "r8", fmt.Sprintf("$%04X", target), 1)
		case strings.Contains(m, "a8"):
			return strings.Replace(m, "a8", fmt.Sprintf("$FF%02X", v), 1)
		default:
			return strings.Replace(m, "d8", fmt.Sprintf("$%02X", v), 1)
		}
	case 2:
		v := fmt.Sprintf("$%04X", bit.Combine(operands[1], operands[0]))
		if strings.Contains(m, "a16") {
			return strings.Replace(m, "a16", v, 1)
		}
		return strings.Replace(m, "d16", v, 1)
	}
	return m
}

// DisassembleRange disassembles up to count instructions starting from
// start. It stops early at unreadable memory or the end of the address space.
func DisassembleRange(start uint16, count int, r Reader) []Line {
	lines := make([]Line, 0, count)
	pc := int(start)

	for i := 0; i < count && pc <= 0xFFFF; i++ {
		line, err := DisassembleAt(uint16(pc), r)
		if err != nil {
			break
		}
		lines = append(lines, line)
		pc += line.Length
	}

	return lines
}

// DisassembleAround disassembles instructions before, at, and after pc.
// Variable length instructions can't be decoded backwards, so it searches
// for an earlier starting address whose decoding lands exactly on pc.
func DisassembleAround(pc uint16, before, after int, r Reader) []Line {
	for back := before * 3; back > 0; back-- {
		if int(pc)-back < 0 {
			continue
		}
		lines := DisassembleRange(pc-uint16(back), back+after+1, r)

		idx := -1
		for i, l := range lines {
			if l.Address == pc {
				idx = i
				break
			}
		}
		if idx < before {
			continue
		}

		end := idx + after + 1
		if end > len(lines) {
			end = len(lines)
		}
		return lines[idx-before : end]
	}

	return DisassembleRange(pc, after+1, r)
}

// Format renders a line as address, raw bytes and instruction.
func Format(l Line) string {
	raw := make([]string, len(l.Bytes))
	for i, b := range l.Bytes {
		raw[i] = fmt.Sprintf("%02X", b)
	}
	return fmt.Sprintf("0x%04X: %-9s %s", l.Address, strings.Join(raw, " "), l.Instruction)
}
