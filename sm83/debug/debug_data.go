package debug

import (
	"github.com/valerio/go-sm83/sm83/addr"
	"github.com/valerio/go-sm83/sm83/cpu"
	"github.com/valerio/go-sm83/sm83/disasm"
)

// CPUState contains all CPU register information for debugging
type CPUState struct {
	A uint8 `json:"a"`
	F uint8 `json:"f"`
	B uint8 `json:"b"`
	C uint8 `json:"c"`
	D uint8 `json:"d"`
	E uint8 `json:"e"`
	H uint8 `json:"h"`
	L uint8 `json:"l"`

	SP    uint16 `json:"sp"`
	PC    uint16 `json:"pc"`
	IME   bool   `json:"ime"`
	Steps uint64 `json:"steps"`

	Faulted bool   `json:"faulted"`
	Fault   string `json:"fault,omitempty"`
}

// AF returns the AF register pair.
func (s *CPUState) AF() uint16 { return uint16(s.A)<<8 | uint16(s.F) }

// BC returns the BC register pair.
func (s *CPUState) BC() uint16 { return uint16(s.B)<<8 | uint16(s.C) }

// DE returns the DE register pair.
func (s *CPUState) DE() uint16 { return uint16(s.D)<<8 | uint16(s.E) }

// HL returns the HL register pair.
func (s *CPUState) HL() uint16 { return uint16(s.H)<<8 | uint16(s.L) }

// MemorySnapshot contains a snapshot of memory for disassembly
type MemorySnapshot struct {
	StartAddr uint16  `json:"start"`
	Bytes     []uint8 `json:"bytes"`
}

// DebuggerState represents the current debugger state
type DebuggerState int

const (
	DebuggerRunning DebuggerState = iota
	DebuggerPaused
	DebuggerStepInstruction
)

func (s DebuggerState) String() string {
	switch s {
	case DebuggerPaused:
		return "PAUSED"
	case DebuggerStepInstruction:
		return "STEP"
	default:
		return "RUNNING"
	}
}

// Data contains all debug information needed by debug displays
type Data struct {
	CPU             *CPUState       `json:"cpu"`
	Stack           *MemorySnapshot `json:"stack"`
	Disassembly     []disasm.Line   `json:"disassembly"`
	DebuggerState   DebuggerState   `json:"state"`
	InterruptEnable uint8           `json:"ie"` // IE register at 0xFFFF
	InterruptFlags  uint8           `json:"if"` // IF register at 0xFF0F
}

const (
	disasmBefore = 4
	disasmAfter  = 8
	stackBytes   = 16
)

// ExtractCPUState copies the registers of c. Registers that fail to read are
// left zero.
func ExtractCPUState(c *cpu.CPU) *CPUState {
	r8 := func(r cpu.Register) uint8 {
		v, _ := c.Get8(cpu.Reg(r))
		return v
	}
	r16 := func(r cpu.Register) uint16 {
		v, _ := c.Get16(cpu.Reg(r))
		return v
	}

	s := &CPUState{
		A: r8(cpu.A), F: r8(cpu.F),
		B: r8(cpu.B), C: r8(cpu.C),
		D: r8(cpu.D), E: r8(cpu.E),
		H: r8(cpu.H), L: r8(cpu.L),
		SP:      r16(cpu.SP),
		PC:      r16(cpu.PC),
		IME:     r8(cpu.IME) != 0,
		Steps:   c.Steps(),
		Faulted: c.State() == cpu.Faulted,
	}
	if err := c.Fault(); err != nil {
		s.Fault = err.Error()
	}
	return s
}

// ExtractStack reads up to n bytes upward from SP, stopping at unmapped memory.
func ExtractStack(r disasm.Reader, sp uint16, n int) *MemorySnapshot {
	snap := &MemorySnapshot{StartAddr: sp}
	for i := 0; i < n && int(sp)+i <= 0xFFFF; i++ {
		v, err := r.Read8(sp + uint16(i))
		if err != nil {
			break
		}
		snap.Bytes = append(snap.Bytes, v)
	}
	return snap
}

// Extract gathers everything the debug displays show for c.
func Extract(c *cpu.CPU, state DebuggerState) *Data {
	s := ExtractCPUState(c)
	mem := c.Memory()

	ie, _ := mem.Read8(addr.IE)
	ifl, _ := mem.Read8(addr.IF)

	return &Data{
		CPU:             s,
		Stack:           ExtractStack(mem, s.SP, stackBytes),
		Disassembly:     disasm.DisassembleAround(s.PC, disasmBefore, disasmAfter, mem),
		DebuggerState:   state,
		InterruptEnable: ie,
		InterruptFlags:  ifl,
	}
}

// FlagString renders the flags of F as ZNHC, with '-' for cleared flags.
func FlagString(f uint8) string {
	out := []byte("----")
	for i, fl := range []cpu.Flag{cpu.Zero, cpu.Subtraction, cpu.HalfCarry, cpu.Carry} {
		if f&(1<<uint8(fl)) != 0 {
			out[i] = fl.String()[0]
		}
	}
	return string(out)
}
