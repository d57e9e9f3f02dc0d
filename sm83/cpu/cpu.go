package cpu

import (
	"fmt"

	"github.com/valerio/go-sm83/sm83/addr"
	"github.com/valerio/go-sm83/sm83/memory"
	"github.com/valerio/go-sm83/sm83/storage"
)

// State is the execution state of the CPU.
type State uint8

const (
	Running State = iota
	// Faulted is terminal: every further Step returns ErrFaulted.
	Faulted
)

func (s State) String() string {
	if s == Faulted {
		return "faulted"
	}
	return "running"
}

// CPU holds the register file and the address space and executes one
// instruction per Step. It is not safe for concurrent use.
type CPU struct {
	regs *registerFile
	mmu  *memory.MMU

	state State
	fault error
	steps uint64

	// memory bytes overwritten by the current step, undone on a fault
	journal    []journalEntry
	journaling bool
}

type journalEntry struct {
	address uint16
	old     uint8
}

// New creates a CPU around a ROM image of at most 0x8000 bytes, with the
// registers set to the values left behind by the boot ROM.
func New(rom []byte, opts ...memory.Option) (*CPU, error) {
	mmu, err := memory.New(rom, opts...)
	if err != nil {
		return nil, err
	}

	c := &CPU{
		regs: newRegisterFile(),
		mmu:  mmu,
	}

	boot := []struct {
		r Register
		v uint16
	}{
		{AF, addr.BootAF},
		{BC, addr.BootBC},
		{DE, addr.BootDE},
		{HL, addr.BootHL},
		{SP, addr.BootSP},
		{PC, addr.BootPC},
	}
	for _, b := range boot {
		if err := c.Set16(Reg(b.r), b.v); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Memory returns the address space of the CPU.
func (c *CPU) Memory() *memory.MMU {
	return c.mmu
}

// State returns the execution state.
func (c *CPU) State() State {
	return c.state
}

// Fault returns the error that faulted the CPU, or nil while running.
func (c *CPU) Fault() error {
	return c.fault
}

// Steps returns the number of instructions executed successfully.
func (c *CPU) Steps() uint64 {
	return c.steps
}

// Get8 reads an 8-bit register, IME or a memory byte.
func (c *CPU) Get8(l Loc) (uint8, error) {
	if l.memory {
		return c.mmu.Read8(l.address)
	}
	v, offset, err := c.regs.view(l.reg)
	if err != nil {
		return 0, err
	}
	return v.Read8(offset)
}

// Set8 writes an 8-bit register, IME or a memory byte.
func (c *CPU) Set8(l Loc, value uint8) error {
	if l.memory {
		c.record(l.address, 1)
		return c.mmu.Write8(l.address, value)
	}
	v, offset, err := c.regs.view(l.reg)
	if err != nil {
		return err
	}
	return v.Write8(offset, value)
}

// Get16 reads a 16-bit register or a little-endian memory word.
func (c *CPU) Get16(l Loc) (uint16, error) {
	if l.memory {
		return c.mmu.Read16(l.address)
	}
	v, offset, err := c.regs.view(l.reg)
	if err != nil {
		return 0, err
	}
	return v.Read16(offset)
}

// Set16 writes a 16-bit register or a little-endian memory word.
func (c *CPU) Set16(l Loc, value uint16) error {
	if l.memory {
		c.record(l.address, 2)
		return c.mmu.Write16(l.address, value)
	}
	v, offset, err := c.regs.view(l.reg)
	if err != nil {
		return err
	}
	return v.Write16(offset, value)
}

// record saves the bytes about to be overwritten while a step is running.
func (c *CPU) record(address uint16, width int) {
	if !c.journaling {
		return
	}
	for i := 0; i < width && int(address)+i <= 0xFFFF; i++ {
		a := address + uint16(i)
		if old, err := c.mmu.Read8(a); err == nil {
			c.journal = append(c.journal, journalEntry{address: a, old: old})
		}
	}
}

func (c *CPU) rollback(saved registerSnapshot) {
	for i := len(c.journal) - 1; i >= 0; i-- {
		j := c.journal[i]
		_ = c.mmu.Write8(j.address, j.old)
	}
	c.journal = c.journal[:0]
	c.regs.restore(saved)
}

// Step executes the instruction at PC. Any error faults the CPU; the
// faulting instruction leaves registers and memory as they were before it.
func (c *CPU) Step() error {
	if c.state == Faulted {
		return fmt.Errorf("%w: %w", ErrFaulted, c.fault)
	}

	saved := c.regs.save()
	c.journal = c.journal[:0]
	c.journaling = true
	err := c.execute()
	c.journaling = false

	if err != nil {
		c.rollback(saved)
		c.state = Faulted
		c.fault = err
		return err
	}

	c.steps++
	return nil
}

func (c *CPU) execute() error {
	pc, err := c.Get16(Reg(PC))
	if err != nil {
		return err
	}

	in, err := c.Decode(pc)
	if err != nil {
		return err
	}

	x := execution{cpu: c, in: in, pc: pc}
	offset := in.run(&x)
	if x.err != nil {
		return x.err
	}

	// instructions that overwrite PC return a zero offset
	base, err := c.Get16(Reg(PC))
	if err != nil {
		return err
	}
	next := int32(base) + int32(offset)
	if next < 0 || next > 0xFFFF {
		return &PCError{PC: pc, Target: next}
	}
	return c.Set16(Reg(PC), uint16(next))
}

// Decode resolves the instruction at address, following the 0xCB prefix.
func (c *CPU) Decode(address uint16) (*Instruction, error) {
	opcode, err := c.mmu.Read8(address)
	if err != nil {
		return nil, err
	}
	if opcode != prefix {
		in, ok := Lookup(opcode, false)
		if !ok {
			return nil, &OpcodeError{Address: address, Opcode: uint16(opcode)}
		}
		return in, nil
	}

	if address == 0xFFFF {
		return nil, fmt.Errorf("%w: prefixed opcode at 0x%04X runs past the address space", storage.ErrMemoryFault, address)
	}
	extended, err := c.mmu.Read8(address + 1)
	if err != nil {
		return nil, err
	}
	in, ok := Lookup(extended, true)
	if !ok {
		return nil, &OpcodeError{Address: address, Opcode: prefixedBase | uint16(extended)}
	}
	return in, nil
}
