package sm83

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/valerio/go-sm83/sm83/cpu"
	"github.com/valerio/go-sm83/sm83/debug"
	"github.com/valerio/go-sm83/sm83/disasm"
	"github.com/valerio/go-sm83/sm83/memory"
	"github.com/valerio/go-sm83/sm83/rom"
)

// Config holds the options a Machine is created with.
type Config struct {
	// Trace logs every instruction at debug level before it executes.
	Trace bool
	// ReadOnlyROM makes writes into the ROM window fault.
	ReadOnlyROM bool
	// StartPC overrides the post-boot program counter when non-zero.
	StartPC uint16
}

// Machine is the root struct and entry point for running a program.
type Machine struct {
	cpu    *cpu.CPU
	config Config
	digest uint64
}

// New creates a machine with the given ROM image loaded.
func New(image []byte, config Config) (*Machine, error) {
	var opts []memory.Option
	if config.ReadOnlyROM {
		opts = append(opts, memory.WithReadOnlyROM())
	}

	c, err := cpu.New(image, opts...)
	if err != nil {
		return nil, err
	}

	if config.StartPC != 0 {
		if err := c.Set16(cpu.Reg(cpu.PC), config.StartPC); err != nil {
			return nil, err
		}
	}

	m := &Machine{
		cpu:    c,
		config: config,
		digest: rom.Digest(image),
	}
	slog.Info("Loaded ROM", "bytes", len(image), "xxhash", fmt.Sprintf("%016x", m.digest))

	return m, nil
}

// NewWithFile creates a machine and loads the file specified into it.
// Compressed images are unpacked first.
func NewWithFile(path string, config Config) (*Machine, error) {
	data, err := rom.Load(path)
	if err != nil {
		return nil, err
	}
	return New(data, config)
}

// Step executes a single instruction.
func (m *Machine) Step() error {
	if m.config.Trace && m.cpu.State() == cpu.Running {
		m.trace()
	}

	err := m.cpu.Step()
	if err != nil && !errors.Is(err, cpu.ErrFaulted) {
		slog.Error("CPU fault", "steps", m.cpu.Steps(), "error", err)
	}
	return err
}

func (m *Machine) trace() {
	pc, err := m.cpu.Get16(cpu.Reg(cpu.PC))
	if err != nil {
		return
	}
	line, err := disasm.DisassembleAt(pc, m.cpu.Memory())
	if err != nil {
		slog.Debug("trace", "pc", fmt.Sprintf("0x%04X", pc), "error", err)
		return
	}
	slog.Debug("trace", "op", disasm.Format(line))
}

// Run steps the machine until it faults, ctx is cancelled or limit
// instructions have executed. A zero limit means no limit.
func (m *Machine) Run(ctx context.Context, limit uint64) error {
	for n := uint64(0); limit == 0 || n < limit; n++ {
		if n%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}

// CPU exposes the underlying core.
func (m *Machine) CPU() *cpu.CPU {
	return m.cpu
}

// Steps returns the number of instructions executed successfully.
func (m *Machine) Steps() uint64 {
	return m.cpu.Steps()
}

// ROMDigest returns the xxhash of the loaded image.
func (m *Machine) ROMDigest() uint64 {
	return m.digest
}

// DebugData captures the machine state for the debug displays.
func (m *Machine) DebugData(state debug.DebuggerState) *debug.Data {
	return debug.Extract(m.cpu, state)
}
