package headless

import (
	"log/slog"

	"github.com/valerio/go-sm83/sm83/backend"
	"github.com/valerio/go-sm83/sm83/debug"
)

// progressInterval is the number of updates between two progress logs.
const progressInterval = 100

// Backend implements the Backend interface for automated runs and batch processing
type Backend struct {
	config   backend.Config
	updates  int
	maxSteps uint64
	started  bool
}

// New creates a headless backend that quits once maxSteps instructions have
// executed. A zero maxSteps runs until the machine faults.
func New(maxSteps uint64) *Backend {
	return &Backend{
		maxSteps: maxSteps,
	}
}

// StepLimit makes the loop stop stepping once maxSteps instructions ran.
func (h *Backend) StepLimit() uint64 {
	return h.maxSteps
}

func (h *Backend) Init(config backend.Config) error {
	h.config = config
	h.updates = 0
	h.started = false

	slog.Info("Running headless mode", "title", config.Title, "steps", h.maxSteps, "batch", config.Batch)
	return nil
}

// Update checks progress and asks the loop to quit when done.
func (h *Backend) Update(data *debug.Data) ([]backend.Action, error) {
	h.updates++

	if data == nil || data.CPU == nil {
		return []backend.Action{backend.ActionQuit}, nil
	}
	cpu := data.CPU

	if cpu.Faulted {
		slog.Error("Headless execution faulted", "steps", cpu.Steps, "pc", cpu.PC, "fault", cpu.Fault)
		return []backend.Action{backend.ActionQuit}, nil
	}

	if h.maxSteps > 0 && cpu.Steps >= h.maxSteps {
		slog.Info("Headless execution completed", "steps", cpu.Steps)
		return []backend.Action{backend.ActionQuit}, nil
	}

	if h.updates%progressInterval == 0 {
		slog.Info("Step progress", "completed", cpu.Steps, "total", h.maxSteps)
	}

	// a paused start is resumed right away, there is nobody to press run
	if !h.started {
		h.started = true
		if data.DebuggerState != debug.DebuggerRunning {
			return []backend.Action{backend.ActionRun}, nil
		}
	}

	return nil, nil
}

func (h *Backend) Cleanup() error {
	return nil
}
