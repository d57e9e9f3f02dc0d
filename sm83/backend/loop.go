package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/valerio/go-sm83/sm83/debug"
)

// Loop initializes b and alternates between executing m and updating b until
// b requests ActionQuit or ctx is cancelled. A fault pauses execution; the
// backend keeps being updated so the faulted state can be inspected, and the
// fault is returned once the backend quits.
func Loop(ctx context.Context, m Machine, b Backend, config Config) (err error) {
	if err := b.Init(config); err != nil {
		return fmt.Errorf("initializing backend: %w", err)
	}
	defer func() {
		if cerr := b.Cleanup(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	batch := max(config.Batch, 1)
	state := debug.DebuggerRunning
	if config.StartPaused {
		state = debug.DebuggerPaused
	}

	var limit uint64
	if l, ok := b.(Limiter); ok {
		limit = l.StepLimit()
	}

	var (
		fault    error
		executed uint64
	)
	exhausted := func() bool {
		return limit > 0 && executed >= limit
	}
	step := func() {
		if fault != nil || exhausted() {
			return
		}
		executed++
		if err := m.Step(); err != nil {
			fault = err
			state = debug.DebuggerPaused
			slog.Warn("Execution paused on fault", "error", err)
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if state == debug.DebuggerRunning {
			for i := 0; i < batch && fault == nil && !exhausted(); i++ {
				step()
			}
		}

		actions, err := b.Update(m.DebugData(state))
		if err != nil {
			return err
		}
		if state == debug.DebuggerStepInstruction {
			state = debug.DebuggerPaused
		}

		for _, act := range actions {
			switch act {
			case ActionStep:
				step()
				state = debug.DebuggerStepInstruction
			case ActionRun:
				if fault == nil {
					state = debug.DebuggerRunning
				}
			case ActionPause:
				state = debug.DebuggerPaused
			case ActionQuit:
				return fault
			}
		}
	}
}
