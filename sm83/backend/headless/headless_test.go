package headless_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-sm83/sm83"
	"github.com/valerio/go-sm83/sm83/backend"
	"github.com/valerio/go-sm83/sm83/backend/headless"
	"github.com/valerio/go-sm83/sm83/debug"
	"github.com/valerio/go-sm83/sm83/storage"
)

func data(steps uint64, state debug.DebuggerState) *debug.Data {
	return &debug.Data{CPU: &debug.CPUState{Steps: steps}, DebuggerState: state}
}

func TestHeadlessBackend(t *testing.T) {
	t.Run("normal operation", func(t *testing.T) {
		h := headless.New(3)
		require.NoError(t, h.Init(backend.Config{Title: "Test"}))

		for steps := uint64(0); steps < 3; steps++ {
			actions, err := h.Update(data(steps, debug.DebuggerRunning))
			assert.NoError(t, err)
			assert.Empty(t, actions)
		}

		actions, err := h.Update(data(3, debug.DebuggerRunning))
		assert.NoError(t, err)
		assert.Equal(t, []backend.Action{backend.ActionQuit}, actions)

		assert.NoError(t, h.Cleanup())
	})

	t.Run("resumes a paused start", func(t *testing.T) {
		h := headless.New(10)
		require.NoError(t, h.Init(backend.Config{StartPaused: true}))

		actions, err := h.Update(data(0, debug.DebuggerPaused))
		assert.NoError(t, err)
		assert.Equal(t, []backend.Action{backend.ActionRun}, actions)
	})

	t.Run("quits on fault", func(t *testing.T) {
		h := headless.New(0)
		require.NoError(t, h.Init(backend.Config{}))

		d := data(7, debug.DebuggerPaused)
		d.CPU.Faulted = true
		d.CPU.Fault = "unknown opcode"

		actions, err := h.Update(d)
		assert.NoError(t, err)
		assert.Equal(t, []backend.Action{backend.ActionQuit}, actions)
	})
}

func TestHeadless_loop(t *testing.T) {
	image := make([]byte, 0x0110)

	t.Run("step limit", func(t *testing.T) {
		m, err := sm83.New(image, sm83.Config{})
		require.NoError(t, err)

		err = backend.Loop(context.Background(), m, headless.New(64), backend.Config{Batch: 16})
		require.NoError(t, err)
		assert.Equal(t, uint64(64), m.Steps())
	})

	t.Run("step limit smaller than batch", func(t *testing.T) {
		m, err := sm83.New(image, sm83.Config{})
		require.NoError(t, err)

		err = backend.Loop(context.Background(), m, headless.New(10), backend.Config{Batch: 1000})
		require.NoError(t, err)
		assert.Equal(t, uint64(10), m.Steps())
	})

	t.Run("runs until fault", func(t *testing.T) {
		m, err := sm83.New(image, sm83.Config{})
		require.NoError(t, err)

		err = backend.Loop(context.Background(), m, headless.New(0), backend.Config{Batch: 4096})
		assert.ErrorIs(t, err, storage.ErrMemoryFault)
		assert.Equal(t, uint64(0x7F00), m.Steps())
	})
}

func TestHeadlessImplementsBackend(t *testing.T) {
	// Compile-time check that headless.Backend implements backend.Backend
	var _ backend.Backend = (*headless.Backend)(nil)
}
