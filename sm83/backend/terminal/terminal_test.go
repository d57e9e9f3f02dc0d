package terminal

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-sm83/sm83"
	"github.com/valerio/go-sm83/sm83/backend"
	"github.com/valerio/go-sm83/sm83/debug"
)

func newTestBackend(t *testing.T) (*Backend, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("")
	b := NewWithScreen(screen)
	require.NoError(t, b.Init(backend.Config{Title: "test"}))
	screen.SetSize(100, 40)
	t.Cleanup(func() { _ = b.Cleanup() })
	return b, screen
}

func newTestMachine(t *testing.T, code ...byte) *sm83.Machine {
	t.Helper()
	image := make([]byte, 0x0100+len(code))
	copy(image[0x0100:], code)
	m, err := sm83.New(image, sm83.Config{})
	require.NoError(t, err)
	return m
}

func screenText(screen tcell.SimulationScreen) string {
	cells, width, _ := screen.GetContents()
	var sb strings.Builder
	for i, cell := range cells {
		if len(cell.Runes) == 0 {
			sb.WriteRune(' ')
		} else {
			sb.WriteRune(cell.Runes[0])
		}
		if (i+1)%width == 0 {
			sb.WriteRune('\n')
		}
	}
	return sb.String()
}

func TestUpdate_keys(t *testing.T) {
	tests := []struct {
		name  string
		key   tcell.Key
		r     rune
		state debug.DebuggerState
		want  []backend.Action
	}{
		{"n steps", tcell.KeyRune, 'n', debug.DebuggerPaused, []backend.Action{backend.ActionStep}},
		{"space steps", tcell.KeyRune, ' ', debug.DebuggerPaused, []backend.Action{backend.ActionStep}},
		{"enter steps", tcell.KeyEnter, 0, debug.DebuggerPaused, []backend.Action{backend.ActionStep}},
		{"r runs when paused", tcell.KeyRune, 'r', debug.DebuggerPaused, []backend.Action{backend.ActionRun}},
		{"r pauses when running", tcell.KeyRune, 'r', debug.DebuggerRunning, []backend.Action{backend.ActionPause}},
		{"p pauses", tcell.KeyRune, 'p', debug.DebuggerRunning, []backend.Action{backend.ActionPause}},
		{"q quits", tcell.KeyRune, 'q', debug.DebuggerRunning, []backend.Action{backend.ActionQuit}},
		{"escape quits", tcell.KeyEscape, 0, debug.DebuggerPaused, []backend.Action{backend.ActionQuit}},
		{"ctrl-c quits", tcell.KeyCtrlC, 0, debug.DebuggerPaused, []backend.Action{backend.ActionQuit}},
		{"unmapped key", tcell.KeyRune, 'x', debug.DebuggerRunning, nil},
	}

	m := newTestMachine(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, screen := newTestBackend(t)
			screen.InjectKey(tt.key, tt.r, tcell.ModNone)

			actions, err := b.Update(m.DebugData(tt.state))
			require.NoError(t, err)
			assert.Equal(t, tt.want, actions)
		})
	}
}

func TestUpdate_render(t *testing.T) {
	b, screen := newTestBackend(t)
	m := newTestMachine(t, 0x3E, 0x42) // LD A,$42

	_, err := b.Update(m.DebugData(debug.DebuggerPaused))
	require.NoError(t, err)

	text := screenText(screen)
	assert.Contains(t, text, "Status: PAUSED")
	assert.Contains(t, text, "SP: 0xFFFE  PC: 0x0100")
	assert.Contains(t, text, "A: 0x01  F: 0xB0")
	assert.Contains(t, text, "Flags: Z-HC")
	assert.Contains(t, text, "> 0x0100")
	assert.Contains(t, text, "LD A,$42")
	assert.Contains(t, text, "Terminal backend initialized")
	assert.Contains(t, text, helpText)
}

func TestUpdate_renderFault(t *testing.T) {
	b, screen := newTestBackend(t)
	m := newTestMachine(t, 0xD3)
	require.Error(t, m.Step())

	_, err := b.Update(m.DebugData(debug.DebuggerPaused))
	require.NoError(t, err)
	assert.Contains(t, screenText(screen), "FAULT: unknown opcode")
}

func TestUpdate_tooSmall(t *testing.T) {
	b, screen := newTestBackend(t)
	screen.SetSize(40, 10)

	_, err := b.Update(nil)
	require.NoError(t, err)
	assert.Contains(t, screenText(screen), "Terminal too small")
}

func TestLogLevel(t *testing.T) {
	b, screen := newTestBackend(t)

	screen.InjectKey(tcell.KeyRune, '-', tcell.ModNone)
	_, err := b.Update(nil)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, b.logLevel)

	screen.InjectKey(tcell.KeyRune, '+', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, '+', tcell.ModNone)
	_, err = b.Update(nil)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, b.logLevel)
}

// keyedBackend injects keys on the first Update, once Init has set up the
// screen's event channel.
type keyedBackend struct {
	*Backend
	screen tcell.SimulationScreen
	keys   []rune
}

func (k *keyedBackend) Update(data *debug.Data) ([]backend.Action, error) {
	for _, r := range k.keys {
		k.screen.InjectKey(tcell.KeyRune, r, tcell.ModNone)
	}
	k.keys = nil
	return k.Backend.Update(data)
}

func TestLoop(t *testing.T) {
	screen := tcell.NewSimulationScreen("")
	b := &keyedBackend{Backend: NewWithScreen(screen), screen: screen, keys: []rune{'n', 'n', 'q'}}
	m := newTestMachine(t, 0x00, 0x00, 0x00)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	previous := slog.Default()
	err := backend.Loop(ctx, m, b, backend.Config{StartPaused: true})
	require.NoError(t, err)

	assert.Equal(t, uint64(2), m.Steps())
	assert.Same(t, previous, slog.Default(), "cleanup restores the logger")
}

func TestLogBuffer(t *testing.T) {
	buf := NewLogBuffer(3)
	assert.Nil(t, buf.GetRecent(0))

	logger := slog.New(NewLogBufferHandler(buf, slog.LevelInfo))
	logger.Debug("hidden")
	logger.Info("one")
	logger.With("pc", 256).Info("two")
	logger.WithGroup("cpu").Warn("three", "a", 1)
	logger.Error("four")

	recent := buf.GetRecent(0)
	require.Len(t, recent, 3)
	assert.Equal(t, "four", recent[0].Message)
	assert.Equal(t, "three cpu.a=1", recent[1].Message)
	assert.Equal(t, "two pc=256", recent[2].Message)

	assert.Len(t, buf.GetRecent(2), 2)
	assert.Contains(t, FormatLogEntry(recent[0]), "[ERR] four")

	buf.Clear()
	assert.Nil(t, buf.GetRecent(0))
}
