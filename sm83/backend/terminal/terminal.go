// Package terminal is an interactive tcell front end showing registers,
// disassembly, stack and logs while stepping or running the machine.
package terminal

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/valerio/go-sm83/sm83/backend"
	"github.com/valerio/go-sm83/sm83/debug"
)

const (
	registerWidth  = 32
	registerHeight = 11
	stackHeight    = 8
	minTermWidth   = 60
	minTermHeight  = 24
	logCapacity    = 100

	// idleDelay throttles Update while paused so the loop does not spin.
	idleDelay = 15 * time.Millisecond
)

var (
	textStyle    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	titleStyle   = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	regStyle     = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	disasmStyle  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	currentStyle = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	faultStyle   = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	debugStyle   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	warnStyle    = tcell.StyleDefault.Foreground(tcell.ColorYellow)
)

const helpText = "n/space: step  r: run/pause  +/-: log level  q/esc: quit"

// Backend implements the Backend interface using tcell for terminal rendering
type Backend struct {
	screen    tcell.Screen
	logBuffer *LogBuffer
	logLevel  slog.Level
	config    backend.Config

	previousLogger *slog.Logger
	signals        chan os.Signal
	actions        []backend.Action
}

// New creates a new terminal backend on the process terminal.
func New() *Backend {
	return &Backend{
		logLevel: slog.LevelInfo,
	}
}

// NewWithScreen creates a terminal backend drawing on screen, which must not
// be initialized yet.
func NewWithScreen(screen tcell.Screen) *Backend {
	b := New()
	b.screen = screen
	return b
}

// Init initializes the terminal and captures logging into the log pane.
func (t *Backend) Init(config backend.Config) error {
	t.config = config
	t.actions = nil

	if t.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to initialize terminal: %w", err)
		}
		t.screen = screen
	}

	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}

	t.logBuffer = NewLogBuffer(logCapacity)
	t.previousLogger = slog.Default()
	slog.SetDefault(slog.New(NewLogBufferHandler(t.logBuffer, slog.LevelDebug)))
	slog.Info("Terminal backend initialized", "title", config.Title)

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	t.signals = make(chan os.Signal, 1)
	signal.Notify(t.signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	return nil
}

// Update processes pending input, then draws data.
func (t *Backend) Update(data *debug.Data) ([]backend.Action, error) {
	select {
	case <-t.signals:
		t.actions = append(t.actions, backend.ActionQuit)
	default:
	}

	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			t.processKeyEvent(ev, data)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	t.render(data)
	t.screen.Show()

	actions := t.actions
	t.actions = nil

	if len(actions) == 0 && (data == nil || data.DebuggerState != debug.DebuggerRunning) {
		time.Sleep(idleDelay)
	}
	return actions, nil
}

// Cleanup restores the terminal and the previous logger.
func (t *Backend) Cleanup() error {
	if t.signals != nil {
		signal.Stop(t.signals)
	}
	if t.previousLogger != nil {
		slog.SetDefault(t.previousLogger)
		t.previousLogger = nil
	}
	if t.screen != nil {
		t.screen.Fini()
	}
	return nil
}

// LogBuffer returns the buffer the log pane is drawn from.
func (t *Backend) LogBuffer() *LogBuffer {
	return t.logBuffer
}

func (t *Backend) processKeyEvent(ev *tcell.EventKey, data *debug.Data) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		t.actions = append(t.actions, backend.ActionQuit)
		return
	case tcell.KeyEnter:
		t.actions = append(t.actions, backend.ActionStep)
		return
	case tcell.KeyRune:
	default:
		return
	}

	switch ev.Rune() {
	case 'n', ' ':
		t.actions = append(t.actions, backend.ActionStep)
	case 'r':
		if data != nil && data.DebuggerState == debug.DebuggerRunning {
			t.actions = append(t.actions, backend.ActionPause)
		} else {
			t.actions = append(t.actions, backend.ActionRun)
		}
	case 'p':
		t.actions = append(t.actions, backend.ActionPause)
	case 'q':
		t.actions = append(t.actions, backend.ActionQuit)
	case '+':
		t.changeLogLevel(1)
	case '-':
		t.changeLogLevel(-1)
	}
}

// logLevels in the order + walks towards more verbose output.
var logLevels = []slog.Level{slog.LevelError, slog.LevelWarn, slog.LevelInfo, slog.LevelDebug}

// changeLogLevel moves the log pane filter by delta steps along logLevels.
func (t *Backend) changeLogLevel(delta int) {
	i := slices.Index(logLevels, t.logLevel)
	if i < 0 {
		i = slices.Index(logLevels, slog.LevelInfo)
	}
	i = min(max(i+delta, 0), len(logLevels)-1)

	if logLevels[i] != t.logLevel {
		slog.Info("Log filter changed", "from", t.logLevel, "to", logLevels[i])
		t.logLevel = logLevels[i]
	}
}

func (t *Backend) render(data *debug.Data) {
	t.screen.Clear()

	termWidth, termHeight := t.screen.Size()
	if termWidth < minTermWidth || termHeight < minTermHeight {
		msg := fmt.Sprintf("Terminal too small (%dx%d), need %dx%d", termWidth, termHeight, minTermWidth, minTermHeight)
		t.drawText(0, termHeight/2, termWidth, msg, faultStyle)
		return
	}

	stackY := registerHeight + 1
	logsY := stackY + stackHeight + 1

	dividerX := registerWidth
	for y := 0; y < logsY; y++ {
		t.screen.SetContent(dividerX, y, '│', nil, textStyle)
	}
	for x := 0; x < termWidth; x++ {
		t.screen.SetContent(x, logsY, '─', nil, textStyle)
	}

	t.drawText(1, 0, registerWidth-1, "Registers", titleStyle)
	t.drawText(dividerX+2, 0, termWidth-dividerX-2, "Disassembly", titleStyle)
	t.drawText(1, stackY, registerWidth-1, "Stack", titleStyle)
	t.drawText(1, logsY, termWidth-1, "Logs", titleStyle)

	if data != nil && data.CPU != nil {
		t.drawRegisters(data, 1, 1, registerWidth-1)
		t.drawDisassembly(data, dividerX+2, 1, termWidth-dividerX-2, logsY-1)
		t.drawStack(data, 1, stackY+1, registerWidth-1)
	}
	t.drawLogs(1, logsY+1, termWidth-1, termHeight-1)

	t.drawText(0, termHeight-1, termWidth, helpText, textStyle)
}

func (t *Backend) drawRegisters(data *debug.Data, x, y, width int) {
	cpu := data.CPU

	ime := "OFF"
	if cpu.IME {
		ime = "ON"
	}

	lines := []string{
		fmt.Sprintf("Status: %s", data.DebuggerState),
		fmt.Sprintf("A: 0x%02X  F: 0x%02X", cpu.A, cpu.F),
		fmt.Sprintf("B: 0x%02X  C: 0x%02X", cpu.B, cpu.C),
		fmt.Sprintf("D: 0x%02X  E: 0x%02X", cpu.D, cpu.E),
		fmt.Sprintf("H: 0x%02X  L: 0x%02X", cpu.H, cpu.L),
		fmt.Sprintf("SP: 0x%04X  PC: 0x%04X", cpu.SP, cpu.PC),
		fmt.Sprintf("Flags: %s", debug.FlagString(cpu.F)),
		fmt.Sprintf("IME: %s  IE: 0x%02X  IF: 0x%02X", ime, data.InterruptEnable, data.InterruptFlags),
		fmt.Sprintf("Steps: %d", cpu.Steps),
	}
	for i, line := range lines {
		t.drawText(x, y+i, width, line, regStyle)
	}

	if cpu.Faulted {
		t.drawText(x, y+len(lines), width, "FAULT: "+cpu.Fault, faultStyle)
	}
}

func (t *Backend) drawDisassembly(data *debug.Data, x, y, width, maxY int) {
	for i, line := range data.Disassembly {
		if y+i > maxY {
			break
		}

		prefix, style := "  ", disasmStyle
		if line.Address == data.CPU.PC {
			prefix, style = "> ", currentStyle
		}

		bytes := ""
		for _, b := range line.Bytes {
			bytes += fmt.Sprintf("%02X ", b)
		}
		text := fmt.Sprintf("%s0x%04X  %-9s %s", prefix, line.Address, bytes, line.Instruction)
		t.drawText(x, y+i, width, text, style)
	}
}

func (t *Backend) drawStack(data *debug.Data, x, y, width int) {
	if data.Stack == nil {
		return
	}

	row := 0
	for i := 0; i+1 < len(data.Stack.Bytes) && row < stackHeight; i += 2 {
		word := uint16(data.Stack.Bytes[i+1])<<8 | uint16(data.Stack.Bytes[i])
		text := fmt.Sprintf("0x%04X: 0x%04X", data.Stack.StartAddr+uint16(i), word)
		t.drawText(x, y+row, width, text, textStyle)
		row++
	}
}

func (t *Backend) drawLogs(x, y, width, maxY int) {
	availableHeight := maxY - y
	if availableHeight <= 0 || t.logBuffer == nil {
		return
	}

	var logs []LogEntry
	for _, entry := range t.logBuffer.GetRecent(logCapacity) {
		if entry.Level >= t.logLevel {
			logs = append(logs, entry)
			if len(logs) >= availableHeight {
				break
			}
		}
	}

	for i, entry := range logs {
		style := regStyle
		switch {
		case entry.Level >= slog.LevelError:
			style = faultStyle
		case entry.Level >= slog.LevelWarn:
			style = warnStyle
		case entry.Level < slog.LevelInfo:
			style = debugStyle
		}
		t.drawText(x, y+i, width, FormatLogEntry(entry), style)
	}
}

// drawText writes text on row y starting at x, truncated to width cells.
func (t *Backend) drawText(x, y, width int, text string, style tcell.Style) {
	if width <= 0 {
		return
	}
	n := 0
	for _, ch := range text {
		if n >= width {
			break
		}
		t.screen.SetContent(x+n, y, ch, nil, style)
		n++
	}
}
