package backend

import (
	"github.com/valerio/go-sm83/sm83/debug"
)

// Backend represents a front end driving a machine (terminal, network, batch).
// Backends are responsible for:
// - Presenting the debug data they are handed
// - Translating their own input events to Actions
type Backend interface {
	// Init configures the backend. This is a required step before calling Update.
	Init(config Config) error

	// Update presents the current machine state and returns the actions
	// requested since the previous call.
	Update(data *debug.Data) ([]Action, error)

	// Cleanup resources when shutting down
	Cleanup() error
}

// Config holds configuration for backends
type Config struct {
	Title string
	// Batch is the number of instructions executed between two Updates
	// while running. Values below 1 mean one instruction per Update.
	Batch int
	// StartPaused starts the loop paused until a Run or Step action arrives.
	StartPaused bool
}

// Action is a request from a backend to the loop driving the machine.
type Action int

const (
	ActionNone Action = iota
	ActionStep
	ActionRun
	ActionPause
	ActionQuit
)

var actionNames = map[Action]string{
	ActionNone:  "none",
	ActionStep:  "step",
	ActionRun:   "run",
	ActionPause: "pause",
	ActionQuit:  "quit",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// ParseAction returns the action with the given name.
func ParseAction(name string) (Action, bool) {
	for a, n := range actionNames {
		if n == name {
			return a, true
		}
	}
	return ActionNone, false
}

// Machine is what the loop drives.
type Machine interface {
	Step() error
	DebugData(state debug.DebuggerState) *debug.Data
}

// Limiter is implemented by backends that want execution to stop after a
// fixed number of instructions. Loop never steps the machine past the limit,
// whatever the batch size. A zero limit means no limit.
type Limiter interface {
	StepLimit() uint64
}
