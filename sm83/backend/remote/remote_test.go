package remote

import (
	"context"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-sm83/sm83"
	"github.com/valerio/go-sm83/sm83/backend"
	"github.com/valerio/go-sm83/sm83/debug"
)

func newTestMachine(t *testing.T, code ...byte) *sm83.Machine {
	t.Helper()
	image := make([]byte, 0x0100+len(code))
	copy(image[0x0100:], code)
	m, err := sm83.New(image, sm83.Config{})
	require.NoError(t, err)
	return m
}

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	b := New("127.0.0.1:0")
	require.NoError(t, b.Init(backend.Config{Title: "test"}))
	t.Cleanup(func() { _ = b.Cleanup() })
	return b
}

func dial(t *testing.T, b *Backend) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+b.Addr()+Path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readType reads messages until one of the given type arrives.
func readType(t *testing.T, conn *websocket.Conn, typ string) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == typ {
			return msg
		}
	}
}

// collect calls Update until it returns at least n actions.
func collect(t *testing.T, b *Backend, data *debug.Data, n int) []backend.Action {
	t.Helper()
	var actions []backend.Action
	deadline := time.Now().Add(2 * time.Second)
	for len(actions) < n {
		require.True(t, time.Now().Before(deadline), "timed out waiting for actions")
		got, err := b.Update(data)
		require.NoError(t, err)
		actions = append(actions, got...)
	}
	return actions
}

func TestActions(t *testing.T) {
	b := newTestBackend(t)
	conn := dial(t, b)
	data := newTestMachine(t).DebugData(debug.DebuggerPaused)

	for _, name := range []string{"step", "run", "pause", "quit"} {
		require.NoError(t, conn.WriteJSON(Request{Action: name}))
	}

	actions := collect(t, b, data, 4)
	assert.Equal(t, []backend.Action{
		backend.ActionStep,
		backend.ActionRun,
		backend.ActionPause,
		backend.ActionQuit,
	}, actions)
}

func TestStateBroadcast(t *testing.T) {
	b := newTestBackend(t)
	conn := dial(t, b)
	m := newTestMachine(t, 0x00)

	// the client is registered once it can round trip a request
	require.NoError(t, conn.WriteJSON(Request{Action: "step"}))
	collect(t, b, m.DebugData(debug.DebuggerPaused), 1)

	require.NoError(t, m.Step())
	_, err := b.Update(m.DebugData(debug.DebuggerPaused))
	require.NoError(t, err)

	for {
		msg := readType(t, conn, "state")
		require.NotNil(t, msg.Data)
		require.NotNil(t, msg.Data.CPU)
		if msg.Data.CPU.PC == 0x0101 {
			assert.Equal(t, uint64(1), msg.Data.CPU.Steps)
			assert.Equal(t, debug.DebuggerPaused, msg.Data.DebuggerState)
			break
		}
	}
}

func TestStateRequest(t *testing.T) {
	b := newTestBackend(t)
	conn := dial(t, b)

	require.NoError(t, conn.WriteJSON(Request{Action: "state"}))
	msg := readType(t, conn, "error")
	assert.Equal(t, "no state yet", msg.Error)

	_, err := b.Update(newTestMachine(t).DebugData(debug.DebuggerRunning))
	require.NoError(t, err)

	require.NoError(t, conn.WriteJSON(Request{Action: "state"}))
	msg = readType(t, conn, "state")
	require.NotNil(t, msg.Data)
	assert.Equal(t, uint16(0x0100), msg.Data.CPU.PC)
	assert.Equal(t, uint16(0xFFFE), msg.Data.CPU.SP)
}

func TestBadRequests(t *testing.T) {
	b := newTestBackend(t)
	conn := dial(t, b)

	require.NoError(t, conn.WriteJSON(Request{Action: "jump"}))
	msg := readType(t, conn, "error")
	assert.Equal(t, `unknown action "jump"`, msg.Error)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	msg = readType(t, conn, "error")
	assert.Equal(t, "malformed request", msg.Error)

	require.NoError(t, conn.WriteJSON(Request{Action: "none"}))
	readType(t, conn, "error")
}

func TestLoop(t *testing.T) {
	b := New("127.0.0.1:0")
	m := newTestMachine(t, 0x00, 0x00, 0x00)

	done := make(chan error, 1)
	go func() {
		done <- backend.Loop(context.Background(), m, b, backend.Config{StartPaused: true})
	}()

	// Init runs inside the loop, wait for the listener
	var conn *websocket.Conn
	require.Eventually(t, func() bool {
		if b.Addr() == "127.0.0.1:0" {
			return false
		}
		c, _, err := websocket.DefaultDialer.Dial("ws://"+b.Addr()+Path, nil)
		if err != nil {
			return false
		}
		conn = c
		return true
	}, 2*time.Second, 10*time.Millisecond)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(Request{Action: "step"}))
	require.NoError(t, conn.WriteJSON(Request{Action: "step"}))
	require.NoError(t, conn.WriteJSON(Request{Action: "quit"}))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not quit")
	}
	assert.Equal(t, uint64(2), m.Steps())
}
