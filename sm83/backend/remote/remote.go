// Package remote serves the machine state over a websocket and accepts
// control requests from connected debugger clients.
//
// Clients connect to /ws and send JSON requests of the form
//
//	{"action": "step"}
//
// where action is one of step, run, pause, quit or state. Every client
// receives state messages as the machine advances; a state request asks for
// the latest one immediately.
package remote

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/valerio/go-sm83/sm83/backend"
	"github.com/valerio/go-sm83/sm83/debug"
)

const (
	// Path is the websocket endpoint.
	Path = "/ws"

	sendBuffer        = 64
	writeTimeout      = time.Second
	broadcastInterval = 50 * time.Millisecond
	idleDelay         = 10 * time.Millisecond
)

// Request is a message sent by a client.
type Request struct {
	Action string `json:"action"`
}

// Message is a message sent to clients.
type Message struct {
	Type  string      `json:"type"`
	Data  *debug.Data `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// Backend implements the Backend interface over websocket connections.
type Backend struct {
	addr     string
	listener net.Listener
	server   *http.Server
	upgrader websocket.Upgrader

	mu       sync.Mutex
	clients  map[*client]bool
	pending  []backend.Action
	latest   []byte
	lastSent []byte
	sentAt   time.Time
}

// New creates a remote backend that will listen on addr once initialized.
func New(addr string) *Backend {
	return &Backend{
		addr:    addr,
		clients: make(map[*client]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Init starts the websocket server.
func (b *Backend) Init(config backend.Config) error {
	listener, err := net.Listen("tcp", b.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", b.addr, err)
	}
	b.mu.Lock()
	b.listener = listener
	b.mu.Unlock()

	mux := http.NewServeMux()
	mux.HandleFunc(Path, b.serveWS)
	b.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := b.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Remote debugger server stopped", "error", err)
		}
	}()

	slog.Info("Remote debugger listening", "title", config.Title, "addr", "ws://"+listener.Addr().String()+Path)
	return nil
}

// Addr returns the address the server listens on, useful with port 0.
func (b *Backend) Addr() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listener == nil {
		return b.addr
	}
	return b.listener.Addr().String()
}

// Update publishes data to the clients and returns the actions they sent
// since the previous call.
func (b *Backend) Update(data *debug.Data) ([]backend.Action, error) {
	msg, err := json.Marshal(Message{Type: "state", Data: data})
	if err != nil {
		return nil, fmt.Errorf("encoding state: %w", err)
	}

	running := data != nil && data.DebuggerState == debug.DebuggerRunning

	b.mu.Lock()
	b.latest = msg
	now := time.Now()
	changed := !bytes.Equal(msg, b.lastSent)
	if changed && (!running || now.Sub(b.sentAt) >= broadcastInterval) {
		b.broadcast(msg)
		b.lastSent = msg
		b.sentAt = now
	}
	actions := b.pending
	b.pending = nil
	b.mu.Unlock()

	if len(actions) == 0 && !running {
		time.Sleep(idleDelay)
	}
	return actions, nil
}

// Cleanup disconnects every client and stops the server.
func (b *Backend) Cleanup() error {
	b.mu.Lock()
	for c := range b.clients {
		c.close()
		c.conn.Close()
		delete(b.clients, c)
	}
	b.mu.Unlock()

	if b.server == nil {
		return nil
	}
	if err := b.server.Close(); err != nil {
		return err
	}
	slog.Info("Remote debugger stopped")
	return nil
}

// broadcast must be called with mu held. Slow clients miss messages rather
// than stall the machine.
func (b *Backend) broadcast(msg []byte) {
	for c := range b.clients {
		select {
		case c.send <- msg:
		default:
		}
	}
}

func (b *Backend) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	b.mu.Lock()
	b.clients[c] = true
	b.mu.Unlock()
	slog.Info("Debugger client connected", "remote", r.RemoteAddr)

	go b.writePump(c)
	b.readPump(c)
}

func (b *Backend) readPump(c *client) {
	defer func() {
		b.mu.Lock()
		delete(b.clients, c)
		b.mu.Unlock()
		c.close()
		c.conn.Close()
		slog.Info("Debugger client disconnected", "remote", c.conn.RemoteAddr())
	}()

	for {
		var req Request
		if err := c.conn.ReadJSON(&req); err != nil {
			var (
				syntaxErr *json.SyntaxError
				typeErr   *json.UnmarshalTypeError
			)
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				b.reply(c, Message{Type: "error", Error: "malformed request"})
				continue
			}
			return
		}
		b.handle(c, req)
	}
}

func (b *Backend) handle(c *client, req Request) {
	if req.Action == "state" {
		b.mu.Lock()
		latest := b.latest
		b.mu.Unlock()
		if latest == nil {
			b.reply(c, Message{Type: "error", Error: "no state yet"})
			return
		}
		b.send(c, latest)
		return
	}

	act, ok := backend.ParseAction(req.Action)
	if !ok || act == backend.ActionNone {
		b.reply(c, Message{Type: "error", Error: fmt.Sprintf("unknown action %q", req.Action)})
		return
	}

	slog.Debug("Remote action", "action", act)
	b.mu.Lock()
	b.pending = append(b.pending, act)
	b.mu.Unlock()
}

func (b *Backend) reply(c *client, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	b.send(c, data)
}

// send queues data for c unless c is already closed.
func (b *Backend) send(c *client, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.clients[c] {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (b *Backend) writePump(c *client) {
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			c.conn.Close()
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
