// Package mpv provides a MediaEngine implementation backed by an external
// mpv process, driven over mpv's line-delimited JSON IPC socket.
//
// The adapter owns one reader goroutine; every engine notification is
// delivered to the installed handler on that goroutine. That goroutine is
// the "backend callback thread" of the system: handlers must bridge to the
// dispatcher before touching any controller state.
package mpv

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/audition-player/audition/internal/domain"
	"github.com/audition-player/audition/internal/ports"
)

// observedProperties are registered at startup; each change arrives as a
// property-change event and maps onto a domain notification.
var observedProperties = []string{"time-pos", "core-idle", "duration"}

// commandTimeout bounds how long a synchronous Command waits for its reply.
const commandTimeout = 5 * time.Second

// Config holds mpv engine configuration.
type Config struct {
	// Binary is the mpv executable to spawn.
	Binary string

	// SocketPath is the IPC socket path. Empty picks a per-process path
	// under the temp directory.
	SocketPath string

	// Logger may be nil.
	Logger *slog.Logger
}

// Engine talks to one mpv process. Commands are written to the socket;
// replies and asynchronous events are read by a single reader goroutine.
type Engine struct {
	logger *slog.Logger
	proc   *exec.Cmd
	conn   net.Conn

	// writeMu serializes writes to the socket
	writeMu sync.Mutex

	mu        sync.Mutex
	handler   ports.NotificationHandler
	pending   map[int64]chan ipcReply
	requestID int64
	observeID int64
	closed    bool

	readerDone chan struct{}
}

// ipcRequest is one outgoing IPC message.
type ipcRequest struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id,omitempty"`
	Async     bool  `json:"async,omitempty"`
}

// ipcReply is the reply part of an incoming message.
type ipcReply struct {
	Error     string `json:"error"`
	RequestID int64  `json:"request_id"`
}

// ipcMessage is any incoming IPC message: a command reply or an event.
type ipcMessage struct {
	Event     string          `json:"event"`
	Name      string          `json:"name"`
	Data      json.RawMessage `json:"data"`
	Level     string          `json:"level"`
	Text      string          `json:"text"`
	Error     string          `json:"error"`
	RequestID int64           `json:"request_id"`
}

// New spawns mpv, connects to its IPC socket, registers the observed
// properties, and starts the reader goroutine.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	socket := cfg.SocketPath
	if socket == "" {
		socket = filepath.Join(os.TempDir(), fmt.Sprintf("audition-mpv-%d.sock", os.Getpid()))
	}

	proc := exec.Command(cfg.Binary,
		"--idle=yes",
		"--no-video",
		"--no-terminal",
		"--input-ipc-server="+socket)
	if err := proc.Start(); err != nil {
		return nil, fmt.Errorf("start mpv: %w", err)
	}

	conn, err := dialWithRetry(socket, 5*time.Second)
	if err != nil {
		_ = proc.Process.Kill()
		_ = proc.Wait()
		return nil, fmt.Errorf("connect mpv ipc socket: %w", err)
	}

	e := &Engine{
		logger:     logger,
		proc:       proc,
		conn:       conn,
		pending:    make(map[int64]chan ipcReply),
		readerDone: make(chan struct{}),
	}

	go e.readLoop()

	for _, name := range observedProperties {
		if err := e.ObserveProperty(name); err != nil {
			_ = e.Shutdown()
			return nil, fmt.Errorf("observe %s: %w", name, err)
		}
	}

	// Route engine warnings and errors into the notification stream
	if err := e.send([]any{"request_log_messages", "warn"}, 0, false); err != nil {
		logger.Warn("failed to request engine log messages", slog.Any("error", err))
	}

	return e, nil
}

// dialWithRetry polls the socket until mpv has created it.
func dialWithRetry(socket string, timeout time.Duration) (net.Conn, error) {
	deadline := time.Now().Add(timeout)
	for {
		conn, err := net.Dial("unix", socket)
		if err == nil {
			return conn, nil
		}
		if time.Now().After(deadline) {
			return nil, err
		}
		time.Sleep(50 * time.Millisecond)
	}
}

// SetNotificationHandler installs the handler invoked for every engine
// notification. Passing nil detaches the previous handler.
func (e *Engine) SetNotificationHandler(handler ports.NotificationHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handler = handler
}

// Command issues a command and waits for mpv's reply. A non-success reply
// becomes an *domain.EngineCommandError.
func (e *Engine) Command(args ...string) error {
	if len(args) == 0 {
		return nil
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return domain.ErrEngineClosed
	}
	e.requestID++
	id := e.requestID
	replyCh := make(chan ipcReply, 1)
	e.pending[id] = replyCh
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		delete(e.pending, id)
		e.mu.Unlock()
	}()

	if err := e.send(toAny(args), id, false); err != nil {
		return err
	}

	select {
	case reply := <-replyCh:
		if reply.Error != "success" {
			return domain.NewEngineCommandError(args[0], -1, reply.Error)
		}
		return nil
	case <-time.After(commandTimeout):
		return domain.NewEngineCommandError(args[0], -1, "reply timeout")
	case <-e.readerDone:
		return domain.ErrEngineClosed
	}
}

// CommandAsync issues a fire-and-forget command. mpv still sends a reply;
// the reader drops replies nobody is waiting for.
func (e *Engine) CommandAsync(args ...string) error {
	if len(args) == 0 {
		return nil
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return domain.ErrEngineClosed
	}
	e.requestID++
	id := e.requestID
	e.mu.Unlock()

	return e.send(toAny(args), id, true)
}

// ObserveProperty registers a property for change notifications.
func (e *Engine) ObserveProperty(name string) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return domain.ErrEngineClosed
	}
	e.observeID++
	observeID := e.observeID
	e.mu.Unlock()

	// observe_property takes a numeric registration id before the name
	return e.send([]any{"observe_property", observeID, name}, 0, false)
}

// Shutdown asks mpv to quit, closes the socket and reaps the process.
// The reader delivers a final shutdown notification on its way out.
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return domain.ErrEngineClosed
	}
	e.closed = true
	e.mu.Unlock()

	if err := e.send([]any{"quit"}, 0, true); err != nil {
		e.logger.Debug("quit command failed", slog.Any("error", err))
	}

	_ = e.conn.Close()
	<-e.readerDone

	if e.proc != nil {
		if err := e.proc.Wait(); err != nil {
			e.logger.Debug("mpv exited with error", slog.Any("error", err))
		}
	}
	return nil
}

// send writes one request line to the socket.
func (e *Engine) send(command []any, requestID int64, async bool) error {
	req := ipcRequest{
		Command:   command,
		RequestID: requestID,
		Async:     async,
	}

	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode ipc request: %w", err)
	}
	data = append(data, '\n')

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	if _, err := e.conn.Write(data); err != nil {
		return fmt.Errorf("write ipc request: %w", err)
	}
	return nil
}

// readLoop decodes incoming IPC lines until the socket dies, routing replies
// to their waiters and events to the notification handler.
func (e *Engine) readLoop() {
	defer close(e.readerDone)

	scanner := bufio.NewScanner(e.conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		var msg ipcMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			e.logger.Debug("undecodable ipc line", slog.Any("error", err))
			continue
		}

		if msg.Event == "" {
			e.routeReply(ipcReply{Error: msg.Error, RequestID: msg.RequestID})
			continue
		}

		if event, ok := translateEvent(msg); ok {
			e.notify(event)
		}
	}

	// Socket gone: either Shutdown closed it or mpv died. Either way this
	// engine instance is finished.
	e.notify(domain.NewEngineShutdownEvent())
}

// routeReply hands a command reply to whoever is waiting on it.
func (e *Engine) routeReply(reply ipcReply) {
	e.mu.Lock()
	ch, ok := e.pending[reply.RequestID]
	e.mu.Unlock()

	if ok {
		select {
		case ch <- reply:
		default:
		}
	}
}

// notify invokes the handler, if any, on the reader goroutine.
func (e *Engine) notify(event domain.Event) {
	e.mu.Lock()
	handler := e.handler
	e.mu.Unlock()

	if handler != nil {
		handler(event)
	}
}

// translateEvent maps an mpv event to a domain notification.
// Events with no mapping are ignored.
func translateEvent(msg ipcMessage) (domain.Event, bool) {
	switch msg.Event {
	case "property-change":
		return translateProperty(msg)

	case "log-message":
		return domain.NewEngineLogEvent(msg.Level, msg.Text), true

	case "shutdown":
		return domain.NewEngineShutdownEvent(), true

	default:
		return nil, false
	}
}

// translateProperty maps an observed property change. Changes carrying no
// data (property became unavailable) are dropped.
func translateProperty(msg ipcMessage) (domain.Event, bool) {
	if len(msg.Data) == 0 || string(msg.Data) == "null" {
		return nil, false
	}

	switch msg.Name {
	case "time-pos":
		var v float64
		if err := json.Unmarshal(msg.Data, &v); err != nil {
			return nil, false
		}
		return domain.NewPositionEvent(v), true

	case "core-idle":
		var v bool
		if err := json.Unmarshal(msg.Data, &v); err != nil {
			return nil, false
		}
		return domain.NewIdleEvent(v), true

	case "duration":
		var v float64
		if err := json.Unmarshal(msg.Data, &v); err != nil {
			return nil, false
		}
		return domain.NewDurationEvent(v), true

	default:
		return nil, false
	}
}

// toAny widens a string argument list for JSON encoding.
func toAny(args []string) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = a
	}
	return out
}

// Verify that Engine implements the MediaEngine interface
var _ ports.MediaEngine = (*Engine)(nil)
