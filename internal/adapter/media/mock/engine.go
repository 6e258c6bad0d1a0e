// Package mock provides a mock implementation of the MediaEngine interface.
// This is used for testing services without spawning a real mpv process.
package mock

import (
	"sync"

	"github.com/audition-player/audition/internal/domain"
	"github.com/audition-player/audition/internal/ports"
)

// Engine is a mock implementation of the MediaEngine interface. It records
// every issued command and lets tests inject notifications, simulating the
// asynchronous property-change flow of the real backend.
//
// Thread-safety: this implementation is thread-safe.
type Engine struct {
	mu       sync.Mutex
	handler  ports.NotificationHandler
	commands [][]string
	observed []string
	closed   bool

	// failures maps a command name to the error Command returns for it
	failures map[string]error
}

// NewEngine creates a new mock media engine.
func NewEngine() *Engine {
	return &Engine{
		failures: make(map[string]error),
	}
}

// FailCommand configures Command to return err for the named command.
// Passing a nil error clears the failure.
func (m *Engine) FailCommand(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, name)
		return
	}
	m.failures[name] = err
}

// Command records the command and returns a configured failure, if any.
func (m *Engine) Command(args ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return domain.ErrEngineClosed
	}

	m.commands = append(m.commands, append([]string(nil), args...))

	if len(args) > 0 {
		if err, ok := m.failures[args[0]]; ok {
			return err
		}
	}
	return nil
}

// CommandAsync records the command. Configured failures are swallowed, as the
// real engine reports async failures only through its log notifications.
func (m *Engine) CommandAsync(args ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return domain.ErrEngineClosed
	}

	m.commands = append(m.commands, append([]string(nil), args...))
	return nil
}

// ObserveProperty records the observed property name.
func (m *Engine) ObserveProperty(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return domain.ErrEngineClosed
	}

	m.observed = append(m.observed, name)
	return nil
}

// SetNotificationHandler installs the notification handler.
func (m *Engine) SetNotificationHandler(handler ports.NotificationHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = handler
}

// Shutdown delivers a final shutdown notification and closes the engine.
func (m *Engine) Shutdown() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return domain.ErrEngineClosed
	}
	m.closed = true
	handler := m.handler
	m.mu.Unlock()

	if handler != nil {
		handler(domain.NewEngineShutdownEvent())
	}
	return nil
}

// Notify invokes the installed handler with an event, as the real engine
// would from its callback goroutine. Tests call this from any goroutine they
// want to act as the backend thread.
func (m *Engine) Notify(event domain.Event) {
	m.mu.Lock()
	handler := m.handler
	m.mu.Unlock()

	if handler != nil {
		handler(event)
	}
}

// Commands returns a copy of all recorded commands in issue order.
func (m *Engine) Commands() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([][]string, len(m.commands))
	for i, c := range m.commands {
		out[i] = append([]string(nil), c...)
	}
	return out
}

// LastCommand returns the most recently recorded command, or nil.
func (m *Engine) LastCommand() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.commands) == 0 {
		return nil
	}
	return append([]string(nil), m.commands[len(m.commands)-1]...)
}

// Observed returns the property names registered via ObserveProperty.
func (m *Engine) Observed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.observed...)
}

// Verify that Engine implements the MediaEngine interface
var _ ports.MediaEngine = (*Engine)(nil)
