// Package enginetest provides an in-memory ExecutionEngine with
// open/close/bind probes for testing the mapper runtime.
package enginetest

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"datamapper/engine"
)

// Engine is a fake execution engine. Session-scoped targets are registered
// per contract type; every opened session is retained so tests can assert on
// its lifecycle.
type Engine struct {
	mu       sync.Mutex
	targets  map[reflect.Type]any
	sessions []*Session
	opened   int
	closed   int

	// OpenErr, when set, makes OpenSession fail without producing a session.
	OpenErr error
	// BindErr, when set, makes Session.Bind fail on every session.
	BindErr error
	// CloseErr, when set, makes Session.Close fail (still counted as closed).
	CloseErr error
}

// New creates an empty fake engine
func New() *Engine {
	return &Engine{targets: make(map[reflect.Type]any)}
}

// RegisterTarget installs the session-scoped implementation returned by
// Session.Bind for a contract type.
func (e *Engine) RegisterTarget(contractType reflect.Type, target any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.targets[contractType] = target
}

// OpenSession implements engine.ExecutionEngine.
func (e *Engine) OpenSession(_ context.Context, mode engine.ExecMode, autoRelease bool) (engine.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.OpenErr != nil {
		return nil, e.OpenErr
	}

	e.opened++
	s := &Session{engine: e, Mode: mode, AutoRelease: autoRelease}
	e.sessions = append(e.sessions, s)
	return s, nil
}

// OpenCount returns how many sessions were opened.
func (e *Engine) OpenCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opened
}

// CloseCount returns how many sessions were closed. Idempotent closes count
// once.
func (e *Engine) CloseCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Sessions returns every session opened so far, in order.
func (e *Engine) Sessions() []*Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Session(nil), e.sessions...)
}

// Session is a fake engine session.
type Session struct {
	engine      *Engine
	Mode        engine.ExecMode
	AutoRelease bool

	mu        sync.Mutex
	closed    bool
	bindCalls int
}

// Bind implements engine.Session.
func (s *Session) Bind(contractType reflect.Type) (any, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, fmt.Errorf("bind on closed session")
	}
	s.bindCalls++
	s.mu.Unlock()

	s.engine.mu.Lock()
	defer s.engine.mu.Unlock()

	if s.engine.BindErr != nil {
		return nil, s.engine.BindErr
	}
	target, ok := s.engine.targets[contractType]
	if !ok {
		return nil, fmt.Errorf("no target registered for contract %s", contractType)
	}
	return target, nil
}

// Close implements engine.Session. Closing twice is safe and counts once.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.engine.mu.Lock()
	defer s.engine.mu.Unlock()
	s.engine.closed++
	return s.engine.CloseErr
}

// Closed reports whether the session has been closed.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// BindCalls returns how many times Bind was invoked on this session.
func (s *Session) BindCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bindCalls
}
