// Package engine defines the interface boundary between the mapper runtime
// and the external session/execution engine. The engine owns connection
// pooling, SQL execution, and result materialization; this package only
// specifies what the runtime needs from it.
package engine

import (
	"context"
	"fmt"
	"reflect"
)

// ExecMode selects how an engine executes the statements issued through a
// session.
type ExecMode string

const (
	// ExecModeImmediate executes each statement as it is issued.
	ExecModeImmediate ExecMode = "immediate"

	// ExecModeBatched buffers statements and flushes them together.
	ExecModeBatched ExecMode = "batched"
)

// ParseExecMode converts a configuration string into an ExecMode. An empty
// string selects ExecModeImmediate.
func ParseExecMode(s string) (ExecMode, error) {
	switch ExecMode(s) {
	case "":
		return ExecModeImmediate, nil
	case ExecModeImmediate, ExecModeBatched:
		return ExecMode(s), nil
	default:
		return "", fmt.Errorf("unknown execution mode %q", s)
	}
}

// Session is a short-lived execution context. It is owned by exactly one
// in-flight mapper call and must be closed on every exit path of that call.
type Session interface {
	// Bind returns the session-scoped implementation of the given contract
	// type. The returned value implements the same operations as the mapper
	// contract interface identified by contractType.
	Bind(contractType reflect.Type) (any, error)

	// Close releases the session. When the session was opened with
	// autoRelease, closing commits any pending work. Close is idempotent.
	Close() error
}

// ExecutionEngine opens sessions. One engine handle backs one environment;
// the handle is expected to live for the process lifetime.
type ExecutionEngine interface {
	// OpenSession creates a new session. With autoRelease true the session
	// commits automatically when closed after normal completion.
	OpenSession(ctx context.Context, mode ExecMode, autoRelease bool) (Session, error)
}
