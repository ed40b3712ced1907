package mapper

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"datamapper/engine"
	"datamapper/pkg/observability"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Dispatcher executes the session lifecycle for every call on one proxy:
// open a session, bind a session-local target, delegate, close. It holds
// only the configuration captured when the proxy was built — the engine
// handle and default mode of its environment — and keeps no state across
// calls.
type Dispatcher struct {
	contract      reflect.Type
	environmentID string
	engine        engine.ExecutionEngine
	mode          engine.ExecMode
	logger        *zap.Logger
	metrics       *observability.Collector
}

func newDispatcher(
	contract reflect.Type,
	environmentID string,
	eng engine.ExecutionEngine,
	mode engine.ExecMode,
	logger *zap.Logger,
	metrics *observability.Collector,
) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		contract:      contract,
		environmentID: environmentID,
		engine:        eng,
		mode:          mode,
		logger:        logger,
		metrics:       metrics,
	}
}

// Contract returns the contract type this dispatcher serves.
func (d *Dispatcher) Contract() reflect.Type {
	return d.contract
}

// EnvironmentID returns the environment this dispatcher was built against.
func (d *Dispatcher) EnvironmentID() string {
	return d.environmentID
}

// Dispatch runs one delegated call. The session is opened with the captured
// execution mode and autoRelease, so its close commits on normal completion.
// The deferred close runs on every exit path: a session is never leaked,
// whatever op returns. Errors from op propagate unchanged; an error closing
// the session after a successful op is returned instead, since autoRelease
// commits at close.
func (d *Dispatcher) Dispatch(ctx context.Context, op func(target any) error) (err error) {
	log := d.logger.With(
		zap.String("invocation_id", uuid.NewString()),
		zap.String("environment", d.environmentID),
		zap.String("contract", contractName(d.contract)),
	)

	start := time.Now()
	sess, err := d.engine.OpenSession(ctx, d.mode, true)
	if err != nil {
		log.Error("session open failed", zap.Error(err))
		d.metrics.ObserveDispatch(d.environmentID, contractName(d.contract), time.Since(start), true)
		return err
	}
	d.metrics.SessionOpened(d.environmentID, contractName(d.contract))
	log.Debug("session opened", zap.String("mode", string(d.mode)))

	defer func() {
		cerr := sess.Close()
		d.metrics.SessionReleased(d.environmentID, contractName(d.contract))
		if cerr != nil {
			log.Error("session close failed", zap.Error(cerr))
			if err == nil {
				err = cerr
			}
		} else {
			log.Debug("session released")
		}
		d.metrics.ObserveDispatch(d.environmentID, contractName(d.contract), time.Since(start), err != nil)
	}()

	target, err := sess.Bind(d.contract)
	if err != nil {
		log.Error("contract bind failed", zap.Error(err))
		return err
	}

	return op(target)
}

// Invoke delegates a call that produces a result. It asserts the session
// target to the contract interface T and forwards the original arguments via
// op, returning the delegate's result unchanged.
func Invoke[T any, R any](ctx context.Context, d *Dispatcher, op func(ctx context.Context, target T) (R, error)) (R, error) {
	var out R
	err := d.Dispatch(ctx, func(raw any) error {
		target, ok := raw.(T)
		if !ok {
			return fmt.Errorf("session target %T does not implement contract %s", raw, contractName(d.contract))
		}
		var opErr error
		out, opErr = op(ctx, target)
		return opErr
	})
	if err != nil {
		var zero R
		return zero, err
	}
	return out, nil
}

// Exec delegates a call that produces no result.
func Exec[T any](ctx context.Context, d *Dispatcher, op func(ctx context.Context, target T) error) error {
	return d.Dispatch(ctx, func(raw any) error {
		target, ok := raw.(T)
		if !ok {
			return fmt.Errorf("session target %T does not implement contract %s", raw, contractName(d.contract))
		}
		return op(ctx, target)
	})
}

// contractName renders a contract type for logs, metric labels, and errors.
func contractName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}
