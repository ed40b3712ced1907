package mapper

import (
	"context"
	"errors"
	"testing"

	"datamapper/engine"
	"datamapper/engine/enginetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// greeter is a minimal contract for exercising the dispatcher directly.
type greeter interface {
	Greet(ctx context.Context, name string) (string, error)
}

type greeterTarget struct {
	err error
}

func (g *greeterTarget) Greet(_ context.Context, name string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return "hello " + name, nil
}

func newGreeterDispatcher(eng *enginetest.Engine, mode engine.ExecMode) *Dispatcher {
	return newDispatcher(TypeOf[greeter](), "default", eng, mode, nil, nil)
}

// TestDispatchSuccess tests the normal traversal: open, bind, delegate,
// close, result passed through unchanged.
func TestDispatchSuccess(t *testing.T) {
	eng := enginetest.New()
	eng.RegisterTarget(TypeOf[greeter](), &greeterTarget{})
	d := newGreeterDispatcher(eng, engine.ExecModeBatched)

	got, err := Invoke(context.Background(), d, func(ctx context.Context, g greeter) (string, error) {
		return g.Greet(ctx, "world")
	})
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)

	assert.Equal(t, 1, eng.OpenCount())
	assert.Equal(t, 1, eng.CloseCount())

	sessions := eng.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, engine.ExecModeBatched, sessions[0].Mode)
	assert.True(t, sessions[0].AutoRelease)
	assert.Equal(t, 1, sessions[0].BindCalls())
}

// TestDispatchDelegateError tests that a failing delegate surfaces its exact
// error value and the session is still released.
func TestDispatchDelegateError(t *testing.T) {
	wantErr := errors.New("constraint violation")
	eng := enginetest.New()
	eng.RegisterTarget(TypeOf[greeter](), &greeterTarget{err: wantErr})
	d := newGreeterDispatcher(eng, engine.ExecModeImmediate)

	_, err := Invoke(context.Background(), d, func(ctx context.Context, g greeter) (string, error) {
		return g.Greet(ctx, "world")
	})
	require.Error(t, err)
	assert.Equal(t, wantErr, err)

	assert.Equal(t, 1, eng.OpenCount())
	assert.Equal(t, 1, eng.CloseCount())
	assert.True(t, eng.Sessions()[0].Closed())
}

// TestDispatchOpenError tests that an engine that cannot open a session
// surfaces the failure with nothing to release and nothing delegated.
func TestDispatchOpenError(t *testing.T) {
	openErr := errors.New("pool exhausted")
	eng := enginetest.New()
	eng.OpenErr = openErr
	d := newGreeterDispatcher(eng, engine.ExecModeImmediate)

	delegated := false
	err := d.Dispatch(context.Background(), func(any) error {
		delegated = true
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, openErr, err)
	assert.False(t, delegated)
	assert.Zero(t, eng.OpenCount())
	assert.Zero(t, eng.CloseCount())
}

// TestDispatchBindError tests that a bind failure propagates and the session
// opened for the call is still released.
func TestDispatchBindError(t *testing.T) {
	bindErr := errors.New("contract not known to engine")
	eng := enginetest.New()
	eng.BindErr = bindErr
	d := newGreeterDispatcher(eng, engine.ExecModeImmediate)

	delegated := false
	err := d.Dispatch(context.Background(), func(any) error {
		delegated = true
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, bindErr, err)
	assert.False(t, delegated)
	assert.Equal(t, 1, eng.OpenCount())
	assert.Equal(t, 1, eng.CloseCount())
}

// TestDispatchCloseError tests the close failure cases: after a successful
// delegate the close error is returned, since autoRelease commits at close;
// after a failed delegate the delegate's error wins.
func TestDispatchCloseError(t *testing.T) {
	closeErr := errors.New("commit failed")

	t.Run("after success", func(t *testing.T) {
		eng := enginetest.New()
		eng.CloseErr = closeErr
		eng.RegisterTarget(TypeOf[greeter](), &greeterTarget{})
		d := newGreeterDispatcher(eng, engine.ExecModeImmediate)

		_, err := Invoke(context.Background(), d, func(ctx context.Context, g greeter) (string, error) {
			return g.Greet(ctx, "world")
		})
		require.Error(t, err)
		assert.Equal(t, closeErr, err)
		assert.Equal(t, 1, eng.CloseCount())
	})

	t.Run("after delegate error", func(t *testing.T) {
		delegateErr := errors.New("constraint violation")
		eng := enginetest.New()
		eng.CloseErr = closeErr
		eng.RegisterTarget(TypeOf[greeter](), &greeterTarget{err: delegateErr})
		d := newGreeterDispatcher(eng, engine.ExecModeImmediate)

		_, err := Invoke(context.Background(), d, func(ctx context.Context, g greeter) (string, error) {
			return g.Greet(ctx, "world")
		})
		require.Error(t, err)
		assert.Equal(t, delegateErr, err)
		assert.Equal(t, 1, eng.CloseCount())
	})
}

// TestDispatchSessionPerCall tests that every call owns exactly one session
// and no state survives between calls.
func TestDispatchSessionPerCall(t *testing.T) {
	eng := enginetest.New()
	eng.RegisterTarget(TypeOf[greeter](), &greeterTarget{})
	d := newGreeterDispatcher(eng, engine.ExecModeImmediate)

	for i := 0; i < 5; i++ {
		_, err := Invoke(context.Background(), d, func(ctx context.Context, g greeter) (string, error) {
			return g.Greet(ctx, "again")
		})
		require.NoError(t, err)
	}

	assert.Equal(t, 5, eng.OpenCount())
	assert.Equal(t, 5, eng.CloseCount())
	for _, s := range eng.Sessions() {
		assert.True(t, s.Closed())
		assert.Equal(t, 1, s.BindCalls())
	}
}

// TestInvokeTargetMismatch tests the defense against an engine handing back
// a target that does not implement the contract.
func TestInvokeTargetMismatch(t *testing.T) {
	eng := enginetest.New()
	eng.RegisterTarget(TypeOf[greeter](), "not a greeter")
	d := newGreeterDispatcher(eng, engine.ExecModeImmediate)

	_, err := Invoke(context.Background(), d, func(ctx context.Context, g greeter) (string, error) {
		return g.Greet(ctx, "world")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not implement contract")
	assert.Equal(t, 1, eng.CloseCount())
}
