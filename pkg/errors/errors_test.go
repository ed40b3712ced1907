package errors_test

import (
	stderrors "errors"
	"testing"

	apperrors "datamapper/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTaxonomy tests that each constructor produces its own error type and
// the Is helpers discriminate between them.
func TestTaxonomy(t *testing.T) {
	cfgErr := apperrors.NewConfigurationError(`environment "reporting" is not registered`)
	assert.True(t, apperrors.IsConfiguration(cfgErr))
	assert.False(t, apperrors.IsUnboundRecordType(cfgErr))
	assert.Contains(t, cfgErr.Error(), "reporting")

	unboundErr := apperrors.NewUnboundRecordTypeError("example.Account")
	assert.True(t, apperrors.IsUnboundRecordType(unboundErr))
	assert.False(t, apperrors.IsConfiguration(unboundErr))
	assert.Contains(t, unboundErr.Error(), "example.Account")

	sessErr := apperrors.NewSessionError("open", stderrors.New("pool exhausted"))
	assert.True(t, apperrors.IsSession(sessErr))
	assert.Contains(t, sessErr.Error(), "pool exhausted")
}

// TestCauseChain tests that wrapping preserves the original error for
// errors.Is and errors.As.
func TestCauseChain(t *testing.T) {
	cause := stderrors.New("disk unplugged")
	err := apperrors.NewConfigurationError("cannot read configuration").WithCause(cause)

	assert.True(t, stderrors.Is(err, cause))

	var rtErr *apperrors.RuntimeError
	require.True(t, stderrors.As(err, &rtErr))
	assert.Equal(t, apperrors.ErrorTypeConfiguration, rtErr.Type)
}

// TestWrap tests message prefixing on runtime errors and wrapping of foreign
// errors.
func TestWrap(t *testing.T) {
	assert.NoError(t, apperrors.Wrap(nil, "ignored"))

	inner := apperrors.NewConfigurationError("bad mode")
	wrapped := apperrors.Wrap(inner, "environment reporting")
	assert.True(t, apperrors.IsConfiguration(wrapped))
	assert.Contains(t, wrapped.Error(), "environment reporting: bad mode")

	foreign := stderrors.New("boom")
	wrapped = apperrors.Wrap(foreign, "delegated call")
	assert.True(t, stderrors.Is(wrapped, foreign))
	assert.True(t, apperrors.IsType(wrapped, apperrors.ErrorTypeDelegation))
}
