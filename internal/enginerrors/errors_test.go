package enginerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBackendParseFailureWraps(t *testing.T) {
	underlying := errors.New("boom")
	err := NewBackendParseFailure("foo.cc", underlying)

	assert.True(t, Is(err, KindBackendParseFailure))
	assert.False(t, Is(err, KindBusy))
	assert.ErrorIs(t, err, underlying)
	assert.Contains(t, err.Error(), "foo.cc")
}

func TestNewThreadingDisabled(t *testing.T) {
	err := NewThreadingDisabled("candidates_for_query_and_location_async")
	assert.True(t, Is(err, KindThreadingDisabled))
	assert.Contains(t, err.Error(), "candidates_for_query_and_location_async")
}

func TestNewBusy(t *testing.T) {
	err := NewBusy("diagnostics", "foo.cc")
	assert.True(t, Is(err, KindBusy))
}

func TestIsFalseForPlainError(t *testing.T) {
	assert.False(t, Is(errors.New("plain"), KindBusy))
}

func TestErrCancelledIsInterrupted(t *testing.T) {
	assert.True(t, Is(ErrCancelled, KindInterrupted))
}
