package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New("test error")
	require.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestWrap(t *testing.T) {
	original := New("original")
	wrapped := Wrap(original, "wrapped")

	assert.Contains(t, wrapped.Error(), "wrapped")
	assert.Contains(t, wrapped.Error(), "original")
	assert.True(t, Is(wrapped, original))
}

func TestWrapKeepsStackTrace(t *testing.T) {
	err := Wrap(New("boom"), "load actor")
	detailed := fmt.Sprintf("%+v", err)
	assert.Contains(t, detailed, "errors_test.go")
}

func TestNotFoundHelpers(t *testing.T) {
	err := NewNotFoundError("actor %s", "abc")
	assert.True(t, IsNotFoundError(err))
	assert.False(t, IsInvalidRequestError(err))
	assert.Contains(t, err.Error(), "actor abc")

	wrapped := Wrapf(err, "handler")
	assert.True(t, IsNotFoundError(wrapped))
	assert.False(t, IsNotFoundError(nil))
}

func TestInvalidRequestHelpers(t *testing.T) {
	err := NewInvalidRequestError("bad range %q", "19x0-2000")
	assert.True(t, IsInvalidRequestError(err))
	assert.False(t, IsNotFoundError(err))
}

func TestWrapServiceUnavailable(t *testing.T) {
	cause := New("connection refused")
	err := WrapServiceUnavailable(cause, "fetch actor")

	assert.True(t, IsServiceUnavailableError(err))
	assert.Contains(t, err.Error(), "fetch actor")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestHints(t *testing.T) {
	err := WithHint(New("store closed"), "restart the server")
	assert.Contains(t, GetAllHints(err), "restart the server")
}
