package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOfWalksWrappedChain(t *testing.T) {
	base := New(CodeUnknownID, "unknown theme id: zzz", nil)
	wrapped := fmt.Errorf("set theme: %w", base)

	assert.Equal(t, CodeUnknownID, CodeOf(wrapped))
	assert.True(t, IsCode(wrapped, CodeUnknownID), "IsCode matches through fmt.Errorf wrapping")
	assert.False(t, IsCode(wrapped, CodeDuplicateID))
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, CodeUnknown, CodeOf(errors.New("boom")))
	assert.Equal(t, CodeUnknown, CodeOf(nil))
}

func TestErrorMessageIncludesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := New(CodePersistenceFailed, "save theme selection", cause)

	assert.Equal(t, "save theme selection: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Same(t, cause, errors.Unwrap(err), "Unwrap returns the verbatim cause")
}

func TestErrorFallsBackToCode(t *testing.T) {
	assert.Equal(t, string(CodeSubscriberPanic), Error{Code: CodeSubscriberPanic}.Error())
}
