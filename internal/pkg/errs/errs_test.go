package errs

import (
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"userdir/internal/pkg/logx"
)

func TestNewError_KnownCode(t *testing.T) {
	e := NewError(ErrUserNotFound)

	assert.Equal(t, ErrUserNotFound, e.Code)
	assert.Equal(t, http.StatusNotFound, e.Status)
	assert.Equal(t, "User not found", e.Message)
}

func TestNewError_UnknownCodeFallsBack(t *testing.T) {
	logx.SetOutput(io.Discard)

	e := NewError(424242)

	assert.Equal(t, ErrUnknown, e.Code)
	assert.Equal(t, http.StatusInternalServerError, e.Status)
}

func TestNewError_TemplatesAreNotShared(t *testing.T) {
	a := NewError(ErrValidationFailed)
	a.Message = "changed"

	b := NewError(ErrValidationFailed)
	assert.Equal(t, "Some fields are invalid.", b.Message)
}

func TestHasCode(t *testing.T) {
	wrapped := fmt.Errorf("remove: %w", NewError(ErrUserDeleteFailed))

	assert.True(t, HasCode(wrapped, ErrUserDeleteFailed))
	assert.False(t, HasCode(wrapped, ErrUsersFetchFailed))
	assert.False(t, HasCode(io.EOF, ErrUnknown))
}
