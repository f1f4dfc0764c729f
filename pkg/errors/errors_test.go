package errors_test

import (
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Aidin1998/wallet_system/pkg/errors"
)

func TestErrorKinds(t *testing.T) {
	err := errors.Status.WithStatus(http.StatusNotFound).Explain("Wallet with ID %s not found", "w1")

	assert.True(t, errors.Is(err, errors.Status))
	assert.False(t, errors.Is(err, errors.Transport))
	assert.Equal(t, errors.KindStatus, errors.KindOf(err))
	assert.Equal(t, "[Status] 404 Not Found Wallet with ID w1 not found", err.Error())
}

func TestWrapKeepsCause(t *testing.T) {
	err := errors.Transport.Wrap(io.ErrUnexpectedEOF)

	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, errors.KindTransport, errors.KindOf(err))
	assert.Empty(t, errors.Transport.Unwrap(), "sentinel must not be mutated")
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, errors.KindUnknown, errors.KindOf(io.EOF))
}
