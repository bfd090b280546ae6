package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataForKnownCodes(t *testing.T) {
	t.Parallel()

	meta := MetadataFor(CodeValidation)
	assert.Equal(t, http.StatusBadRequest, meta.HTTPStatus)
	assert.False(t, meta.Retryable)

	meta = MetadataFor(CodeConcurrency)
	assert.Equal(t, http.StatusConflict, meta.HTTPStatus)
	assert.True(t, meta.Retryable)

	meta = MetadataFor(CodePayment)
	assert.Equal(t, http.StatusPaymentRequired, meta.HTTPStatus)
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	t.Parallel()

	meta := MetadataFor(Code("SOMETHING_ELSE"))
	assert.Equal(t, http.StatusInternalServerError, meta.HTTPStatus)
}

func TestWrapPreservesCause(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("row locked")
	err := Wrap(CodeConcurrency, cause, "checkout lock")
	require.NotNil(t, err)
	assert.Equal(t, CodeConcurrency, err.Code())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "CONCURRENCY_ERROR: checkout lock", err.Error())
}

func TestAsUnwrapsNestedError(t *testing.T) {
	t.Parallel()

	inner := New(CodeStateConflict, "cannot complete from PENDING")
	wrapped := fmt.Errorf("transition failed: %w", inner)

	typed := As(wrapped)
	require.NotNil(t, typed)
	assert.Equal(t, CodeStateConflict, typed.Code())

	assert.Nil(t, As(fmt.Errorf("plain")))
	assert.Nil(t, As(nil))
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	assert.True(t, IsRetryable(New(CodeConcurrency, "lock wait timeout")))
	assert.False(t, IsRetryable(New(CodeValidation, "bad range")))
	assert.False(t, IsRetryable(fmt.Errorf("untyped")))
}
