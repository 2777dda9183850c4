package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	err := fmt.Errorf("handler: %w", New(CodeNotAuthorized, "users cannot exchange messages"))

	assert.Equal(t, CodeNotAuthorized, CodeOf(err))
	assert.Equal(t, "users cannot exchange messages", MessageOf(err))
	assert.True(t, errors.Is(err, NotAuthorized))
	assert.False(t, errors.Is(err, NotFound))

	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	assert.Equal(t, "internal error", MessageOf(errors.New("boom")))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := Wrap(CodeUnavailable, "storage temporarily unavailable", cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsRetryable(err))
	assert.True(t, err.Retryable())
	assert.Contains(t, err.Error(), "dial tcp")
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeAuthRequired:  http.StatusUnauthorized,
		CodeAuthInvalid:   http.StatusUnauthorized,
		CodeNotAuthorized: http.StatusForbidden,
		CodeValidation:    http.StatusBadRequest,
		CodeNotFound:      http.StatusNotFound,
		CodeUnavailable:   http.StatusServiceUnavailable,
		CodeInternal:      http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, HTTPStatus(code), code)
	}
}
