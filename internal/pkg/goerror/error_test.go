package goerror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_StatusCode(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeInvalidFormat, http.StatusBadRequest},
		{CodeInvalidInput, http.StatusUnprocessableEntity},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeTooManyRequest, http.StatusTooManyRequests},
		{CodeGone, http.StatusGone},
		{CodeExpired, http.StatusGone},
		{CodeLocked, http.StatusLocked},
		{CodeDeliveryFailed, http.StatusBadGateway},
		{CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			var gerr *Error
			require.ErrorAs(t, NewBusiness("x", tt.code), &gerr)
			assert.Equal(t, tt.want, gerr.StatusCode())
		})
	}
}

func TestNewBusinessWrap(t *testing.T) {
	sentinel := errors.New("approval: too soon")

	err := NewBusinessWrap(sentinel, "Please wait before requesting a new code", CodeTooManyRequest,
		"retry_after_seconds", "12")

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, "Please wait before requesting a new code", err.Error())

	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, TypeBusiness, gerr.Type())
	assert.Equal(t, map[string]string{"retry_after_seconds": "12"}, gerr.Fields())
}

func TestNewServer_KeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := NewServer(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause.Error(), err.Error())
}
