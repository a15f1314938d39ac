package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "message only",
			err:  &AppError{Message: "staging upload rejected"},
			want: "staging upload rejected",
		},
		{
			name: "message with cause",
			err: &AppError{
				Message: "staging upload rejected",
				Cause:   stderrors.New("connection refused"),
			},
			want: "staging upload rejected: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := stderrors.New("dial tcp: connection refused")
	err := ErrStagingFailed("staging upload rejected", cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.Nil(t, ErrExportBusy(nil).Unwrap())
}

func TestAppError_Is(t *testing.T) {
	t.Run("same code matches regardless of message", func(t *testing.T) {
		a := ErrStagingFailed("upload returned 500", nil)
		b := ErrStagingFailed("malformed response body", stderrors.New("eof"))
		assert.ErrorIs(t, a, b)
	})

	t.Run("different codes do not match", func(t *testing.T) {
		assert.NotErrorIs(t, ErrStagingFailed("x", nil), ErrLaunchFailed("x", nil))
	})

	t.Run("empty codes never match each other", func(t *testing.T) {
		a := &AppError{Message: "one"}
		b := &AppError{Message: "two"}
		assert.NotErrorIs(t, a, b)
	})

	t.Run("non-AppError target does not match", func(t *testing.T) {
		assert.NotErrorIs(t, ErrExportBusy(nil), stderrors.New("EXPORT_BUSY"))
	})
}

func TestConstructors(t *testing.T) {
	cause := stderrors.New("boom")

	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"bad request", ErrBadRequest("bad input", cause), ErrCodeInvalidRequest, http.StatusBadRequest},
		{"not found", ErrNotFound("no such share", nil), ErrCodeNotFound, http.StatusNotFound},
		{"conflict", ErrConflict("already staged", nil), ErrCodeConflict, http.StatusConflict},
		{"export busy", ErrExportBusy(nil), ErrCodeExportBusy, http.StatusConflict},
		{"export failed", ErrExportFailed("model has no triangles", cause), ErrCodeExportFailed, http.StatusUnprocessableEntity},
		{"format unsupported", ErrFormatUnsupported("step"), ErrCodeFormatUnsupported, http.StatusBadRequest},
		{"app not found", ErrAppNotFound("slic3r"), ErrCodeAppNotFound, http.StatusNotFound},
		{"fetch original failed", ErrFetchOriginalFailed("fetch returned 404", cause), ErrCodeFetchOriginalFailed, http.StatusBadGateway},
		{"staging failed", ErrStagingFailed("upload returned 500", cause), ErrCodeStagingFailed, http.StatusBadGateway},
		{"launch failed", ErrLaunchFailed("opener exited non-zero", cause), ErrCodeLaunchFailed, http.StatusServiceUnavailable},
		{"internal", ErrInternalError("unexpected", cause), ErrCodeInternalError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotNil(t, tt.err)
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
			assert.NotEmpty(t, tt.err.Message)
		})
	}

	t.Run("format unsupported names the format", func(t *testing.T) {
		assert.Contains(t, ErrFormatUnsupported("step").Message, "step")
	})

	t.Run("app not found names the app", func(t *testing.T) {
		assert.Contains(t, ErrAppNotFound("slic3r").Message, "slic3r")
	})
}

func TestConstructorRangeGuards(t *testing.T) {
	assert.Panics(t, func() {
		NewClientError(http.StatusInternalServerError, ErrCodeInvalidRequest, "not a client status", nil)
	})
	assert.Panics(t, func() {
		NewServerError(http.StatusBadRequest, ErrCodeInternalError, "not a server status", nil)
	})

	assert.NotPanics(t, func() {
		NewClientError(http.StatusConflict, ErrCodeConflict, "inside the client range", nil)
		NewServerError(http.StatusNotImplemented, ErrCodeInternalError, "inside the server range", nil)
	})
}

func TestGetStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusBadGateway, GetStatusCode(ErrStagingFailed("upload failed", nil)))

	wrapped := fmt.Errorf("sending benchy.stl: %w", ErrLaunchFailed("opener exited", nil))
	assert.Equal(t, http.StatusServiceUnavailable, GetStatusCode(wrapped))

	assert.Equal(t, http.StatusInternalServerError, GetStatusCode(stderrors.New("plain")))
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeExportFailed, GetErrorCode(ErrExportFailed("encode failed", nil)))

	wrapped := fmt.Errorf("coordinator: %w", ErrExportBusy(nil))
	assert.Equal(t, ErrCodeExportBusy, GetErrorCode(wrapped))

	assert.Empty(t, GetErrorCode(stderrors.New("plain")))
}

func TestGetErrorMessage(t *testing.T) {
	err := ErrStagingFailed("staging upload rejected", stderrors.New("connection refused"))
	assert.Equal(t, "staging upload rejected", GetErrorMessage(err))

	assert.Equal(t, "plain failure", GetErrorMessage(stderrors.New("plain failure")))
}

func TestGetErrorDetails(t *testing.T) {
	t.Run("cause wins when present", func(t *testing.T) {
		err := ErrFetchOriginalFailed("fetch failed", stderrors.New("status 404"))
		assert.Equal(t, "status 404", GetErrorDetails(err))
	})

	t.Run("message without a cause", func(t *testing.T) {
		assert.Equal(t, "fetch failed", GetErrorDetails(ErrFetchOriginalFailed("fetch failed", nil)))
	})

	t.Run("plain error", func(t *testing.T) {
		assert.Equal(t, "plain failure", GetErrorDetails(stderrors.New("plain failure")))
	})
}

func TestErrorWrappingThroughCallSites(t *testing.T) {
	// The coordinator wraps staging errors with request context; callers
	// still detect the class by code.
	cause := ErrStagingFailed("upload returned 500", nil)
	wrapped := fmt.Errorf("staging benchy.stl: %w", cause)

	assert.ErrorIs(t, wrapped, ErrStagingFailed("", nil))

	var appErr *AppError
	require.ErrorAs(t, wrapped, &appErr)
	assert.Equal(t, ErrCodeStagingFailed, appErr.Code)
}
