package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_HTTPStatuses(t *testing.T) {
	cases := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"validation", NewValidation("bad"), CodeValidation, http.StatusBadRequest},
		{"empty transaction", NewEmptyTransaction(), CodeEmptyTransaction, http.StatusBadRequest},
		{"invalid quantity", NewInvalidQuantity(0, -1), CodeInvalidQuantity, http.StatusBadRequest},
		{"unknown product", NewUnknownProduct("x"), CodeUnknownProduct, http.StatusBadRequest},
		{"insufficient stock", NewInsufficientStock(nil), CodeInsufficientStock, http.StatusUnprocessableEntity},
		{"commit failed", NewCommitFailed(errors.New("boom")), CodeCommitFailed, http.StatusConflict},
		{"not found", NewNotFound("product", "x"), CodeNotFound, http.StatusNotFound},
		{"conflict", NewConflict("stale"), CodeConflict, http.StatusConflict},
		{"duplicate", NewDuplicate("product", "code", "X"), CodeDuplicate, http.StatusConflict},
		{"idempotency conflict", NewIdempotencyConflict("k"), CodeIdempotency, http.StatusConflict},
		{"idempotency mismatch", NewIdempotencyMismatch("k"), CodeIdempotency, http.StatusConflict},
		{"internal", NewInternal(errors.New("boom")), CodeInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, tc.err.Code)
			assert.Equal(t, tc.status, tc.err.HTTPStatus)
		})
	}
}

func TestAppError_UnwrapChain(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewCommitFailed(cause)

	assert.ErrorIs(t, err, cause)

	// Wrapping with fmt keeps the AppError reachable via errors.As.
	wrapped := fmt.Errorf("commit: %w", err)
	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeCommitFailed, appErr.Code)
}

func TestAppError_WithDetail(t *testing.T) {
	err := NewValidation("bad").
		WithDetail("field", "quantity").
		WithDetail("line", 2)

	assert.Equal(t, "quantity", err.Details["field"])
	assert.Equal(t, 2, err.Details["line"])
}

func TestGetHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, GetHTTPStatus(NewNotFound("product", "x")))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("plain")))
}

func TestIsHelpers(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFound("product", "x")))
	assert.False(t, IsNotFound(NewConflict("stale")))
	assert.True(t, IsCommitFailed(NewCommitFailed(errors.New("x"))))
	assert.True(t, IsCode(NewValidation("x"), CodeValidation))
	assert.False(t, IsAppError(errors.New("plain")))
}

func TestAppError_ErrorString(t *testing.T) {
	err := NewCommitFailed(errors.New("deadlock detected"))
	assert.Contains(t, err.Error(), CodeCommitFailed)
	assert.Contains(t, err.Error(), "deadlock detected")
}
