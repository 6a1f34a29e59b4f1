package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorStatusCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
		wantCode int
	}{
		{
			name:     "not found",
			err:      NewNotFoundError("Election not found"),
			wantType: ErrorTypeNotFound,
			wantCode: http.StatusNotFound,
		},
		{
			name:     "conflict",
			err:      NewConflictError("You have already voted in this election"),
			wantType: ErrorTypeConflict,
			wantCode: http.StatusConflict,
		},
		{
			name:     "invalid state",
			err:      NewInvalidStateError("Voting is only allowed during ongoing elections"),
			wantType: ErrorTypeInvalidState,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "validation",
			err:      NewValidationError("Invalid candidate", nil),
			wantType: ErrorTypeValidation,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "authorization",
			err:      NewAuthorizationError("Not eligible to vote in this election"),
			wantType: ErrorTypeAuthorization,
			wantCode: http.StatusForbidden,
		},
		{
			name:     "authentication",
			err:      NewAuthenticationError("Invalid or expired token"),
			wantType: ErrorTypeAuthentication,
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "internal",
			err:      NewInternalError("Server error", fmt.Errorf("connection refused")),
			wantType: ErrorTypeInternal,
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantCode, tt.err.StatusCode)
		})
	}
}

func TestAsAppError(t *testing.T) {
	appErr := NewConflictError("duplicate vote")

	wrapped := fmt.Errorf("cast vote: %w", appErr)
	got, ok := AsAppError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, ErrorTypeConflict, got.Type)

	_, ok = AsAppError(fmt.Errorf("plain error"))
	assert.False(t, ok)
}

func TestErrorMessageIncludesInternal(t *testing.T) {
	err := NewInternalError("Server error", fmt.Errorf("timeout"))
	assert.Contains(t, err.Error(), "timeout")
	assert.Equal(t, "timeout", err.Unwrap().Error())
}
