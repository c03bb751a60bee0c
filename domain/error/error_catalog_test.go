package error

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	cause := errors.New("disk full")
	err := ErrStorageAppend("Product_Bread", cause)

	assert.Equal(t, "STORAGE_1002: Failed to append archive entry (Storage: Product_Bread): disk full", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestIsStorageError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"open", ErrStorageOpen("x", nil), true},
		{"append", ErrStorageAppend("x", nil), true},
		{"delete", ErrStorageDelete("x", nil), true},
		{"read", ErrStorageRead("x", nil), true},
		{"destroyed", ErrStorageDestroyed("x"), true},
		{"closed", ErrStorageClosed("x"), true},
		{"wrapped", fmt.Errorf("placing order: %w", ErrStorageDestroyed("x")), true},
		{"not found", ErrNotFound("Product", "x"), false},
		{"plain", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsStorageError(tt.err))
		})
	}
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(ErrNotFound("Customer", "Kate")))
	assert.True(t, IsNotFound(fmt.Errorf("lookup: %w", ErrNotFound("Customer", "Kate"))))
	assert.False(t, IsNotFound(ErrAlreadyExists("Customer", "Kate")))
	assert.False(t, IsNotFound(errors.New("not found")))
}

func TestGetHTTPStatusCode(t *testing.T) {
	assert.Equal(t, 404, GetHTTPStatusCode(ErrNotFound("Order", "#1")))
	assert.Equal(t, 409, GetHTTPStatusCode(ErrAlreadyExists("Order", "#1")))
	assert.Equal(t, 400, GetHTTPStatusCode(ErrInvalidArgument("bad")))
	assert.Equal(t, 410, GetHTTPStatusCode(ErrStorageDestroyed("x")))
	assert.Equal(t, 503, GetHTTPStatusCode(ErrStorageRead("x", nil)))
	assert.Equal(t, 500, GetHTTPStatusCode(errors.New("boom")))
}
