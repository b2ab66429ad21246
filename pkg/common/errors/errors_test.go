package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/duynguyendang/geoqa/internal/manager"
	"github.com/duynguyendang/geoqa/pkg/query"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"invalid input", fmt.Errorf("%w: empty question", ErrInvalidInput), http.StatusBadRequest},
		{"invalid argument", fmt.Errorf("wrap: %w", query.ErrInvalidArgument), http.StatusBadRequest},
		{"not found", ErrNotFound, http.StatusNotFound},
		{"store unavailable", fmt.Errorf("%w: missing", manager.ErrStoreUnavailable), http.StatusServiceUnavailable},
		{"app error", NewAppError(http.StatusTeapot, "teapot", nil), http.StatusTeapot},
		{"other", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, MapError(tt.err).Code)
		})
	}
	assert.Nil(t, MapError(nil))
}

func TestAppErrorUnwrap(t *testing.T) {
	err := NewAppError(http.StatusBadRequest, "Invalid request", ErrInvalidInput)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "Invalid request: invalid input", err.Error())
	assert.Equal(t, "bare", NewAppError(500, "bare", nil).Error())
}
