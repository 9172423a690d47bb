package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"carrental/internal/config"
	"carrental/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestStatusForMapping(t *testing.T) {
	verr := domain.NewValidationError()
	verr.Add("email", "is required")

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", verr, http.StatusUnprocessableEntity},
		{"date range", &domain.DateRangeError{Reason: "x"}, http.StatusUnprocessableEntity},
		{"not found", domain.NotFound("car", 1), http.StatusNotFound},
		{"auth", domain.ErrAuth, http.StatusUnauthorized},
		{"unauthenticated", domain.ErrUnauthenticated, http.StatusUnauthorized},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden},
		{"invalid input", fmt.Errorf("wrap: %w", domain.ErrInvalidInput), http.StatusBadRequest},
		{"transition", fmt.Errorf("wrap: %w", domain.ErrInvalidTransition), http.StatusConflict},
		{"rate limited", domain.ErrRateLimited, http.StatusTooManyRequests},
		{"deadline", context.DeadlineExceeded, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestErrorBodyHidesInternals(t *testing.T) {
	body := errorBody(errors.New("db password leaked"), http.StatusInternalServerError)
	assert.Equal(t, "Internal Server Error", body["error"])

	verr := domain.NewValidationError()
	verr.Add("phone", "is invalid")
	body = errorBody(verr, http.StatusUnprocessableEntity)
	assert.Equal(t, map[string]string{"phone": "is invalid"}, body["fields"])
}

func TestRateLimiterPerKey(t *testing.T) {
	l := newRateLimiter(config.APIRateLimitConfig{RPS: 0.001, Burst: 1})
	assert.True(t, l.allow("a"))
	assert.False(t, l.allow("a"))
	assert.True(t, l.allow("b"))

	off := newRateLimiter(config.APIRateLimitConfig{})
	for i := 0; i < 100; i++ {
		assert.True(t, off.allow("a"))
	}
}
