package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"carrental/internal/domain"

	"github.com/gin-gonic/gin"
)

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	var verr *domain.ValidationError
	var derr *domain.DateRangeError
	switch {
	case errors.As(err, &verr), errors.As(err, &derr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAuth), errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(err error, status int) gin.H {
	if status >= http.StatusInternalServerError {
		return gin.H{"error": http.StatusText(status)}
	}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return gin.H{"error": "validation failed", "fields": verr.Fields}
	}
	return gin.H{"error": err.Error()}
}

func abort(c *gin.Context, err error) {
	status := statusFor(err)
	c.AbortWithStatusJSON(status, errorBody(err, status))
}

// fail aborts with the mapped status and logs server-side failures.
func (s *HTTPServer) fail(c *gin.Context, err error) {
	if statusFor(err) >= http.StatusInternalServerError {
		s.logger.Error().Err(err).
			Str("path", c.Request.URL.Path).
			Str("request_id", c.GetString(ctxRequestID)).
			Msg("Request failed")
	}
	abort(c, err)
}

func badRequest(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
}

func pathID(c *gin.Context) (int64, error) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("id %q: %w", raw, domain.ErrInvalidInput)
	}
	return id, nil
}
