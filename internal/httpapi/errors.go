package httpapi

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"inkpad/internal/blog"
	"inkpad/internal/domain"

	"github.com/gin-gonic/gin"
)

// APIError is the body of every error response:
// {"error": {"code": "bad_request", "message": "..."}}.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error APIError `json:"error"`
}

func JSONError(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: APIError{Code: code, Message: msg}})
}

func BadRequest(c *gin.Context, msg string) {
	JSONError(c, http.StatusBadRequest, "bad_request", msg)
}

func Unauthorized(c *gin.Context, msg string) {
	JSONError(c, http.StatusUnauthorized, "unauthorized", msg)
}

func NotFound(c *gin.Context, msg string) {
	JSONError(c, http.StatusNotFound, "not_found", msg)
}

func Internal(c *gin.Context, msg string) {
	JSONError(c, http.StatusInternalServerError, "internal_error", msg)
}

// respondError maps service errors onto HTTP statuses. Unknown errors are
// logged and hidden behind a generic message.
func (s *Server) respondError(c *gin.Context, operation string, err error) {
	var (
		blocked  *blog.LoginBlockedError
		tooLarge *http.MaxBytesError
	)

	switch {
	case errors.As(err, &blocked):
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(blocked.RetryAfter.Seconds()))))
		JSONError(c, http.StatusTooManyRequests, "rate_limited", err.Error())
	case errors.As(err, &tooLarge):
		JSONError(c, http.StatusRequestEntityTooLarge, "payload_too_large", "upload exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
	case errors.Is(err, domain.ErrInvalidInput):
		BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		Unauthorized(c, "invalid credentials")
	case errors.Is(err, domain.ErrForbidden):
		JSONError(c, http.StatusForbidden, "forbidden", "not allowed")
	case errors.Is(err, domain.ErrNotFound):
		NotFound(c, "not found")
	case errors.Is(err, domain.ErrConflict):
		JSONError(c, http.StatusConflict, "conflict", "already exists")
	default:
		s.log.ErrorContext(c.Request.Context(), "Failed to handle request",
			"error", err,
			"method", c.Request.Method,
			"operation", operation,
			"path", c.FullPath())

		Internal(c, operation+" failed")
	}
}
