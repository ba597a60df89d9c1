package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"inkpad/internal/domain"

	"github.com/gin-gonic/gin"
)

const (
	userKey  = "user"
	tokenKey = "token"
)

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		s.log.InfoContext(c.Request.Context(), "HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"durationMs", time.Since(start).Milliseconds(),
			"clientIP", c.ClientIP())
	}
}

// loadUser resolves a bearer token when one is sent. Anonymous requests
// pass through; requireUser rejects them on protected routes.
func (s *Server) loadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.Next()

			return
		}

		user, err := s.svc.Authenticate(c.Request.Context(), token)
		switch {
		case err == nil:
			c.Set(userKey, user)
			c.Set(tokenKey, token)
		case !errors.Is(err, domain.ErrUnauthorized):
			s.respondError(c, "authenticate", err)

			return
		}

		c.Next()
	}
}

func (s *Server) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c) == nil {
			Unauthorized(c, "login required")

			return
		}

		c.Next()
	}
}

func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			JSONError(c, http.StatusRequestEntityTooLarge, "payload_too_large",
				"upload exceeds "+strconv.FormatInt(n, 10)+" bytes")

			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}

func currentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}

	user, _ := v.(*domain.User)

	return user
}

// viewerID is zero for anonymous requests.
func viewerID(c *gin.Context) int64 {
	if user := currentUser(c); user != nil {
		return user.ID
	}

	return 0
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}

	return strings.TrimSpace(token)
}
