package api

import (
	"strings"
	"time"

	"carrental/internal/auth"
	"carrental/internal/config"
	"carrental/internal/domain"
	"carrental/internal/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sessionCookie   = "session-id"
	requestIDHeader = "X-Request-ID"

	ctxSession   = "session"
	ctxRequestID = "request_id"
)

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (s *HTTPServer) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.ObserveHTTP(route, status, elapsed)

		ev := s.logger.Info()
		if status >= 500 {
			ev = s.logger.Error()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("dur", elapsed).
			Str("request_id", c.GetString(ctxRequestID)).
			Msg("http")
	}
}

func corsMiddleware(cfg config.APICORSConfig) gin.HandlerFunc {
	cc := cors.DefaultConfig()
	cc.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	cc.AllowHeaders = append(cc.AllowHeaders, "Authorization", requestIDHeader)
	cc.ExposeHeaders = []string{requestIDHeader, "Content-Disposition"}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = origins
		cc.AllowCredentials = true
	}
	return cors.New(cc)
}

func (s *HTTPServer) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.allow(c.ClientIP()) {
			s.fail(c, domain.ErrRateLimited)
			return
		}
		c.Next()
	}
}

// sessionMiddleware attaches the caller's session: the session cookie first,
// then a bearer token. Anything unresolvable is anonymous.
func (s *HTTPServer) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		sess := auth.Anonymous()

		if id, err := c.Cookie(sessionCookie); err == nil && id != "" {
			restored, err := s.svc.Auth.Restore(ctx, id)
			if err != nil {
				s.fail(c, err)
				return
			}
			sess = restored
		}
		if token := bearerToken(c); !sess.IsAuthenticated() && token != "" {
			restored, err := s.svc.Auth.RestoreToken(ctx, token)
			if err != nil {
				s.fail(c, err)
				return
			}
			sess = restored
		}

		c.Set(ctxSession, sess)
		c.Next()
	}
}

func requireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !session(c).IsAuthenticated() {
			abort(c, domain.ErrUnauthenticated)
			return
		}
		c.Next()
	}
}

func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session(c)
		if !sess.IsAuthenticated() {
			abort(c, domain.ErrUnauthenticated)
			return
		}
		if !sess.IsAdmin() {
			abort(c, domain.ErrForbidden)
			return
		}
		c.Next()
	}
}

func session(c *gin.Context) *auth.Session {
	if v, ok := c.Get(ctxSession); ok {
		if sess, ok := v.(*auth.Session); ok {
			return sess
		}
	}
	return auth.Anonymous()
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}
