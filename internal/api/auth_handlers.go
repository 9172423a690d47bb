package api

import (
	"net/http"

	"carrental/internal/auth"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *HTTPServer) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, badRequest(err))
		return
	}
	sess, err := s.svc.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.setSessionCookie(c, sess)
	c.JSON(http.StatusOK, sessionBody(sess))
}

func (s *HTTPServer) register(c *gin.Context) {
	var req auth.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, badRequest(err))
		return
	}
	sess, err := s.svc.Auth.RegisterAndLogin(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.setSessionCookie(c, sess)
	c.JSON(http.StatusCreated, sessionBody(sess))
}

func (s *HTTPServer) logout(c *gin.Context) {
	if err := s.svc.Auth.Logout(c.Request.Context(), session(c).ID); err != nil {
		s.fail(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, "", -1, "/", "", s.authCfg.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *HTTPServer) me(c *gin.Context) {
	sess := session(c)
	c.JSON(http.StatusOK, gin.H{"user": sess.User, "expires_at": sess.ExpiresAt})
}

func (s *HTTPServer) setSessionCookie(c *gin.Context, sess *auth.Session) {
	maxAge := int(sess.ExpiresAt.Sub(s.now()).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, sess.ID, maxAge, "/", "", s.authCfg.CookieSecure, true)
}

func sessionBody(sess *auth.Session) gin.H {
	return gin.H{
		"success":    true,
		"user":       sess.User,
		"token":      sess.Token,
		"expires_at": sess.ExpiresAt,
	}
}
