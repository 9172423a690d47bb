package auth

import (
	"time"

	"carrental/internal/models"
)

// Session is the authentication state of one client. A nil User means anonymous.
type Session struct {
	ID        string       `json:"session_id,omitempty"`
	User      *models.User `json:"user,omitempty"`
	Token     string       `json:"token,omitempty"`
	ExpiresAt time.Time    `json:"expires_at,omitempty"`
}

func Anonymous() *Session {
	return &Session{}
}

func (s *Session) IsAuthenticated() bool {
	return s != nil && s.User != nil
}

func (s *Session) HasRole(role string) bool {
	return s.IsAuthenticated() && s.User.Role == role
}

func (s *Session) IsAdmin() bool {
	return s.HasRole(models.RoleAdmin)
}

// CustomerID is the customer record behind the session, 0 when there is none.
func (s *Session) CustomerID() int64 {
	if !s.IsAuthenticated() {
		return 0
	}
	return s.User.CustomerID
}
