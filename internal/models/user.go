package models

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is an authenticated identity. Admins carry no customer record.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	CustomerID   int64     `json:"customer_id,omitempty"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

type Customer struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	JoinDate      time.Time `json:"join_date"`
	TotalBookings int       `json:"total_bookings"` // not maintained automatically
	Status        string    `json:"status"`
}
