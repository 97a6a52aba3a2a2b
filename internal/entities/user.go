package entities

import "time"

// User is a credentialed account. The assigned Role lives in a separate
// user_roles row; a user without one is treated as RoleUser.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
