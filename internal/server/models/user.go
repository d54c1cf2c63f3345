package models

import "time"

// User is a row of the users table.
type User struct {
	ID           string
	UserName     string
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}
