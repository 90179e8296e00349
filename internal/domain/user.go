package domain

import "time"

// User is the opaque identity handed out by the identity provider.
type User struct {
	ID    string
	Email string
}

// Profile is the user-editable part of users/{uid}.
type Profile struct {
	UserID      string
	Name        string
	PhoneNumber string
	Email       string

	UpdatedAt time.Time
}
