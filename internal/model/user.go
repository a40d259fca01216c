package model

import "time"

// UserID uniquely identifies a user across the system
type UserID string

// User is an account that can log in and join rooms.
// Usernames are unique and immutable after creation.
type User struct {
	ID        UserID
	Username  string
	CreatedAt time.Time
}
