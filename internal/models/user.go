package models

import "time"

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Username is the unique handle used in profile URLs.
	Username string

	// Email is the user's email address (unique). Used for login.
	Email string

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	// Image is an opaque blob-storage key for the profile picture.
	Image string

	// Profile fields, filled when the user completes registration.
	Name      string
	Surname   string
	Location  string
	About     string
	WorkingOn string
	Interests string
	Links     string

	// IsCompleted reports whether the profile setup step was finished.
	// Incomplete profiles are hidden from listings and search.
	IsCompleted bool

	// IsPrivate hides the user's posts and friend list from non-friends.
	IsPrivate bool

	CreatedAt time.Time
}

// DisplayName is the full name shown next to posts and notifications.
func (u *User) DisplayName() string {
	if u.Surname == "" {
		return u.Name
	}
	return u.Name + " " + u.Surname
}
