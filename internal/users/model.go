package users

import (
	"errors"
	"time"
)

// ErrNotFound is returned when no account exists for an id.
var ErrNotFound = errors.New("user not found")

// Identity is what the identity provider tells us at sign-in.
type Identity struct {
	ID      string
	Email   string
	Name    string
	Picture string
}

// User is a signed-in account plus its self-service profile.
type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"fullName"`
	Picture    string    `json:"pictureUrl,omitempty"`
	JobTitle   string    `json:"jobTitle"`
	Department string    `json:"department"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Profile holds the fields a user edits themselves.
type Profile struct {
	JobTitle   string `json:"jobTitle" validate:"max=120"`
	Department string `json:"department" validate:"max=120"`
}
