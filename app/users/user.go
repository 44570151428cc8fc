// Package users is the demo user service: an in-memory repository and a
// service that creates users and sends them a welcome email.
package users

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no user has the requested id.
	ErrNotFound = errors.New("users: user not found")
	// ErrEmailTaken is returned when another user already has the email.
	ErrEmailTaken = errors.New("users: email already taken")
)

// User is a registered user.
type User struct {
	ID        uuid.UUID `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Email     string    `json:"email" yaml:"email"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
