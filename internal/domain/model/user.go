//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "time"

// PublicUser is the minimal user shape returned by login and registration.
type PublicUser struct {
	ID         int64     `json:"id"`
	DateJoined time.Time `json:"date_joined"`
}

// PrivateUser is the authenticated user's own profile. The staff flags are
// only present when the backend serialized an admin view.
type PrivateUser struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	DateJoined time.Time `json:"date_joined"`
	IsActive   *bool     `json:"is_active,omitempty"`
	IsStaff    *bool     `json:"is_staff,omitempty"`
}

// IsAdmin reports whether the user carries the staff flag.
func (u *PrivateUser) IsAdmin() bool {
	return u != nil && u.IsStaff != nil && *u.IsStaff
}

// LoginInput is the login request body.
type LoginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterInput is the registration request body.
type RegisterInput struct {
	Username             string `json:"username"              validate:"required,min=3,max=150"`
	Email                string `json:"email"                 validate:"required,email"`
	Password             string `json:"password"              validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}
