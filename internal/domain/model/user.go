package model

import (
	"errors"
	"strings"
	"time"
)

// User is an application account. Accounts are provisioned either through
// the admin screens or on the fly when an embedded platform identity is
// synced for the first time.
type User struct {
	ID           string     `json:"id"                      db:"id"`
	Email        string     `json:"email"                   db:"email"`
	FullName     *string    `json:"full_name,omitempty"     db:"full_name"`
	PasswordHash *string    `json:"-"                       db:"password_hash"`
	Admin        bool       `json:"admin"                   db:"admin"`
	CreatedAt    time.Time  `json:"created_at"              db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"              db:"updated_at"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty" db:"last_synced_at"`
}

// CreateUserRequest represents parameters to create a User.
type CreateUserRequest struct {
	Email    string  `json:"email"`
	FullName *string `json:"full_name,omitempty"`
	Password *string `json:"password,omitempty"`
	Admin    bool    `json:"admin"`
}

// UpdateUserRequest represents parameters to update a User.
type UpdateUserRequest struct {
	FullName *string `json:"full_name,omitempty"`
	Admin    *bool   `json:"admin,omitempty"`
}

// Validate validates CreateUserRequest.
func (r *CreateUserRequest) Validate() error {
	email := strings.TrimSpace(r.Email)
	if email == "" {
		return errors.New("email is required")
	}
	if !strings.Contains(email, "@") {
		return errors.New("email is not a valid address")
	}
	return nil
}

// HasUpdates reports whether any field is set in UpdateUserRequest.
func (r *UpdateUserRequest) HasUpdates() bool {
	return r.FullName != nil || r.Admin != nil
}
