package model

import (
	"errors"
	"strings"
	"time"
)

// SupplierContact is a feedback recipient attached to a supplier.
type SupplierContact struct {
	ID         string    `json:"id"                 db:"id"`
	SupplierID string    `json:"supplier_id"        db:"supplier_id"`
	Name       string    `json:"name"               db:"name"`
	Email      *string   `json:"email,omitempty"    db:"email"`
	WhatsApp   *string   `json:"whatsapp,omitempty" db:"whatsapp"`
	CreatedAt  time.Time `json:"created_at"         db:"created_at"`
}

// CreateContactRequest represents parameters to create a SupplierContact.
type CreateContactRequest struct {
	SupplierID string  `json:"supplier_id"`
	Name       string  `json:"name"`
	Email      *string `json:"email,omitempty"`
	WhatsApp   *string `json:"whatsapp,omitempty"`
}

// UpdateContactRequest represents parameters to update a SupplierContact.
type UpdateContactRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	WhatsApp *string `json:"whatsapp,omitempty"`
}

// Validate validates CreateContactRequest.
func (r *CreateContactRequest) Validate() error {
	if strings.TrimSpace(r.SupplierID) == "" {
		return errors.New("supplier_id is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required and cannot be empty")
	}
	if r.Email != nil && !strings.Contains(*r.Email, "@") {
		return errors.New("email is not a valid address")
	}
	return nil
}

// HasUpdates reports whether any field is set in UpdateContactRequest.
func (r *UpdateContactRequest) HasUpdates() bool {
	return r.Name != nil || r.Email != nil || r.WhatsApp != nil
}
