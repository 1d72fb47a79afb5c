//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxSupplierNameLen = 255
	maxCodeLen         = 50
	cnpjDigits         = 14
)

// Status is the active/inactive flag shared by suppliers, groups, and criteria.
// The Portuguese values are part of the stored data contract.
type Status string

const (
	StatusActive   Status = "ativo"
	StatusInactive Status = "inativo"
)

// Valid reports whether the status is supported.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive:
		return true
	default:
		return false
	}
}

// Toggle returns the opposite status.
func (s Status) Toggle() Status {
	if s == StatusActive {
		return StatusInactive
	}
	return StatusActive
}

// normalizeStatus trims and lowercases the input, defaulting to active when empty.
func normalizeStatus(v Status) Status {
	normalized := Status(strings.ToLower(strings.TrimSpace(string(v))))
	if normalized == "" {
		return StatusActive
	}
	return normalized
}

// Supplier represents a registered supplier with its rolling score.
// CurrentScore is on the 0-100 scale; see ScoreFromStars.
type Supplier struct {
	ID               string    `json:"id"                 db:"id"`
	Code             string    `json:"code"               db:"code"`
	Name             string    `json:"name"               db:"name"`
	CNPJ             string    `json:"cnpj"               db:"cnpj"`
	Address          *string   `json:"address,omitempty"  db:"address"`
	Status           Status    `json:"status"             db:"status"`
	CurrentScore     float64   `json:"current_score"      db:"current_score"`
	TotalEvaluations int       `json:"total_evaluations"  db:"total_evaluations"`
	CreatedAt        time.Time `json:"created_at"         db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"         db:"updated_at"`
}

// AtRisk reports whether the supplier sits below the risk threshold.
// Only evaluated suppliers count; a fresh supplier is not "at risk".
func (s Supplier) AtRisk() bool {
	return s.TotalEvaluations > 0 && s.CurrentScore < RiskScoreThreshold
}

// SuppliersListOptions controls paging and filtering for listing suppliers.
// Notes:
// - Sort supports: "code", "name", "current_score", "created_at".
// - Dir supports: "asc", "desc" (case-insensitive; normalized internally).
// - Q matches name or code via ILIKE substring.
type SuppliersListOptions struct {
	Limit  int
	Offset int
	Q      *string
	Status *Status
	Sort   string
	Dir    string
}

// CreateSupplierRequest represents parameters to create a Supplier.
type CreateSupplierRequest struct {
	Code    string  `json:"code"`
	Name    string  `json:"name"`
	CNPJ    string  `json:"cnpj"`
	Address *string `json:"address,omitempty"`
}

// UpdateSupplierRequest represents parameters to update a Supplier.
type UpdateSupplierRequest struct {
	Code    *string `json:"code,omitempty"`
	Name    *string `json:"name,omitempty"`
	CNPJ    *string `json:"cnpj,omitempty"`
	Address *string `json:"address,omitempty"`
	Status  *Status `json:"status,omitempty"`
}

// Validate validates CreateSupplierRequest.
func (r *CreateSupplierRequest) Validate() error {
	if strings.TrimSpace(r.Code) == "" {
		return errors.New("code is required and cannot be empty")
	}
	if utf8.RuneCountInString(r.Code) > maxCodeLen {
		return errors.New("code cannot exceed 50 characters")
	}
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return errors.New("name is required and cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxSupplierNameLen {
		return errors.New("name cannot exceed 255 characters")
	}
	if err := validateCNPJ(r.CNPJ); err != nil {
		return err
	}
	return nil
}

// Validate validates UpdateSupplierRequest.
func (r *UpdateSupplierRequest) Validate() error {
	if r.Code != nil && strings.TrimSpace(*r.Code) == "" {
		return errors.New("code cannot be empty")
	}
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return errors.New("name cannot be empty")
	}
	if r.CNPJ != nil {
		if err := validateCNPJ(*r.CNPJ); err != nil {
			return err
		}
	}
	if r.Status != nil {
		*r.Status = normalizeStatus(*r.Status)
		if !r.Status.Valid() {
			return errors.New("invalid status")
		}
	}
	return nil
}

// HasUpdates reports whether any field is set in UpdateSupplierRequest.
func (r *UpdateSupplierRequest) HasUpdates() bool {
	return r.Code != nil || r.Name != nil || r.CNPJ != nil || r.Address != nil || r.Status != nil
}

// validateCNPJ checks the Brazilian company registration number has exactly
// 14 digits once punctuation is stripped. Check-digit math is left to the
// registry of record.
func validateCNPJ(cnpj string) error {
	digits := 0
	for _, c := range cnpj {
		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == '.' || c == '/' || c == '-' || c == ' ':
			// punctuation is tolerated
		default:
			return errors.New("cnpj contains invalid characters")
		}
	}
	if digits != cnpjDigits {
		return errors.New("cnpj must contain exactly 14 digits")
	}
	return nil
}
