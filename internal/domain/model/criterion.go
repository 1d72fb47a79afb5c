package model

import (
	"errors"
	"strings"
	"time"
)

// CriteriaGroup is a category of scoring criteria.
type CriteriaGroup struct {
	ID          string    `json:"id"          db:"id"`
	Code        string    `json:"code"        db:"code"`
	Description string    `json:"description" db:"description"`
	Status      Status    `json:"status"      db:"status"`
	CreatedAt   time.Time `json:"created_at"  db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"  db:"updated_at"`
}

// CriteriaGroupWithCount carries the number of criteria attached to a group.
type CriteriaGroupWithCount struct {
	CriteriaGroup
	CriteriaCount int `json:"criteria_count" db:"criteria_count"`
}

// Criterion is an individual scoring criterion, optionally grouped.
type Criterion struct {
	ID          string    `json:"id"                 db:"id"`
	Code        string    `json:"code"               db:"code"`
	Description string    `json:"description"        db:"description"`
	GroupID     *string   `json:"group_id,omitempty" db:"group_id"`
	Status      Status    `json:"status"             db:"status"`
	CreatedAt   time.Time `json:"created_at"         db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"         db:"updated_at"`
}

// CriterionWithGroup joins the owning group description for listings.
type CriterionWithGroup struct {
	Criterion
	GroupDescription *string `json:"group_description,omitempty" db:"group_description"`
}

// CreateGroupRequest represents parameters to create a CriteriaGroup.
type CreateGroupRequest struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// UpdateGroupRequest represents parameters to update a CriteriaGroup.
type UpdateGroupRequest struct {
	Code        *string `json:"code,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *Status `json:"status,omitempty"`
}

// CreateCriterionRequest represents parameters to create a Criterion.
type CreateCriterionRequest struct {
	Code        string  `json:"code"`
	Description string  `json:"description"`
	GroupID     *string `json:"group_id,omitempty"`
}

// UpdateCriterionRequest represents parameters to update a Criterion.
type UpdateCriterionRequest struct {
	Code        *string `json:"code,omitempty"`
	Description *string `json:"description,omitempty"`
	GroupID     *string `json:"group_id,omitempty"`
	Status      *Status `json:"status,omitempty"`
}

// Validate validates CreateGroupRequest.
func (r *CreateGroupRequest) Validate() error {
	return validateCodeDescription(r.Code, r.Description)
}

// Validate validates UpdateGroupRequest.
func (r *UpdateGroupRequest) Validate() error {
	return validateOptionalCodeDescriptionStatus(r.Code, r.Description, r.Status)
}

// HasUpdates reports whether any field is set in UpdateGroupRequest.
func (r *UpdateGroupRequest) HasUpdates() bool {
	return r.Code != nil || r.Description != nil || r.Status != nil
}

// Validate validates CreateCriterionRequest.
func (r *CreateCriterionRequest) Validate() error {
	return validateCodeDescription(r.Code, r.Description)
}

// Validate validates UpdateCriterionRequest.
func (r *UpdateCriterionRequest) Validate() error {
	return validateOptionalCodeDescriptionStatus(r.Code, r.Description, r.Status)
}

// HasUpdates reports whether any field is set in UpdateCriterionRequest.
func (r *UpdateCriterionRequest) HasUpdates() bool {
	return r.Code != nil || r.Description != nil || r.GroupID != nil || r.Status != nil
}

func validateCodeDescription(code, description string) error {
	if strings.TrimSpace(code) == "" {
		return errors.New("code is required and cannot be empty")
	}
	if strings.TrimSpace(description) == "" {
		return errors.New("description is required and cannot be empty")
	}
	return nil
}

func validateOptionalCodeDescriptionStatus(code, description *string, status *Status) error {
	if code != nil && strings.TrimSpace(*code) == "" {
		return errors.New("code cannot be empty")
	}
	if description != nil && strings.TrimSpace(*description) == "" {
		return errors.New("description cannot be empty")
	}
	if status != nil {
		*status = normalizeStatus(*status)
		if !status.Valid() {
			return errors.New("invalid status")
		}
	}
	return nil
}
