package model

import (
	"errors"
	"strings"
	"time"
)

// QualificationStatus tracks the lifecycle of a qualification.
// The Portuguese values are part of the stored data contract.
type QualificationStatus string

const (
	QualificationPending   QualificationStatus = "pendente"
	QualificationConcluded QualificationStatus = "concluido"
)

// Valid reports whether the qualification status is supported.
func (s QualificationStatus) Valid() bool {
	switch s {
	case QualificationPending, QualificationConcluded:
		return true
	default:
		return false
	}
}

// Qualification is one periodic quality evaluation round for a supplier.
// Code is a human-friendly serial assigned by the database.
type Qualification struct {
	ID            string              `json:"id"                       db:"id"`
	Code          int64               `json:"code"                     db:"code"`
	SupplierID    string              `json:"supplier_id"              db:"supplier_id"`
	ReceivedAt    time.Time           `json:"received_at"              db:"received_at"`
	InvoiceSeries *string             `json:"invoice_series,omitempty" db:"invoice_series"`
	InvoiceNumber *string             `json:"invoice_number,omitempty" db:"invoice_number"`
	Note          *string             `json:"note,omitempty"           db:"note"`
	Status        QualificationStatus `json:"status"                   db:"status"`
	CreatedBy     *string             `json:"created_by,omitempty"     db:"created_by"`
	CreatedAt     time.Time           `json:"created_at"               db:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"               db:"updated_at"`
}

// QualificationWithSupplier joins supplier display fields for listings.
type QualificationWithSupplier struct {
	Qualification
	SupplierName string `json:"supplier_name" db:"supplier_name"`
	SupplierCode string `json:"supplier_code" db:"supplier_code"`
}

// Evaluation is a single criterion score inside a qualification.
// The (QualificationID, CriterionID) pair is unique; saving again overwrites.
type Evaluation struct {
	ID              string    `json:"id"              db:"id"`
	QualificationID string    `json:"qualification_id" db:"qualification_id"`
	CriterionID     string    `json:"criterion_id"    db:"criterion_id"`
	Stars           int       `json:"stars"           db:"stars"`
	Note            *string   `json:"note,omitempty"  db:"note"`
	CreatedAt       time.Time `json:"created_at"      db:"created_at"`
}

// EvaluationWithCriterion joins criterion display fields for feedback reports.
type EvaluationWithCriterion struct {
	Evaluation
	CriterionCode        string `json:"criterion_code"        db:"criterion_code"`
	CriterionDescription string `json:"criterion_description" db:"criterion_description"`
}

// Attachment is a supporting file stored in the blob store, tied to a
// qualification and optionally to a single criterion.
type Attachment struct {
	ID              string    `json:"id"                     db:"id"`
	QualificationID string    `json:"qualification_id"       db:"qualification_id"`
	CriterionID     *string   `json:"criterion_id,omitempty" db:"criterion_id"`
	FilePath        string    `json:"file_path"              db:"file_path"`
	FileName        string    `json:"file_name"              db:"file_name"`
	FileType        string    `json:"file_type"              db:"file_type"`
	FileSize        *int64    `json:"file_size,omitempty"    db:"file_size"`
	CreatedAt       time.Time `json:"created_at"             db:"created_at"`
}

// QualificationsListOptions controls paging and filtering for listing
// qualifications. Sort defaults to code descending (newest first).
type QualificationsListOptions struct {
	Limit      int
	Offset     int
	SupplierID *string
	Status     *QualificationStatus
	Sort       string
	Dir        string
}

// CreateQualificationRequest represents parameters to create a Qualification.
type CreateQualificationRequest struct {
	SupplierID    string    `json:"supplier_id"`
	ReceivedAt    time.Time `json:"received_at"`
	InvoiceSeries *string   `json:"invoice_series,omitempty"`
	InvoiceNumber *string   `json:"invoice_number,omitempty"`
	Note          *string   `json:"note,omitempty"`
	CreatedBy     *string   `json:"created_by,omitempty"`
}

// UpdateQualificationRequest represents parameters to update a Qualification.
type UpdateQualificationRequest struct {
	ReceivedAt    *time.Time           `json:"received_at,omitempty"`
	InvoiceSeries *string              `json:"invoice_series,omitempty"`
	InvoiceNumber *string              `json:"invoice_number,omitempty"`
	Note          *string              `json:"note,omitempty"`
	Status        *QualificationStatus `json:"status,omitempty"`
}

// SaveEvaluationRequest is one criterion score in a batch upsert.
type SaveEvaluationRequest struct {
	QualificationID string  `json:"qualification_id"`
	CriterionID     string  `json:"criterion_id"`
	Stars           int     `json:"stars"`
	Note            *string `json:"note,omitempty"`
}

// RegisterAttachmentRequest records an uploaded file against a qualification.
type RegisterAttachmentRequest struct {
	QualificationID string  `json:"qualification_id"`
	CriterionID     *string `json:"criterion_id,omitempty"`
	FilePath        string  `json:"file_path"`
	FileName        string  `json:"file_name"`
	FileType        string  `json:"file_type"`
	FileSize        *int64  `json:"file_size,omitempty"`
}

// Validate validates CreateQualificationRequest.
func (r *CreateQualificationRequest) Validate() error {
	if strings.TrimSpace(r.SupplierID) == "" {
		return errors.New("supplier_id is required")
	}
	if r.ReceivedAt.IsZero() {
		return errors.New("received_at is required")
	}
	return nil
}

// Validate validates UpdateQualificationRequest.
func (r *UpdateQualificationRequest) Validate() error {
	if r.Status != nil && !r.Status.Valid() {
		return errors.New("invalid status")
	}
	return nil
}

// HasUpdates reports whether any field is set in UpdateQualificationRequest.
func (r *UpdateQualificationRequest) HasUpdates() bool {
	return r.ReceivedAt != nil || r.InvoiceSeries != nil || r.InvoiceNumber != nil ||
		r.Note != nil || r.Status != nil
}

// Validate validates SaveEvaluationRequest.
func (r *SaveEvaluationRequest) Validate() error {
	if strings.TrimSpace(r.QualificationID) == "" {
		return errors.New("qualification_id is required")
	}
	if strings.TrimSpace(r.CriterionID) == "" {
		return errors.New("criterion_id is required")
	}
	if r.Stars < MinStars || r.Stars > MaxStars {
		return errors.New("stars must be between 1 and 5")
	}
	return nil
}

// Validate validates RegisterAttachmentRequest.
func (r *RegisterAttachmentRequest) Validate() error {
	if strings.TrimSpace(r.QualificationID) == "" {
		return errors.New("qualification_id is required")
	}
	if strings.TrimSpace(r.FilePath) == "" {
		return errors.New("file_path is required")
	}
	if strings.TrimSpace(r.FileName) == "" {
		return errors.New("file_name is required")
	}
	return nil
}
