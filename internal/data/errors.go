package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	ErrSupplierNotFound      = errors.New("supplier not found")
	ErrSupplierCodeExists    = errors.New("supplier code already exists")
	ErrContactNotFound       = errors.New("supplier contact not found")
	ErrGroupNotFound         = errors.New("criteria group not found")
	ErrCriterionNotFound     = errors.New("criterion not found")
	ErrQualificationNotFound = errors.New("qualification not found")
	ErrAttachmentNotFound    = errors.New("attachment not found")
	ErrUserNotFound          = errors.New("user not found")
)
