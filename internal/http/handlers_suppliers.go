// Package httpx provides the HTTP handlers and router for the supplier
// qualification API.
package httpx

import (
	"errors"
	"net/http"

	"github.com/GustavoMarcolla/insightscore-pro/internal/data"
	"github.com/GustavoMarcolla/insightscore-pro/internal/domain/model"
	"github.com/GustavoMarcolla/insightscore-pro/internal/service"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// SupplierHandlers provides HTTP handlers for supplier operations.
type SupplierHandlers struct {
	Svc      *service.SupplierService
	Contacts *service.ContactService
	Feedback *service.FeedbackService
}

// Create handles HTTP requests to register a new supplier.
func (h *SupplierHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateSupplierRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	supplier, err := h.Svc.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, data.ErrSupplierCodeExists) {
			WriteError(w, ErrorParams{Code: http.StatusConflict, ErrCode: "code_conflict", Err: err})
			return
		}
		WriteServiceError(w, err, "create_failed")
		return
	}

	WriteJSON(w, http.StatusCreated, supplier)
}

// List handles HTTP requests to list suppliers with filtering and pagination.
func (h *SupplierHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, defaultListLimit, maxListLimit)
	opts := model.SuppliersListOptions{
		Limit:  limit,
		Offset: offset,
		Sort:   r.URL.Query().Get("sort"),
		Dir:    r.URL.Query().Get("dir"),
	}
	if q := r.URL.Query().Get("q"); q != "" {
		opts.Q = &q
	}
	if s := r.URL.Query().Get("status"); s != "" {
		status := model.Status(s)
		opts.Status = &status
	}

	result, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		WriteServiceError(w, err, "list_failed")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"suppliers": result.Items,
		"total":     result.Total,
		"limit":     limit,
		"offset":    offset,
	})
}

// GetByID handles HTTP requests to get a supplier by ID.
func (h *SupplierHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("supplier id is required")})
		return
	}

	supplier, err := h.Svc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, data.ErrSupplierNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "supplier_not_found", Err: err})
			return
		}
		WriteServiceError(w, err, "get_failed")
		return
	}

	WriteJSON(w, http.StatusOK, supplier)
}

// Update handles HTTP requests to update a supplier.
func (h *SupplierHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("supplier id is required")})
		return
	}

	var req model.UpdateSupplierRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	supplier, err := h.Svc.Update(r.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrSupplierNotFound):
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "supplier_not_found", Err: err})
		case errors.Is(err, data.ErrSupplierCodeExists):
			WriteError(w, ErrorParams{Code: http.StatusConflict, ErrCode: "code_conflict", Err: err})
		default:
			WriteServiceError(w, err, "update_failed")
		}
		return
	}

	WriteJSON(w, http.StatusOK, supplier)
}

// ToggleStatus handles HTTP requests to flip a supplier's status.
func (h *SupplierHandlers) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("supplier id is required")})
		return
	}

	supplier, err := h.Svc.ToggleStatus(r.Context(), id)
	if err != nil {
		if errors.Is(err, data.ErrSupplierNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "supplier_not_found", Err: err})
			return
		}
		WriteServiceError(w, err, "update_failed")
		return
	}

	WriteJSON(w, http.StatusOK, supplier)
}

// Delete handles HTTP requests to delete a supplier.
func (h *SupplierHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("supplier id is required")})
		return
	}

	deleted, err := h.Svc.Delete(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err, "delete_failed")
		return
	}
	if !deleted {
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "supplier_not_found", Err: errors.New("supplier not found")})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// SendFeedback handles HTTP requests to email a performance summary to the
// supplier's contacts.
func (h *SupplierHandlers) SendFeedback(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("supplier id is required")})
		return
	}

	if h.Feedback == nil {
		WriteError(w, ErrorParams{Code: http.StatusServiceUnavailable, ErrCode: "feedback_disabled", Err: errors.New("feedback email is not configured")})
		return
	}

	report, err := h.Feedback.Send(r.Context(), id)
	if err != nil {
		if errors.Is(err, data.ErrSupplierNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "supplier_not_found", Err: err})
			return
		}
		WriteServiceError(w, err, "feedback_failed")
		return
	}

	WriteJSON(w, http.StatusOK, report)
}

// CreateContact handles HTTP requests to add a contact to a supplier.
func (h *SupplierHandlers) CreateContact(w http.ResponseWriter, r *http.Request) {
	supplierID := r.PathValue("id")
	if supplierID == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("supplier id is required")})
		return
	}

	var req model.CreateContactRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.SupplierID = supplierID

	contact, err := h.Contacts.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, data.ErrSupplierNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "supplier_not_found", Err: err})
			return
		}
		WriteServiceError(w, err, "create_failed")
		return
	}

	WriteJSON(w, http.StatusCreated, contact)
}

// ListContacts handles HTTP requests to list a supplier's contacts.
func (h *SupplierHandlers) ListContacts(w http.ResponseWriter, r *http.Request) {
	supplierID := r.PathValue("id")
	if supplierID == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("supplier id is required")})
		return
	}

	contacts, err := h.Contacts.ListBySupplier(r.Context(), supplierID)
	if err != nil {
		WriteServiceError(w, err, "list_failed")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"contacts": contacts})
}

// UpdateContact handles HTTP requests to update a contact.
func (h *SupplierHandlers) UpdateContact(w http.ResponseWriter, r *http.Request) {
	contactID := r.PathValue("contactId")
	if contactID == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("contact id is required")})
		return
	}

	var req model.UpdateContactRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	contact, err := h.Contacts.Update(r.Context(), contactID, req)
	if err != nil {
		if errors.Is(err, data.ErrContactNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "contact_not_found", Err: err})
			return
		}
		WriteServiceError(w, err, "update_failed")
		return
	}

	WriteJSON(w, http.StatusOK, contact)
}

// DeleteContact handles HTTP requests to delete a contact.
func (h *SupplierHandlers) DeleteContact(w http.ResponseWriter, r *http.Request) {
	contactID := r.PathValue("contactId")
	if contactID == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("contact id is required")})
		return
	}

	deleted, err := h.Contacts.Delete(r.Context(), contactID)
	if err != nil {
		WriteServiceError(w, err, "delete_failed")
		return
	}
	if !deleted {
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "contact_not_found", Err: errors.New("supplier contact not found")})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
