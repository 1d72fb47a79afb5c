package httpx

import (
	"errors"
	"net/http"

	"github.com/GustavoMarcolla/insightscore-pro/internal/data"
	"github.com/GustavoMarcolla/insightscore-pro/internal/domain/model"
	"github.com/GustavoMarcolla/insightscore-pro/internal/service"
)

// GroupHandlers provides HTTP handlers for criteria group operations.
type GroupHandlers struct {
	Svc *service.GroupService
}

// Create handles HTTP requests to create a criteria group.
func (h *GroupHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateGroupRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	group, err := h.Svc.Create(r.Context(), &req)
	if err != nil {
		WriteServiceError(w, err, "create_failed")
		return
	}

	WriteJSON(w, http.StatusCreated, group)
}

// List handles HTTP requests to list criteria groups with criteria counts.
func (h *GroupHandlers) List(w http.ResponseWriter, r *http.Request) {
	onlyActive := r.URL.Query().Get("only_active") == "true"

	groups, err := h.Svc.List(r.Context(), onlyActive)
	if err != nil {
		WriteServiceError(w, err, "list_failed")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"groups": groups})
}

// GetByID handles HTTP requests to get a criteria group by ID.
func (h *GroupHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("group id is required")})
		return
	}

	group, err := h.Svc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, data.ErrGroupNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "group_not_found", Err: err})
			return
		}
		WriteServiceError(w, err, "get_failed")
		return
	}

	WriteJSON(w, http.StatusOK, group)
}

// Update handles HTTP requests to update a criteria group.
func (h *GroupHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("group id is required")})
		return
	}

	var req model.UpdateGroupRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	group, err := h.Svc.Update(r.Context(), id, req)
	if err != nil {
		if errors.Is(err, data.ErrGroupNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "group_not_found", Err: err})
			return
		}
		WriteServiceError(w, err, "update_failed")
		return
	}

	WriteJSON(w, http.StatusOK, group)
}

// ToggleStatus handles HTTP requests to flip a group's status.
func (h *GroupHandlers) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("group id is required")})
		return
	}

	group, err := h.Svc.ToggleStatus(r.Context(), id)
	if err != nil {
		if errors.Is(err, data.ErrGroupNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "group_not_found", Err: err})
			return
		}
		WriteServiceError(w, err, "update_failed")
		return
	}

	WriteJSON(w, http.StatusOK, group)
}

// Delete handles HTTP requests to delete a criteria group.
func (h *GroupHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("group id is required")})
		return
	}

	deleted, err := h.Svc.Delete(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err, "delete_failed")
		return
	}
	if !deleted {
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "group_not_found", Err: errors.New("criteria group not found")})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// CriterionHandlers provides HTTP handlers for criterion operations.
type CriterionHandlers struct {
	Svc *service.CriterionService
}

// Create handles HTTP requests to create a criterion.
func (h *CriterionHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCriterionRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	criterion, err := h.Svc.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, data.ErrGroupNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "group_not_found", Err: err})
			return
		}
		WriteServiceError(w, err, "create_failed")
		return
	}

	WriteJSON(w, http.StatusCreated, criterion)
}

// List handles HTTP requests to list criteria joined with their groups.
func (h *CriterionHandlers) List(w http.ResponseWriter, r *http.Request) {
	onlyActive := r.URL.Query().Get("only_active") == "true"

	criteria, err := h.Svc.List(r.Context(), onlyActive)
	if err != nil {
		WriteServiceError(w, err, "list_failed")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"criteria": criteria})
}

// GetByID handles HTTP requests to get a criterion by ID.
func (h *CriterionHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("criterion id is required")})
		return
	}

	criterion, err := h.Svc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, data.ErrCriterionNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "criterion_not_found", Err: err})
			return
		}
		WriteServiceError(w, err, "get_failed")
		return
	}

	WriteJSON(w, http.StatusOK, criterion)
}

// Update handles HTTP requests to update a criterion.
func (h *CriterionHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("criterion id is required")})
		return
	}

	var req model.UpdateCriterionRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	criterion, err := h.Svc.Update(r.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrCriterionNotFound):
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "criterion_not_found", Err: err})
		case errors.Is(err, data.ErrGroupNotFound):
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "group_not_found", Err: err})
		default:
			WriteServiceError(w, err, "update_failed")
		}
		return
	}

	WriteJSON(w, http.StatusOK, criterion)
}

// ToggleStatus handles HTTP requests to flip a criterion's status.
func (h *CriterionHandlers) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("criterion id is required")})
		return
	}

	criterion, err := h.Svc.ToggleStatus(r.Context(), id)
	if err != nil {
		if errors.Is(err, data.ErrCriterionNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "criterion_not_found", Err: err})
			return
		}
		WriteServiceError(w, err, "update_failed")
		return
	}

	WriteJSON(w, http.StatusOK, criterion)
}

// Delete handles HTTP requests to delete a criterion. Criteria referenced by
// evaluations come back as a conflict.
func (h *CriterionHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("criterion id is required")})
		return
	}

	deleted, err := h.Svc.Delete(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err, "delete_failed")
		return
	}
	if !deleted {
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "criterion_not_found", Err: errors.New("criterion not found")})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
