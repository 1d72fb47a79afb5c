package httpx

import (
	"errors"
	"net/http"

	"github.com/GustavoMarcolla/insightscore-pro/internal/data"
	"github.com/GustavoMarcolla/insightscore-pro/internal/domain/model"
	"github.com/GustavoMarcolla/insightscore-pro/internal/service"
)

// maxAttachmentSize bounds multipart attachment uploads (20 MiB).
const maxAttachmentSize = 20 << 20

// QualificationHandlers provides HTTP handlers for qualification rounds,
// their evaluations, and their attachments.
type QualificationHandlers struct {
	Svc *service.QualificationService
}

// Create handles HTTP requests to open a qualification round.
func (h *QualificationHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateQualificationRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	if session := GetSessionFromContext(r.Context()); session != nil && req.CreatedBy == nil {
		req.CreatedBy = &session.UserID
	}

	qual, err := h.Svc.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, data.ErrSupplierNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "supplier_not_found", Err: err})
			return
		}
		WriteServiceError(w, err, "create_failed")
		return
	}

	WriteJSON(w, http.StatusCreated, qual)
}

// List handles HTTP requests to list qualifications with filtering and pagination.
func (h *QualificationHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, defaultListLimit, maxListLimit)
	opts := model.QualificationsListOptions{
		Limit:  limit,
		Offset: offset,
		Sort:   r.URL.Query().Get("sort"),
		Dir:    r.URL.Query().Get("dir"),
	}
	if supplierID := r.URL.Query().Get("supplier_id"); supplierID != "" {
		opts.SupplierID = &supplierID
	}
	if s := r.URL.Query().Get("status"); s != "" {
		status := model.QualificationStatus(s)
		opts.Status = &status
	}

	result, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		WriteServiceError(w, err, "list_failed")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"qualifications": result.Items,
		"total":          result.Total,
		"limit":          limit,
		"offset":         offset,
	})
}

// GetByID handles HTTP requests to get a qualification with its evaluations
// and attachments.
func (h *QualificationHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("qualification id is required")})
		return
	}

	detail, err := h.Svc.GetDetail(r.Context(), id)
	if err != nil {
		if errors.Is(err, data.ErrQualificationNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "qualification_not_found", Err: err})
			return
		}
		WriteServiceError(w, err, "get_failed")
		return
	}

	WriteJSON(w, http.StatusOK, detail)
}

// Update handles HTTP requests to update a qualification.
func (h *QualificationHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("qualification id is required")})
		return
	}

	var req model.UpdateQualificationRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	qual, err := h.Svc.Update(r.Context(), id, req)
	if err != nil {
		if errors.Is(err, data.ErrQualificationNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "qualification_not_found", Err: err})
			return
		}
		WriteServiceError(w, err, "update_failed")
		return
	}

	WriteJSON(w, http.StatusOK, qual)
}

// Delete handles HTTP requests to delete a qualification.
func (h *QualificationHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("qualification id is required")})
		return
	}

	deleted, err := h.Svc.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, data.ErrQualificationNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "qualification_not_found", Err: err})
			return
		}
		WriteServiceError(w, err, "delete_failed")
		return
	}
	if !deleted {
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "qualification_not_found", Err: errors.New("qualification not found")})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// SaveEvaluations handles HTTP requests to upsert a batch of criterion scores.
func (h *QualificationHandlers) SaveEvaluations(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("qualification id is required")})
		return
	}

	var body struct {
		Evaluations []model.SaveEvaluationRequest `json:"evaluations"`
	}
	if !DecodeJSON(w, r, &body) {
		return
	}

	evals, err := h.Svc.SaveEvaluations(r.Context(), id, body.Evaluations)
	if err != nil {
		if errors.Is(err, data.ErrQualificationNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "qualification_not_found", Err: err})
			return
		}
		WriteServiceError(w, err, "save_failed")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"evaluations": evals})
}

// ListEvaluations handles HTTP requests to list a qualification's scores.
func (h *QualificationHandlers) ListEvaluations(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("qualification id is required")})
		return
	}

	evals, err := h.Svc.ListEvaluations(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err, "list_failed")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"evaluations": evals})
}

// UploadAttachment handles multipart HTTP requests to attach a file to a
// qualification. The file goes in the "file" part; an optional "criterion_id"
// part ties it to a single criterion.
func (h *QualificationHandlers) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("qualification id is required")})
		return
	}

	if err := r.ParseMultipartForm(maxAttachmentSize); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_multipart", Err: err})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "missing_file", Err: errors.New("file part is required")})
		return
	}
	defer file.Close() //nolint:errcheck // read-only temp file

	in := service.UploadAttachmentInput{
		QualificationID: id,
		FileName:        header.Filename,
		ContentType:     header.Header.Get("Content-Type"),
		Size:            header.Size,
		Body:            file,
	}
	if criterionID := r.FormValue("criterion_id"); criterionID != "" {
		in.CriterionID = &criterionID
	}

	attachment, err := h.Svc.UploadAttachment(r.Context(), in)
	if err != nil {
		if errors.Is(err, data.ErrQualificationNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "qualification_not_found", Err: err})
			return
		}
		WriteServiceError(w, err, "upload_failed")
		return
	}

	WriteJSON(w, http.StatusCreated, attachment)
}

// ListAttachments handles HTTP requests to list a qualification's attachments.
func (h *QualificationHandlers) ListAttachments(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("qualification id is required")})
		return
	}

	attachments, err := h.Svc.ListAttachments(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err, "list_failed")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"attachments": attachments})
}

// DownloadAttachment handles HTTP requests for a time-limited download link.
func (h *QualificationHandlers) DownloadAttachment(w http.ResponseWriter, r *http.Request) {
	attachmentID := r.PathValue("attachmentId")
	if attachmentID == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("attachment id is required")})
		return
	}

	url, err := h.Svc.AttachmentDownloadURL(r.Context(), attachmentID)
	if err != nil {
		if errors.Is(err, data.ErrAttachmentNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "attachment_not_found", Err: err})
			return
		}
		WriteServiceError(w, err, "download_failed")
		return
	}

	http.Redirect(w, r, url, http.StatusFound)
}

// DeleteAttachment handles HTTP requests to delete an attachment.
func (h *QualificationHandlers) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
	attachmentID := r.PathValue("attachmentId")
	if attachmentID == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("attachment id is required")})
		return
	}

	deleted, err := h.Svc.DeleteAttachment(r.Context(), attachmentID)
	if err != nil {
		if errors.Is(err, data.ErrAttachmentNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "attachment_not_found", Err: err})
			return
		}
		WriteServiceError(w, err, "delete_failed")
		return
	}
	if !deleted {
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "attachment_not_found", Err: errors.New("attachment not found")})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
