package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/GustavoMarcolla/insightscore-pro/internal/data"
	"github.com/GustavoMarcolla/insightscore-pro/internal/domain/model"
	"github.com/GustavoMarcolla/insightscore-pro/internal/mocks"
	mockauth "github.com/GustavoMarcolla/insightscore-pro/internal/mocks/auth"
	"github.com/GustavoMarcolla/insightscore-pro/internal/ports"
	"github.com/GustavoMarcolla/insightscore-pro/internal/service"
)

type qualificationHandlerFixture struct {
	handlers  *QualificationHandlers
	repo      *mocks.MockQualificationRepository
	suppliers *mocks.MockSupplierRepository
	blobs     *mockauth.MockBlobStore
}

func newQualificationHandlers(t *testing.T) *qualificationHandlerFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	repo := mocks.NewMockQualificationRepository(ctrl)
	suppliers := mocks.NewMockSupplierRepository(ctrl)
	blobs := &mockauth.MockBlobStore{}
	svc, err := service.NewQualificationService(service.QualificationServiceOptions{
		Repo:      repo,
		Suppliers: suppliers,
		Blobs:     blobs,
	})
	require.NoError(t, err)

	return &qualificationHandlerFixture{
		handlers:  &QualificationHandlers{Svc: svc},
		repo:      repo,
		suppliers: suppliers,
		blobs:     blobs,
	}
}

func testQualification() *model.Qualification {
	return &model.Qualification{
		ID:         "qual-1",
		Code:       42,
		SupplierID: "sup-1",
		ReceivedAt: time.Now(),
		Status:     model.QualificationPending,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
}

func TestQualificationHandlers_Create_Success(t *testing.T) {
	f := newQualificationHandlers(t)

	expected := testQualification()
	f.suppliers.EXPECT().GetByID(gomock.Any(), "sup-1").Return(testSupplier(), nil)
	f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(expected, nil)

	body := fmt.Sprintf(`{"supplier_id":"sup-1","received_at":%q}`, time.Now().Format(time.RFC3339))
	r := httptest.NewRequest(http.MethodPost, "/api/qualifications", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	f.handlers.Create(w, r)

	resp := w.Result()
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var got model.Qualification
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, expected.ID, got.ID)
	assert.Equal(t, expected.Code, got.Code)
}

func TestQualificationHandlers_Create_UnknownSupplier(t *testing.T) {
	f := newQualificationHandlers(t)

	f.suppliers.EXPECT().GetByID(gomock.Any(), "missing").
		Return(nil, fmt.Errorf("get: %w", data.ErrSupplierNotFound))

	body := fmt.Sprintf(`{"supplier_id":"missing","received_at":%q}`, time.Now().Format(time.RFC3339))
	r := httptest.NewRequest(http.MethodPost, "/api/qualifications", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	f.handlers.Create(w, r)

	resp := w.Result()
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestQualificationHandlers_GetByID_ReturnsDetail(t *testing.T) {
	f := newQualificationHandlers(t)

	f.repo.EXPECT().GetByID(gomock.Any(), "qual-1").Return(testQualification(), nil)
	f.repo.EXPECT().ListEvaluations(gomock.Any(), "qual-1").
		Return([]*model.EvaluationWithCriterion{}, nil)
	f.repo.EXPECT().ListAttachments(gomock.Any(), "qual-1").
		Return([]*model.Attachment{}, nil)

	r := httptest.NewRequest(http.MethodGet, "/api/qualifications/qual-1", nil)
	r.SetPathValue("id", "qual-1")
	w := httptest.NewRecorder()

	f.handlers.GetByID(w, r)

	resp := w.Result()
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got service.QualificationDetail
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.NotNil(t, got.Qualification)
	assert.Equal(t, "qual-1", got.Qualification.ID)
	assert.NotNil(t, got.Evaluations)
	assert.NotNil(t, got.Attachments)
}

func TestQualificationHandlers_SaveEvaluations_Success(t *testing.T) {
	f := newQualificationHandlers(t)

	f.repo.EXPECT().GetByID(gomock.Any(), "qual-1").Return(testQualification(), nil)
	f.repo.EXPECT().SaveEvaluations(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, reqs []model.SaveEvaluationRequest) ([]*model.Evaluation, error) {
			require.Len(t, reqs, 2)
			assert.Equal(t, "qual-1", reqs[0].QualificationID)
			return []*model.Evaluation{
				{ID: "ev-1", QualificationID: "qual-1", CriterionID: "crit-1", Stars: 4},
				{ID: "ev-2", QualificationID: "qual-1", CriterionID: "crit-2", Stars: 5},
			}, nil
		})
	f.suppliers.EXPECT().RecalculateScore(gomock.Any(), "sup-1").Return(testSupplier(), nil)

	body := `{"evaluations":[{"criterion_id":"crit-1","stars":4},{"criterion_id":"crit-2","stars":5}]}`
	r := httptest.NewRequest(http.MethodPut, "/api/qualifications/qual-1/evaluations", bytes.NewBufferString(body))
	r.SetPathValue("id", "qual-1")
	w := httptest.NewRecorder()

	f.handlers.SaveEvaluations(w, r)

	resp := w.Result()
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		Evaluations []*model.Evaluation `json:"evaluations"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Len(t, got.Evaluations, 2)
}

func TestQualificationHandlers_SaveEvaluations_BadStars(t *testing.T) {
	f := newQualificationHandlers(t)

	f.repo.EXPECT().GetByID(gomock.Any(), "qual-1").Return(testQualification(), nil)

	body := `{"evaluations":[{"criterion_id":"crit-1","stars":6}]}`
	r := httptest.NewRequest(http.MethodPut, "/api/qualifications/qual-1/evaluations", bytes.NewBufferString(body))
	r.SetPathValue("id", "qual-1")
	w := httptest.NewRecorder()

	f.handlers.SaveEvaluations(w, r)

	resp := w.Result()
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestQualificationHandlers_UploadAttachment_Multipart(t *testing.T) {
	f := newQualificationHandlers(t)

	f.repo.EXPECT().GetByID(gomock.Any(), "qual-1").Return(testQualification(), nil)
	f.repo.EXPECT().RegisterAttachment(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req *model.RegisterAttachmentRequest) (*model.Attachment, error) {
			assert.Equal(t, "qual-1", req.QualificationID)
			assert.Equal(t, "laudo.pdf", req.FileName)
			assert.True(t, strings.HasPrefix(req.FilePath, "qualifications/qual-1/"))
			require.NotNil(t, req.CriterionID)
			assert.Equal(t, "crit-1", *req.CriterionID)
			return &model.Attachment{
				ID:              "att-1",
				QualificationID: req.QualificationID,
				FilePath:        req.FilePath,
				FileName:        req.FileName,
			}, nil
		})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "laudo.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 test"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("criterion_id", "crit-1"))
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/qualifications/qual-1/attachments", &buf)
	r.SetPathValue("id", "qual-1")
	r.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()

	f.handlers.UploadAttachment(w, r)

	resp := w.Result()
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var got model.Attachment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "att-1", got.ID)
	assert.True(t, f.blobs.Has(got.FilePath))
}

func TestQualificationHandlers_UploadAttachment_MissingFile(t *testing.T) {
	f := newQualificationHandlers(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("criterion_id", "crit-1"))
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/qualifications/qual-1/attachments", &buf)
	r.SetPathValue("id", "qual-1")
	r.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()

	f.handlers.UploadAttachment(w, r)

	resp := w.Result()
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestQualificationHandlers_DownloadAttachment_Redirects(t *testing.T) {
	f := newQualificationHandlers(t)

	attachment := &model.Attachment{
		ID:              "att-1",
		QualificationID: "qual-1",
		FilePath:        "qualifications/qual-1/abc.pdf",
		FileName:        "laudo.pdf",
	}
	require.NoError(t, f.blobs.Put(context.Background(), ports.PutObjectInput{
		Key:  attachment.FilePath,
		Body: strings.NewReader("%PDF-1.4 test"),
	}))
	f.repo.EXPECT().GetAttachment(gomock.Any(), "att-1").Return(attachment, nil)

	r := httptest.NewRequest(http.MethodGet, "/api/qualifications/qual-1/attachments/att-1/download", nil)
	r.SetPathValue("attachmentId", "att-1")
	w := httptest.NewRecorder()

	f.handlers.DownloadAttachment(w, r)

	resp := w.Result()
	defer resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "https://blobs.test/"+attachment.FilePath, resp.Header.Get("Location"))
}

func TestQualificationHandlers_DeleteAttachment_NotFound(t *testing.T) {
	f := newQualificationHandlers(t)

	f.repo.EXPECT().GetAttachment(gomock.Any(), "missing").
		Return(nil, fmt.Errorf("get: %w", data.ErrAttachmentNotFound))

	r := httptest.NewRequest(http.MethodDelete, "/api/qualifications/qual-1/attachments/missing", nil)
	r.SetPathValue("attachmentId", "missing")
	w := httptest.NewRecorder()

	f.handlers.DeleteAttachment(w, r)

	resp := w.Result()
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
