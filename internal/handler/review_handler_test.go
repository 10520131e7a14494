package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"baucheck/internal/domain"
	"baucheck/internal/handler"
	"baucheck/mocks"
)

func postJSON(w *httptest.ResponseRecorder, body string) *gin.Context {
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/reviews", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c
}

func TestReviewHandler_Create_Success(t *testing.T) {
	mockSvc := new(mocks.MockReviewService)
	h := handler.NewReviewHandler(mockSvc)

	projectID := uuid.New()
	planID := uuid.New()
	review := &domain.ComplianceReview{
		ID:            uuid.New(),
		ProjectID:     projectID,
		ZoningPlanID:  planID,
		OverallStatus: domain.OverallCompliant,
	}
	mockSvc.On("CreateReview", mock.Anything, projectID, planID).Return(review, nil)

	w := httptest.NewRecorder()
	body := fmt.Sprintf(`{"project_id":%q,"zoning_plan_id":%q}`, projectID, planID)
	h.Create(postJSON(w, body))

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	mockSvc.AssertExpectations(t)
}

func TestReviewHandler_Create_MissingFields(t *testing.T) {
	h := handler.NewReviewHandler(new(mocks.MockReviewService))

	w := httptest.NewRecorder()
	h.Create(postJSON(w, `{"project_id":"only one"}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_BODY", resp.Error.Code)
}

func TestReviewHandler_Create_InvalidUUID(t *testing.T) {
	h := handler.NewReviewHandler(new(mocks.MockReviewService))

	w := httptest.NewRecorder()
	body := fmt.Sprintf(`{"project_id":"not-a-uuid","zoning_plan_id":%q}`, uuid.New())
	h.Create(postJSON(w, body))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_ID", resp.Error.Code)
}

func TestReviewHandler_Create_NotAnalyzed(t *testing.T) {
	mockSvc := new(mocks.MockReviewService)
	h := handler.NewReviewHandler(mockSvc)

	mockSvc.On("CreateReview", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.ErrNotAnalyzed)

	w := httptest.NewRecorder()
	body := fmt.Sprintf(`{"project_id":%q,"zoning_plan_id":%q}`, uuid.New(), uuid.New())
	h.Create(postJSON(w, body))

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestReviewHandler_ExportXLSX_SetsAttachmentHeaders(t *testing.T) {
	mockSvc := new(mocks.MockReviewService)
	h := handler.NewReviewHandler(mockSvc)

	id := uuid.New()
	fileName := fmt.Sprintf("review-%s.xlsx", id)
	mockSvc.On("ExportXLSX", mock.Anything, id).Return([]byte("xlsx bytes"), fileName, nil)

	w := httptest.NewRecorder()
	h.ExportXLSX(idContext(w, id.String()))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), fileName)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		w.Header().Get("Content-Type"))
	assert.Equal(t, "xlsx bytes", w.Body.String())
}

func TestReviewHandler_Get_NotFound(t *testing.T) {
	mockSvc := new(mocks.MockReviewService)
	h := handler.NewReviewHandler(mockSvc)

	id := uuid.New()
	mockSvc.On("GetByID", mock.Anything, id).Return(nil, domain.ErrReviewNotFound)

	w := httptest.NewRecorder()
	h.Get(idContext(w, id.String()))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
