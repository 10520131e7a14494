package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"baucheck/internal/service"
)

// ReviewHandler handles compliance review endpoints.
type ReviewHandler struct {
	reviewService service.ReviewService
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

type createReviewRequest struct {
	ProjectID    string `json:"project_id" binding:"required"`
	ZoningPlanID string `json:"zoning_plan_id" binding:"required"`
}

// Create handles POST /api/v1/reviews
// @Summary Run a compliance review
// @Description Compare an analyzed project against an analyzed zoning plan
// @Tags reviews
// @Accept json
// @Produce json
// @Param body body createReviewRequest true "Project and plan IDs"
// @Success 201 {object} APIResponse "Verdict created"
// @Failure 404 {object} APIResponse "Project or plan not found"
// @Failure 409 {object} APIResponse "Document not analyzed yet"
// @Failure 502 {object} APIResponse "Reasoning service failure"
// @Router /reviews [post]
func (h *ReviewHandler) Create(c *gin.Context) {
	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_BODY", "project_id and zoning_plan_id are required")
		return
	}
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "project_id must be a valid UUID")
		return
	}
	planID, err := uuid.Parse(req.ZoningPlanID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "zoning_plan_id must be a valid UUID")
		return
	}

	review, err := h.reviewService.CreateReview(c.Request.Context(), projectID, planID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, review)
}

// Get handles GET /api/v1/reviews/:id
// @Summary Get a compliance review
// @Tags reviews
// @Produce json
// @Param id path string true "Review ID"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse "Review not found"
// @Router /reviews/{id} [get]
func (h *ReviewHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	review, err := h.reviewService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, review)
}

// ListByProject handles GET /api/v1/projects/:id/reviews
// @Summary List reviews for a project
// @Tags reviews
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} APIResponse
// @Router /projects/{id}/reviews [get]
func (h *ReviewHandler) ListByProject(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	reviews, err := h.reviewService.ListByProject(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, reviews)
}

// ExportXLSX handles GET /api/v1/reviews/:id/export
// @Summary Export a review verdict as XLSX
// @Tags reviews
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Review ID"
// @Success 200 {file} binary
// @Failure 404 {object} APIResponse "Review not found"
// @Router /reviews/{id}/export [get]
func (h *ReviewHandler) ExportXLSX(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	data, name, err := h.reviewService.ExportXLSX(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
