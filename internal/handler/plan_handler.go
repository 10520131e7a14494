package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"baucheck/internal/service"
)

// PlanHandler handles zoning plan endpoints.
type PlanHandler struct {
	planService service.PlanService
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// Upload handles POST /api/v1/plans
// @Summary Upload a zoning plan
// @Description Upload a B-Plan PDF; extraction runs in the background
// @Tags plans
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "B-Plan PDF"
// @Param name formData string true "Plan name"
// @Success 202 {object} APIResponse "Plan accepted for analysis"
// @Failure 400 {object} APIResponse "Missing file or unsupported type"
// @Failure 413 {object} APIResponse "File too large"
// @Router /plans [post]
func (h *PlanHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	name := c.PostForm("name")
	if name == "" {
		name = header.Filename
	}

	data, err := io.ReadAll(file)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "failed to read uploaded file")
		return
	}

	input := &service.UploadPlanInput{
		Name:        name,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}

	plan, err := h.planService.Upload(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondAccepted(c, plan)
}

// Get handles GET /api/v1/plans/:id
// @Summary Get a zoning plan
// @Tags plans
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse "Plan not found"
// @Router /plans/{id} [get]
func (h *PlanHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	plan, err := h.planService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, plan)
}

// List handles GET /api/v1/plans
// @Summary List zoning plans
// @Tags plans
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} APIResponse
// @Router /plans [get]
func (h *PlanHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)
	plans, total, err := h.planService.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, plans, PagMeta{Total: total, Offset: offset, Limit: limit})
}
