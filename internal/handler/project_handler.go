package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"baucheck/internal/service"
)

// ProjectHandler handles project submission endpoints.
type ProjectHandler struct {
	projectService service.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// Upload handles POST /api/v1/projects
// @Summary Upload a project submission
// @Description Upload a zip archive of architectural PDFs; extraction runs in the background
// @Tags projects
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Zip archive of PDFs"
// @Param name formData string true "Project name"
// @Param notify_email formData string false "Address to email the compliance report to"
// @Success 202 {object} APIResponse "Project accepted for analysis"
// @Failure 400 {object} APIResponse "Missing file or unsupported type"
// @Failure 413 {object} APIResponse "File too large"
// @Router /projects [post]
func (h *ProjectHandler) Upload(c *gin.Context) {
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

	input := &service.UploadProjectInput{
		Name:        name,
		NotifyEmail: c.PostForm("notify_email"),
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}

	project, err := h.projectService.Upload(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondAccepted(c, project)
}

// Get handles GET /api/v1/projects/:id
// @Summary Get a project
// @Description Get a project with its analysis status and extracted attributes
// @Tags projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse "Project not found"
// @Router /projects/{id} [get]
func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	project, err := h.projectService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, project)
}

// List handles GET /api/v1/projects
// @Summary List projects
// @Description List all projects with pagination
// @Tags projects
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} APIResponse
// @Router /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)
	projects, total, err := h.projectService.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, projects, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Retry handles POST /api/v1/projects/:id/retry
// @Summary Retry project analysis
// @Description Reset a project and re-run the extraction pipeline
// @Tags projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 202 {object} APIResponse
// @Failure 404 {object} APIResponse "Project not found"
// @Failure 409 {object} APIResponse "Analysis already running"
// @Router /projects/{id}/retry [post]
func (h *ProjectHandler) Retry(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	project, err := h.projectService.RetryAnalysis(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondAccepted(c, project)
}

// Delete handles DELETE /api/v1/projects/:id
// @Summary Delete a project
// @Tags projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse "Project not found"
// @Router /projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.projectService.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": id})
}

// CheckCompleteness handles POST /api/v1/projects/:id/completeness
// @Summary Run a completeness check
// @Description Check the submission against the required-documents checklist
// @Tags projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 201 {object} APIResponse
// @Failure 404 {object} APIResponse "Project not found"
// @Failure 502 {object} APIResponse "Reasoning service failure"
// @Router /projects/{id}/completeness [post]
func (h *ProjectHandler) CheckCompleteness(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	check, err := h.projectService.CheckCompleteness(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, check)
}

// GetCompleteness handles GET /api/v1/projects/:id/completeness
// @Summary Get the latest completeness check
// @Tags projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse "No check found"
// @Router /projects/{id}/completeness [get]
func (h *ProjectHandler) GetCompleteness(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	check, err := h.projectService.GetCompleteness(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, check)
}

func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return offset, limit
}
