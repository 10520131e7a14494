package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"baucheck/internal/compare"
	"baucheck/internal/completeness"
	"baucheck/internal/domain"
	"baucheck/internal/extraction"
	"baucheck/internal/reasoner"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondAccepted sends a 202 response for work continuing in the background.
func RespondAccepted(c *gin.Context, data interface{}) {
	c.JSON(http.StatusAccepted, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain and pipeline errors to HTTP status codes
// and error codes. Upstream reasoning failures map to 502, parse failures of
// the reasoning output to 500; an ambiguous partial result never masquerades
// as a complete one.
func MapDomainError(err error) (status int, code, msg string) {
	var compareParseErr *compare.ParseError
	var completenessParseErr *completeness.ParseError
	var upstreamErr *reasoner.UpstreamError
	var transportErr *reasoner.TransportError
	var fieldErr *extraction.FieldError
	var assemblyErr *extraction.AssemblyError

	switch {
	case errors.Is(err, domain.ErrProjectNotFound):
		return http.StatusNotFound, "PROJECT_NOT_FOUND", "project not found"
	case errors.Is(err, domain.ErrPlanNotFound):
		return http.StatusNotFound, "PLAN_NOT_FOUND", "zoning plan not found"
	case errors.Is(err, domain.ErrReviewNotFound):
		return http.StatusNotFound, "REVIEW_NOT_FOUND", "review not found"
	case errors.Is(err, domain.ErrCompletenessNotFound):
		return http.StatusNotFound, "COMPLETENESS_NOT_FOUND", "no completeness check found for this project"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; projects need a zip archive, plans a pdf"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusInternalServerError, "UPLOAD_FAILED", "file upload to storage failed"
	case errors.Is(err, domain.ErrNotAnalyzed):
		return http.StatusConflict, "NOT_ANALYZED", "document has not been analyzed yet"
	case errors.Is(err, domain.ErrAnalysisInProgress):
		return http.StatusConflict, "ANALYSIS_IN_PROGRESS", "analysis is already running"
	case errors.Is(err, domain.ErrEmptyArchive):
		return http.StatusBadRequest, "EMPTY_ARCHIVE", "archive contains no PDF documents"
	case errors.Is(err, domain.ErrNoPagesRasterized):
		return http.StatusBadRequest, "NO_PAGES", "no pages could be rasterized from the upload"
	case errors.As(err, &compareParseErr):
		return http.StatusInternalServerError, "COMPARISON_PARSE_FAILED", "comparison response did not match the expected structure"
	case errors.As(err, &completenessParseErr):
		return http.StatusInternalServerError, "COMPLETENESS_PARSE_FAILED", "completeness response did not match the expected structure"
	case errors.As(err, &upstreamErr):
		return http.StatusBadGateway, "UPSTREAM_FAILED", "reasoning service rejected the request"
	case errors.As(err, &transportErr):
		return http.StatusBadGateway, "UPSTREAM_UNREACHABLE", "reasoning service is unreachable"
	case errors.As(err, &assemblyErr):
		return http.StatusBadGateway, "EXTRACTION_FAILED", assemblyErr.Error()
	case errors.As(err, &fieldErr):
		return http.StatusBadGateway, "EXTRACTION_FAILED", fieldErr.Error()
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] internal error: %v", requestID, err)
	}
	RespondError(c, status, code, msg)
}
