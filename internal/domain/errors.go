package domain

import "errors"

var (
	ErrNotFound             = errors.New("resource not found")
	ErrProjectNotFound      = errors.New("project not found")
	ErrPlanNotFound         = errors.New("zoning plan not found")
	ErrReviewNotFound       = errors.New("compliance review not found")
	ErrUnsupportedFileType  = errors.New("unsupported file type")
	ErrFileTooLarge         = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed         = errors.New("file upload to storage failed")
	ErrNotAnalyzed          = errors.New("document has not been analyzed yet")
	ErrAnalysisInProgress   = errors.New("analysis is already in progress")
	ErrEmptyArchive         = errors.New("archive contains no PDF documents")
	ErrNoPagesRasterized    = errors.New("rasterizer produced no page images")
	ErrCompletenessNotFound = errors.New("completeness check not found")
)
