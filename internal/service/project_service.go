package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"baucheck/internal/completeness"
	"baucheck/internal/corpus"
	"baucheck/internal/domain"
	"baucheck/internal/extraction"
	"baucheck/internal/port"
	"baucheck/internal/reasoner"
)

const (
	defaultMaxAnalysisAttempts = 5
	analysisTimeout            = 10 * time.Minute
	defaultRetryBackoff        = time.Minute
)

// UploadProjectInput is the DTO for uploading a project submission archive.
type UploadProjectInput struct {
	Name        string
	NotifyEmail string
	FileName    string
	ContentType string
	Data        []byte
}

// ProjectService manages project submissions and their extraction lifecycle.
type ProjectService interface {
	Upload(ctx context.Context, input *UploadProjectInput) (*domain.Project, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)
	List(ctx context.Context, offset, limit int) ([]domain.Project, int, error)
	RetryAnalysis(ctx context.Context, id uuid.UUID) (*domain.Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CheckCompleteness(ctx context.Context, projectID uuid.UUID) (*domain.CompletenessCheck, error)
	GetCompleteness(ctx context.Context, projectID uuid.UUID) (*domain.CompletenessCheck, error)
	AnalyzeProject(ctx context.Context, p *domain.Project, maxAttempts int)
}

type projectService struct {
	projectRepo      port.ProjectRepository
	completenessRepo port.CompletenessRepository
	storage          port.ObjectStorage
	builder          *CorpusBuilder
	assembler        *extraction.Assembler
	checker          CompletenessChecker
	bucket           string
	maxFileSize      int64
	model            string
	bestEffort       bool
}

// CompletenessChecker is the slice of the completeness package the project
// service depends on.
type CompletenessChecker interface {
	Check(ctx context.Context, c *corpus.Corpus) (*completeness.Report, error)
}

// NewProjectService creates a new ProjectService implementation.
func NewProjectService(
	projectRepo port.ProjectRepository,
	completenessRepo port.CompletenessRepository,
	storage port.ObjectStorage,
	builder *CorpusBuilder,
	assembler *extraction.Assembler,
	checker CompletenessChecker,
	bucket string,
	maxFileSizeMB int64,
	model string,
	bestEffort bool,
) ProjectService {
	return &projectService{
		projectRepo:      projectRepo,
		completenessRepo: completenessRepo,
		storage:          storage,
		builder:          builder,
		assembler:        assembler,
		checker:          checker,
		bucket:           bucket,
		maxFileSize:      maxFileSizeMB * 1024 * 1024,
		model:            model,
		bestEffort:       bestEffort,
	}
}

func (s *projectService) Upload(ctx context.Context, input *UploadProjectInput) (*domain.Project, error) {
	if _, ok := domain.AllowedArchiveTypes[input.ContentType]; !ok {
		return nil, domain.ErrUnsupportedFileType
	}
	if int64(len(input.Data)) > s.maxFileSize {
		return nil, domain.ErrFileTooLarge
	}

	id := uuid.New()
	key := fmt.Sprintf("projects/%s/%s", id, input.FileName)

	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.bucket,
		Key:         key,
		Body:        bytes.NewReader(input.Data),
		ContentType: input.ContentType,
		Size:        int64(len(input.Data)),
	}); err != nil {
		log.Printf("projectService.Upload: s3 upload failed for %s: %v", id, err)
		return nil, domain.ErrUploadFailed
	}

	project := &domain.Project{
		ID:             id,
		Name:           input.Name,
		NotifyEmail:    input.NotifyEmail,
		S3Bucket:       s.bucket,
		S3Key:          key,
		AnalysisStatus: domain.AnalysisStatusPending,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	log.Printf("projectService.Upload: project %s created (%d bytes)", id, len(input.Data))

	// Copy before launching goroutine so the caller's value is independent of
	// background work.
	result := *project

	go s.analyzeInBackground(project.ID)

	return &result, nil
}

func (s *projectService) analyzeInBackground(id uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), analysisTimeout)
	defer cancel()

	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		log.Printf("projectService.analyzeInBackground: failed to get project %s: %v", id, err)
		return
	}
	project.Attempts++
	project.AnalysisStatus = domain.AnalysisStatusProcessing
	if err := s.projectRepo.UpdateAnalysis(ctx, project); err != nil {
		log.Printf("projectService.analyzeInBackground: failed to set processing status for %s: %v", id, err)
		return
	}

	s.AnalyzeProject(ctx, project, defaultMaxAnalysisAttempts)
}

// AnalyzeProject performs the core analysis: S3 download, corpus build, full
// attribute assembly, and a single atomic persist of the result. It is called
// by both analyzeInBackground and the queue worker. The project must already
// be in processing status with Attempts incremented.
func (s *projectService) AnalyzeProject(ctx context.Context, p *domain.Project, maxAttempts int) {
	zipBytes, err := s.storage.Download(ctx, p.S3Bucket, p.S3Key)
	if err != nil {
		s.failAnalysis(ctx, p, fmt.Sprintf("downloading archive: %v", err))
		return
	}

	cor, err := s.builder.FromZip(ctx, zipBytes)
	if err != nil {
		s.failAnalysis(ctx, p, fmt.Sprintf("building corpus: %v", err))
		return
	}
	p.PageCount = cor.Len()

	set, err := s.assembler.Assemble(ctx, cor, extraction.Options{BestEffort: s.bestEffort})
	if err != nil {
		s.handleAnalysisError(ctx, p, err, maxAttempts)
		return
	}

	fieldsJSON, err := json.Marshal(set.Fields)
	if err != nil {
		s.failAnalysis(ctx, p, fmt.Sprintf("encoding attribute set: %v", err))
		return
	}
	summaryJSON, err := json.Marshal(set.Summary)
	if err != nil {
		s.failAnalysis(ctx, p, fmt.Sprintf("encoding analysis summary: %v", err))
		return
	}

	now := time.Now().UTC()
	p.AttributeSet = fieldsJSON
	p.AnalysisSummary = summaryJSON
	p.AnalysisStatus = domain.AnalysisStatusCompleted
	p.AnalysisError = ""
	p.AnalysisModel = s.model
	p.AnalyzedAt = &now
	p.RetryAfter = nil

	if err := s.projectRepo.UpdateAnalysis(ctx, p); err != nil {
		log.Printf("projectService.AnalyzeProject: failed to save results for %s: %v", p.ID, err)
		return
	}
	log.Printf("projectService.AnalyzeProject: project %s analyzed (%d pages)", p.ID, p.PageCount)
}

// handleAnalysisError queues the project for retry when the failure is a
// retryable upstream condition and attempts remain; otherwise it marks the
// analysis as permanently failed.
func (s *projectService) handleAnalysisError(ctx context.Context, p *domain.Project, analysisErr error, maxAttempts int) {
	if retryAfter, retryable := retryDelay(analysisErr); retryable && p.Attempts < maxAttempts {
		retryAt := time.Now().Add(retryAfter)
		p.AnalysisStatus = domain.AnalysisStatusQueued
		p.AnalysisError = fmt.Sprintf("upstream failure, queued for retry: %v", analysisErr)
		p.RetryAfter = &retryAt
		if err := s.projectRepo.UpdateAnalysis(ctx, p); err != nil {
			log.Printf("projectService.handleAnalysisError: failed to queue project %s: %v", p.ID, err)
		} else {
			log.Printf("projectService.handleAnalysisError: project %s queued for retry after %s (attempt %d)",
				p.ID, retryAt.Format(time.RFC3339), p.Attempts)
		}
		return
	}
	s.failAnalysis(ctx, p, fmt.Sprintf("analyzing project: %v", analysisErr))
}

func (s *projectService) failAnalysis(ctx context.Context, p *domain.Project, errMsg string) {
	log.Printf("projectService.failAnalysis: project %s failed: %s", p.ID, errMsg)
	p.AnalysisStatus = domain.AnalysisStatusFailed
	p.AnalysisError = errMsg
	p.RetryAfter = nil
	if err := s.projectRepo.UpdateAnalysis(ctx, p); err != nil {
		log.Printf("projectService.failAnalysis: failed to update status for %s: %v", p.ID, err)
	}
}

// retryDelay classifies an analysis error. Rate limits and 5xx answers from
// the reasoning service are retryable, as are transport-level failures; a 4xx
// answer means the request itself is bad and retrying cannot fix it.
func retryDelay(err error) (time.Duration, bool) {
	var upstream *reasoner.UpstreamError
	if errors.As(err, &upstream) && upstream.Retryable() {
		if upstream.RetryAfter > 0 {
			return upstream.RetryAfter, true
		}
		return defaultRetryBackoff, true
	}
	var transport *reasoner.TransportError
	if errors.As(err, &transport) {
		return defaultRetryBackoff, true
	}
	return 0, false
}

func (s *projectService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	return s.projectRepo.GetByID(ctx, id)
}

func (s *projectService) List(ctx context.Context, offset, limit int) ([]domain.Project, int, error) {
	return s.projectRepo.List(ctx, offset, limit)
}

func (s *projectService) RetryAnalysis(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.AnalysisStatus == domain.AnalysisStatusProcessing {
		return nil, domain.ErrAnalysisInProgress
	}

	project.AnalysisStatus = domain.AnalysisStatusPending
	project.AnalysisError = ""
	project.AttributeSet = nil
	project.AnalysisSummary = nil
	project.AnalyzedAt = nil
	project.RetryAfter = nil
	if err := s.projectRepo.UpdateAnalysis(ctx, project); err != nil {
		return nil, fmt.Errorf("resetting project for retry: %w", err)
	}

	log.Printf("projectService.RetryAnalysis: retrying analysis for project %s", id)

	result := *project
	go s.analyzeInBackground(project.ID)
	return &result, nil
}

// CheckCompleteness rebuilds the corpus from the stored archive and runs the
// required-documents check over it. The report is persisted only once fully
// assembled.
func (s *projectService) CheckCompleteness(ctx context.Context, projectID uuid.UUID) (*domain.CompletenessCheck, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	zipBytes, err := s.storage.Download(ctx, project.S3Bucket, project.S3Key)
	if err != nil {
		return nil, fmt.Errorf("downloading archive: %w", err)
	}
	cor, err := s.builder.FromZip(ctx, zipBytes)
	if err != nil {
		return nil, fmt.Errorf("building corpus: %w", err)
	}

	report, err := s.checker.Check(ctx, cor)
	if err != nil {
		return nil, err
	}

	entriesJSON, err := json.Marshal(report.Entries)
	if err != nil {
		return nil, fmt.Errorf("encoding checklist entries: %w", err)
	}

	check := &domain.CompletenessCheck{
		ID:              uuid.New(),
		ProjectID:       projectID,
		ApplicationType: report.ApplicationType,
		Status:          domain.CompletenessStatus(report.Status),
		Entries:         entriesJSON,
	}
	if err := s.completenessRepo.Create(ctx, check); err != nil {
		return nil, fmt.Errorf("saving completeness check: %w", err)
	}

	log.Printf("projectService.CheckCompleteness: project %s checked, status %s", projectID, check.Status)
	return check, nil
}

func (s *projectService) GetCompleteness(ctx context.Context, projectID uuid.UUID) (*domain.CompletenessCheck, error) {
	if _, err := s.projectRepo.GetByID(ctx, projectID); err != nil {
		return nil, err
	}
	return s.completenessRepo.GetLatestByProject(ctx, projectID)
}

func (s *projectService) Delete(ctx context.Context, id uuid.UUID) error {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, project.S3Bucket, project.S3Key); err != nil {
		log.Printf("projectService.Delete: failed to delete s3 object for %s: %v", id, err)
	}
	return s.projectRepo.Delete(ctx, id)
}
