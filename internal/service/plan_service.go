package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"baucheck/internal/domain"
	"baucheck/internal/extraction"
	"baucheck/internal/port"
)

// UploadPlanInput is the DTO for uploading a zoning plan PDF.
type UploadPlanInput struct {
	Name        string
	FileName    string
	ContentType string
	Data        []byte
}

// PlanService manages zoning plans ("B-Plans") and their extraction
// lifecycle. Plans are uploaded once and reused across many reviews, so their
// decoded attribute sets are held in a TTL cache.
type PlanService interface {
	Upload(ctx context.Context, input *UploadPlanInput) (*domain.ZoningPlan, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ZoningPlan, error)
	List(ctx context.Context, offset, limit int) ([]domain.ZoningPlan, int, error)
	GetAttributeSet(ctx context.Context, id uuid.UUID) (*extraction.AttributeSet, error)
	AnalyzePlan(ctx context.Context, zp *domain.ZoningPlan, maxAttempts int)
}

type planService struct {
	planRepo    port.ZoningPlanRepository
	storage     port.ObjectStorage
	builder     *CorpusBuilder
	assembler   *extraction.Assembler
	cache       *gocache.Cache
	bucket      string
	maxFileSize int64
	model       string
	bestEffort  bool
}

// NewPlanService creates a new PlanService implementation. cacheTTL bounds
// how long a decoded plan attribute set is served without a DB read.
func NewPlanService(
	planRepo port.ZoningPlanRepository,
	storage port.ObjectStorage,
	builder *CorpusBuilder,
	assembler *extraction.Assembler,
	bucket string,
	maxFileSizeMB int64,
	model string,
	bestEffort bool,
	cacheTTL time.Duration,
) PlanService {
	return &planService{
		planRepo:    planRepo,
		storage:     storage,
		builder:     builder,
		assembler:   assembler,
		cache:       gocache.New(cacheTTL, 2*cacheTTL),
		bucket:      bucket,
		maxFileSize: maxFileSizeMB * 1024 * 1024,
		model:       model,
		bestEffort:  bestEffort,
	}
}

func (s *planService) Upload(ctx context.Context, input *UploadPlanInput) (*domain.ZoningPlan, error) {
	if _, ok := domain.AllowedPlanTypes[input.ContentType]; !ok {
		return nil, domain.ErrUnsupportedFileType
	}
	if int64(len(input.Data)) > s.maxFileSize {
		return nil, domain.ErrFileTooLarge
	}

	id := uuid.New()
	key := fmt.Sprintf("plans/%s/%s", id, input.FileName)

	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.bucket,
		Key:         key,
		Body:        bytes.NewReader(input.Data),
		ContentType: input.ContentType,
		Size:        int64(len(input.Data)),
	}); err != nil {
		log.Printf("planService.Upload: s3 upload failed for %s: %v", id, err)
		return nil, domain.ErrUploadFailed
	}

	plan := &domain.ZoningPlan{
		ID:             id,
		Name:           input.Name,
		S3Bucket:       s.bucket,
		S3Key:          key,
		AnalysisStatus: domain.AnalysisStatusPending,
	}
	if err := s.planRepo.Create(ctx, plan); err != nil {
		return nil, fmt.Errorf("creating zoning plan: %w", err)
	}

	log.Printf("planService.Upload: zoning plan %s created (%d bytes)", id, len(input.Data))

	result := *plan
	go s.analyzeInBackground(plan.ID)
	return &result, nil
}

func (s *planService) analyzeInBackground(id uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), analysisTimeout)
	defer cancel()

	plan, err := s.planRepo.GetByID(ctx, id)
	if err != nil {
		log.Printf("planService.analyzeInBackground: failed to get plan %s: %v", id, err)
		return
	}
	plan.Attempts++
	plan.AnalysisStatus = domain.AnalysisStatusProcessing
	if err := s.planRepo.UpdateAnalysis(ctx, plan); err != nil {
		log.Printf("planService.analyzeInBackground: failed to set processing status for %s: %v", id, err)
		return
	}

	s.AnalyzePlan(ctx, plan, defaultMaxAnalysisAttempts)
}

// AnalyzePlan performs the core plan analysis: S3 download, corpus build,
// full attribute assembly, and a single atomic persist of the result. It is
// called by both analyzeInBackground and the queue worker. The plan must
// already be in processing status with Attempts incremented.
func (s *planService) AnalyzePlan(ctx context.Context, plan *domain.ZoningPlan, maxAttempts int) {
	pdfBytes, err := s.storage.Download(ctx, plan.S3Bucket, plan.S3Key)
	if err != nil {
		s.failAnalysis(ctx, plan, fmt.Sprintf("downloading plan: %v", err))
		return
	}
	cor, err := s.builder.FromPDF(ctx, plan.Name, pdfBytes)
	if err != nil {
		s.failAnalysis(ctx, plan, fmt.Sprintf("building corpus: %v", err))
		return
	}
	plan.PageCount = cor.Len()

	set, err := s.assembler.Assemble(ctx, cor, extraction.Options{BestEffort: s.bestEffort})
	if err != nil {
		s.handleAnalysisError(ctx, plan, err, maxAttempts)
		return
	}

	fieldsJSON, err := json.Marshal(set.Fields)
	if err != nil {
		s.failAnalysis(ctx, plan, fmt.Sprintf("encoding attribute set: %v", err))
		return
	}

	now := time.Now().UTC()
	plan.AttributeSet = fieldsJSON
	plan.AnalysisStatus = domain.AnalysisStatusCompleted
	plan.AnalysisError = ""
	plan.AnalysisModel = s.model
	plan.AnalyzedAt = &now
	plan.RetryAfter = nil

	if err := s.planRepo.UpdateAnalysis(ctx, plan); err != nil {
		log.Printf("planService.AnalyzePlan: failed to save results for %s: %v", plan.ID, err)
		return
	}
	s.cache.Set(plan.ID.String(), set, gocache.DefaultExpiration)
	log.Printf("planService.AnalyzePlan: plan %s analyzed (%d pages)", plan.ID, plan.PageCount)
}

// handleAnalysisError queues the plan for retry when the failure is a
// retryable upstream condition and attempts remain; otherwise it marks the
// analysis as permanently failed.
func (s *planService) handleAnalysisError(ctx context.Context, plan *domain.ZoningPlan, analysisErr error, maxAttempts int) {
	if retryAfter, retryable := retryDelay(analysisErr); retryable && plan.Attempts < maxAttempts {
		retryAt := time.Now().Add(retryAfter)
		plan.AnalysisStatus = domain.AnalysisStatusQueued
		plan.AnalysisError = fmt.Sprintf("upstream failure, queued for retry: %v", analysisErr)
		plan.RetryAfter = &retryAt
		if err := s.planRepo.UpdateAnalysis(ctx, plan); err != nil {
			log.Printf("planService.handleAnalysisError: failed to queue plan %s: %v", plan.ID, err)
		} else {
			log.Printf("planService.handleAnalysisError: plan %s queued for retry after %s (attempt %d)",
				plan.ID, retryAt.Format(time.RFC3339), plan.Attempts)
		}
		return
	}
	s.failAnalysis(ctx, plan, fmt.Sprintf("analyzing plan: %v", analysisErr))
}

func (s *planService) failAnalysis(ctx context.Context, plan *domain.ZoningPlan, errMsg string) {
	log.Printf("planService.failAnalysis: plan %s failed: %s", plan.ID, errMsg)
	plan.AnalysisStatus = domain.AnalysisStatusFailed
	plan.AnalysisError = errMsg
	plan.RetryAfter = nil
	if err := s.planRepo.UpdateAnalysis(ctx, plan); err != nil {
		log.Printf("planService.failAnalysis: failed to update status for %s: %v", plan.ID, err)
	}
}

func (s *planService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ZoningPlan, error) {
	return s.planRepo.GetByID(ctx, id)
}

func (s *planService) List(ctx context.Context, offset, limit int) ([]domain.ZoningPlan, int, error) {
	return s.planRepo.List(ctx, offset, limit)
}

// GetAttributeSet returns a plan's decoded attribute set, serving from the
// TTL cache when possible.
func (s *planService) GetAttributeSet(ctx context.Context, id uuid.UUID) (*extraction.AttributeSet, error) {
	if cached, ok := s.cache.Get(id.String()); ok {
		if set, ok := cached.(*extraction.AttributeSet); ok {
			return set, nil
		}
	}

	plan, err := s.planRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan.AnalysisStatus != domain.AnalysisStatusCompleted {
		return nil, domain.ErrNotAnalyzed
	}

	var fields map[extraction.Field]string
	if err := json.Unmarshal(plan.AttributeSet, &fields); err != nil {
		return nil, fmt.Errorf("decoding plan attribute set: %w", err)
	}
	set := &extraction.AttributeSet{Fields: fields}
	s.cache.Set(id.String(), set, gocache.DefaultExpiration)
	return set, nil
}
