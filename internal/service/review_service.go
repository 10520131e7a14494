package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"

	"baucheck/internal/compare"
	"baucheck/internal/domain"
	"baucheck/internal/export/xlsx"
	"baucheck/internal/extraction"
	"baucheck/internal/port"
)

// ReviewService runs compliance reviews: it compares a fully analyzed project
// against a zoning plan, persists the verdict, and delivers the report.
type ReviewService interface {
	CreateReview(ctx context.Context, projectID, planID uuid.UUID) (*domain.ComplianceReview, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ComplianceReview, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.ComplianceReview, error)
	ExportXLSX(ctx context.Context, id uuid.UUID) ([]byte, string, error)
}

type reviewService struct {
	reviewRepo    port.ReviewRepository
	projectRepo   port.ProjectRepository
	planService   PlanService
	comparator    *compare.Comparator
	renderer      port.ReportRenderer
	sender        port.ReportSender
	storage       port.ObjectStorage
	bucket        string
	presignExpiry int64
}

// NewReviewService creates a new ReviewService implementation.
func NewReviewService(
	reviewRepo port.ReviewRepository,
	projectRepo port.ProjectRepository,
	planService PlanService,
	comparator *compare.Comparator,
	renderer port.ReportRenderer,
	sender port.ReportSender,
	storage port.ObjectStorage,
	bucket string,
	presignExpiry int64,
) ReviewService {
	return &reviewService{
		reviewRepo:    reviewRepo,
		projectRepo:   projectRepo,
		planService:   planService,
		comparator:    comparator,
		renderer:      renderer,
		sender:        sender,
		storage:       storage,
		bucket:        bucket,
		presignExpiry: presignExpiry,
	}
}

// CreateReview compares a project against a zoning plan and persists the
// verdict. The verdict is saved first; report rendering, upload and email
// delivery run afterwards, their failures logged, never propagated, since the
// review result does not depend on them. Nothing lands in object storage
// unless the review row exists.
func (s *reviewService) CreateReview(ctx context.Context, projectID, planID uuid.UUID) (*domain.ComplianceReview, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.AnalysisStatus != domain.AnalysisStatusCompleted {
		return nil, domain.ErrNotAnalyzed
	}

	var projectFields map[extraction.Field]string
	if err := json.Unmarshal(project.AttributeSet, &projectFields); err != nil {
		return nil, fmt.Errorf("decoding project attribute set: %w", err)
	}
	projectSet := &extraction.AttributeSet{Fields: projectFields}

	planSet, err := s.planService.GetAttributeSet(ctx, planID)
	if err != nil {
		return nil, err
	}

	verdict, err := s.comparator.Compare(ctx, projectSet, planSet)
	if err != nil {
		return nil, err
	}

	verdictJSON, err := json.Marshal(verdict)
	if err != nil {
		return nil, fmt.Errorf("encoding verdict: %w", err)
	}

	review := &domain.ComplianceReview{
		ID:            uuid.New(),
		ProjectID:     projectID,
		ZoningPlanID:  planID,
		OverallStatus: domain.OverallStatus(verdict.OverallStatus),
		Verdict:       verdictJSON,
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("saving review: %w", err)
	}

	log.Printf("reviewService.CreateReview: review %s created for project %s (status %s)",
		review.ID, projectID, review.OverallStatus)

	reportKey, reportErr := s.uploadReport(ctx, review, project.Name)
	if reportErr != nil {
		log.Printf("reviewService.CreateReview: report generation failed for %s: %v", review.ID, reportErr)
	} else {
		review.ReportBucket = s.bucket
		review.ReportKey = reportKey
		if err := s.reviewRepo.SetReport(ctx, review.ID, review.ReportBucket, review.ReportKey); err != nil {
			log.Printf("reviewService.CreateReview: attaching report to review %s failed: %v", review.ID, err)
		}
	}

	if review.ReportKey != "" && project.NotifyEmail != "" {
		s.emailReport(ctx, review, project.Name, project.NotifyEmail)
	}

	return review, nil
}

func (s *reviewService) uploadReport(ctx context.Context, review *domain.ComplianceReview, projectName string) (string, error) {
	reportBytes, contentType, err := s.renderer.RenderComplianceReport(ctx, projectName, review.Verdict)
	if err != nil {
		return "", fmt.Errorf("rendering report: %w", err)
	}

	key := fmt.Sprintf("reports/%s/report.txt", review.ID)
	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.bucket,
		Key:         key,
		Body:        bytes.NewReader(reportBytes),
		ContentType: contentType,
		Size:        int64(len(reportBytes)),
	}); err != nil {
		return "", fmt.Errorf("uploading report: %w", err)
	}
	return key, nil
}

func (s *reviewService) emailReport(ctx context.Context, review *domain.ComplianceReview, projectName, toEmail string) {
	reportURL, err := s.storage.GetPresignedURL(ctx, review.ReportBucket, review.ReportKey, s.presignExpiry)
	if err != nil {
		log.Printf("reviewService.emailReport: presigning report for %s failed: %v", review.ID, err)
		return
	}
	if err := s.sender.SendComplianceReport(ctx, toEmail, projectName, reportURL); err != nil {
		log.Printf("reviewService.emailReport: sending report for %s failed: %v", review.ID, err)
		return
	}
	if err := s.reviewRepo.MarkEmailed(ctx, review.ID); err != nil {
		log.Printf("reviewService.emailReport: marking review %s emailed failed: %v", review.ID, err)
	}
}

func (s *reviewService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ComplianceReview, error) {
	return s.reviewRepo.GetByID(ctx, id)
}

func (s *reviewService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.ComplianceReview, error) {
	return s.reviewRepo.ListByProject(ctx, projectID)
}

// ExportXLSX renders a stored verdict as a spreadsheet download.
func (s *reviewService) ExportXLSX(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	project, err := s.projectRepo.GetByID(ctx, review.ProjectID)
	if err != nil {
		return nil, "", err
	}

	data, err := xlsx.ExportVerdict(project.Name, review.Verdict)
	if err != nil {
		return nil, "", fmt.Errorf("exporting verdict: %w", err)
	}
	name := fmt.Sprintf("review-%s.xlsx", review.ID)
	return data, name, nil
}
