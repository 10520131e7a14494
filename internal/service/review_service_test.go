package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"baucheck/internal/compare"
	"baucheck/internal/domain"
	"baucheck/internal/extraction"
	"baucheck/internal/port"
	"baucheck/internal/service"
	"baucheck/mocks"
)

type stubPlanService struct {
	set *extraction.AttributeSet
	err error
}

func (s *stubPlanService) Upload(ctx context.Context, input *service.UploadPlanInput) (*domain.ZoningPlan, error) {
	return nil, errors.New("not implemented")
}

func (s *stubPlanService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ZoningPlan, error) {
	return nil, errors.New("not implemented")
}

func (s *stubPlanService) List(ctx context.Context, offset, limit int) ([]domain.ZoningPlan, int, error) {
	return nil, 0, errors.New("not implemented")
}

func (s *stubPlanService) GetAttributeSet(ctx context.Context, id uuid.UUID) (*extraction.AttributeSet, error) {
	return s.set, s.err
}

func (s *stubPlanService) AnalyzePlan(ctx context.Context, zp *domain.ZoningPlan, maxAttempts int) {}

type reviewFixture struct {
	reviewRepo  *mocks.MockReviewRepo
	projectRepo *mocks.MockProjectRepo
	planService *stubPlanService
	reasoner    *mocks.MockReasoner
	renderer    *mocks.MockReportRenderer
	sender      *mocks.MockReportSender
	storage     *mocks.MockObjectStorage
	svc         service.ReviewService
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()
	f := &reviewFixture{
		reviewRepo:  new(mocks.MockReviewRepo),
		projectRepo: new(mocks.MockProjectRepo),
		planService: &stubPlanService{},
		reasoner:    new(mocks.MockReasoner),
		renderer:    new(mocks.MockReportRenderer),
		sender:      new(mocks.MockReportSender),
		storage:     new(mocks.MockObjectStorage),
	}
	f.svc = service.NewReviewService(
		f.reviewRepo, f.projectRepo, f.planService, compare.NewComparator(f.reasoner),
		f.renderer, f.sender, f.storage, "test-bucket", 3600,
	)
	return f
}

func analyzedProject(t *testing.T) *domain.Project {
	t.Helper()
	raw, err := json.Marshal(map[extraction.Field]string{
		extraction.FieldGRZ: "0,35",
	})
	require.NoError(t, err)
	return &domain.Project{
		ID:             uuid.New(),
		Name:           "EFH Musterweg 4",
		AnalysisStatus: domain.AnalysisStatusCompleted,
		AttributeSet:   raw,
	}
}

// singleFieldVerdict is a minimal comparator answer covering the one field
// both attribute sets share.
func singleFieldVerdict(overall string) string {
	return fmt.Sprintf(`{
		"overall_status": %q,
		"fields": {
			"grz": {
				"compliance_status": "compliant",
				"issues": [],
				"recommended_actions": [],
				"additional_checks": []
			}
		}
	}`, overall)
}

func TestCreateReviewRequiresAnalyzedProject(t *testing.T) {
	f := newReviewFixture(t)
	project := analyzedProject(t)
	project.AnalysisStatus = domain.AnalysisStatusProcessing

	f.projectRepo.On("GetByID", mock.Anything, project.ID).Return(project, nil)

	_, err := f.svc.CreateReview(context.Background(), project.ID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotAnalyzed)
}

func TestCreateReviewRequiresAnalyzedPlan(t *testing.T) {
	f := newReviewFixture(t)
	project := analyzedProject(t)
	f.planService.err = domain.ErrNotAnalyzed

	f.projectRepo.On("GetByID", mock.Anything, project.ID).Return(project, nil)

	_, err := f.svc.CreateReview(context.Background(), project.ID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotAnalyzed)
}

func TestCreateReviewPersistsVerdictAndReport(t *testing.T) {
	f := newReviewFixture(t)
	project := analyzedProject(t)
	planID := uuid.New()
	f.planService.set = &extraction.AttributeSet{
		Fields: map[extraction.Field]string{extraction.FieldGRZ: "höchstens 0,4"},
	}

	f.projectRepo.On("GetByID", mock.Anything, project.ID).Return(project, nil)
	f.reasoner.On("Invoke", mock.Anything, mock.Anything, mock.Anything).
		Return(singleFieldVerdict("compliant"), nil)
	f.renderer.On("RenderComplianceReport", mock.Anything, project.Name, mock.Anything).
		Return([]byte("Prüfbericht"), "text/plain; charset=utf-8", nil)
	f.storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(&port.UploadOutput{}, nil)

	var saved *domain.ComplianceReview
	f.reviewRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.ComplianceReview")).
		Run(func(args mock.Arguments) {
			// Snapshot the value at Create time; the service mutates the same
			// struct later when attaching the report location.
			cp := *args.Get(1).(*domain.ComplianceReview)
			saved = &cp
		}).
		Return(nil)
	f.reviewRepo.On("SetReport", mock.Anything, mock.AnythingOfType("uuid.UUID"), "test-bucket", mock.AnythingOfType("string")).
		Return(nil)

	review, err := f.svc.CreateReview(context.Background(), project.ID, planID)
	require.NoError(t, err)
	require.NotNil(t, saved)
	// The verdict row is written before any report artifact exists.
	assert.Empty(t, saved.ReportKey)
	assert.Equal(t, domain.OverallCompliant, review.OverallStatus)
	assert.Equal(t, planID, review.ZoningPlanID)
	assert.Equal(t, "test-bucket", review.ReportBucket)
	assert.Equal(t, fmt.Sprintf("reports/%s/report.txt", review.ID), review.ReportKey)

	var verdict compare.Verdict
	require.NoError(t, json.Unmarshal(review.Verdict, &verdict))
	require.Contains(t, verdict.Fields, extraction.FieldGRZ)

	// No recipient configured, so nothing is emailed.
	f.sender.AssertNotCalled(t, "SendComplianceReport", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateReviewSurvivesReportRenderingFailure(t *testing.T) {
	f := newReviewFixture(t)
	project := analyzedProject(t)
	f.planService.set = &extraction.AttributeSet{
		Fields: map[extraction.Field]string{extraction.FieldGRZ: "höchstens 0,4"},
	}

	f.projectRepo.On("GetByID", mock.Anything, project.ID).Return(project, nil)
	f.reasoner.On("Invoke", mock.Anything, mock.Anything, mock.Anything).
		Return(singleFieldVerdict("non_compliant"), nil)
	f.renderer.On("RenderComplianceReport", mock.Anything, project.Name, mock.Anything).
		Return(nil, "", errors.New("renderer down"))
	f.reviewRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.ComplianceReview")).Return(nil)

	review, err := f.svc.CreateReview(context.Background(), project.ID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, domain.OverallNonCompliant, review.OverallStatus)
	assert.Empty(t, review.ReportKey)
	f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
	f.reviewRepo.AssertNotCalled(t, "SetReport", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateReviewSkipsReportWhenSaveFails(t *testing.T) {
	f := newReviewFixture(t)
	project := analyzedProject(t)
	f.planService.set = &extraction.AttributeSet{
		Fields: map[extraction.Field]string{extraction.FieldGRZ: "höchstens 0,4"},
	}

	f.projectRepo.On("GetByID", mock.Anything, project.ID).Return(project, nil)
	f.reasoner.On("Invoke", mock.Anything, mock.Anything, mock.Anything).
		Return(singleFieldVerdict("compliant"), nil)
	f.reviewRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

	_, err := f.svc.CreateReview(context.Background(), project.ID, uuid.New())
	require.Error(t, err)

	// A failed insert must not leave an orphaned report object behind.
	f.renderer.AssertNotCalled(t, "RenderComplianceReport", mock.Anything, mock.Anything, mock.Anything)
	f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestCreateReviewEmailsReportWhenRecipientSet(t *testing.T) {
	f := newReviewFixture(t)
	project := analyzedProject(t)
	project.NotifyEmail = "planer@example.com"
	f.planService.set = &extraction.AttributeSet{
		Fields: map[extraction.Field]string{extraction.FieldGRZ: "höchstens 0,4"},
	}

	f.projectRepo.On("GetByID", mock.Anything, project.ID).Return(project, nil)
	f.reasoner.On("Invoke", mock.Anything, mock.Anything, mock.Anything).
		Return(singleFieldVerdict("compliant"), nil)
	f.renderer.On("RenderComplianceReport", mock.Anything, project.Name, mock.Anything).
		Return([]byte("Prüfbericht"), "text/plain; charset=utf-8", nil)
	f.storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{}, nil)
	f.reviewRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.reviewRepo.On("SetReport", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.storage.On("GetPresignedURL", mock.Anything, "test-bucket", mock.Anything, int64(3600)).
		Return("https://example.com/report", nil)
	f.sender.On("SendComplianceReport", mock.Anything, "planer@example.com", project.Name, "https://example.com/report").
		Return(nil)

	var emailedID uuid.UUID
	f.reviewRepo.On("MarkEmailed", mock.Anything, mock.AnythingOfType("uuid.UUID")).
		Run(func(args mock.Arguments) { emailedID = args.Get(1).(uuid.UUID) }).
		Return(nil)

	review, err := f.svc.CreateReview(context.Background(), project.ID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, review.ID, emailedID)
	f.sender.AssertExpectations(t)
}

func TestCreateReviewSurvivesEmailFailure(t *testing.T) {
	f := newReviewFixture(t)
	project := analyzedProject(t)
	project.NotifyEmail = "planer@example.com"
	f.planService.set = &extraction.AttributeSet{
		Fields: map[extraction.Field]string{extraction.FieldGRZ: "höchstens 0,4"},
	}

	f.projectRepo.On("GetByID", mock.Anything, project.ID).Return(project, nil)
	f.reasoner.On("Invoke", mock.Anything, mock.Anything, mock.Anything).
		Return(singleFieldVerdict("compliant"), nil)
	f.renderer.On("RenderComplianceReport", mock.Anything, project.Name, mock.Anything).
		Return([]byte("Prüfbericht"), "text/plain; charset=utf-8", nil)
	f.storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{}, nil)
	f.reviewRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.reviewRepo.On("SetReport", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.storage.On("GetPresignedURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("presign failed"))

	_, err := f.svc.CreateReview(context.Background(), project.ID, uuid.New())
	require.NoError(t, err)
	f.reviewRepo.AssertNotCalled(t, "MarkEmailed", mock.Anything, mock.Anything)
}

func TestCreateReviewPropagatesComparatorParseFailure(t *testing.T) {
	f := newReviewFixture(t)
	project := analyzedProject(t)
	f.planService.set = &extraction.AttributeSet{
		Fields: map[extraction.Field]string{extraction.FieldGRZ: "höchstens 0,4"},
	}

	f.projectRepo.On("GetByID", mock.Anything, project.ID).Return(project, nil)
	f.reasoner.On("Invoke", mock.Anything, mock.Anything, mock.Anything).
		Return("I could not produce JSON, sorry.", nil)

	_, err := f.svc.CreateReview(context.Background(), project.ID, uuid.New())
	var parseErr *compare.ParseError
	assert.ErrorAs(t, err, &parseErr)
	f.reviewRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestExportXLSXBuildsWorkbook(t *testing.T) {
	f := newReviewFixture(t)
	project := analyzedProject(t)
	review := &domain.ComplianceReview{
		ID:            uuid.New(),
		ProjectID:     project.ID,
		OverallStatus: domain.OverallCompliant,
		Verdict:       json.RawMessage(singleFieldVerdict("compliant")),
	}

	f.reviewRepo.On("GetByID", mock.Anything, review.ID).Return(review, nil)
	f.projectRepo.On("GetByID", mock.Anything, project.ID).Return(project, nil)

	data, name, err := f.svc.ExportXLSX(context.Background(), review.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Equal(t, fmt.Sprintf("review-%s.xlsx", review.ID), name)
}
