package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"baucheck/internal/completeness"
	"baucheck/internal/corpus"
	"baucheck/internal/domain"
	"baucheck/internal/extraction"
	"baucheck/internal/port"
	"baucheck/internal/reasoner"
	"baucheck/internal/service"
	"baucheck/mocks"
)

type stubChecker struct {
	report *completeness.Report
	err    error
}

func (s *stubChecker) Check(ctx context.Context, c *corpus.Corpus) (*completeness.Report, error) {
	return s.report, s.err
}

type projectFixture struct {
	projectRepo      *mocks.MockProjectRepo
	completenessRepo *mocks.MockCompletenessRepo
	storage          *mocks.MockObjectStorage
	rasterizer       *mocks.MockRasterizer
	reasoner         *mocks.MockReasoner
	checker          *stubChecker
	svc              service.ProjectService
}

func newProjectFixture(t *testing.T) *projectFixture {
	t.Helper()
	f := &projectFixture{
		projectRepo:      new(mocks.MockProjectRepo),
		completenessRepo: new(mocks.MockCompletenessRepo),
		storage:          new(mocks.MockObjectStorage),
		rasterizer:       new(mocks.MockRasterizer),
		reasoner:         new(mocks.MockReasoner),
		checker:          &stubChecker{},
	}
	extractor := extraction.NewExtractor(f.reasoner, nil, 4)
	reconciler := extraction.NewReconciler(f.reasoner)
	assembler := extraction.NewAssembler(extractor, reconciler)
	builder := service.NewCorpusBuilder(f.rasterizer, 150)
	f.svc = service.NewProjectService(
		f.projectRepo, f.completenessRepo, f.storage, builder, assembler, f.checker,
		"test-bucket", 1, "test-model", false,
	)
	return f
}

func processingProject(t *testing.T) *domain.Project {
	t.Helper()
	return &domain.Project{
		ID:             uuid.New(),
		Name:           "EFH Musterweg 4",
		S3Bucket:       "test-bucket",
		S3Key:          "projects/x/upload.zip",
		AnalysisStatus: domain.AnalysisStatusProcessing,
		Attempts:       1,
	}
}

func TestUploadRejectsUnsupportedContentType(t *testing.T) {
	f := newProjectFixture(t)

	_, err := f.svc.Upload(context.Background(), &service.UploadProjectInput{
		Name:        "project",
		FileName:    "upload.pdf",
		ContentType: "application/pdf",
		Data:        []byte("pdf"),
	})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
	f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	f := newProjectFixture(t)

	_, err := f.svc.Upload(context.Background(), &service.UploadProjectInput{
		Name:        "project",
		FileName:    "upload.zip",
		ContentType: "application/zip",
		Data:        make([]byte, 1024*1024+1),
	})
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
}

func TestUploadCreatesPendingProject(t *testing.T) {
	f := newProjectFixture(t)

	f.storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(&port.UploadOutput{Location: "s3://test-bucket/projects"}, nil)
	f.projectRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Project")).Return(nil)
	// The background analysis goroutine may or may not run before the test
	// ends; let it exit at the first repository read either way.
	f.projectRepo.On("GetByID", mock.Anything, mock.Anything).
		Return(nil, domain.ErrProjectNotFound).Maybe()

	project, err := f.svc.Upload(context.Background(), &service.UploadProjectInput{
		Name:        "EFH Musterweg 4",
		NotifyEmail: "planer@example.com",
		FileName:    "upload.zip",
		ContentType: "application/zip",
		Data:        []byte("zip bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AnalysisStatusPending, project.AnalysisStatus)
	assert.Equal(t, "test-bucket", project.S3Bucket)
	assert.Contains(t, project.S3Key, "projects/")
	assert.Contains(t, project.S3Key, "upload.zip")
	f.projectRepo.AssertExpectations(t)
}

func TestUploadReportsStorageFailure(t *testing.T) {
	f := newProjectFixture(t)

	f.storage.On("Upload", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection reset"))

	_, err := f.svc.Upload(context.Background(), &service.UploadProjectInput{
		Name:        "project",
		FileName:    "upload.zip",
		ContentType: "application/zip",
		Data:        []byte("zip bytes"),
	})
	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	f.projectRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAnalyzeProjectPersistsCompletedResult(t *testing.T) {
	f := newProjectFixture(t)
	project := processingProject(t)
	zipBytes := makeZip(t, map[string][]byte{"grundriss.pdf": []byte("pdf")})

	f.storage.On("Download", mock.Anything, project.S3Bucket, project.S3Key).Return(zipBytes, nil)
	f.rasterizer.On("Rasterize", mock.Anything, mock.Anything, 150).
		Return([][]byte{[]byte("page0")}, nil)
	f.reasoner.On("Invoke", mock.Anything, mock.Anything, mock.Anything).Return("GRZ 0.4", nil)

	var saved *domain.Project
	f.projectRepo.On("UpdateAnalysis", mock.Anything, mock.AnythingOfType("*domain.Project")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*domain.Project) }).
		Return(nil)

	f.svc.AnalyzeProject(context.Background(), project, 5)

	require.NotNil(t, saved)
	assert.Equal(t, domain.AnalysisStatusCompleted, saved.AnalysisStatus)
	assert.Empty(t, saved.AnalysisError)
	assert.Equal(t, "test-model", saved.AnalysisModel)
	assert.Equal(t, 1, saved.PageCount)
	assert.NotNil(t, saved.AnalyzedAt)
	assert.Nil(t, saved.RetryAfter)

	var fields map[extraction.Field]string
	require.NoError(t, json.Unmarshal(saved.AttributeSet, &fields))
	require.Len(t, fields, len(extraction.AllFields))
	for _, field := range extraction.AllFields {
		assert.Equal(t, "GRZ 0.4", fields[field])
	}
}

func TestAnalyzeProjectQueuesRetryOnRateLimit(t *testing.T) {
	f := newProjectFixture(t)
	project := processingProject(t)
	zipBytes := makeZip(t, map[string][]byte{"grundriss.pdf": []byte("pdf")})

	f.storage.On("Download", mock.Anything, project.S3Bucket, project.S3Key).Return(zipBytes, nil)
	f.rasterizer.On("Rasterize", mock.Anything, mock.Anything, 150).
		Return([][]byte{[]byte("page0")}, nil)
	f.reasoner.On("Invoke", mock.Anything, mock.Anything, mock.Anything).
		Return("", &reasoner.UpstreamError{Status: 429, RetryAfter: 2 * time.Minute})

	var saved *domain.Project
	f.projectRepo.On("UpdateAnalysis", mock.Anything, mock.AnythingOfType("*domain.Project")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*domain.Project) }).
		Return(nil)

	before := time.Now()
	f.svc.AnalyzeProject(context.Background(), project, 5)

	require.NotNil(t, saved)
	assert.Equal(t, domain.AnalysisStatusQueued, saved.AnalysisStatus)
	assert.Contains(t, saved.AnalysisError, "queued for retry")
	require.NotNil(t, saved.RetryAfter)
	assert.WithinDuration(t, before.Add(2*time.Minute), *saved.RetryAfter, 10*time.Second)
}

func TestAnalyzeProjectFailsPermanentlyOnBadRequest(t *testing.T) {
	f := newProjectFixture(t)
	project := processingProject(t)
	zipBytes := makeZip(t, map[string][]byte{"grundriss.pdf": []byte("pdf")})

	f.storage.On("Download", mock.Anything, project.S3Bucket, project.S3Key).Return(zipBytes, nil)
	f.rasterizer.On("Rasterize", mock.Anything, mock.Anything, 150).
		Return([][]byte{[]byte("page0")}, nil)
	f.reasoner.On("Invoke", mock.Anything, mock.Anything, mock.Anything).
		Return("", &reasoner.UpstreamError{Status: 400, Body: "bad request"})

	var saved *domain.Project
	f.projectRepo.On("UpdateAnalysis", mock.Anything, mock.AnythingOfType("*domain.Project")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*domain.Project) }).
		Return(nil)

	f.svc.AnalyzeProject(context.Background(), project, 5)

	require.NotNil(t, saved)
	assert.Equal(t, domain.AnalysisStatusFailed, saved.AnalysisStatus)
	assert.Nil(t, saved.RetryAfter)
}

func TestAnalyzeProjectFailsPermanentlyWhenAttemptsExhausted(t *testing.T) {
	f := newProjectFixture(t)
	project := processingProject(t)
	project.Attempts = 5
	zipBytes := makeZip(t, map[string][]byte{"grundriss.pdf": []byte("pdf")})

	f.storage.On("Download", mock.Anything, project.S3Bucket, project.S3Key).Return(zipBytes, nil)
	f.rasterizer.On("Rasterize", mock.Anything, mock.Anything, 150).
		Return([][]byte{[]byte("page0")}, nil)
	f.reasoner.On("Invoke", mock.Anything, mock.Anything, mock.Anything).
		Return("", &reasoner.UpstreamError{Status: 503, Body: "overloaded"})

	var saved *domain.Project
	f.projectRepo.On("UpdateAnalysis", mock.Anything, mock.AnythingOfType("*domain.Project")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*domain.Project) }).
		Return(nil)

	f.svc.AnalyzeProject(context.Background(), project, 5)

	require.NotNil(t, saved)
	assert.Equal(t, domain.AnalysisStatusFailed, saved.AnalysisStatus)
}

func TestAnalyzeProjectFailsOnEmptyArchive(t *testing.T) {
	f := newProjectFixture(t)
	project := processingProject(t)
	zipBytes := makeZip(t, map[string][]byte{"notes.txt": []byte("no drawings")})

	f.storage.On("Download", mock.Anything, project.S3Bucket, project.S3Key).Return(zipBytes, nil)

	var saved *domain.Project
	f.projectRepo.On("UpdateAnalysis", mock.Anything, mock.AnythingOfType("*domain.Project")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*domain.Project) }).
		Return(nil)

	f.svc.AnalyzeProject(context.Background(), project, 5)

	require.NotNil(t, saved)
	assert.Equal(t, domain.AnalysisStatusFailed, saved.AnalysisStatus)
	assert.Contains(t, saved.AnalysisError, "building corpus")
}

func TestRetryAnalysisRejectsInProgressAnalysis(t *testing.T) {
	f := newProjectFixture(t)
	project := processingProject(t)

	f.projectRepo.On("GetByID", mock.Anything, project.ID).Return(project, nil)

	_, err := f.svc.RetryAnalysis(context.Background(), project.ID)
	assert.ErrorIs(t, err, domain.ErrAnalysisInProgress)
}

func TestCheckCompletenessPersistsReport(t *testing.T) {
	f := newProjectFixture(t)
	project := processingProject(t)
	zipBytes := makeZip(t, map[string][]byte{"antrag.pdf": []byte("pdf")})

	f.checker.report = &completeness.Report{
		ApplicationType: "Neubau Einfamilienhaus",
		Status:          completeness.StatusIncomplete,
		Entries: []completeness.Entry{
			{DocumentName: "Bauantragsformular", PresenceStatus: completeness.PresencePresent},
			{DocumentName: "Lageplan", PresenceStatus: completeness.PresenceNotMentioned, ActionNeeded: "Lageplan im Antrag prüfen"},
		},
	}

	f.projectRepo.On("GetByID", mock.Anything, project.ID).Return(project, nil)
	f.storage.On("Download", mock.Anything, project.S3Bucket, project.S3Key).Return(zipBytes, nil)
	f.rasterizer.On("Rasterize", mock.Anything, mock.Anything, 150).
		Return([][]byte{[]byte("page0")}, nil)

	var saved *domain.CompletenessCheck
	f.completenessRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.CompletenessCheck")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*domain.CompletenessCheck) }).
		Return(nil)

	check, err := f.svc.CheckCompleteness(context.Background(), project.ID)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, check.ID, saved.ID)
	assert.Equal(t, "Neubau Einfamilienhaus", check.ApplicationType)
	assert.Equal(t, domain.CompletenessIncomplete, check.Status)

	var entries []completeness.Entry
	require.NoError(t, json.Unmarshal(check.Entries, &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "Lageplan", entries[1].DocumentName)
}

func TestCheckCompletenessPropagatesCheckerFailure(t *testing.T) {
	f := newProjectFixture(t)
	project := processingProject(t)
	zipBytes := makeZip(t, map[string][]byte{"antrag.pdf": []byte("pdf")})
	f.checker.err = &completeness.ParseError{Raw: "prose", Err: errors.New("not json")}

	f.projectRepo.On("GetByID", mock.Anything, project.ID).Return(project, nil)
	f.storage.On("Download", mock.Anything, project.S3Bucket, project.S3Key).Return(zipBytes, nil)
	f.rasterizer.On("Rasterize", mock.Anything, mock.Anything, 150).
		Return([][]byte{[]byte("page0")}, nil)

	_, err := f.svc.CheckCompleteness(context.Background(), project.ID)
	var parseErr *completeness.ParseError
	assert.ErrorAs(t, err, &parseErr)
	f.completenessRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDeleteRemovesRowEvenWhenStorageDeleteFails(t *testing.T) {
	f := newProjectFixture(t)
	project := processingProject(t)

	f.projectRepo.On("GetByID", mock.Anything, project.ID).Return(project, nil)
	f.storage.On("Delete", mock.Anything, project.S3Bucket, project.S3Key).
		Return(errors.New("access denied"))
	f.projectRepo.On("Delete", mock.Anything, project.ID).Return(nil)

	err := f.svc.Delete(context.Background(), project.ID)
	require.NoError(t, err)
	f.projectRepo.AssertExpectations(t)
}
