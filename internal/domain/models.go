package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Project represents one uploaded project submission (a zip of architectural
// PDFs) and the extraction result derived from it. AttributeSet and
// AnalysisSummary are written in a single update after the full in-memory
// aggregate has been assembled, so a reader never observes a half-populated
// record.
type Project struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	Name            string          `db:"name" json:"name"`
	NotifyEmail     string          `db:"notify_email" json:"notify_email"`
	S3Bucket        string          `db:"s3_bucket" json:"s3_bucket"`
	S3Key           string          `db:"s3_key" json:"s3_key"`
	PageCount       int             `db:"page_count" json:"page_count"`
	AnalysisStatus  AnalysisStatus  `db:"analysis_status" json:"analysis_status"`
	AnalysisError   string          `db:"analysis_error" json:"analysis_error"`
	AnalysisModel   string          `db:"analysis_model" json:"analysis_model"`
	AttributeSet    json.RawMessage `db:"attribute_set" json:"attribute_set"`
	AnalysisSummary json.RawMessage `db:"analysis_summary" json:"analysis_summary"`
	Attempts        int             `db:"attempts" json:"attempts"`
	RetryAfter      *time.Time      `db:"retry_after" json:"retry_after"`
	AnalyzedAt      *time.Time      `db:"analyzed_at" json:"analyzed_at"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// ZoningPlan represents one uploaded B-Plan PDF and its extracted attribute
// set. It shares the project's extraction lifecycle.
type ZoningPlan struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	Name           string          `db:"name" json:"name"`
	S3Bucket       string          `db:"s3_bucket" json:"s3_bucket"`
	S3Key          string          `db:"s3_key" json:"s3_key"`
	PageCount      int             `db:"page_count" json:"page_count"`
	AnalysisStatus AnalysisStatus  `db:"analysis_status" json:"analysis_status"`
	AnalysisError  string          `db:"analysis_error" json:"analysis_error"`
	AnalysisModel  string          `db:"analysis_model" json:"analysis_model"`
	AttributeSet   json.RawMessage `db:"attribute_set" json:"attribute_set"`
	Attempts       int             `db:"attempts" json:"attempts"`
	RetryAfter     *time.Time      `db:"retry_after" json:"retry_after"`
	AnalyzedAt     *time.Time      `db:"analyzed_at" json:"analyzed_at"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// ComplianceReview stores the verdict of comparing a project against a zoning
// plan. Verdict holds the full field-by-field structure as returned by the
// comparator.
type ComplianceReview struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	ProjectID     uuid.UUID       `db:"project_id" json:"project_id"`
	ZoningPlanID  uuid.UUID       `db:"zoning_plan_id" json:"zoning_plan_id"`
	OverallStatus OverallStatus   `db:"overall_status" json:"overall_status"`
	Verdict       json.RawMessage `db:"verdict" json:"verdict"`
	ReportBucket  string          `db:"report_bucket" json:"report_bucket"`
	ReportKey     string          `db:"report_key" json:"report_key"`
	EmailedAt     *time.Time      `db:"emailed_at" json:"emailed_at"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// CompletenessCheck stores one required-documents report for a project.
type CompletenessCheck struct {
	ID              uuid.UUID          `db:"id" json:"id"`
	ProjectID       uuid.UUID          `db:"project_id" json:"project_id"`
	ApplicationType string             `db:"application_type" json:"application_type"`
	Status          CompletenessStatus `db:"status" json:"status"`
	Entries         json.RawMessage    `db:"entries" json:"entries"`
	CreatedAt       time.Time          `db:"created_at" json:"created_at"`
}
