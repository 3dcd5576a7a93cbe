package primary

import (
	"context"

	"github.com/example/lcs/internal/core/lint"
	"github.com/example/lcs/internal/models"
)

// CreateAssessmentRequest carries the content payload for a new assessment
// item record.
type CreateAssessmentRequest struct {
	Actor Actor

	Stem       string
	Options    map[string]string
	CorrectKey string
	Rationale  string
	Claim      string
	Refs       []models.AssessmentRef
	Tags       []string
	Meta       map[string]string

	AuditNote string
}

// ReviseAssessmentRequest spawns a new draft version with replacement
// content.
type ReviseAssessmentRequest struct {
	Actor         Actor
	RecordID      string
	SourceVersion int
	ChangeNote    string

	Stem       string
	Options    map[string]string
	CorrectKey string
	Rationale  string
	Claim      string
	Refs       []models.AssessmentRef
	Tags       []string
	Meta       map[string]string
}

// AssessmentDetail is an assessment version with its advisory lint
// findings and derived domains.
type AssessmentDetail struct {
	Assessment *models.Assessment
	Lint       []lint.Finding
	Domains    []string
}

// AssessmentService governs the assessment item lifecycle.
type AssessmentService interface {
	CreateDraft(ctx context.Context, req CreateAssessmentRequest) (*models.Assessment, error)
	Revise(ctx context.Context, req ReviseAssessmentRequest) (*models.Assessment, error)

	Submit(ctx context.Context, req TransitionRequest) error
	Confirm(ctx context.Context, req TransitionRequest) error
	ReturnForChanges(ctx context.Context, req ReturnRequest) error
	ForceSubmit(ctx context.Context, req TransitionRequest) error
	ForceConfirm(ctx context.Context, req TransitionRequest) error

	Get(ctx context.Context, recordID string, version int) (*AssessmentDetail, error)
	ListLatest(ctx context.Context, status string) ([]*models.AssessmentSummary, error)
	ListVersions(ctx context.Context, recordID string) ([]*models.Assessment, error)
}
