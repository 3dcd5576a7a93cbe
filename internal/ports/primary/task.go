package primary

import (
	"context"

	"github.com/example/lcs/internal/core/lint"
	"github.com/example/lcs/internal/models"
)

// CreateTaskRequest carries the full content payload for a new task record
// (version 1, status draft). Ingestion pipelines and manual authoring enter
// through this same contract.
type CreateTaskRequest struct {
	Actor Actor

	Title         string
	Outcome       string
	ProcedureName string
	Facts         []string
	Concepts      []string
	Dependencies  []string
	Steps         []models.Step
	Irreversible  bool
	Domain        string

	// NeedsReview marks machine-produced drafts for extra human attention.
	NeedsReview     bool
	NeedsReviewNote string

	// AuditNote annotates the create audit event (e.g. an import source).
	AuditNote string
}

// ReviseTaskRequest spawns a new draft version with replacement content.
// The source version row is never touched.
type ReviseTaskRequest struct {
	Actor         Actor
	RecordID      string
	SourceVersion int
	ChangeNote    string

	Title         string
	Outcome       string
	ProcedureName string
	Facts         []string
	Concepts      []string
	Dependencies  []string
	Steps         []models.Step
	Irreversible  bool
	Domain        string
}

// TaskDetail is a task version with its advisory lint findings.
type TaskDetail struct {
	Task *models.Task
	Lint []lint.Finding
}

// TaskService governs the task record lifecycle.
type TaskService interface {
	CreateDraft(ctx context.Context, req CreateTaskRequest) (*models.Task, error)
	Revise(ctx context.Context, req ReviseTaskRequest) (*models.Task, error)

	Submit(ctx context.Context, req TransitionRequest) error
	Confirm(ctx context.Context, req TransitionRequest) error
	ReturnForChanges(ctx context.Context, req ReturnRequest) error
	ForceSubmit(ctx context.Context, req TransitionRequest) error
	ForceConfirm(ctx context.Context, req TransitionRequest) error

	Get(ctx context.Context, recordID string, version int) (*TaskDetail, error)
	ListLatest(ctx context.Context, status string) ([]*models.TaskSummary, error)
	ListVersions(ctx context.Context, recordID string) ([]*models.Task, error)
}
