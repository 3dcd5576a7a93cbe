package primary

import (
	"context"

	"github.com/example/lcs/internal/models"
)

// CreateWorkflowRequest carries the content payload for a new workflow
// record. References pin exact task versions; existence is checked at
// submit, not here.
type CreateWorkflowRequest struct {
	Actor Actor

	Title     string
	Objective string
	TaskRefs  []models.TaskRef
	Tags      []string
	Meta      map[string]string

	AuditNote string
}

// ReviseWorkflowRequest spawns a new draft version with replacement
// content and references.
type ReviseWorkflowRequest struct {
	Actor         Actor
	RecordID      string
	SourceVersion int
	ChangeNote    string

	Title     string
	Objective string
	TaskRefs  []models.TaskRef
	Tags      []string
	Meta      map[string]string
}

// WorkflowRefView is one resolved reference row in a workflow detail.
type WorkflowRefView struct {
	OrderIndex int
	RecordID   string
	Version    int
	Found      bool
	Title      string
	Status     string
	Domain     string
}

// WorkflowDetail is a workflow version with its derived state, recomputed
// on every read.
type WorkflowDetail struct {
	Workflow  *models.Workflow
	Readiness string
	Domains   []string
	Refs      []WorkflowRefView
}

// WorkflowService governs the workflow record lifecycle and exposes the
// composition resolver.
type WorkflowService interface {
	CreateDraft(ctx context.Context, req CreateWorkflowRequest) (*models.Workflow, error)
	Revise(ctx context.Context, req ReviseWorkflowRequest) (*models.Workflow, error)

	Submit(ctx context.Context, req TransitionRequest) error
	Confirm(ctx context.Context, req TransitionRequest) error
	ReturnForChanges(ctx context.Context, req ReturnRequest) error
	ForceSubmit(ctx context.Context, req TransitionRequest) error
	ForceConfirm(ctx context.Context, req TransitionRequest) error

	Get(ctx context.Context, recordID string, version int) (*WorkflowDetail, error)
	ListLatest(ctx context.Context, status string) ([]*models.WorkflowSummary, error)
	ListVersions(ctx context.Context, recordID string) ([]*models.Workflow, error)

	// ComputeReadiness reclassifies the workflow's references against live
	// task statuses. Never cached.
	ComputeReadiness(ctx context.Context, recordID string, version int) (string, error)

	// DeriveDomains returns the sorted union of the referenced task
	// versions' domains.
	DeriveDomains(ctx context.Context, recordID string, version int) ([]string, error)
}
