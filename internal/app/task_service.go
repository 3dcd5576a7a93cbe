package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/lcs/internal/core/authz"
	"github.com/example/lcs/internal/core/content"
	"github.com/example/lcs/internal/core/lint"
	"github.com/example/lcs/internal/core/record"
	"github.com/example/lcs/internal/models"
	"github.com/example/lcs/internal/ports/primary"
	"github.com/example/lcs/internal/ports/secondary"
)

// TaskServiceImpl implements the TaskService interface.
type TaskServiceImpl struct {
	taskRepo   secondary.TaskRepository
	domainRepo secondary.DomainRepository
	auditRepo  secondary.AuditRepository
}

// NewTaskService creates a new TaskService with injected dependencies.
func NewTaskService(taskRepo secondary.TaskRepository, domainRepo secondary.DomainRepository, auditRepo secondary.AuditRepository) *TaskServiceImpl {
	return &TaskServiceImpl{
		taskRepo:   taskRepo,
		domainRepo: domainRepo,
		auditRepo:  auditRepo,
	}
}

// requireAction runs the role matrix gate for one action.
func requireAction(actor primary.Actor, action string) error {
	if !authz.CanPerform(actor.Role, action) {
		return NewForbiddenError("role %s may not perform %s", actor.Role, action)
	}
	return nil
}

// requireEntitlement runs the per-domain entitlement gate. Admin is the
// break-glass role: it bypasses entitlements entirely.
func requireEntitlement(ctx context.Context, domainRepo secondary.DomainRepository, actor primary.Actor, domains ...string) error {
	if actor.Role == models.RoleAdmin {
		return nil
	}
	for _, d := range domains {
		if d == "" {
			continue
		}
		ok, err := domainRepo.IsEntitled(ctx, actor.User, d)
		if err != nil {
			return fmt.Errorf("failed to check entitlement: %w", err)
		}
		if !ok {
			return NewForbiddenError("user %s holds no entitlement for domain %s", actor.User, d)
		}
	}
	return nil
}

// CreateDraft creates version 1 of a new task record in draft status.
func (s *TaskServiceImpl) CreateDraft(ctx context.Context, req primary.CreateTaskRequest) (*models.Task, error) {
	if err := requireAction(req.Actor, authz.RecordAction(models.KindTask, "create")); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, NewValidationError("title is required")
	}

	now := time.Now().UTC()
	task := &models.Task{
		RecordID:         uuid.NewString(),
		Version:          1,
		Status:           models.StatusDraft,
		Title:            strings.TrimSpace(req.Title),
		Outcome:          req.Outcome,
		Facts:            req.Facts,
		Concepts:         req.Concepts,
		ProcedureName:    req.ProcedureName,
		Steps:            content.NormalizeSteps(req.Steps),
		Dependencies:     req.Dependencies,
		IrreversibleFlag: req.Irreversible,
		Domain:           req.Domain,
		CreatedAt:        now,
		UpdatedAt:        now,
		CreatedBy:        req.Actor.User,
		UpdatedBy:        req.Actor.User,
		NeedsReviewFlag:  req.NeedsReview,
		NeedsReviewNote:  req.NeedsReviewNote,
	}

	if err := s.taskRepo.InsertVersion(ctx, task, req.AuditNote); err != nil {
		return nil, translateStoreErr(err, fmt.Sprintf("task %s@%d", task.RecordID, task.Version))
	}
	return task, nil
}

// Revise spawns a new draft version from an existing one. When the source
// version was returned, the change note is chained back to the reviewer
// feedback it responds to.
func (s *TaskServiceImpl) Revise(ctx context.Context, req primary.ReviseTaskRequest) (*models.Task, error) {
	if err := requireAction(req.Actor, authz.RecordAction(models.KindTask, "revise")); err != nil {
		return nil, err
	}
	if g := record.CanRevise(record.ReviseContext{ChangeNote: req.ChangeNote}); !g.Allowed {
		return nil, NewValidationError("%s", g.Reason)
	}

	source, err := s.taskRepo.Get(ctx, req.RecordID, req.SourceVersion)
	if err != nil {
		return nil, translateStoreErr(err, fmt.Sprintf("task %s@%d", req.RecordID, req.SourceVersion))
	}

	latest, err := s.taskRepo.LatestVersion(ctx, req.RecordID)
	if err != nil {
		return nil, fmt.Errorf("failed to determine latest version: %w", err)
	}

	changeNote := strings.TrimSpace(req.ChangeNote)
	if source.Status == models.StatusReturned {
		ev, err := s.auditRepo.LatestForAction(ctx, models.KindTask, req.RecordID, models.ActionReturn)
		if err != nil && !errors.Is(err, secondary.ErrNotFound) {
			return nil, fmt.Errorf("failed to load return feedback: %w", err)
		}
		if err == nil {
			changeNote = fmt.Sprintf("[re: return by %s at %s] %s", ev.Actor, ev.At.UTC().Format(time.RFC3339), changeNote)
		}
	}

	now := time.Now().UTC()
	task := &models.Task{
		RecordID:         req.RecordID,
		Version:          latest + 1,
		Status:           models.StatusDraft,
		Title:            strings.TrimSpace(req.Title),
		Outcome:          req.Outcome,
		Facts:            req.Facts,
		Concepts:         req.Concepts,
		ProcedureName:    req.ProcedureName,
		Steps:            content.NormalizeSteps(req.Steps),
		Dependencies:     req.Dependencies,
		IrreversibleFlag: req.Irreversible,
		Domain:           req.Domain,
		CreatedAt:        now,
		UpdatedAt:        now,
		CreatedBy:        req.Actor.User,
		UpdatedBy:        req.Actor.User,
		ChangeNote:       changeNote,
	}

	if err := s.taskRepo.InsertVersion(ctx, task, changeNote); err != nil {
		return nil, translateStoreErr(err, fmt.Sprintf("task %s@%d", task.RecordID, task.Version))
	}
	return task, nil
}

// Submit moves a draft task version to submitted. Structural completeness
// and the author's domain entitlement are enforced here, not at draft save.
func (s *TaskServiceImpl) Submit(ctx context.Context, req primary.TransitionRequest) error {
	return s.transition(ctx, req.Actor, req.RecordID, req.Version, "submit",
		func(task *models.Task) error {
			if g := record.CanSubmit(record.SubmitContext{Status: task.Status}); !g.Allowed {
				return NewConflictError("%s", g.Reason)
			}
			if issues := content.TaskSubmitIssues(task); len(issues) > 0 {
				return NewConflictError("task is not ready to submit: %s", strings.Join(issues, "; "))
			}
			// A disabled domain never invalidates existing records; the
			// entitlement gate is the only domain check on submit.
			return requireEntitlement(ctx, s.domainRepo, req.Actor, task.Domain)
		},
		secondary.TransitionParams{
			From:   []string{models.StatusDraft},
			To:     models.StatusSubmitted,
			Action: models.ActionSubmit,
		},
	)
}

// Confirm moves a submitted task version to confirmed, deprecating any
// previously confirmed version of the record.
func (s *TaskServiceImpl) Confirm(ctx context.Context, req primary.TransitionRequest) error {
	if err := requireAction(req.Actor, authz.RecordAction(models.KindTask, "confirm")); err != nil {
		return err
	}
	task, err := s.taskRepo.Get(ctx, req.RecordID, req.Version)
	if err != nil {
		return translateStoreErr(err, fmt.Sprintf("task %s@%d", req.RecordID, req.Version))
	}
	if g := record.CanConfirm(record.ConfirmContext{Status: task.Status}); !g.Allowed {
		return NewConflictError("%s", g.Reason)
	}
	if err := requireEntitlement(ctx, s.domainRepo, req.Actor, task.Domain); err != nil {
		return err
	}

	err = s.taskRepo.Confirm(ctx, secondary.TransitionParams{
		RecordID: req.RecordID,
		Version:  req.Version,
		From:     []string{models.StatusSubmitted},
		Action:   models.ActionConfirm,
		Actor:    req.Actor.User,
	})
	return translateStoreErr(err, fmt.Sprintf("task %s@%d", req.RecordID, req.Version))
}

// ReturnForChanges sends a submitted task version back to its author with
// a required note.
func (s *TaskServiceImpl) ReturnForChanges(ctx context.Context, req primary.ReturnRequest) error {
	if strings.TrimSpace(req.Note) == "" {
		return NewValidationError("a return note is required")
	}
	return s.transition(ctx, req.Actor, req.RecordID, req.Version, "return",
		func(task *models.Task) error {
			if g := record.CanReturn(record.ReturnContext{Status: task.Status, Note: req.Note}); !g.Allowed {
				return NewConflictError("%s", g.Reason)
			}
			return requireEntitlement(ctx, s.domainRepo, req.Actor, task.Domain)
		},
		secondary.TransitionParams{
			From:   []string{models.StatusSubmitted},
			To:     models.StatusReturned,
			Action: models.ActionReturn,
			Note:   strings.TrimSpace(req.Note),
		},
	)
}

// ForceSubmit is the admin bypass for submit. It skips the role and
// entitlement gates but never the structural state machine.
func (s *TaskServiceImpl) ForceSubmit(ctx context.Context, req primary.TransitionRequest) error {
	return s.transition(ctx, req.Actor, req.RecordID, req.Version, "force_submit",
		func(task *models.Task) error {
			if g := record.CanForceSubmit(record.ForceSubmitContext{Status: task.Status}); !g.Allowed {
				return NewConflictError("%s", g.Reason)
			}
			return nil
		},
		secondary.TransitionParams{
			From:   []string{models.StatusDraft, models.StatusSubmitted, models.StatusReturned},
			To:     models.StatusSubmitted,
			Action: models.ActionForceSubmit,
		},
	)
}

// ForceConfirm is the admin bypass for confirm.
func (s *TaskServiceImpl) ForceConfirm(ctx context.Context, req primary.TransitionRequest) error {
	if err := requireAction(req.Actor, authz.RecordAction(models.KindTask, "force_confirm")); err != nil {
		return err
	}
	task, err := s.taskRepo.Get(ctx, req.RecordID, req.Version)
	if err != nil {
		return translateStoreErr(err, fmt.Sprintf("task %s@%d", req.RecordID, req.Version))
	}
	if g := record.CanForceConfirm(record.ForceConfirmContext{Status: task.Status}); !g.Allowed {
		return NewConflictError("%s", g.Reason)
	}

	err = s.taskRepo.Confirm(ctx, secondary.TransitionParams{
		RecordID: req.RecordID,
		Version:  req.Version,
		From:     []string{models.StatusDraft, models.StatusSubmitted, models.StatusReturned, models.StatusConfirmed},
		Action:   models.ActionForceConfirm,
		Actor:    req.Actor.User,
	})
	return translateStoreErr(err, fmt.Sprintf("task %s@%d", req.RecordID, req.Version))
}

// Get retrieves one task version with its advisory lint findings.
func (s *TaskServiceImpl) Get(ctx context.Context, recordID string, version int) (*primary.TaskDetail, error) {
	task, err := s.taskRepo.Get(ctx, recordID, version)
	if err != nil {
		return nil, translateStoreErr(err, fmt.Sprintf("task %s@%d", recordID, version))
	}
	return &primary.TaskDetail{
		Task: task,
		Lint: lint.Steps(task.Steps),
	}, nil
}

// ListLatest lists the latest version of every task record.
func (s *TaskServiceImpl) ListLatest(ctx context.Context, status string) ([]*models.TaskSummary, error) {
	if status != "" && !models.ValidStatus(status) {
		return nil, NewValidationError("unknown status %q", status)
	}
	summaries, err := s.taskRepo.ListLatest(ctx, secondary.RecordFilters{Status: status})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return summaries, nil
}

// ListVersions lists all versions of one task record, oldest first.
func (s *TaskServiceImpl) ListVersions(ctx context.Context, recordID string) ([]*models.Task, error) {
	versions, err := s.taskRepo.ListVersions(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to list task versions: %w", err)
	}
	if len(versions) == 0 {
		return nil, NewNotFoundError("task %s not found", recordID)
	}
	return versions, nil
}

// transition runs the shared gate pipeline for one task status transition:
// role matrix, load, per-transition checks, then the transactional update.
func (s *TaskServiceImpl) transition(ctx context.Context, actor primary.Actor, recordID string, version int, verb string, check func(*models.Task) error, p secondary.TransitionParams) error {
	if err := requireAction(actor, authz.RecordAction(models.KindTask, verb)); err != nil {
		return err
	}

	task, err := s.taskRepo.Get(ctx, recordID, version)
	if err != nil {
		return translateStoreErr(err, fmt.Sprintf("task %s@%d", recordID, version))
	}
	if err := check(task); err != nil {
		return err
	}

	p.RecordID = recordID
	p.Version = version
	p.Actor = actor.User
	err = s.taskRepo.UpdateStatus(ctx, p)
	return translateStoreErr(err, fmt.Sprintf("task %s@%d", recordID, version))
}

// Ensure TaskServiceImpl implements the interface.
var _ primary.TaskService = (*TaskServiceImpl)(nil)
