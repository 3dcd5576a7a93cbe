package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/lcs/internal/core/authz"
	"github.com/example/lcs/internal/core/composition"
	"github.com/example/lcs/internal/core/content"
	"github.com/example/lcs/internal/core/record"
	"github.com/example/lcs/internal/models"
	"github.com/example/lcs/internal/ports/primary"
	"github.com/example/lcs/internal/ports/secondary"
)

// WorkflowServiceImpl implements the WorkflowService interface.
type WorkflowServiceImpl struct {
	workflowRepo secondary.WorkflowRepository
	taskRepo     secondary.TaskRepository
	domainRepo   secondary.DomainRepository
	auditRepo    secondary.AuditRepository
}

// NewWorkflowService creates a new WorkflowService with injected
// dependencies.
func NewWorkflowService(workflowRepo secondary.WorkflowRepository, taskRepo secondary.TaskRepository, domainRepo secondary.DomainRepository, auditRepo secondary.AuditRepository) *WorkflowServiceImpl {
	return &WorkflowServiceImpl{
		workflowRepo: workflowRepo,
		taskRepo:     taskRepo,
		domainRepo:   domainRepo,
		auditRepo:    auditRepo,
	}
}

// resolveRefs looks up every pinned task version against live storage.
// The resolution is never cached: task statuses move underneath workflows.
func (s *WorkflowServiceImpl) resolveRefs(ctx context.Context, refs []models.TaskRef) ([]composition.ResolvedRef, []primary.WorkflowRefView, error) {
	resolved := make([]composition.ResolvedRef, 0, len(refs))
	views := make([]primary.WorkflowRefView, 0, len(refs))

	for _, ref := range refs {
		view := primary.WorkflowRefView{
			OrderIndex: ref.OrderIndex,
			RecordID:   ref.RecordID,
			Version:    ref.Version,
		}

		task, err := s.taskRepo.Get(ctx, ref.RecordID, ref.Version)
		if err != nil {
			if errors.Is(err, secondary.ErrNotFound) {
				resolved = append(resolved, composition.ResolvedRef{})
				views = append(views, view)
				continue
			}
			return nil, nil, fmt.Errorf("failed to resolve task ref %s@%d: %w", ref.RecordID, ref.Version, err)
		}

		resolved = append(resolved, composition.ResolvedRef{
			Found:  true,
			Status: task.Status,
			Domain: task.Domain,
		})
		view.Found = true
		view.Title = task.Title
		view.Status = task.Status
		view.Domain = task.Domain
		views = append(views, view)
	}

	return resolved, views, nil
}

// domainsOf extracts the derived domain union from resolved refs.
func domainsOf(resolved []composition.ResolvedRef) []string {
	sets := make([][]string, 0, len(resolved))
	for _, r := range resolved {
		if r.Found {
			sets = append(sets, []string{r.Domain})
		}
	}
	return composition.DeriveDomains(sets...)
}

// normalizeRefs validates and renumbers the ordered reference list.
func normalizeRefs(refs []models.TaskRef) ([]models.TaskRef, error) {
	out := make([]models.TaskRef, 0, len(refs))
	for _, ref := range refs {
		if strings.TrimSpace(ref.RecordID) == "" {
			return nil, NewValidationError("task reference record_id is required")
		}
		if ref.Version < 1 {
			return nil, NewValidationError("task reference %s must pin a version >= 1", ref.RecordID)
		}
		out = append(out, ref)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	for i := range out {
		out[i].OrderIndex = i
	}
	return out, nil
}

// CreateDraft creates version 1 of a new workflow record in draft status.
func (s *WorkflowServiceImpl) CreateDraft(ctx context.Context, req primary.CreateWorkflowRequest) (*models.Workflow, error) {
	if err := requireAction(req.Actor, authz.RecordAction(models.KindWorkflow, "create")); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, NewValidationError("title is required")
	}
	refs, err := normalizeRefs(req.TaskRefs)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	wf := &models.Workflow{
		RecordID:  uuid.NewString(),
		Version:   1,
		Status:    models.StatusDraft,
		Title:     strings.TrimSpace(req.Title),
		Objective: req.Objective,
		TaskRefs:  refs,
		Tags:      req.Tags,
		Meta:      req.Meta,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: req.Actor.User,
		UpdatedBy: req.Actor.User,
	}

	if err := s.workflowRepo.InsertVersion(ctx, wf, req.AuditNote); err != nil {
		return nil, translateStoreErr(err, fmt.Sprintf("workflow %s@%d", wf.RecordID, wf.Version))
	}
	return wf, nil
}

// Revise spawns a new draft version from an existing one.
func (s *WorkflowServiceImpl) Revise(ctx context.Context, req primary.ReviseWorkflowRequest) (*models.Workflow, error) {
	if err := requireAction(req.Actor, authz.RecordAction(models.KindWorkflow, "revise")); err != nil {
		return nil, err
	}
	if g := record.CanRevise(record.ReviseContext{ChangeNote: req.ChangeNote}); !g.Allowed {
		return nil, NewValidationError("%s", g.Reason)
	}
	refs, err := normalizeRefs(req.TaskRefs)
	if err != nil {
		return nil, err
	}

	source, err := s.workflowRepo.Get(ctx, req.RecordID, req.SourceVersion)
	if err != nil {
		return nil, translateStoreErr(err, fmt.Sprintf("workflow %s@%d", req.RecordID, req.SourceVersion))
	}

	latest, err := s.workflowRepo.LatestVersion(ctx, req.RecordID)
	if err != nil {
		return nil, fmt.Errorf("failed to determine latest version: %w", err)
	}

	changeNote := strings.TrimSpace(req.ChangeNote)
	if source.Status == models.StatusReturned {
		ev, err := s.auditRepo.LatestForAction(ctx, models.KindWorkflow, req.RecordID, models.ActionReturn)
		if err != nil && !errors.Is(err, secondary.ErrNotFound) {
			return nil, fmt.Errorf("failed to load return feedback: %w", err)
		}
		if err == nil {
			changeNote = fmt.Sprintf("[re: return by %s at %s] %s", ev.Actor, ev.At.UTC().Format(time.RFC3339), changeNote)
		}
	}

	now := time.Now().UTC()
	wf := &models.Workflow{
		RecordID:   req.RecordID,
		Version:    latest + 1,
		Status:     models.StatusDraft,
		Title:      strings.TrimSpace(req.Title),
		Objective:  req.Objective,
		TaskRefs:   refs,
		Tags:       req.Tags,
		Meta:       req.Meta,
		CreatedAt:  now,
		UpdatedAt:  now,
		CreatedBy:  req.Actor.User,
		UpdatedBy:  req.Actor.User,
		ChangeNote: changeNote,
	}

	if err := s.workflowRepo.InsertVersion(ctx, wf, changeNote); err != nil {
		return nil, translateStoreErr(err, fmt.Sprintf("workflow %s@%d", wf.RecordID, wf.Version))
	}
	return wf, nil
}

// Submit moves a draft workflow version to submitted. References must
// exist and not be deprecated; unconfirmed references are fine here.
func (s *WorkflowServiceImpl) Submit(ctx context.Context, req primary.TransitionRequest) error {
	return s.transition(ctx, req.Actor, req.RecordID, req.Version, "submit",
		func(wf *models.Workflow, resolved []composition.ResolvedRef) error {
			if g := record.CanSubmit(record.SubmitContext{Status: wf.Status}); !g.Allowed {
				return NewConflictError("%s", g.Reason)
			}
			if issues := content.WorkflowSubmitIssues(wf.TaskRefs, resolved); len(issues) > 0 {
				return NewConflictError("workflow is not ready to submit: %s", strings.Join(issues, "; "))
			}
			return requireEntitlement(ctx, s.domainRepo, req.Actor, domainsOf(resolved)...)
		},
		secondary.TransitionParams{
			From:   []string{models.StatusDraft},
			To:     models.StatusSubmitted,
			Action: models.ActionSubmit,
		},
	)
}

// Confirm moves a submitted workflow version to confirmed. The workflow
// must be ready: every referenced task version confirmed at this moment.
func (s *WorkflowServiceImpl) Confirm(ctx context.Context, req primary.TransitionRequest) error {
	if err := requireAction(req.Actor, authz.RecordAction(models.KindWorkflow, "confirm")); err != nil {
		return err
	}
	wf, resolved, err := s.load(ctx, req.RecordID, req.Version)
	if err != nil {
		return err
	}
	readiness := composition.Readiness(resolved)
	if g := record.CanConfirm(record.ConfirmContext{Status: wf.Status, Readiness: readiness}); !g.Allowed {
		return NewConflictError("%s", g.Reason)
	}
	if err := requireEntitlement(ctx, s.domainRepo, req.Actor, domainsOf(resolved)...); err != nil {
		return err
	}

	err = s.workflowRepo.Confirm(ctx, secondary.TransitionParams{
		RecordID: req.RecordID,
		Version:  req.Version,
		From:     []string{models.StatusSubmitted},
		Action:   models.ActionConfirm,
		Actor:    req.Actor.User,
	})
	return translateStoreErr(err, fmt.Sprintf("workflow %s@%d", req.RecordID, req.Version))
}

// ReturnForChanges sends a submitted workflow version back to its author.
func (s *WorkflowServiceImpl) ReturnForChanges(ctx context.Context, req primary.ReturnRequest) error {
	if strings.TrimSpace(req.Note) == "" {
		return NewValidationError("a return note is required")
	}
	return s.transition(ctx, req.Actor, req.RecordID, req.Version, "return",
		func(wf *models.Workflow, resolved []composition.ResolvedRef) error {
			if g := record.CanReturn(record.ReturnContext{Status: wf.Status, Note: req.Note}); !g.Allowed {
				return NewConflictError("%s", g.Reason)
			}
			return requireEntitlement(ctx, s.domainRepo, req.Actor, domainsOf(resolved)...)
		},
		secondary.TransitionParams{
			From:   []string{models.StatusSubmitted},
			To:     models.StatusReturned,
			Action: models.ActionReturn,
			Note:   strings.TrimSpace(req.Note),
		},
	)
}

// ForceSubmit is the admin bypass for submit.
func (s *WorkflowServiceImpl) ForceSubmit(ctx context.Context, req primary.TransitionRequest) error {
	return s.transition(ctx, req.Actor, req.RecordID, req.Version, "force_submit",
		func(wf *models.Workflow, resolved []composition.ResolvedRef) error {
			if g := record.CanForceSubmit(record.ForceSubmitContext{Status: wf.Status}); !g.Allowed {
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

// ForceConfirm is the admin bypass for confirm. Readiness still applies:
// force overrides authorization, not structural correctness.
func (s *WorkflowServiceImpl) ForceConfirm(ctx context.Context, req primary.TransitionRequest) error {
	if err := requireAction(req.Actor, authz.RecordAction(models.KindWorkflow, "force_confirm")); err != nil {
		return err
	}
	wf, resolved, err := s.load(ctx, req.RecordID, req.Version)
	if err != nil {
		return err
	}
	readiness := composition.Readiness(resolved)
	if g := record.CanForceConfirm(record.ForceConfirmContext{Status: wf.Status, Readiness: readiness}); !g.Allowed {
		return NewConflictError("%s", g.Reason)
	}

	err = s.workflowRepo.Confirm(ctx, secondary.TransitionParams{
		RecordID: req.RecordID,
		Version:  req.Version,
		From:     []string{models.StatusDraft, models.StatusSubmitted, models.StatusReturned, models.StatusConfirmed},
		Action:   models.ActionForceConfirm,
		Actor:    req.Actor.User,
	})
	return translateStoreErr(err, fmt.Sprintf("workflow %s@%d", req.RecordID, req.Version))
}

// Get retrieves one workflow version with its derived state.
func (s *WorkflowServiceImpl) Get(ctx context.Context, recordID string, version int) (*primary.WorkflowDetail, error) {
	wf, err := s.workflowRepo.Get(ctx, recordID, version)
	if err != nil {
		return nil, translateStoreErr(err, fmt.Sprintf("workflow %s@%d", recordID, version))
	}
	resolved, views, err := s.resolveRefs(ctx, wf.TaskRefs)
	if err != nil {
		return nil, err
	}
	return &primary.WorkflowDetail{
		Workflow:  wf,
		Readiness: composition.Readiness(resolved),
		Domains:   domainsOf(resolved),
		Refs:      views,
	}, nil
}

// ListLatest lists the latest version of every workflow record, with
// readiness recomputed per row.
func (s *WorkflowServiceImpl) ListLatest(ctx context.Context, status string) ([]*models.WorkflowSummary, error) {
	if status != "" && !models.ValidStatus(status) {
		return nil, NewValidationError("unknown status %q", status)
	}
	summaries, err := s.workflowRepo.ListLatest(ctx, secondary.RecordFilters{Status: status})
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	for _, summary := range summaries {
		wf, err := s.workflowRepo.Get(ctx, summary.RecordID, summary.LatestVersion)
		if err != nil {
			return nil, translateStoreErr(err, fmt.Sprintf("workflow %s@%d", summary.RecordID, summary.LatestVersion))
		}
		resolved, _, err := s.resolveRefs(ctx, wf.TaskRefs)
		if err != nil {
			return nil, err
		}
		summary.Readiness = composition.Readiness(resolved)
	}

	return summaries, nil
}

// ListVersions lists all versions of one workflow record, oldest first.
func (s *WorkflowServiceImpl) ListVersions(ctx context.Context, recordID string) ([]*models.Workflow, error) {
	versions, err := s.workflowRepo.ListVersions(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow versions: %w", err)
	}
	if len(versions) == 0 {
		return nil, NewNotFoundError("workflow %s not found", recordID)
	}
	return versions, nil
}

// ComputeReadiness reclassifies one workflow version's references against
// live task statuses.
func (s *WorkflowServiceImpl) ComputeReadiness(ctx context.Context, recordID string, version int) (string, error) {
	_, resolved, err := s.load(ctx, recordID, version)
	if err != nil {
		return "", err
	}
	return composition.Readiness(resolved), nil
}

// DeriveDomains returns the sorted union of the referenced task versions'
// domains.
func (s *WorkflowServiceImpl) DeriveDomains(ctx context.Context, recordID string, version int) ([]string, error) {
	_, resolved, err := s.load(ctx, recordID, version)
	if err != nil {
		return nil, err
	}
	return domainsOf(resolved), nil
}

// load fetches a workflow version and resolves its references.
func (s *WorkflowServiceImpl) load(ctx context.Context, recordID string, version int) (*models.Workflow, []composition.ResolvedRef, error) {
	wf, err := s.workflowRepo.Get(ctx, recordID, version)
	if err != nil {
		return nil, nil, translateStoreErr(err, fmt.Sprintf("workflow %s@%d", recordID, version))
	}
	resolved, _, err := s.resolveRefs(ctx, wf.TaskRefs)
	if err != nil {
		return nil, nil, err
	}
	return wf, resolved, nil
}

// transition runs the shared gate pipeline for one workflow status
// transition.
func (s *WorkflowServiceImpl) transition(ctx context.Context, actor primary.Actor, recordID string, version int, verb string, check func(*models.Workflow, []composition.ResolvedRef) error, p secondary.TransitionParams) error {
	if err := requireAction(actor, authz.RecordAction(models.KindWorkflow, verb)); err != nil {
		return err
	}

	wf, resolved, err := s.load(ctx, recordID, version)
	if err != nil {
		return err
	}
	if err := check(wf, resolved); err != nil {
		return err
	}

	p.RecordID = recordID
	p.Version = version
	p.Actor = actor.User
	err = s.workflowRepo.UpdateStatus(ctx, p)
	return translateStoreErr(err, fmt.Sprintf("workflow %s@%d", recordID, version))
}

// Ensure WorkflowServiceImpl implements the interface.
var _ primary.WorkflowService = (*WorkflowServiceImpl)(nil)
