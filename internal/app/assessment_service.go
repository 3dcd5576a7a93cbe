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
	"github.com/example/lcs/internal/core/lint"
	"github.com/example/lcs/internal/core/record"
	"github.com/example/lcs/internal/models"
	"github.com/example/lcs/internal/ports/primary"
	"github.com/example/lcs/internal/ports/secondary"
)

// AssessmentServiceImpl implements the AssessmentService interface.
type AssessmentServiceImpl struct {
	assessmentRepo secondary.AssessmentRepository
	taskRepo       secondary.TaskRepository
	workflowRepo   secondary.WorkflowRepository
	domainRepo     secondary.DomainRepository
	auditRepo      secondary.AuditRepository
}

// NewAssessmentService creates a new AssessmentService with injected
// dependencies.
func NewAssessmentService(assessmentRepo secondary.AssessmentRepository, taskRepo secondary.TaskRepository, workflowRepo secondary.WorkflowRepository, domainRepo secondary.DomainRepository, auditRepo secondary.AuditRepository) *AssessmentServiceImpl {
	return &AssessmentServiceImpl{
		assessmentRepo: assessmentRepo,
		taskRepo:       taskRepo,
		workflowRepo:   workflowRepo,
		domainRepo:     domainRepo,
		auditRepo:      auditRepo,
	}
}

// validClaim reports whether c is a known claim type.
func validClaim(c string) bool {
	switch c {
	case models.ClaimFactProbe, models.ClaimConceptCheck, models.ClaimProcedureProxy:
		return true
	}
	return false
}

// normalizeAssessmentRefs validates and renumbers the reference list.
func normalizeAssessmentRefs(refs []models.AssessmentRef) ([]models.AssessmentRef, error) {
	out := make([]models.AssessmentRef, 0, len(refs))
	for _, ref := range refs {
		if ref.RefType != models.KindTask && ref.RefType != models.KindWorkflow {
			return nil, NewValidationError("unknown reference type %q", ref.RefType)
		}
		if strings.TrimSpace(ref.RecordID) == "" {
			return nil, NewValidationError("reference record_id is required")
		}
		if ref.Version < 1 {
			return nil, NewValidationError("reference %s must pin a version >= 1", ref.RecordID)
		}
		out = append(out, ref)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	for i := range out {
		out[i].OrderIndex = i
	}
	return out, nil
}

// resolvedAssessmentRef is the lookup result for one assessment reference.
type resolvedAssessmentRef struct {
	Found   bool
	Status  string
	Domains []string
}

// resolveRefs looks up the task and workflow versions an assessment pins.
// Workflow references contribute their own derived domain union.
func (s *AssessmentServiceImpl) resolveRefs(ctx context.Context, refs []models.AssessmentRef) ([]resolvedAssessmentRef, error) {
	resolved := make([]resolvedAssessmentRef, 0, len(refs))

	for _, ref := range refs {
		switch ref.RefType {
		case models.KindTask:
			task, err := s.taskRepo.Get(ctx, ref.RecordID, ref.Version)
			if err != nil {
				if errors.Is(err, secondary.ErrNotFound) {
					resolved = append(resolved, resolvedAssessmentRef{})
					continue
				}
				return nil, fmt.Errorf("failed to resolve task ref %s@%d: %w", ref.RecordID, ref.Version, err)
			}
			resolved = append(resolved, resolvedAssessmentRef{
				Found:   true,
				Status:  task.Status,
				Domains: []string{task.Domain},
			})
		case models.KindWorkflow:
			wf, err := s.workflowRepo.Get(ctx, ref.RecordID, ref.Version)
			if err != nil {
				if errors.Is(err, secondary.ErrNotFound) {
					resolved = append(resolved, resolvedAssessmentRef{})
					continue
				}
				return nil, fmt.Errorf("failed to resolve workflow ref %s@%d: %w", ref.RecordID, ref.Version, err)
			}
			var domains []string
			for _, taskRef := range wf.TaskRefs {
				task, err := s.taskRepo.Get(ctx, taskRef.RecordID, taskRef.Version)
				if err != nil {
					if errors.Is(err, secondary.ErrNotFound) {
						continue
					}
					return nil, fmt.Errorf("failed to resolve task ref %s@%d: %w", taskRef.RecordID, taskRef.Version, err)
				}
				domains = append(domains, task.Domain)
			}
			resolved = append(resolved, resolvedAssessmentRef{
				Found:   true,
				Status:  wf.Status,
				Domains: composition.DeriveDomains(domains),
			})
		}
	}

	return resolved, nil
}

// assessmentDomains derives the domain union across resolved references.
func assessmentDomains(resolved []resolvedAssessmentRef) []string {
	sets := make([][]string, 0, len(resolved))
	for _, r := range resolved {
		if r.Found {
			sets = append(sets, r.Domains)
		}
	}
	return composition.DeriveDomains(sets...)
}

// refIssues returns submit-blocking reference problems.
func refIssues(refs []models.AssessmentRef, resolved []resolvedAssessmentRef) []string {
	var issues []string
	if len(refs) == 0 {
		issues = append(issues, "at least one task or workflow reference is required")
	}
	for i, r := range resolved {
		if i >= len(refs) {
			break
		}
		ref := refs[i]
		if !r.Found {
			issues = append(issues, fmt.Sprintf("referenced %s %s@%d does not exist", ref.RefType, ref.RecordID, ref.Version))
			continue
		}
		if r.Status == models.StatusDeprecated {
			issues = append(issues, fmt.Sprintf("referenced %s %s@%d is deprecated", ref.RefType, ref.RecordID, ref.Version))
		}
	}
	return issues
}

// CreateDraft creates version 1 of a new assessment item in draft status.
func (s *AssessmentServiceImpl) CreateDraft(ctx context.Context, req primary.CreateAssessmentRequest) (*models.Assessment, error) {
	if err := requireAction(req.Actor, authz.RecordAction(models.KindAssessment, "create")); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Stem) == "" {
		return nil, NewValidationError("stem is required")
	}
	claim := req.Claim
	if claim == "" {
		claim = models.ClaimFactProbe
	}
	if !validClaim(claim) {
		return nil, NewValidationError("unknown claim type %q", claim)
	}
	refs, err := normalizeAssessmentRefs(req.Refs)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	item := &models.Assessment{
		RecordID:   uuid.NewString(),
		Version:    1,
		Status:     models.StatusDraft,
		Stem:       strings.TrimSpace(req.Stem),
		Options:    req.Options,
		CorrectKey: req.CorrectKey,
		Rationale:  req.Rationale,
		Claim:      claim,
		Refs:       refs,
		Tags:       req.Tags,
		Meta:       req.Meta,
		CreatedAt:  now,
		UpdatedAt:  now,
		CreatedBy:  req.Actor.User,
		UpdatedBy:  req.Actor.User,
	}

	if err := s.assessmentRepo.InsertVersion(ctx, item, req.AuditNote); err != nil {
		return nil, translateStoreErr(err, fmt.Sprintf("assessment %s@%d", item.RecordID, item.Version))
	}
	return item, nil
}

// Revise spawns a new draft version from an existing one.
func (s *AssessmentServiceImpl) Revise(ctx context.Context, req primary.ReviseAssessmentRequest) (*models.Assessment, error) {
	if err := requireAction(req.Actor, authz.RecordAction(models.KindAssessment, "revise")); err != nil {
		return nil, err
	}
	if g := record.CanRevise(record.ReviseContext{ChangeNote: req.ChangeNote}); !g.Allowed {
		return nil, NewValidationError("%s", g.Reason)
	}
	claim := req.Claim
	if claim == "" {
		claim = models.ClaimFactProbe
	}
	if !validClaim(claim) {
		return nil, NewValidationError("unknown claim type %q", claim)
	}
	refs, err := normalizeAssessmentRefs(req.Refs)
	if err != nil {
		return nil, err
	}

	source, err := s.assessmentRepo.Get(ctx, req.RecordID, req.SourceVersion)
	if err != nil {
		return nil, translateStoreErr(err, fmt.Sprintf("assessment %s@%d", req.RecordID, req.SourceVersion))
	}

	latest, err := s.assessmentRepo.LatestVersion(ctx, req.RecordID)
	if err != nil {
		return nil, fmt.Errorf("failed to determine latest version: %w", err)
	}

	changeNote := strings.TrimSpace(req.ChangeNote)
	if source.Status == models.StatusReturned {
		ev, err := s.auditRepo.LatestForAction(ctx, models.KindAssessment, req.RecordID, models.ActionReturn)
		if err != nil && !errors.Is(err, secondary.ErrNotFound) {
			return nil, fmt.Errorf("failed to load return feedback: %w", err)
		}
		if err == nil {
			changeNote = fmt.Sprintf("[re: return by %s at %s] %s", ev.Actor, ev.At.UTC().Format(time.RFC3339), changeNote)
		}
	}

	now := time.Now().UTC()
	item := &models.Assessment{
		RecordID:   req.RecordID,
		Version:    latest + 1,
		Status:     models.StatusDraft,
		Stem:       strings.TrimSpace(req.Stem),
		Options:    req.Options,
		CorrectKey: req.CorrectKey,
		Rationale:  req.Rationale,
		Claim:      claim,
		Refs:       refs,
		Tags:       req.Tags,
		Meta:       req.Meta,
		CreatedAt:  now,
		UpdatedAt:  now,
		CreatedBy:  req.Actor.User,
		UpdatedBy:  req.Actor.User,
		ChangeNote: changeNote,
	}

	if err := s.assessmentRepo.InsertVersion(ctx, item, changeNote); err != nil {
		return nil, translateStoreErr(err, fmt.Sprintf("assessment %s@%d", item.RecordID, item.Version))
	}
	return item, nil
}

// Submit moves a draft assessment version to submitted. Error-level lint
// findings block; warnings never do.
func (s *AssessmentServiceImpl) Submit(ctx context.Context, req primary.TransitionRequest) error {
	return s.transition(ctx, req.Actor, req.RecordID, req.Version, "submit",
		func(item *models.Assessment, resolved []resolvedAssessmentRef) error {
			if g := record.CanSubmit(record.SubmitContext{Status: item.Status}); !g.Allowed {
				return NewConflictError("%s", g.Reason)
			}
			issues := content.AssessmentSubmitIssues(item, lint.Assessment(item))
			issues = append(issues, refIssues(item.Refs, resolved)...)
			if len(issues) > 0 {
				return NewConflictError("assessment is not ready to submit: %s", strings.Join(issues, "; "))
			}
			return requireEntitlement(ctx, s.domainRepo, req.Actor, assessmentDomains(resolved)...)
		},
		secondary.TransitionParams{
			From:   []string{models.StatusDraft},
			To:     models.StatusSubmitted,
			Action: models.ActionSubmit,
		},
	)
}

// Confirm moves a submitted assessment version to confirmed.
func (s *AssessmentServiceImpl) Confirm(ctx context.Context, req primary.TransitionRequest) error {
	if err := requireAction(req.Actor, authz.RecordAction(models.KindAssessment, "confirm")); err != nil {
		return err
	}
	item, resolved, err := s.load(ctx, req.RecordID, req.Version)
	if err != nil {
		return err
	}
	if g := record.CanConfirm(record.ConfirmContext{Status: item.Status}); !g.Allowed {
		return NewConflictError("%s", g.Reason)
	}
	if err := requireEntitlement(ctx, s.domainRepo, req.Actor, assessmentDomains(resolved)...); err != nil {
		return err
	}

	err = s.assessmentRepo.Confirm(ctx, secondary.TransitionParams{
		RecordID: req.RecordID,
		Version:  req.Version,
		From:     []string{models.StatusSubmitted},
		Action:   models.ActionConfirm,
		Actor:    req.Actor.User,
	})
	return translateStoreErr(err, fmt.Sprintf("assessment %s@%d", req.RecordID, req.Version))
}

// ReturnForChanges sends a submitted assessment version back to its
// author.
func (s *AssessmentServiceImpl) ReturnForChanges(ctx context.Context, req primary.ReturnRequest) error {
	if strings.TrimSpace(req.Note) == "" {
		return NewValidationError("a return note is required")
	}
	return s.transition(ctx, req.Actor, req.RecordID, req.Version, "return",
		func(item *models.Assessment, resolved []resolvedAssessmentRef) error {
			if g := record.CanReturn(record.ReturnContext{Status: item.Status, Note: req.Note}); !g.Allowed {
				return NewConflictError("%s", g.Reason)
			}
			return requireEntitlement(ctx, s.domainRepo, req.Actor, assessmentDomains(resolved)...)
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
func (s *AssessmentServiceImpl) ForceSubmit(ctx context.Context, req primary.TransitionRequest) error {
	return s.transition(ctx, req.Actor, req.RecordID, req.Version, "force_submit",
		func(item *models.Assessment, resolved []resolvedAssessmentRef) error {
			if g := record.CanForceSubmit(record.ForceSubmitContext{Status: item.Status}); !g.Allowed {
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
func (s *AssessmentServiceImpl) ForceConfirm(ctx context.Context, req primary.TransitionRequest) error {
	if err := requireAction(req.Actor, authz.RecordAction(models.KindAssessment, "force_confirm")); err != nil {
		return err
	}
	item, _, err := s.load(ctx, req.RecordID, req.Version)
	if err != nil {
		return err
	}
	if g := record.CanForceConfirm(record.ForceConfirmContext{Status: item.Status}); !g.Allowed {
		return NewConflictError("%s", g.Reason)
	}

	err = s.assessmentRepo.Confirm(ctx, secondary.TransitionParams{
		RecordID: req.RecordID,
		Version:  req.Version,
		From:     []string{models.StatusDraft, models.StatusSubmitted, models.StatusReturned, models.StatusConfirmed},
		Action:   models.ActionForceConfirm,
		Actor:    req.Actor.User,
	})
	return translateStoreErr(err, fmt.Sprintf("assessment %s@%d", req.RecordID, req.Version))
}

// Get retrieves one assessment version with its advisory lint findings
// and derived domains.
func (s *AssessmentServiceImpl) Get(ctx context.Context, recordID string, version int) (*primary.AssessmentDetail, error) {
	item, resolved, err := s.load(ctx, recordID, version)
	if err != nil {
		return nil, err
	}
	return &primary.AssessmentDetail{
		Assessment: item,
		Lint:       lint.Assessment(item),
		Domains:    assessmentDomains(resolved),
	}, nil
}

// ListLatest lists the latest version of every assessment record.
func (s *AssessmentServiceImpl) ListLatest(ctx context.Context, status string) ([]*models.AssessmentSummary, error) {
	if status != "" && !models.ValidStatus(status) {
		return nil, NewValidationError("unknown status %q", status)
	}
	summaries, err := s.assessmentRepo.ListLatest(ctx, secondary.RecordFilters{Status: status})
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	return summaries, nil
}

// ListVersions lists all versions of one assessment record, oldest first.
func (s *AssessmentServiceImpl) ListVersions(ctx context.Context, recordID string) ([]*models.Assessment, error) {
	versions, err := s.assessmentRepo.ListVersions(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessment versions: %w", err)
	}
	if len(versions) == 0 {
		return nil, NewNotFoundError("assessment %s not found", recordID)
	}
	return versions, nil
}

// load fetches an assessment version and resolves its references.
func (s *AssessmentServiceImpl) load(ctx context.Context, recordID string, version int) (*models.Assessment, []resolvedAssessmentRef, error) {
	item, err := s.assessmentRepo.Get(ctx, recordID, version)
	if err != nil {
		return nil, nil, translateStoreErr(err, fmt.Sprintf("assessment %s@%d", recordID, version))
	}
	resolved, err := s.resolveRefs(ctx, item.Refs)
	if err != nil {
		return nil, nil, err
	}
	return item, resolved, nil
}

// transition runs the shared gate pipeline for one assessment status
// transition.
func (s *AssessmentServiceImpl) transition(ctx context.Context, actor primary.Actor, recordID string, version int, verb string, check func(*models.Assessment, []resolvedAssessmentRef) error, p secondary.TransitionParams) error {
	if err := requireAction(actor, authz.RecordAction(models.KindAssessment, verb)); err != nil {
		return err
	}

	item, resolved, err := s.load(ctx, recordID, version)
	if err != nil {
		return err
	}
	if err := check(item, resolved); err != nil {
		return err
	}

	p.RecordID = recordID
	p.Version = version
	p.Actor = actor.User
	err = s.assessmentRepo.UpdateStatus(ctx, p)
	return translateStoreErr(err, fmt.Sprintf("assessment %s@%d", recordID, version))
}

// Ensure AssessmentServiceImpl implements the interface.
var _ primary.AssessmentService = (*AssessmentServiceImpl)(nil)
