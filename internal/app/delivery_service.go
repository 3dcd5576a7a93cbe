package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/lcs/internal/core/authz"
	"github.com/example/lcs/internal/core/composition"
	"github.com/example/lcs/internal/export"
	"github.com/example/lcs/internal/models"
	"github.com/example/lcs/internal/ports/primary"
	"github.com/example/lcs/internal/ports/secondary"
)

// DeliveryServiceImpl implements the DeliveryService interface: the
// read-only surface that hands confirmed, ready workflows to consumers.
type DeliveryServiceImpl struct {
	workflowRepo secondary.WorkflowRepository
	taskRepo     secondary.TaskRepository
	exportRepo   secondary.ExportArtifactRepository
}

// NewDeliveryService creates a new DeliveryService with injected
// dependencies.
func NewDeliveryService(workflowRepo secondary.WorkflowRepository, taskRepo secondary.TaskRepository, exportRepo secondary.ExportArtifactRepository) *DeliveryServiceImpl {
	return &DeliveryServiceImpl{
		workflowRepo: workflowRepo,
		taskRepo:     taskRepo,
		exportRepo:   exportRepo,
	}
}

// ExportWorkflow renders a confirmed workflow whose readiness is ready.
// Version 0 selects the currently confirmed version. Each successful
// export is recorded as an artifact and audited.
func (s *DeliveryServiceImpl) ExportWorkflow(ctx context.Context, req primary.ExportRequest) (*primary.ExportResult, error) {
	if err := requireAction(req.Actor, authz.ActionDeliveryExport); err != nil {
		return nil, err
	}
	if req.Format != primary.FormatMarkdown && req.Format != primary.FormatHTML {
		return nil, NewValidationError("unknown export format %q", req.Format)
	}

	version := req.Version
	if version == 0 {
		confirmed, err := s.workflowRepo.ConfirmedVersion(ctx, req.RecordID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve confirmed version: %w", err)
		}
		if confirmed == 0 {
			return nil, NewConflictError("workflow %s has no confirmed version", req.RecordID)
		}
		version = confirmed
	}

	wf, err := s.workflowRepo.Get(ctx, req.RecordID, version)
	if err != nil {
		return nil, translateStoreErr(err, fmt.Sprintf("workflow %s@%d", req.RecordID, version))
	}
	if wf.Status != models.StatusConfirmed {
		return nil, NewConflictError("only confirmed workflows can be exported (current status: %s)", wf.Status)
	}

	// Resolve refs at export time: a referenced task may have been
	// deprecated since the workflow was confirmed.
	resolved := make([]composition.ResolvedRef, 0, len(wf.TaskRefs))
	tasks := make([]*models.Task, 0, len(wf.TaskRefs))
	for _, ref := range wf.TaskRefs {
		task, err := s.taskRepo.Get(ctx, ref.RecordID, ref.Version)
		if err != nil {
			if errors.Is(err, secondary.ErrNotFound) {
				resolved = append(resolved, composition.ResolvedRef{})
				continue
			}
			return nil, fmt.Errorf("failed to resolve task ref %s@%d: %w", ref.RecordID, ref.Version, err)
		}
		resolved = append(resolved, composition.ResolvedRef{Found: true, Status: task.Status, Domain: task.Domain})
		tasks = append(tasks, task)
	}
	if readiness := composition.Readiness(resolved); readiness != models.ReadinessReady {
		return nil, NewConflictError("workflow is not ready for export (readiness: %s)", readiness)
	}

	var content []byte
	switch req.Format {
	case primary.FormatMarkdown:
		content = export.Markdown(wf, tasks)
	case primary.FormatHTML:
		content = export.HTML(wf, tasks)
	}

	artifact := &secondary.ExportArtifact{
		ID:               uuid.NewString(),
		WorkflowRecordID: wf.RecordID,
		WorkflowVersion:  wf.Version,
		Format:           req.Format,
		ByteSize:         len(content),
		CreatedAt:        time.Now().UTC(),
		CreatedBy:        req.Actor.User,
	}
	if err := s.exportRepo.Record(ctx, artifact); err != nil {
		return nil, fmt.Errorf("failed to record export artifact: %w", err)
	}

	return &primary.ExportResult{
		RecordID: wf.RecordID,
		Version:  wf.Version,
		Format:   req.Format,
		Content:  content,
	}, nil
}

// Ensure DeliveryServiceImpl implements the interface.
var _ primary.DeliveryService = (*DeliveryServiceImpl)(nil)
