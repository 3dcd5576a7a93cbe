package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/example/lcs/internal/models"
	"github.com/example/lcs/internal/ports/primary"
)

type deliveryFixture struct {
	*workflowFixture
	svc     *DeliveryServiceImpl
	exports *mockExportRepo
}

func newDeliveryFixture() *deliveryFixture {
	wf := newWorkflowFixture()
	exports := &mockExportRepo{audit: wf.audit}
	return &deliveryFixture{
		workflowFixture: wf,
		svc:             NewDeliveryService(wf.flows, wf.tasks, exports),
		exports:         exports,
	}
}

// seedConfirmedWorkflow builds a workflow over one confirmed task and
// pushes it to confirmed.
func (f *deliveryFixture) seedConfirmedWorkflow(t *testing.T) *models.Workflow {
	t.Helper()
	ctx := context.Background()

	task := f.seedConfirmedTask(t, "debian")
	wf, err := f.workflowFixture.svc.CreateDraft(ctx, primary.CreateWorkflowRequest{
		Actor:     actorAuthor,
		Title:     "Provision web host",
		Objective: "A hardened host serving traffic",
		TaskRefs: []models.TaskRef{
			{OrderIndex: 0, RecordID: task.RecordID, Version: 1},
		},
	})
	if err != nil {
		t.Fatalf("seed workflow create failed: %v", err)
	}
	if err := f.workflowFixture.svc.Submit(ctx, primary.TransitionRequest{Actor: actorAuthor, RecordID: wf.RecordID, Version: 1}); err != nil {
		t.Fatalf("seed workflow submit failed: %v", err)
	}
	if err := f.workflowFixture.svc.Confirm(ctx, primary.TransitionRequest{Actor: actorReviewer, RecordID: wf.RecordID, Version: 1}); err != nil {
		t.Fatalf("seed workflow confirm failed: %v", err)
	}
	return wf
}

func TestDeliveryService_ExportMarkdown(t *testing.T) {
	f := newDeliveryFixture()
	ctx := context.Background()

	wf := f.seedConfirmedWorkflow(t)

	// Version 0 resolves to the confirmed version.
	result, err := f.svc.ExportWorkflow(ctx, primary.ExportRequest{
		Actor:    actorPublisher,
		RecordID: wf.RecordID,
		Format:   primary.FormatMarkdown,
	})
	if err != nil {
		t.Fatalf("ExportWorkflow failed: %v", err)
	}
	if result.Version != 1 {
		t.Errorf("expected version 1, got %d", result.Version)
	}
	content := string(result.Content)
	if !strings.Contains(content, "# Provision web host") {
		t.Errorf("expected markdown title heading, got:\n%s", content)
	}
	if !strings.Contains(content, "## Task 1:") {
		t.Errorf("expected task section, got:\n%s", content)
	}

	if len(f.exports.artifacts) != 1 {
		t.Fatalf("expected 1 recorded artifact, got %d", len(f.exports.artifacts))
	}
	artifact := f.exports.artifacts[0]
	if artifact.ByteSize != len(result.Content) || artifact.Format != primary.FormatMarkdown {
		t.Errorf("unexpected artifact: %+v", artifact)
	}
	if got := f.audit.countAction(models.KindWorkflow, wf.RecordID, models.ActionExport); got != 1 {
		t.Errorf("expected 1 export audit event, got %d", got)
	}
}

func TestDeliveryService_ExportHTML(t *testing.T) {
	f := newDeliveryFixture()
	ctx := context.Background()

	wf := f.seedConfirmedWorkflow(t)
	result, err := f.svc.ExportWorkflow(ctx, primary.ExportRequest{
		Actor:    actorPublisher,
		RecordID: wf.RecordID,
		Version:  1,
		Format:   primary.FormatHTML,
	})
	if err != nil {
		t.Fatalf("ExportWorkflow failed: %v", err)
	}
	content := string(result.Content)
	if !strings.Contains(content, "<!DOCTYPE html>") {
		t.Errorf("expected HTML document, got:\n%s", content)
	}
	if !strings.Contains(content, "Provision web host") {
		t.Errorf("expected rendered title, got:\n%s", content)
	}
}

func TestDeliveryService_ExportRoleGate(t *testing.T) {
	f := newDeliveryFixture()
	ctx := context.Background()

	wf := f.seedConfirmedWorkflow(t)
	var forbidden *ForbiddenError
	for _, actor := range []primary.Actor{actorViewer, actorAuthor, actorReviewer} {
		_, err := f.svc.ExportWorkflow(ctx, primary.ExportRequest{Actor: actor, RecordID: wf.RecordID, Format: primary.FormatMarkdown})
		if !errors.As(err, &forbidden) {
			t.Errorf("role %s: expected ForbiddenError, got %v", actor.Role, err)
		}
	}
	if _, err := f.svc.ExportWorkflow(ctx, primary.ExportRequest{Actor: actorAdmin, RecordID: wf.RecordID, Format: primary.FormatMarkdown}); err != nil {
		t.Errorf("admin export failed: %v", err)
	}
}

func TestDeliveryService_ExportRequiresConfirmed(t *testing.T) {
	f := newDeliveryFixture()
	ctx := context.Background()

	task := f.seedConfirmedTask(t, "debian")
	wf, err := f.workflowFixture.svc.CreateDraft(ctx, primary.CreateWorkflowRequest{
		Actor:     actorAuthor,
		Title:     "Still a draft",
		Objective: "Not done yet",
		TaskRefs: []models.TaskRef{
			{OrderIndex: 0, RecordID: task.RecordID, Version: 1},
		},
	})
	if err != nil {
		t.Fatalf("CreateDraft failed: %v", err)
	}

	var conflict *ConflictError
	_, err = f.svc.ExportWorkflow(ctx, primary.ExportRequest{Actor: actorPublisher, RecordID: wf.RecordID, Format: primary.FormatMarkdown})
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if !strings.Contains(conflict.Message, "no confirmed version") {
		t.Errorf("unexpected message: %q", conflict.Message)
	}

	// Pinning the draft version explicitly trips the status check instead.
	_, err = f.svc.ExportWorkflow(ctx, primary.ExportRequest{Actor: actorPublisher, RecordID: wf.RecordID, Version: 1, Format: primary.FormatMarkdown})
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if !strings.Contains(conflict.Message, "only confirmed workflows") {
		t.Errorf("unexpected message: %q", conflict.Message)
	}
}

func TestDeliveryService_ExportBlockedByDeprecatedRef(t *testing.T) {
	f := newDeliveryFixture()
	ctx := context.Background()

	wf := f.seedConfirmedWorkflow(t)
	task := f.tasks.tasks[wf.TaskRefs[0].RecordID][1]

	// Revise and confirm the referenced task; the pinned v1 deprecates.
	revised, err := f.taskSvc.Revise(ctx, primary.ReviseTaskRequest{
		Actor:         actorAuthor,
		RecordID:      task.RecordID,
		SourceVersion: 1,
		ChangeNote:    "tightened verification",
		Title:         task.Title,
		Outcome:       task.Outcome,
		Domain:        task.Domain,
		Steps:         task.Steps,
	})
	if err != nil {
		t.Fatalf("Revise failed: %v", err)
	}
	if err := f.taskSvc.ForceConfirm(ctx, primary.TransitionRequest{Actor: actorAdmin, RecordID: revised.RecordID, Version: 2}); err != nil {
		t.Fatalf("ForceConfirm failed: %v", err)
	}

	var conflict *ConflictError
	_, err = f.svc.ExportWorkflow(ctx, primary.ExportRequest{Actor: actorPublisher, RecordID: wf.RecordID, Format: primary.FormatMarkdown})
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if !strings.Contains(conflict.Message, "not ready for export") {
		t.Errorf("unexpected message: %q", conflict.Message)
	}
}

func TestDeliveryService_ExportUnknownFormat(t *testing.T) {
	f := newDeliveryFixture()

	var validation *ValidationError
	_, err := f.svc.ExportWorkflow(context.Background(), primary.ExportRequest{Actor: actorPublisher, RecordID: "wf-1", Format: "pdf"})
	if !errors.As(err, &validation) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}
