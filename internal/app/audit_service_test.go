package app

import (
	"context"
	"errors"
	"testing"

	"github.com/example/lcs/internal/models"
)

func TestAuditService_ListForRecord(t *testing.T) {
	audit := &mockAuditRepo{}
	audit.append(models.KindTask, "task-1", 1, models.ActionCreate, "alice", "")
	audit.append(models.KindTask, "task-1", 1, models.ActionSubmit, "alice", "")
	audit.append(models.KindTask, "task-2", 1, models.ActionCreate, "alice", "")
	svc := NewAuditService(audit)
	ctx := context.Background()

	// Any authenticated role may inspect audit trails.
	events, err := svc.ListForRecord(ctx, actorViewer, models.KindTask, "task-1")
	if err != nil {
		t.Fatalf("ListForRecord failed: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("expected 2 events, got %d", len(events))
	}

	var validation *ValidationError
	if _, err := svc.ListForRecord(ctx, actorViewer, "tome", "task-1"); !errors.As(err, &validation) {
		t.Errorf("expected ValidationError for unknown kind, got %v", err)
	}

	var notFound *NotFoundError
	if _, err := svc.ListForRecord(ctx, actorViewer, models.KindTask, "ghost"); !errors.As(err, &notFound) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}
