package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/lcs/internal/adapters/sqlite"
	"github.com/example/lcs/internal/models"
	"github.com/example/lcs/internal/ports/secondary"
)

func TestWorkflowRepository_InsertAndGet(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlite.NewWorkflowRepository(database)
	ctx := context.Background()

	refs := []models.TaskRef{
		{OrderIndex: 0, RecordID: "task-1", Version: 2},
		{OrderIndex: 1, RecordID: "task-2", Version: 1},
	}
	wf := newWorkflow("wf-1", 1, models.StatusDraft, refs)
	if err := repo.InsertVersion(ctx, wf, ""); err != nil {
		t.Fatalf("InsertVersion failed: %v", err)
	}

	got, err := repo.Get(ctx, "wf-1", 1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Objective != wf.Objective {
		t.Errorf("expected objective %q, got %q", wf.Objective, got.Objective)
	}
	if len(got.TaskRefs) != 2 {
		t.Fatalf("expected 2 task refs, got %d", len(got.TaskRefs))
	}
	if got.TaskRefs[0].RecordID != "task-1" || got.TaskRefs[0].Version != 2 {
		t.Errorf("unexpected first ref: %+v", got.TaskRefs[0])
	}
	if got.TaskRefs[1].OrderIndex != 1 {
		t.Errorf("expected order index 1, got %d", got.TaskRefs[1].OrderIndex)
	}
	if got.Tags[0] != "web" {
		t.Errorf("unexpected tags: %v", got.Tags)
	}
	if got.Meta["audience"] != "ops" {
		t.Errorf("unexpected meta: %v", got.Meta)
	}

	if n := countAuditEvents(t, database, models.KindWorkflow, "wf-1", models.ActionCreate); n != 1 {
		t.Errorf("expected 1 create audit event, got %d", n)
	}
}

func TestWorkflowRepository_EmptyRefs(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlite.NewWorkflowRepository(database)
	ctx := context.Background()

	wf := newWorkflow("wf-1", 1, models.StatusDraft, nil)
	if err := repo.InsertVersion(ctx, wf, ""); err != nil {
		t.Fatalf("InsertVersion failed: %v", err)
	}

	got, err := repo.Get(ctx, "wf-1", 1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got.TaskRefs) != 0 {
		t.Errorf("expected no refs, got %d", len(got.TaskRefs))
	}
}

func TestWorkflowRepository_ConfirmDeprecatesPredecessor(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlite.NewWorkflowRepository(database)
	ctx := context.Background()

	seedTask(t, database, "task-1", 1, models.StatusConfirmed)
	refs := []models.TaskRef{{OrderIndex: 0, RecordID: "task-1", Version: 1}}
	if err := repo.InsertVersion(ctx, newWorkflow("wf-1", 1, models.StatusConfirmed, refs), ""); err != nil {
		t.Fatalf("InsertVersion v1 failed: %v", err)
	}
	v2 := newWorkflow("wf-1", 2, models.StatusSubmitted, refs)
	v2.ChangeNote = "reordered steps"
	if err := repo.InsertVersion(ctx, v2, ""); err != nil {
		t.Fatalf("InsertVersion v2 failed: %v", err)
	}

	err := repo.Confirm(ctx, secondary.TransitionParams{
		RecordID: "wf-1",
		Version:  2,
		From:     []string{models.StatusSubmitted},
		Action:   models.ActionConfirm,
		Actor:    "rex",
	})
	if err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}

	old, err := repo.Get(ctx, "wf-1", 1)
	if err != nil {
		t.Fatalf("Get v1 failed: %v", err)
	}
	if old.Status != models.StatusDeprecated {
		t.Errorf("expected v1 deprecated, got %q", old.Status)
	}
}

func TestWorkflowRepository_ConfirmRequiresConfirmedRefs(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlite.NewWorkflowRepository(database)
	ctx := context.Background()

	// The referenced task version was deprecated after the workflow was
	// submitted; the commit-time check must still reject the confirm.
	seedTask(t, database, "task-1", 1, models.StatusDeprecated)
	refs := []models.TaskRef{{OrderIndex: 0, RecordID: "task-1", Version: 1}}
	if err := repo.InsertVersion(ctx, newWorkflow("wf-1", 1, models.StatusSubmitted, refs), ""); err != nil {
		t.Fatalf("InsertVersion failed: %v", err)
	}

	err := repo.Confirm(ctx, secondary.TransitionParams{
		RecordID: "wf-1",
		Version:  1,
		From:     []string{models.StatusSubmitted},
		Action:   models.ActionConfirm,
		Actor:    "rex",
	})
	if !errors.Is(err, secondary.ErrStatusConflict) {
		t.Fatalf("expected ErrStatusConflict, got %v", err)
	}

	got, err := repo.Get(ctx, "wf-1", 1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != models.StatusSubmitted {
		t.Errorf("expected workflow to stay submitted, got %q", got.Status)
	}
	if n := countAuditEvents(t, database, models.KindWorkflow, "wf-1", models.ActionConfirm); n != 0 {
		t.Errorf("expected no confirm audit events, got %d", n)
	}
}

func TestWorkflowRepository_ConfirmRejectsMissingRef(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlite.NewWorkflowRepository(database)
	ctx := context.Background()

	refs := []models.TaskRef{{OrderIndex: 0, RecordID: "ghost", Version: 1}}
	if err := repo.InsertVersion(ctx, newWorkflow("wf-1", 1, models.StatusSubmitted, refs), ""); err != nil {
		t.Fatalf("InsertVersion failed: %v", err)
	}

	err := repo.Confirm(ctx, secondary.TransitionParams{
		RecordID: "wf-1",
		Version:  1,
		From:     []string{models.StatusSubmitted},
		Action:   models.ActionConfirm,
		Actor:    "rex",
	})
	if !errors.Is(err, secondary.ErrStatusConflict) {
		t.Errorf("expected ErrStatusConflict for unresolvable ref, got %v", err)
	}
}

func TestWorkflowRepository_ListLatestAndVersions(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlite.NewWorkflowRepository(database)
	ctx := context.Background()

	refs := []models.TaskRef{{OrderIndex: 0, RecordID: "task-1", Version: 1}}
	if err := repo.InsertVersion(ctx, newWorkflow("wf-1", 1, models.StatusConfirmed, refs), ""); err != nil {
		t.Fatalf("InsertVersion failed: %v", err)
	}
	v2 := newWorkflow("wf-1", 2, models.StatusDraft, refs)
	v2.ChangeNote = "added hardening task"
	if err := repo.InsertVersion(ctx, v2, ""); err != nil {
		t.Fatalf("InsertVersion failed: %v", err)
	}

	summaries, err := repo.ListLatest(ctx, secondary.RecordFilters{})
	if err != nil {
		t.Fatalf("ListLatest failed: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	if summaries[0].LatestVersion != 2 || summaries[0].Status != models.StatusDraft {
		t.Errorf("unexpected summary: %+v", summaries[0])
	}

	versions, err := repo.ListVersions(ctx, "wf-1")
	if err != nil {
		t.Fatalf("ListVersions failed: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("expected 2 versions, got %d", len(versions))
	}
	if len(versions[0].TaskRefs) != 1 {
		t.Errorf("expected refs loaded for each version, got %d", len(versions[0].TaskRefs))
	}
}

func TestWorkflowRepository_GetNotFound(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlite.NewWorkflowRepository(database)

	_, err := repo.Get(context.Background(), "ghost", 1)
	if !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
