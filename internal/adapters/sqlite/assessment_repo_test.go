package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/lcs/internal/adapters/sqlite"
	"github.com/example/lcs/internal/models"
	"github.com/example/lcs/internal/ports/secondary"
)

func TestAssessmentRepository_InsertAndGet(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlite.NewAssessmentRepository(database)
	ctx := context.Background()

	item := newAssessment("asm-1", 1, models.StatusDraft)
	if err := repo.InsertVersion(ctx, item, ""); err != nil {
		t.Fatalf("InsertVersion failed: %v", err)
	}

	got, err := repo.Get(ctx, "asm-1", 1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Stem != item.Stem {
		t.Errorf("expected stem %q, got %q", item.Stem, got.Stem)
	}
	if len(got.Options) != 4 {
		t.Fatalf("expected 4 options, got %d", len(got.Options))
	}
	if got.Options["A"] != "/etc/nginx" {
		t.Errorf("unexpected option A: %q", got.Options["A"])
	}
	if got.CorrectKey != "A" {
		t.Errorf("expected correct key A, got %q", got.CorrectKey)
	}
	if got.Claim != models.ClaimFactProbe {
		t.Errorf("expected claim fact_probe, got %q", got.Claim)
	}
	if len(got.Refs) != 1 || got.Refs[0].RefType != "task" {
		t.Errorf("unexpected refs: %+v", got.Refs)
	}
}

func TestAssessmentRepository_Transitions(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlite.NewAssessmentRepository(database)
	ctx := context.Background()

	if err := repo.InsertVersion(ctx, newAssessment("asm-1", 1, models.StatusDraft), ""); err != nil {
		t.Fatalf("InsertVersion failed: %v", err)
	}

	err := repo.UpdateStatus(ctx, secondary.TransitionParams{
		RecordID: "asm-1",
		Version:  1,
		From:     []string{models.StatusDraft},
		To:       models.StatusSubmitted,
		Action:   models.ActionSubmit,
		Actor:    "quinn",
	})
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	err = repo.Confirm(ctx, secondary.TransitionParams{
		RecordID: "asm-1",
		Version:  1,
		From:     []string{models.StatusSubmitted},
		Action:   models.ActionConfirm,
		Actor:    "rex",
	})
	if err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}

	got, err := repo.Get(ctx, "asm-1", 1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != models.StatusConfirmed {
		t.Errorf("expected confirmed, got %q", got.Status)
	}
	if got.ReviewedBy != "rex" {
		t.Errorf("expected reviewed_by rex, got %q", got.ReviewedBy)
	}
}

func TestAssessmentRepository_ListLatest(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlite.NewAssessmentRepository(database)
	ctx := context.Background()

	if err := repo.InsertVersion(ctx, newAssessment("asm-1", 1, models.StatusConfirmed), ""); err != nil {
		t.Fatalf("InsertVersion failed: %v", err)
	}
	v2 := newAssessment("asm-1", 2, models.StatusDraft)
	v2.ChangeNote = "tightened distractors"
	if err := repo.InsertVersion(ctx, v2, ""); err != nil {
		t.Fatalf("InsertVersion failed: %v", err)
	}
	if err := repo.InsertVersion(ctx, newAssessment("asm-2", 1, models.StatusSubmitted), ""); err != nil {
		t.Fatalf("InsertVersion failed: %v", err)
	}

	all, err := repo.ListLatest(ctx, secondary.RecordFilters{})
	if err != nil {
		t.Fatalf("ListLatest failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(all))
	}

	submitted, err := repo.ListLatest(ctx, secondary.RecordFilters{Status: models.StatusSubmitted})
	if err != nil {
		t.Fatalf("ListLatest with filter failed: %v", err)
	}
	if len(submitted) != 1 || submitted[0].RecordID != "asm-2" {
		t.Errorf("expected only asm-2 submitted, got %+v", submitted)
	}
}

func TestAssessmentRepository_GetNotFound(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlite.NewAssessmentRepository(database)

	_, err := repo.Get(context.Background(), "ghost", 1)
	if !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
