// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for
// tests. All test setup uses db.GetSchemaSQL() so tests run against the
// authoritative schema, preventing drift between test and production.
package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/lcs/internal/adapters/sqlite"
	"github.com/example/lcs/internal/db"
	"github.com/example/lcs/internal/models"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// A pooled second connection would see its own empty :memory: database.
	testDB.SetMaxOpenConns(1)

	_, err = testDB.Exec(db.GetSchemaSQL())
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// newTask builds a minimal valid task version for insertion.
func newTask(recordID string, version int, status string) *models.Task {
	now := time.Now().UTC()
	return &models.Task{
		RecordID:      recordID,
		Version:       version,
		Status:        status,
		Title:         "Install nginx",
		Outcome:       "nginx is serving on port 80",
		Facts:         []string{"nginx config lives in /etc/nginx"},
		Concepts:      []string{"reverse proxy"},
		ProcedureName: "install-nginx",
		Steps: []models.Step{
			{Text: "Run apt install nginx", Completion: "apt exits 0"},
			{Text: "Start the service", Completion: "systemctl reports active"},
		},
		Domain:    "debian",
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: "alice",
		UpdatedBy: "alice",
	}
}

// seedTask inserts a task version through the repository.
func seedTask(t *testing.T, database *sql.DB, recordID string, version int, status string) *models.Task {
	t.Helper()
	task := newTask(recordID, version, status)
	if version > 1 {
		task.ChangeNote = "revised"
	}
	repo := sqlite.NewTaskRepository(database)
	if err := repo.InsertVersion(context.Background(), task, ""); err != nil {
		t.Fatalf("failed to seed task: %v", err)
	}
	return task
}

// newWorkflow builds a minimal valid workflow version for insertion.
func newWorkflow(recordID string, version int, status string, refs []models.TaskRef) *models.Workflow {
	now := time.Now().UTC()
	return &models.Workflow{
		RecordID:  recordID,
		Version:   version,
		Status:    status,
		Title:     "Provision web host",
		Objective: "A hardened host serving the app",
		TaskRefs:  refs,
		Tags:      []string{"web"},
		Meta:      map[string]string{"audience": "ops"},
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: "alice",
		UpdatedBy: "alice",
	}
}

// newAssessment builds a minimal valid assessment version for insertion.
func newAssessment(recordID string, version int, status string) *models.Assessment {
	now := time.Now().UTC()
	return &models.Assessment{
		RecordID: recordID,
		Version:  version,
		Status:   status,
		Stem:     "Which directory holds nginx configuration?",
		Options: map[string]string{
			"A": "/etc/nginx",
			"B": "/var/nginx",
			"C": "/opt/nginx",
			"D": "/usr/nginx",
		},
		CorrectKey: "A",
		Rationale:  "Debian packages install config under /etc.",
		Claim:      models.ClaimFactProbe,
		Refs: []models.AssessmentRef{
			{OrderIndex: 0, RefType: "task", RecordID: "task-1", Version: 1},
		},
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: "quinn",
		UpdatedBy: "quinn",
	}
}

// countAuditEvents counts audit rows for one record and action.
func countAuditEvents(t *testing.T, database *sql.DB, entityKind, recordID, action string) int {
	t.Helper()
	var count int
	err := database.QueryRow(
		"SELECT COUNT(*) FROM audit_log WHERE entity_kind = ? AND record_id = ? AND action = ?",
		entityKind, recordID, action,
	).Scan(&count)
	if err != nil {
		t.Fatalf("failed to count audit events: %v", err)
	}
	return count
}
