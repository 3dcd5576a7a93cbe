package models

import "time"

// TaskRef pins one ordered reference from a workflow version to an exact
// task version. References never auto-track a task's latest version.
type TaskRef struct {
	OrderIndex int
	RecordID   string
	Version    int
}

// Workflow is one immutable version of a composite content record. Its
// domain set is derived from the referenced task versions, never authored.
type Workflow struct {
	RecordID string
	Version  int
	Status   string

	Title     string
	Objective string
	TaskRefs  []TaskRef
	Tags      []string
	Meta      map[string]string

	CreatedAt  time.Time
	UpdatedAt  time.Time
	CreatedBy  string
	UpdatedBy  string
	ReviewedAt time.Time
	ReviewedBy string
	ChangeNote string

	NeedsReviewFlag bool
	NeedsReviewNote string
}

// WorkflowSummary is the latest-version listing row for a workflow record.
type WorkflowSummary struct {
	RecordID      string
	LatestVersion int
	Title         string
	Status        string

	// Readiness is recomputed at listing time from the referenced task
	// version statuses.
	Readiness string
}
