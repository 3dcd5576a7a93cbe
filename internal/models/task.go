package models

import "time"

// Step is one ordered action within a task procedure. Text says what to do,
// Completion says how to observe that it worked. Actions carry optional
// tool-specific "how" guidance and are never validated.
type Step struct {
	Text       string   `json:"text"`
	Completion string   `json:"completion"`
	Actions    []string `json:"actions,omitempty"`
}

// Task is one immutable version of an atomic content record. Content fields
// never change after insert; only status and the bookkeeping stamps do.
type Task struct {
	RecordID string
	Version  int
	Status   string

	Title            string
	Outcome          string
	Facts            []string
	Concepts         []string
	ProcedureName    string
	Steps            []Step
	Dependencies     []string
	IrreversibleFlag bool
	Domain           string

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

// TaskSummary is the latest-version listing row for a task record.
type TaskSummary struct {
	RecordID      string
	LatestVersion int
	Title         string
	Status        string
	Domain        string

	NeedsReviewFlag bool

	// UpdatePendingConfirmation is set when a newer version than the
	// confirmed one exists and is still moving through review.
	UpdatePendingConfirmation bool
}
