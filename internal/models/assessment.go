package models

import "time"

// Option keys for assessment items. Every item carries exactly these four.
var OptionKeys = []string{"A", "B", "C", "D"}

// Assessment claim types: what a correct answer is evidence of.
const (
	ClaimFactProbe      = "fact_probe"
	ClaimConceptCheck   = "concept_check"
	ClaimProcedureProxy = "procedure_proxy"
)

// AssessmentRef points an assessment item at the task or workflow version it
// probes. RefType is "task" or "workflow".
type AssessmentRef struct {
	OrderIndex int
	RefType    string
	RecordID   string
	Version    int
}

// Assessment is one immutable version of a multiple-choice item. Options are
// keyed A-D. Its domain set is derived from the referenced records.
type Assessment struct {
	RecordID string
	Version  int
	Status   string

	Stem       string
	Options    map[string]string
	CorrectKey string
	Rationale  string
	Claim      string
	Refs       []AssessmentRef
	Tags       []string
	Meta       map[string]string

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

// AssessmentSummary is the latest-version listing row for an assessment item.
type AssessmentSummary struct {
	RecordID      string
	LatestVersion int
	Stem          string
	Status        string
	Claim         string
}
