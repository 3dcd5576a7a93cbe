// Package secondary defines the secondary ports (driven adapters) for the
// application: the interfaces through which the governance engine drives
// the store. Every guarded transition is a single transaction in the
// adapter — conditional status update plus audit row — so there is never a
// window where a transition applied without its audit record or vice versa.
package secondary

import (
	"context"
	"errors"
	"time"

	"github.com/example/lcs/internal/models"
)

// Store-level sentinel errors. The application layer translates these into
// its user-facing error taxonomy.
var (
	// ErrNotFound indicates an unknown (record_id, version) or registry row.
	ErrNotFound = errors.New("not found")

	// ErrStatusConflict indicates a conditional status update matched no
	// row because the record is not in an allowed source status.
	ErrStatusConflict = errors.New("status conflict")

	// ErrAlreadyExists indicates a uniqueness violation on insert.
	ErrAlreadyExists = errors.New("already exists")
)

// TransitionParams describes one guarded status transition. From lists the
// allowed source statuses for the conditional update; Action and Note feed
// the audit row written in the same transaction.
type TransitionParams struct {
	RecordID string
	Version  int
	From     []string
	To       string
	Action   string
	Actor    string
	Note     string
}

// Transitioner is the shared transition surface of every record repository.
type Transitioner interface {
	// UpdateStatus conditionally moves (record_id, version) into p.To and
	// appends the audit row, in one transaction. Returns ErrNotFound for
	// an unknown row and ErrStatusConflict when the row exists but is not
	// in one of p.From.
	UpdateStatus(ctx context.Context, p TransitionParams) error

	// Confirm moves (record_id, version) to confirmed, stamps
	// reviewed_at/by, deprecates any other currently-confirmed version of
	// the same record, and appends the audit row — all in one transaction,
	// so at most one version per record is ever confirmed.
	Confirm(ctx context.Context, p TransitionParams) error
}

// RecordFilters contains filter options for latest-version listings.
type RecordFilters struct {
	Status string
}

// TaskRepository persists task versions.
type TaskRepository interface {
	Transitioner

	// InsertVersion appends an immutable task version row together with
	// its audit event (create for v1, new_version otherwise).
	InsertVersion(ctx context.Context, t *models.Task, auditNote string) error

	// Get retrieves one exact version.
	Get(ctx context.Context, recordID string, version int) (*models.Task, error)

	// LatestVersion returns the highest version for a record, 0 if none.
	LatestVersion(ctx context.Context, recordID string) (int, error)

	// ConfirmedVersion returns the currently confirmed version, 0 if none.
	ConfirmedVersion(ctx context.Context, recordID string) (int, error)

	// ListLatest lists the latest version of every record, optionally
	// filtered by that version's status.
	ListLatest(ctx context.Context, f RecordFilters) ([]*models.TaskSummary, error)

	// ListVersions lists all versions of one record, oldest first.
	ListVersions(ctx context.Context, recordID string) ([]*models.Task, error)
}

// WorkflowRepository persists workflow versions and their ordered task
// reference pins.
type WorkflowRepository interface {
	Transitioner

	InsertVersion(ctx context.Context, w *models.Workflow, auditNote string) error
	Get(ctx context.Context, recordID string, version int) (*models.Workflow, error)
	LatestVersion(ctx context.Context, recordID string) (int, error)
	ConfirmedVersion(ctx context.Context, recordID string) (int, error)
	ListLatest(ctx context.Context, f RecordFilters) ([]*models.WorkflowSummary, error)
	ListVersions(ctx context.Context, recordID string) ([]*models.Workflow, error)
}

// AssessmentRepository persists assessment item versions and their ordered
// reference pins.
type AssessmentRepository interface {
	Transitioner

	InsertVersion(ctx context.Context, a *models.Assessment, auditNote string) error
	Get(ctx context.Context, recordID string, version int) (*models.Assessment, error)
	LatestVersion(ctx context.Context, recordID string) (int, error)
	ConfirmedVersion(ctx context.Context, recordID string) (int, error)
	ListLatest(ctx context.Context, f RecordFilters) ([]*models.AssessmentSummary, error)
	ListVersions(ctx context.Context, recordID string) ([]*models.Assessment, error)
}

// DomainRepository is the domain registry and entitlement store.
type DomainRepository interface {
	Create(ctx context.Context, name, actor string) error
	Disable(ctx context.Context, name string) error
	List(ctx context.Context) ([]*models.Domain, error)

	// ListActive returns enabled domain names in sorted order.
	ListActive(ctx context.Context) ([]string, error)

	Grant(ctx context.Context, username, domain, actor string) error
	Revoke(ctx context.Context, username, domain string) error
	EntitledDomains(ctx context.Context, username string) ([]string, error)
	IsEntitled(ctx context.Context, username, domain string) (bool, error)
}

// UserRepository persists authenticated identities.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Delete(ctx context.Context, username string) error
}

// AuditRepository reads the append-only audit trail. Writes happen inside
// the record repositories' transactions only.
type AuditRepository interface {
	ListForRecord(ctx context.Context, entityKind, recordID string) ([]*models.AuditEvent, error)

	// LatestForAction returns the most recent event of one action for a
	// record, or ErrNotFound. Used to chain revision notes back to the
	// reviewer feedback they respond to.
	LatestForAction(ctx context.Context, entityKind, recordID, action string) (*models.AuditEvent, error)
}

// ExportArtifact is the bookkeeping row for one rendered export.
type ExportArtifact struct {
	ID               string
	WorkflowRecordID string
	WorkflowVersion  int
	Format           string
	ByteSize         int
	CreatedAt        time.Time
	CreatedBy        string
}

// ExportArtifactRepository records delivered exports.
type ExportArtifactRepository interface {
	// Record persists the artifact row and appends the export audit event
	// in one transaction.
	Record(ctx context.Context, a *ExportArtifact) error
	ListForWorkflow(ctx context.Context, recordID string) ([]*ExportArtifact, error)
}
