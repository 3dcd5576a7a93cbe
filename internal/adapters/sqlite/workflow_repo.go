package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/lcs/internal/models"
	"github.com/example/lcs/internal/ports/secondary"
)

// WorkflowRepository implements secondary.WorkflowRepository with SQLite.
// The ordered task reference pins live in workflow_task_refs and are
// written in the same transaction as the version row.
type WorkflowRepository struct {
	db *sql.DB
	transitioner
}

// NewWorkflowRepository creates a new SQLite workflow repository.
func NewWorkflowRepository(db *sql.DB) *WorkflowRepository {
	return &WorkflowRepository{
		db: db,
		transitioner: transitioner{
			db:           db,
			table:        "workflows",
			entityKind:   models.KindWorkflow,
			confirmGuard: requireConfirmedRefs,
		},
	}
}

// requireConfirmedRefs re-verifies, inside the confirm transaction, that
// every reference pin resolves to a confirmed task version. The service
// computes readiness from pool reads first; a task deprecated between that
// check and the commit must still fail the confirm.
func requireConfirmedRefs(ctx context.Context, tx *sql.Tx, recordID string, version int) error {
	var unresolved int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*)
		 FROM workflow_task_refs r
		 LEFT JOIN tasks t ON t.record_id = r.task_record_id AND t.version = r.task_version
		 WHERE r.workflow_record_id = ? AND r.workflow_version = ?
		 AND (t.status IS NULL OR t.status != 'confirmed')`,
		recordID, version,
	).Scan(&unresolved)
	if err != nil {
		return fmt.Errorf("failed to verify workflow task refs: %w", err)
	}
	if unresolved > 0 {
		return secondary.ErrStatusConflict
	}
	return nil
}

const workflowSelectCols = "record_id, version, status, title, objective, tags_json, meta_json, created_at, updated_at, created_by, updated_by, reviewed_at, reviewed_by, change_note, needs_review_flag, needs_review_note"

func scanWorkflow(scanner interface {
	Scan(dest ...any) error
}) (*models.Workflow, error) {
	var (
		tagsJSON        string
		metaJSON        string
		reviewedAt      sql.NullTime
		reviewedBy      sql.NullString
		changeNote      sql.NullString
		needsReviewNote sql.NullString
	)

	w := &models.Workflow{}
	err := scanner.Scan(
		&w.RecordID, &w.Version, &w.Status, &w.Title, &w.Objective,
		&tagsJSON, &metaJSON,
		&w.CreatedAt, &w.UpdatedAt, &w.CreatedBy, &w.UpdatedBy,
		&reviewedAt, &reviewedBy, &changeNote,
		&w.NeedsReviewFlag, &needsReviewNote,
	)
	if err != nil {
		return nil, err
	}

	if err := decodeJSON(tagsJSON, &w.Tags); err != nil {
		return nil, err
	}
	if err := decodeJSON(metaJSON, &w.Meta); err != nil {
		return nil, err
	}

	if reviewedAt.Valid {
		w.ReviewedAt = reviewedAt.Time
	}
	w.ReviewedBy = reviewedBy.String
	w.ChangeNote = changeNote.String
	w.NeedsReviewNote = needsReviewNote.String

	return w, nil
}

// loadTaskRefs fetches the ordered reference pins for one workflow version.
func (r *WorkflowRepository) loadTaskRefs(ctx context.Context, recordID string, version int) ([]models.TaskRef, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT order_index, task_record_id, task_version FROM workflow_task_refs WHERE workflow_record_id = ? AND workflow_version = ? ORDER BY order_index ASC",
		recordID, version,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow task refs: %w", err)
	}
	defer rows.Close()

	var refs []models.TaskRef
	for rows.Next() {
		var ref models.TaskRef
		if err := rows.Scan(&ref.OrderIndex, &ref.RecordID, &ref.Version); err != nil {
			return nil, fmt.Errorf("failed to scan workflow task ref: %w", err)
		}
		refs = append(refs, ref)
	}

	return refs, rows.Err()
}

// InsertVersion appends one immutable workflow version row, its reference
// pins, and its audit event, in a single transaction.
func (r *WorkflowRepository) InsertVersion(ctx context.Context, w *models.Workflow, auditNote string) error {
	tagsJSON, err := encodeJSON(w.Tags)
	if err != nil {
		return err
	}
	metaJSON, err := encodeJSON(w.Meta)
	if err != nil {
		return err
	}

	var changeNote, needsReviewNote sql.NullString
	if w.ChangeNote != "" {
		changeNote = sql.NullString{String: w.ChangeNote, Valid: true}
	}
	if w.NeedsReviewNote != "" {
		needsReviewNote = sql.NullString{String: w.NeedsReviewNote, Valid: true}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO workflows (record_id, version, status, title, objective, tags_json, meta_json, created_at, updated_at, created_by, updated_by, change_note, needs_review_flag, needs_review_note)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.RecordID, w.Version, w.Status, w.Title, w.Objective,
		tagsJSON, metaJSON,
		w.CreatedAt, w.UpdatedAt, w.CreatedBy, w.UpdatedBy,
		changeNote, w.NeedsReviewFlag, needsReviewNote,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return secondary.ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert workflow version: %w", err)
	}

	for _, ref := range w.TaskRefs {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO workflow_task_refs (workflow_record_id, workflow_version, order_index, task_record_id, task_version) VALUES (?, ?, ?, ?, ?)",
			w.RecordID, w.Version, ref.OrderIndex, ref.RecordID, ref.Version,
		)
		if err != nil {
			return fmt.Errorf("failed to insert workflow task ref: %w", err)
		}
	}

	action := models.ActionCreate
	if w.Version > 1 {
		action = models.ActionNewVersion
	}
	if err := insertAudit(ctx, tx, models.KindWorkflow, w.RecordID, w.Version, action, w.CreatedBy, auditNote); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit workflow version: %w", err)
	}
	return nil
}

// Get retrieves one exact workflow version with its reference pins.
func (r *WorkflowRepository) Get(ctx context.Context, recordID string, version int) (*models.Workflow, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+workflowSelectCols+" FROM workflows WHERE record_id = ? AND version = ?",
		recordID, version,
	)

	w, err := scanWorkflow(row)
	if err == sql.ErrNoRows {
		return nil, secondary.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}

	refs, err := r.loadTaskRefs(ctx, recordID, version)
	if err != nil {
		return nil, err
	}
	w.TaskRefs = refs

	return w, nil
}

// LatestVersion returns the highest version for a record, 0 if none.
func (r *WorkflowRepository) LatestVersion(ctx context.Context, recordID string) (int, error) {
	var v int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version), 0) FROM workflows WHERE record_id = ?",
		recordID,
	).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest workflow version: %w", err)
	}
	return v, nil
}

// ConfirmedVersion returns the currently confirmed version, 0 if none.
func (r *WorkflowRepository) ConfirmedVersion(ctx context.Context, recordID string) (int, error) {
	var v int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version), 0) FROM workflows WHERE record_id = ? AND status = 'confirmed'",
		recordID,
	).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("failed to get confirmed workflow version: %w", err)
	}
	return v, nil
}

// ListLatest lists the latest version of every workflow record. Readiness
// is left blank; it is derived by the application from live task statuses.
func (r *WorkflowRepository) ListLatest(ctx context.Context, f secondary.RecordFilters) ([]*models.WorkflowSummary, error) {
	query := `
		SELECT w.record_id, w.version, w.title, w.status
		FROM workflows w
		WHERE w.version = (SELECT MAX(version) FROM workflows WHERE record_id = w.record_id)
	`
	args := []any{}

	if f.Status != "" {
		query += " AND w.status = ?"
		args = append(args, f.Status)
	}

	query += " ORDER BY w.record_id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	defer rows.Close()

	var summaries []*models.WorkflowSummary
	for rows.Next() {
		s := &models.WorkflowSummary{}
		if err := rows.Scan(&s.RecordID, &s.LatestVersion, &s.Title, &s.Status); err != nil {
			return nil, fmt.Errorf("failed to scan workflow summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

// ListVersions lists all versions of one workflow record, oldest first,
// with their reference pins.
func (r *WorkflowRepository) ListVersions(ctx context.Context, recordID string) ([]*models.Workflow, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+workflowSelectCols+" FROM workflows WHERE record_id = ? ORDER BY version ASC",
		recordID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow versions: %w", err)
	}
	defer rows.Close()

	var workflows []*models.Workflow
	for rows.Next() {
		w, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}
		workflows = append(workflows, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, w := range workflows {
		refs, err := r.loadTaskRefs(ctx, w.RecordID, w.Version)
		if err != nil {
			return nil, err
		}
		w.TaskRefs = refs
	}

	return workflows, nil
}

// Ensure WorkflowRepository implements the interface
var _ secondary.WorkflowRepository = (*WorkflowRepository)(nil)
