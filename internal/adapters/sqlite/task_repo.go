package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/lcs/internal/models"
	"github.com/example/lcs/internal/ports/secondary"
)

// TaskRepository implements secondary.TaskRepository with SQLite.
type TaskRepository struct {
	db *sql.DB
	transitioner
}

// NewTaskRepository creates a new SQLite task repository.
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{
		db:           db,
		transitioner: transitioner{db: db, table: "tasks", entityKind: models.KindTask},
	}
}

const taskSelectCols = "record_id, version, status, title, outcome, facts_json, concepts_json, procedure_name, steps_json, dependencies_json, irreversible_flag, domain, created_at, updated_at, created_by, updated_by, reviewed_at, reviewed_by, change_note, needs_review_flag, needs_review_note"

// scanTask scans one task version row.
func scanTask(scanner interface {
	Scan(dest ...any) error
}) (*models.Task, error) {
	var (
		factsJSON        string
		conceptsJSON     string
		stepsJSON        string
		dependenciesJSON string
		reviewedAt       sql.NullTime
		reviewedBy       sql.NullString
		changeNote       sql.NullString
		needsReviewNote  sql.NullString
	)

	t := &models.Task{}
	err := scanner.Scan(
		&t.RecordID, &t.Version, &t.Status, &t.Title, &t.Outcome,
		&factsJSON, &conceptsJSON, &t.ProcedureName, &stepsJSON, &dependenciesJSON,
		&t.IrreversibleFlag, &t.Domain,
		&t.CreatedAt, &t.UpdatedAt, &t.CreatedBy, &t.UpdatedBy,
		&reviewedAt, &reviewedBy, &changeNote,
		&t.NeedsReviewFlag, &needsReviewNote,
	)
	if err != nil {
		return nil, err
	}

	if err := decodeJSON(factsJSON, &t.Facts); err != nil {
		return nil, err
	}
	if err := decodeJSON(conceptsJSON, &t.Concepts); err != nil {
		return nil, err
	}
	if err := decodeJSON(stepsJSON, &t.Steps); err != nil {
		return nil, err
	}
	if err := decodeJSON(dependenciesJSON, &t.Dependencies); err != nil {
		return nil, err
	}

	if reviewedAt.Valid {
		t.ReviewedAt = reviewedAt.Time
	}
	t.ReviewedBy = reviewedBy.String
	t.ChangeNote = changeNote.String
	t.NeedsReviewNote = needsReviewNote.String

	return t, nil
}

// InsertVersion appends one immutable task version row together with its
// audit event, in a single transaction.
func (r *TaskRepository) InsertVersion(ctx context.Context, t *models.Task, auditNote string) error {
	factsJSON, err := encodeJSON(t.Facts)
	if err != nil {
		return err
	}
	conceptsJSON, err := encodeJSON(t.Concepts)
	if err != nil {
		return err
	}
	stepsJSON, err := encodeJSON(t.Steps)
	if err != nil {
		return err
	}
	dependenciesJSON, err := encodeJSON(t.Dependencies)
	if err != nil {
		return err
	}

	var changeNote, needsReviewNote sql.NullString
	if t.ChangeNote != "" {
		changeNote = sql.NullString{String: t.ChangeNote, Valid: true}
	}
	if t.NeedsReviewNote != "" {
		needsReviewNote = sql.NullString{String: t.NeedsReviewNote, Valid: true}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO tasks (record_id, version, status, title, outcome, facts_json, concepts_json, procedure_name, steps_json, dependencies_json, irreversible_flag, domain, created_at, updated_at, created_by, updated_by, change_note, needs_review_flag, needs_review_note)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.RecordID, t.Version, t.Status, t.Title, t.Outcome,
		factsJSON, conceptsJSON, t.ProcedureName, stepsJSON, dependenciesJSON,
		t.IrreversibleFlag, t.Domain,
		t.CreatedAt, t.UpdatedAt, t.CreatedBy, t.UpdatedBy,
		changeNote, t.NeedsReviewFlag, needsReviewNote,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return secondary.ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert task version: %w", err)
	}

	action := models.ActionCreate
	if t.Version > 1 {
		action = models.ActionNewVersion
	}
	if err := insertAudit(ctx, tx, models.KindTask, t.RecordID, t.Version, action, t.CreatedBy, auditNote); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit task version: %w", err)
	}
	return nil
}

// Get retrieves one exact task version.
func (r *TaskRepository) Get(ctx context.Context, recordID string, version int) (*models.Task, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+taskSelectCols+" FROM tasks WHERE record_id = ? AND version = ?",
		recordID, version,
	)

	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, secondary.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return t, nil
}

// LatestVersion returns the highest version for a record, 0 if none.
func (r *TaskRepository) LatestVersion(ctx context.Context, recordID string) (int, error) {
	var v int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version), 0) FROM tasks WHERE record_id = ?",
		recordID,
	).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest task version: %w", err)
	}
	return v, nil
}

// ConfirmedVersion returns the currently confirmed version, 0 if none.
func (r *TaskRepository) ConfirmedVersion(ctx context.Context, recordID string) (int, error) {
	var v int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version), 0) FROM tasks WHERE record_id = ? AND status = 'confirmed'",
		recordID,
	).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("failed to get confirmed task version: %w", err)
	}
	return v, nil
}

// ListLatest lists the latest version of every task record, optionally
// filtered by that version's status.
func (r *TaskRepository) ListLatest(ctx context.Context, f secondary.RecordFilters) ([]*models.TaskSummary, error) {
	query := `
		SELECT t.record_id, t.version, t.title, t.status, t.domain, t.needs_review_flag,
		       EXISTS (
		           SELECT 1 FROM tasks c
		           WHERE c.record_id = t.record_id AND c.status = 'confirmed' AND c.version < t.version
		       ) AND t.status IN ('draft', 'submitted', 'returned')
		FROM tasks t
		WHERE t.version = (SELECT MAX(version) FROM tasks WHERE record_id = t.record_id)
	`
	args := []any{}

	if f.Status != "" {
		query += " AND t.status = ?"
		args = append(args, f.Status)
	}

	query += " ORDER BY t.record_id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var summaries []*models.TaskSummary
	for rows.Next() {
		s := &models.TaskSummary{}
		if err := rows.Scan(&s.RecordID, &s.LatestVersion, &s.Title, &s.Status, &s.Domain, &s.NeedsReviewFlag, &s.UpdatePendingConfirmation); err != nil {
			return nil, fmt.Errorf("failed to scan task summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

// ListVersions lists all versions of one task record, oldest first.
func (r *TaskRepository) ListVersions(ctx context.Context, recordID string) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+taskSelectCols+" FROM tasks WHERE record_id = ? ORDER BY version ASC",
		recordID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list task versions: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

// Ensure TaskRepository implements the interface
var _ secondary.TaskRepository = (*TaskRepository)(nil)
