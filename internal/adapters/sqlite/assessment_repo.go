package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/lcs/internal/models"
	"github.com/example/lcs/internal/ports/secondary"
)

// AssessmentRepository implements secondary.AssessmentRepository with
// SQLite. The ordered reference pins live in assessment_refs and are
// written in the same transaction as the version row.
type AssessmentRepository struct {
	db *sql.DB
	transitioner
}

// NewAssessmentRepository creates a new SQLite assessment repository.
func NewAssessmentRepository(db *sql.DB) *AssessmentRepository {
	return &AssessmentRepository{
		db:           db,
		transitioner: transitioner{db: db, table: "assessment_items", entityKind: models.KindAssessment},
	}
}

const assessmentSelectCols = "record_id, version, status, stem, options_json, correct_key, rationale, claim, tags_json, meta_json, created_at, updated_at, created_by, updated_by, reviewed_at, reviewed_by, change_note, needs_review_flag, needs_review_note"

func scanAssessment(scanner interface {
	Scan(dest ...any) error
}) (*models.Assessment, error) {
	var (
		optionsJSON     string
		tagsJSON        string
		metaJSON        string
		reviewedAt      sql.NullTime
		reviewedBy      sql.NullString
		changeNote      sql.NullString
		needsReviewNote sql.NullString
	)

	a := &models.Assessment{}
	err := scanner.Scan(
		&a.RecordID, &a.Version, &a.Status, &a.Stem,
		&optionsJSON, &a.CorrectKey, &a.Rationale, &a.Claim,
		&tagsJSON, &metaJSON,
		&a.CreatedAt, &a.UpdatedAt, &a.CreatedBy, &a.UpdatedBy,
		&reviewedAt, &reviewedBy, &changeNote,
		&a.NeedsReviewFlag, &needsReviewNote,
	)
	if err != nil {
		return nil, err
	}

	if err := decodeJSON(optionsJSON, &a.Options); err != nil {
		return nil, err
	}
	if err := decodeJSON(tagsJSON, &a.Tags); err != nil {
		return nil, err
	}
	if err := decodeJSON(metaJSON, &a.Meta); err != nil {
		return nil, err
	}

	if reviewedAt.Valid {
		a.ReviewedAt = reviewedAt.Time
	}
	a.ReviewedBy = reviewedBy.String
	a.ChangeNote = changeNote.String
	a.NeedsReviewNote = needsReviewNote.String

	return a, nil
}

func (r *AssessmentRepository) loadRefs(ctx context.Context, recordID string, version int) ([]models.AssessmentRef, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT order_index, ref_type, ref_record_id, ref_version FROM assessment_refs WHERE assessment_record_id = ? AND assessment_version = ? ORDER BY order_index ASC",
		recordID, version,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load assessment refs: %w", err)
	}
	defer rows.Close()

	var refs []models.AssessmentRef
	for rows.Next() {
		var ref models.AssessmentRef
		if err := rows.Scan(&ref.OrderIndex, &ref.RefType, &ref.RecordID, &ref.Version); err != nil {
			return nil, fmt.Errorf("failed to scan assessment ref: %w", err)
		}
		refs = append(refs, ref)
	}

	return refs, rows.Err()
}

// InsertVersion appends one immutable assessment version row, its
// reference pins, and its audit event, in a single transaction.
func (r *AssessmentRepository) InsertVersion(ctx context.Context, a *models.Assessment, auditNote string) error {
	optionsJSON, err := encodeJSON(a.Options)
	if err != nil {
		return err
	}
	tagsJSON, err := encodeJSON(a.Tags)
	if err != nil {
		return err
	}
	metaJSON, err := encodeJSON(a.Meta)
	if err != nil {
		return err
	}

	var changeNote, needsReviewNote sql.NullString
	if a.ChangeNote != "" {
		changeNote = sql.NullString{String: a.ChangeNote, Valid: true}
	}
	if a.NeedsReviewNote != "" {
		needsReviewNote = sql.NullString{String: a.NeedsReviewNote, Valid: true}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO assessment_items (record_id, version, status, stem, options_json, correct_key, rationale, claim, tags_json, meta_json, created_at, updated_at, created_by, updated_by, change_note, needs_review_flag, needs_review_note)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.RecordID, a.Version, a.Status, a.Stem,
		optionsJSON, a.CorrectKey, a.Rationale, a.Claim,
		tagsJSON, metaJSON,
		a.CreatedAt, a.UpdatedAt, a.CreatedBy, a.UpdatedBy,
		changeNote, a.NeedsReviewFlag, needsReviewNote,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return secondary.ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert assessment version: %w", err)
	}

	for _, ref := range a.Refs {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO assessment_refs (assessment_record_id, assessment_version, order_index, ref_type, ref_record_id, ref_version) VALUES (?, ?, ?, ?, ?, ?)",
			a.RecordID, a.Version, ref.OrderIndex, ref.RefType, ref.RecordID, ref.Version,
		)
		if err != nil {
			return fmt.Errorf("failed to insert assessment ref: %w", err)
		}
	}

	action := models.ActionCreate
	if a.Version > 1 {
		action = models.ActionNewVersion
	}
	if err := insertAudit(ctx, tx, models.KindAssessment, a.RecordID, a.Version, action, a.CreatedBy, auditNote); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit assessment version: %w", err)
	}
	return nil
}

// Get retrieves one exact assessment version with its reference pins.
func (r *AssessmentRepository) Get(ctx context.Context, recordID string, version int) (*models.Assessment, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+assessmentSelectCols+" FROM assessment_items WHERE record_id = ? AND version = ?",
		recordID, version,
	)

	a, err := scanAssessment(row)
	if err == sql.ErrNoRows {
		return nil, secondary.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}

	refs, err := r.loadRefs(ctx, recordID, version)
	if err != nil {
		return nil, err
	}
	a.Refs = refs

	return a, nil
}

// LatestVersion returns the highest version for a record, 0 if none.
func (r *AssessmentRepository) LatestVersion(ctx context.Context, recordID string) (int, error) {
	var v int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version), 0) FROM assessment_items WHERE record_id = ?",
		recordID,
	).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest assessment version: %w", err)
	}
	return v, nil
}

// ConfirmedVersion returns the currently confirmed version, 0 if none.
func (r *AssessmentRepository) ConfirmedVersion(ctx context.Context, recordID string) (int, error) {
	var v int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version), 0) FROM assessment_items WHERE record_id = ? AND status = 'confirmed'",
		recordID,
	).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("failed to get confirmed assessment version: %w", err)
	}
	return v, nil
}

// ListLatest lists the latest version of every assessment record,
// optionally filtered by that version's status.
func (r *AssessmentRepository) ListLatest(ctx context.Context, f secondary.RecordFilters) ([]*models.AssessmentSummary, error) {
	query := `
		SELECT a.record_id, a.version, a.stem, a.status, a.claim
		FROM assessment_items a
		WHERE a.version = (SELECT MAX(version) FROM assessment_items WHERE record_id = a.record_id)
	`
	args := []any{}

	if f.Status != "" {
		query += " AND a.status = ?"
		args = append(args, f.Status)
	}

	query += " ORDER BY a.record_id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	defer rows.Close()

	var summaries []*models.AssessmentSummary
	for rows.Next() {
		s := &models.AssessmentSummary{}
		if err := rows.Scan(&s.RecordID, &s.LatestVersion, &s.Stem, &s.Status, &s.Claim); err != nil {
			return nil, fmt.Errorf("failed to scan assessment summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

// ListVersions lists all versions of one assessment record, oldest first,
// with their reference pins.
func (r *AssessmentRepository) ListVersions(ctx context.Context, recordID string) ([]*models.Assessment, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+assessmentSelectCols+" FROM assessment_items WHERE record_id = ? ORDER BY version ASC",
		recordID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessment versions: %w", err)
	}
	defer rows.Close()

	var assessments []*models.Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assessment: %w", err)
		}
		assessments = append(assessments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, a := range assessments {
		refs, err := r.loadRefs(ctx, a.RecordID, a.Version)
		if err != nil {
			return nil, err
		}
		a.Refs = refs
	}

	return assessments, nil
}

// Ensure AssessmentRepository implements the interface
var _ secondary.AssessmentRepository = (*AssessmentRepository)(nil)
