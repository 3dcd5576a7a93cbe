package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/lcs/internal/models"
	"github.com/example/lcs/internal/ports/secondary"
)

// ExportArtifactRepository records delivered exports.
type ExportArtifactRepository struct {
	db *sql.DB
}

// NewExportArtifactRepository creates a new SQLite export artifact
// repository.
func NewExportArtifactRepository(db *sql.DB) *ExportArtifactRepository {
	return &ExportArtifactRepository{db: db}
}

// Record persists one export artifact row and its audit event, in a
// single transaction.
func (r *ExportArtifactRepository) Record(ctx context.Context, a *secondary.ExportArtifact) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO export_artifacts (id, workflow_record_id, workflow_version, format, byte_size, created_at, created_by) VALUES (?, ?, ?, ?, ?, ?, ?)",
		a.ID, a.WorkflowRecordID, a.WorkflowVersion, a.Format, a.ByteSize, a.CreatedAt, a.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to record export artifact: %w", err)
	}

	note := fmt.Sprintf("exported %s (%d bytes)", a.Format, a.ByteSize)
	if err := insertAudit(ctx, tx, models.KindWorkflow, a.WorkflowRecordID, a.WorkflowVersion, models.ActionExport, a.CreatedBy, note); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit export artifact: %w", err)
	}
	return nil
}

// ListForWorkflow returns the export artifacts for one workflow record,
// newest first.
func (r *ExportArtifactRepository) ListForWorkflow(ctx context.Context, recordID string) ([]*secondary.ExportArtifact, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, workflow_record_id, workflow_version, format, byte_size, created_at, created_by FROM export_artifacts WHERE workflow_record_id = ? ORDER BY created_at DESC",
		recordID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list export artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []*secondary.ExportArtifact
	for rows.Next() {
		a := &secondary.ExportArtifact{}
		if err := rows.Scan(&a.ID, &a.WorkflowRecordID, &a.WorkflowVersion, &a.Format, &a.ByteSize, &a.CreatedAt, &a.CreatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan export artifact: %w", err)
		}
		artifacts = append(artifacts, a)
	}

	return artifacts, rows.Err()
}

// Ensure ExportArtifactRepository implements the interface
var _ secondary.ExportArtifactRepository = (*ExportArtifactRepository)(nil)
