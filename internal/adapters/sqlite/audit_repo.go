package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/lcs/internal/models"
	"github.com/example/lcs/internal/ports/secondary"
)

// AuditRepository reads the append-only audit trail. Writes go through the
// record repositories' transactions only.
type AuditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new SQLite audit repository.
func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func scanAuditEvent(scanner interface {
	Scan(dest ...any) error
}) (*models.AuditEvent, error) {
	e := &models.AuditEvent{}
	var note sql.NullString
	err := scanner.Scan(&e.ID, &e.EntityKind, &e.RecordID, &e.Version, &e.Action, &e.Actor, &e.At, &note)
	if err != nil {
		return nil, err
	}
	e.Note = note.String
	return e, nil
}

// ListForRecord returns every audit event for one record, oldest first.
func (r *AuditRepository) ListForRecord(ctx context.Context, entityKind, recordID string) ([]*models.AuditEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, entity_kind, record_id, version, action, actor, at, note FROM audit_log WHERE entity_kind = ? AND record_id = ? ORDER BY id ASC",
		entityKind, recordID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	defer rows.Close()

	var events []*models.AuditEvent
	for rows.Next() {
		e, err := scanAuditEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

// LatestForAction returns the most recent event of one action for a
// record, or ErrNotFound.
func (r *AuditRepository) LatestForAction(ctx context.Context, entityKind, recordID, action string) (*models.AuditEvent, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, entity_kind, record_id, version, action, actor, at, note FROM audit_log WHERE entity_kind = ? AND record_id = ? AND action = ? ORDER BY id DESC LIMIT 1",
		entityKind, recordID, action,
	)

	e, err := scanAuditEvent(row)
	if err == sql.ErrNoRows {
		return nil, secondary.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest audit event: %w", err)
	}

	return e, nil
}

// Ensure AuditRepository implements the interface
var _ secondary.AuditRepository = (*AuditRepository)(nil)
