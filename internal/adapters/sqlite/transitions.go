// Package sqlite contains SQLite implementations of the repository
// interfaces. Every guarded status transition runs as one transaction:
// conditional UPDATE plus audit INSERT, so a transition can never land
// without its audit row.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/lcs/internal/models"
	"github.com/example/lcs/internal/ports/secondary"
)

// transitioner implements secondary.Transitioner for one record table.
// The three record tables share the same (record_id, version, status)
// shape, so the table name and audit entity kind are the only variation.
type transitioner struct {
	db         *sql.DB
	table      string
	entityKind string

	// confirmGuard, when set, re-checks table-specific invariants inside
	// the confirm transaction, after all gate reads from the pool.
	confirmGuard func(ctx context.Context, tx *sql.Tx, recordID string, version int) error
}

// insertAudit appends one audit row inside an open transaction.
func insertAudit(ctx context.Context, tx *sql.Tx, entityKind, recordID string, version int, action, actor, note string) error {
	var noteArg sql.NullString
	if note != "" {
		noteArg = sql.NullString{String: note, Valid: true}
	}

	_, err := tx.ExecContext(ctx,
		"INSERT INTO audit_log (entity_kind, record_id, version, action, actor, at, note) VALUES (?, ?, ?, ?, ?, ?, ?)",
		entityKind, recordID, version, action, actor, time.Now().UTC(), noteArg,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit row: %w", err)
	}
	return nil
}

// statusPlaceholders builds the IN (...) clause arguments for a
// conditional update.
func statusPlaceholders(from []string) (string, []any) {
	marks := make([]string, len(from))
	args := make([]any, len(from))
	for i, s := range from {
		marks[i] = "?"
		args[i] = s
	}
	return strings.Join(marks, ", "), args
}

// UpdateStatus conditionally moves one record version to p.To and appends
// the audit row, in a single transaction.
func (t *transitioner) UpdateStatus(ctx context.Context, p secondary.TransitionParams) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	marks, fromArgs := statusPlaceholders(p.From)
	args := append([]any{p.To, time.Now().UTC(), p.Actor, p.RecordID, p.Version}, fromArgs...)

	result, err := tx.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET status = ?, updated_at = ?, updated_by = ? WHERE record_id = ? AND version = ? AND status IN (%s)", t.table, marks),
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		// Distinguish a missing row from a row in the wrong status.
		var exists int
		err = tx.QueryRowContext(ctx,
			fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE record_id = ? AND version = ?", t.table),
			p.RecordID, p.Version,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check record existence: %w", err)
		}
		if exists == 0 {
			return secondary.ErrNotFound
		}
		return secondary.ErrStatusConflict
	}

	if err := insertAudit(ctx, tx, t.entityKind, p.RecordID, p.Version, p.Action, p.Actor, p.Note); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transition: %w", err)
	}
	return nil
}

// Confirm moves one record version to confirmed, stamps the review
// bookkeeping, and deprecates any other currently-confirmed version of
// the same record, all in a single transaction. At most one version per
// record is ever confirmed.
func (t *transitioner) Confirm(ctx context.Context, p secondary.TransitionParams) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	if t.confirmGuard != nil {
		if err := t.confirmGuard(ctx, tx, p.RecordID, p.Version); err != nil {
			return err
		}
	}

	marks, fromArgs := statusPlaceholders(p.From)
	args := append([]any{now, p.Actor, now, p.Actor, p.RecordID, p.Version}, fromArgs...)

	result, err := tx.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET status = 'confirmed', updated_at = ?, updated_by = ?, reviewed_at = ?, reviewed_by = ? WHERE record_id = ? AND version = ? AND status IN (%s)", t.table, marks),
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to confirm: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		var exists int
		err = tx.QueryRowContext(ctx,
			fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE record_id = ? AND version = ?", t.table),
			p.RecordID, p.Version,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check record existence: %w", err)
		}
		if exists == 0 {
			return secondary.ErrNotFound
		}
		return secondary.ErrStatusConflict
	}

	// Deprecate the predecessor, if a different version was confirmed.
	rows, err := tx.QueryContext(ctx,
		fmt.Sprintf("SELECT version FROM %s WHERE record_id = ? AND status = 'confirmed' AND version != ?", t.table),
		p.RecordID, p.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to find confirmed predecessors: %w", err)
	}
	var predecessors []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan predecessor version: %w", err)
		}
		predecessors = append(predecessors, v)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate predecessors: %w", err)
	}

	for _, v := range predecessors {
		_, err := tx.ExecContext(ctx,
			fmt.Sprintf("UPDATE %s SET status = 'deprecated', updated_at = ?, updated_by = ? WHERE record_id = ? AND version = ?", t.table),
			now, p.Actor, p.RecordID, v,
		)
		if err != nil {
			return fmt.Errorf("failed to deprecate predecessor: %w", err)
		}
		note := fmt.Sprintf("superseded by version %d", p.Version)
		if err := insertAudit(ctx, tx, t.entityKind, p.RecordID, v, models.ActionDeprecate, p.Actor, note); err != nil {
			return err
		}
	}

	if err := insertAudit(ctx, tx, t.entityKind, p.RecordID, p.Version, p.Action, p.Actor, p.Note); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit confirm: %w", err)
	}
	return nil
}
