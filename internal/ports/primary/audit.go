package primary

import (
	"context"

	"github.com/example/lcs/internal/models"
)

// AuditService reads the append-only audit trail.
type AuditService interface {
	ListForRecord(ctx context.Context, actor Actor, entityKind, recordID string) ([]*models.AuditEvent, error)
}
