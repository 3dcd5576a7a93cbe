package app

import (
	"context"
	"fmt"

	"github.com/example/lcs/internal/core/authz"
	"github.com/example/lcs/internal/models"
	"github.com/example/lcs/internal/ports/primary"
	"github.com/example/lcs/internal/ports/secondary"
)

// AuditServiceImpl implements the AuditService interface.
type AuditServiceImpl struct {
	auditRepo secondary.AuditRepository
}

// NewAuditService creates a new AuditService with injected dependencies.
func NewAuditService(auditRepo secondary.AuditRepository) *AuditServiceImpl {
	return &AuditServiceImpl{auditRepo: auditRepo}
}

// ListForRecord returns the full audit trail of one record, oldest first.
func (s *AuditServiceImpl) ListForRecord(ctx context.Context, actor primary.Actor, entityKind, recordID string) ([]*models.AuditEvent, error) {
	if err := requireAction(actor, authz.ActionAuditView); err != nil {
		return nil, err
	}
	switch entityKind {
	case models.KindTask, models.KindWorkflow, models.KindAssessment:
	default:
		return nil, NewValidationError("unknown entity kind %q", entityKind)
	}

	events, err := s.auditRepo.ListForRecord(ctx, entityKind, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	if len(events) == 0 {
		return nil, NewNotFoundError("%s %s not found", entityKind, recordID)
	}
	return events, nil
}

// Ensure AuditServiceImpl implements the interface.
var _ primary.AuditService = (*AuditServiceImpl)(nil)
