package ports

import (
	"context"

	"github.com/carelink/auth-server/internal/core/domain"
)

// AuditRecorder accepts account events. Implementations must not block the caller.
type AuditRecorder interface {
	Record(event domain.AccountEvent)
}

// AuditRepository persists account events.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.AccountEvent) error
}

// AuditService writes a single event to the audit trail.
type AuditService interface {
	Process(ctx context.Context, event domain.AccountEvent) error
}
