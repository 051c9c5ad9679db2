package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/carelink/auth-server/internal/core/domain"
	"github.com/carelink/auth-server/internal/core/ports"
	"github.com/carelink/auth-server/internal/pkg/metrics"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditService that persists events to repo.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Process persists a single account event.
func (s *auditService) Process(ctx context.Context, event domain.AccountEvent) error {
	if event.Type == "" {
		return fmt.Errorf("process audit event: missing type")
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	if err := s.repo.InsertEvent(ctx, &event); err != nil {
		return fmt.Errorf("process audit event: %w", err)
	}

	metrics.AuditEventsTotal.WithLabelValues(string(event.Type)).Inc()
	s.log.Debug().
		Str("type", string(event.Type)).
		Str("account_id", event.AccountID).
		Str("request_id", event.RequestID).
		Msg("audit event recorded")
	return nil
}

func recordEvent(ctx context.Context, rec ports.AuditRecorder, typ domain.AccountEventType, accountID, email, actorID string) {
	rec.Record(domain.AccountEvent{
		Type:      typ,
		AccountID: accountID,
		Email:     email,
		ActorID:   actorID,
		RequestID: domain.RequestIDFrom(ctx),
		At:        time.Now().UTC(),
	})
}

type discardAudit struct{}

func (discardAudit) Record(domain.AccountEvent) {}
