package domain

import "time"

// AccountEventType names an auditable action on an account.
type AccountEventType string

const (
	EventRegistered     AccountEventType = "registered"
	EventLoginSucceeded AccountEventType = "login_succeeded"
	EventLoginFailed    AccountEventType = "login_failed"
	EventUpdated        AccountEventType = "updated"
	EventDeleted        AccountEventType = "deleted"
)

// AccountEvent is an entry in the account audit trail.
type AccountEvent struct {
	Type      AccountEventType
	AccountID string // empty for failed logins against unknown emails
	Email     string
	ActorID   string // who performed the action; equals AccountID for self-service
	RequestID string
	At        time.Time
}

// ShardKey returns the key used to keep events for one account in order.
func (e AccountEvent) ShardKey() string {
	if e.AccountID != "" {
		return e.AccountID
	}
	return e.Email
}
