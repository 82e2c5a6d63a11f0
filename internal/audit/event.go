package audit

import "time"

type EventType string

const (
	EventRegistered          EventType = "account.registered"
	EventCreated             EventType = "account.created"
	EventUpdated             EventType = "account.updated"
	EventDeleted             EventType = "account.deleted"
	EventLoginSucceeded      EventType = "login.succeeded"
	EventLoginFailed         EventType = "login.failed"
	EventResetRequested      EventType = "reset.requested"
	EventResetDispatchFailed EventType = "reset.dispatch_failed"
	EventResetCompleted      EventType = "reset.completed"
	EventResetRejected       EventType = "reset.rejected"
	EventPromoted            EventType = "account.promoted"
	EventGateRejected        EventType = "gate.rejected"
)

// Event is an identity lifecycle record. It never carries credentials.
type Event struct {
	Type       EventType `json:"type"`
	AccountID  string    `json:"accountId,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}
