package audit

import (
	"sync"
	"time"
)

// IdentityMetrics counts identity lifecycle events since startup.
type IdentityMetrics struct {
	Registrations    int64     `json:"registrations"`
	AccountsCreated  int64     `json:"accountsCreated"`
	AccountsUpdated  int64     `json:"accountsUpdated"`
	AccountsDeleted  int64     `json:"accountsDeleted"`
	LoginsSucceeded  int64     `json:"loginsSucceeded"`
	LoginsFailed     int64     `json:"loginsFailed"`
	ResetsRequested  int64     `json:"resetsRequested"`
	ResetsCompleted  int64     `json:"resetsCompleted"`
	ResetsRejected   int64     `json:"resetsRejected"`
	DispatchFailures int64     `json:"dispatchFailures"`
	Promotions       int64     `json:"promotions"`
	GateRejections   int64     `json:"gateRejections"`
	LastEventAt      time.Time `json:"lastEventAt"`
}

// MetricsTracker provides a goroutine-safe wrapper around IdentityMetrics.
type MetricsTracker struct {
	mu      sync.RWMutex
	metrics IdentityMetrics
}

func NewMetricsTracker() *MetricsTracker {
	return &MetricsTracker{}
}

// Update applies a mutation in a thread-safe way.
func (t *MetricsTracker) Update(fn func(*IdentityMetrics)) {
	if fn == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	fn(&t.metrics)
}

// Snapshot returns a copy of the current metrics.
func (t *MetricsTracker) Snapshot() IdentityMetrics {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.metrics
}

func (t *MetricsTracker) observe(event Event) {
	t.Update(func(m *IdentityMetrics) {
		switch event.Type {
		case EventRegistered:
			m.Registrations++
		case EventCreated:
			m.AccountsCreated++
		case EventUpdated:
			m.AccountsUpdated++
		case EventDeleted:
			m.AccountsDeleted++
		case EventLoginSucceeded:
			m.LoginsSucceeded++
		case EventLoginFailed:
			m.LoginsFailed++
		case EventResetRequested:
			m.ResetsRequested++
		case EventResetCompleted:
			m.ResetsCompleted++
		case EventResetRejected:
			m.ResetsRejected++
		case EventResetDispatchFailed:
			m.DispatchFailures++
		case EventPromoted:
			m.Promotions++
		case EventGateRejected:
			m.GateRejections++
		}
		if event.OccurredAt.After(m.LastEventAt) {
			m.LastEventAt = event.OccurredAt
		}
	})
}
