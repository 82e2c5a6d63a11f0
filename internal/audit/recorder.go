package audit

import (
	"context"
	"time"
)

// Recorder stamps events, counts them and forwards them to a Publisher.
type Recorder struct {
	publisher Publisher
	metrics   *MetricsTracker
	now       func() time.Time
}

func NewRecorder(publisher Publisher, metrics *MetricsTracker) *Recorder {
	if publisher == nil {
		publisher = LogPublisher{}
	}
	if metrics == nil {
		metrics = NewMetricsTracker()
	}
	return &Recorder{
		publisher: publisher,
		metrics:   metrics,
		now:       time.Now,
	}
}

func (r *Recorder) Record(ctx context.Context, eventType EventType, accountID, reason string) {
	event := Event{
		Type:       eventType,
		AccountID:  accountID,
		Reason:     reason,
		OccurredAt: r.now().UTC(),
	}
	r.metrics.observe(event)
	r.publisher.Publish(ctx, event)
}

func (r *Recorder) Metrics() IdentityMetrics {
	return r.metrics.Snapshot()
}
