package audit

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	topic   string
	qos     byte
	payload []byte
}

type fakeClient struct {
	mu   sync.Mutex
	sent []published
	err  error
}

func (f *fakeClient) Publish(topic string, qos byte, retained bool, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{topic: topic, qos: qos, payload: payload})
	return nil
}

type capturePublisher struct {
	events []Event
}

func (c *capturePublisher) Publish(_ context.Context, e Event) {
	c.events = append(c.events, e)
}

func TestMQTTPublisher_Publish(t *testing.T) {
	client := &fakeClient{}
	p := NewMQTTPublisher(client, "storefront/identity/events/", 1)

	p.Publish(context.Background(), Event{Type: EventPromoted, AccountID: "acc-1", OccurredAt: time.Now()})

	require.Len(t, client.sent, 1)
	assert.Equal(t, "storefront/identity/events/account.promoted", client.sent[0].topic)
	assert.Equal(t, byte(1), client.sent[0].qos)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(client.sent[0].payload, &decoded))
	assert.Equal(t, "account.promoted", decoded["type"])
	assert.Equal(t, "acc-1", decoded["accountId"])
}

func TestMQTTPublisher_ErrorIsSwallowed(t *testing.T) {
	p := NewMQTTPublisher(&fakeClient{err: errors.New("not connected")}, "t", 0)
	assert.NotPanics(t, func() {
		p.Publish(context.Background(), Event{Type: EventLoginFailed})
	})
}

func TestRecorder_CountsAndForwards(t *testing.T) {
	pub := &capturePublisher{}
	r := NewRecorder(pub, NewMetricsTracker())
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	ctx := context.Background()
	r.Record(ctx, EventRegistered, "acc-1", "")
	r.Record(ctx, EventLoginFailed, "acc-1", "incorrect password")
	r.Record(ctx, EventLoginFailed, "", "unknown email")
	r.Record(ctx, EventLoginSucceeded, "acc-1", "")
	r.Record(ctx, EventResetDispatchFailed, "acc-1", "")
	r.Record(ctx, EventGateRejected, "", "promote")

	m := r.Metrics()
	assert.Equal(t, int64(1), m.Registrations)
	assert.Equal(t, int64(2), m.LoginsFailed)
	assert.Equal(t, int64(1), m.LoginsSucceeded)
	assert.Equal(t, int64(1), m.DispatchFailures)
	assert.Equal(t, int64(1), m.GateRejections)
	assert.Equal(t, fixed, m.LastEventAt)

	require.Len(t, pub.events, 6)
	assert.Equal(t, "incorrect password", pub.events[1].Reason)
}

func TestMetricsTracker_Concurrent(t *testing.T) {
	tracker := NewMetricsTracker()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.observe(Event{Type: EventPromoted, OccurredAt: time.Now()})
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), tracker.Snapshot().Promotions)
}

func TestNewRecorder_Defaults(t *testing.T) {
	r := NewRecorder(nil, nil)
	assert.NotPanics(t, func() {
		r.Record(context.Background(), EventDeleted, "acc-1", "")
	})
	assert.Equal(t, int64(1), r.Metrics().AccountsDeleted)
}
