package notification

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultOutboxSize = 100

// CapturedMessage is a message held by the CaptureTransport.
type CapturedMessage struct {
	ID         string    `json:"id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Subject    string    `json:"subject"`
	Text       string    `json:"text"`
	HTML       string    `json:"html,omitempty"`
	CapturedAt time.Time `json:"capturedAt"`
}

// CaptureTransport keeps messages in memory instead of delivering them. Only
// the most recent messages are retained.
type CaptureTransport struct {
	mu         sync.RWMutex
	messages   map[string]*CapturedMessage
	order      []string
	limit      int
	previewURL string
}

// NewCaptureTransport returns a transport whose receipts link to
// previewBase/<id>.
func NewCaptureTransport(previewBase string, limit int) *CaptureTransport {
	if limit <= 0 {
		limit = defaultOutboxSize
	}
	return &CaptureTransport{
		messages:   make(map[string]*CapturedMessage),
		limit:      limit,
		previewURL: strings.TrimRight(previewBase, "/"),
	}
}

func (t *CaptureTransport) Send(ctx context.Context, msg *Message) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	captured := &CapturedMessage{
		ID:         uuid.NewString(),
		From:       msg.From,
		To:         msg.To,
		Subject:    msg.Subject,
		Text:       msg.Text,
		HTML:       msg.HTML,
		CapturedAt: time.Now().UTC(),
	}

	t.mu.Lock()
	t.messages[captured.ID] = captured
	t.order = append(t.order, captured.ID)
	for len(t.order) > t.limit {
		delete(t.messages, t.order[0])
		t.order = t.order[1:]
	}
	t.mu.Unlock()

	return &Receipt{
		ID:         captured.ID,
		PreviewURL: t.previewURL + "/" + captured.ID,
	}, nil
}

// Get returns a captured message by id.
func (t *CaptureTransport) Get(id string) (*CapturedMessage, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	msg, ok := t.messages[id]
	if !ok {
		return nil, false
	}
	cp := *msg
	return &cp, true
}

// List returns copies of the captured messages, newest first.
func (t *CaptureTransport) List() []*CapturedMessage {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]*CapturedMessage, 0, len(t.order))
	for i := len(t.order) - 1; i >= 0; i-- {
		cp := *t.messages[t.order[i]]
		out = append(out, &cp)
	}
	return out
}

func (t *CaptureTransport) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.order)
}
