package memory

import (
	"context"
	"sync"
	"time"

	"storefront-identity/internal/domain/message"

	"github.com/google/uuid"
)

type MessageRepository struct {
	mu       sync.RWMutex
	messages []*message.Message
}

func NewMessageRepository() *MessageRepository {
	return &MessageRepository{}
}

func (r *MessageRepository) Create(_ context.Context, msg *message.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	msg.ID = uuid.NewString()
	msg.CreatedAt = time.Now().UTC()
	msg.IsRead = false

	cp := *msg
	r.messages = append(r.messages, &cp)
	return nil
}

// List returns messages newest first.
func (r *MessageRepository) List(_ context.Context) ([]*message.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*message.Message, 0, len(r.messages))
	for i := len(r.messages) - 1; i >= 0; i-- {
		cp := *r.messages[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MessageRepository) MarkAsRead(_ context.Context, id string) (*message.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.messages {
		if m.ID == id {
			m.IsRead = true
			cp := *m
			return &cp, nil
		}
	}
	return nil, message.ErrMessageNotFound
}
