package message

import "context"

type Repository interface {
	Create(ctx context.Context, msg *Message) error
	// List returns messages newest first.
	List(ctx context.Context) ([]*Message, error)
	MarkAsRead(ctx context.Context, id string) (*Message, error)
}
