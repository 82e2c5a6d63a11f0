package message

import (
	"errors"
	"time"
)

var ErrMessageNotFound = errors.New("message not found")

// Message is a contact-form submission from the storefront.
type Message struct {
	ID        string
	Name      string
	Email     string
	Subject   string
	Body      string
	IsRead    bool
	CreatedAt time.Time
}
