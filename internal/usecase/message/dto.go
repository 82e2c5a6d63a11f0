package message

import (
	"time"

	domainMessage "storefront-identity/internal/domain/message"
)

type CreateMessageRequest struct {
	Name    string `json:"name" validate:"max=255"`
	Email   string `json:"email" validate:"omitempty,email,max=255"`
	Subject string `json:"subject" validate:"max=255"`
	Message string `json:"message" validate:"max=5000"`
}

type MessageResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject,omitempty"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

func ToMessageResponse(m *domainMessage.Message) *MessageResponse {
	if m == nil {
		return nil
	}
	return &MessageResponse{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Subject:   m.Subject,
		Message:   m.Body,
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt,
	}
}
