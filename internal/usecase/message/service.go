package message

import (
	"context"

	domainMessage "storefront-identity/internal/domain/message"
	"storefront-identity/internal/logger"
	appErrors "storefront-identity/pkg/errors"
	"storefront-identity/pkg/utils"

	"go.uber.org/zap"
)

// Service handles storefront contact messages
type Service struct {
	repo domainMessage.Repository
}

func NewService(repo domainMessage.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req *CreateMessageRequest) (*MessageResponse, error) {
	req.Email = utils.SanitizeEmail(req.Email)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewValidationError("Invalid input", err)
	}

	msg := &domainMessage.Message{
		Name:    utils.SanitizeString(req.Name),
		Email:   req.Email,
		Subject: utils.SanitizeString(req.Subject),
		Body:    utils.SanitizeText(req.Message),
	}
	if msg.Name == "" || msg.Email == "" || msg.Body == "" {
		return nil, appErrors.NewValidationError("All fields are required", nil)
	}

	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, err
	}

	logger.Info("Contact message received",
		zap.String("message_id", msg.ID),
		logger.Event("message_created"),
	)
	return ToMessageResponse(msg), nil
}

func (s *Service) List(ctx context.Context) ([]*MessageResponse, error) {
	messages, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]*MessageResponse, len(messages))
	for i, m := range messages {
		responses[i] = ToMessageResponse(m)
	}
	return responses, nil
}

func (s *Service) MarkAsRead(ctx context.Context, id string) (*MessageResponse, error) {
	msg, err := s.repo.MarkAsRead(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToMessageResponse(msg), nil
}
