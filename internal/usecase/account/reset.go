package account

import (
	"context"
	"errors"
	"fmt"

	"storefront-identity/internal/audit"
	domainAccount "storefront-identity/internal/domain/account"
	"storefront-identity/internal/logger"
	appErrors "storefront-identity/pkg/errors"
	"storefront-identity/pkg/utils"

	"go.uber.org/zap"
)

// ForgotPassword issues a reset token and mails it. The outcome is the same
// whether or not the address belongs to an account; an unknown address only
// skips the issue and dispatch steps.
func (s *Service) ForgotPassword(ctx context.Context, req *ForgotPasswordRequest) error {
	email := utils.SanitizeEmail(req.Email)
	if email == "" {
		return appErrors.NewValidationError(msgEmailRequired, nil)
	}

	if err := s.throttle.Allow(ctx, email); err != nil {
		logger.Warn("Reset request throttled", logger.Event("reset_throttled"))
		return err
	}

	a, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainAccount.ErrAccountNotFound) {
			logger.Info("Reset requested for unknown email", logger.Event("reset_unknown_email"))
			return nil
		}
		return err
	}

	token, err := utils.GenerateResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	expiresAt := s.now().Add(utils.ResetTokenTTL)
	if err := s.repo.SetResetToken(ctx, a.ID, token, expiresAt); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	s.recorder.Record(ctx, audit.EventResetRequested, a.ID, "")

	if _, err := s.notifier.SendResetToken(ctx, a.Email, token); err != nil {
		s.recorder.Record(ctx, audit.EventResetDispatchFailed, a.ID, "")
		logger.Error("Failed to dispatch reset email",
			zap.String("account_id", a.ID),
			zap.Error(err),
			logger.Event("reset_dispatch_failed"),
		)
		return err
	}

	return nil
}

// ResetPassword consumes token and sets a new password. Wrong, expired and
// already used tokens all fail with ErrResetTokenInvalid.
func (s *Service) ResetPassword(ctx context.Context, token string, req *ResetPasswordRequest) error {
	if token == "" || req.Password == "" {
		return appErrors.NewValidationError(msgTokenPasswordRequired, nil)
	}
	if len(req.Password) > maxPasswordBytes {
		return appErrors.NewValidationError(msgPasswordTooLong, nil)
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	a, err := s.repo.ConsumeResetToken(ctx, token, s.now(), hashed)
	if err != nil {
		if errors.Is(err, domainAccount.ErrResetTokenInvalid) {
			s.recorder.Record(ctx, audit.EventResetRejected, "", "")
			logger.Warn("Reset attempted with invalid token", logger.Event("reset_token_invalid"))
		}
		return err
	}

	s.recorder.Record(ctx, audit.EventResetCompleted, a.ID, "")
	logger.Info("Password reset",
		zap.String("account_id", a.ID),
		logger.Event("password_reset"),
	)
	return nil
}
