package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront-identity/internal/audit"
	domainAccount "storefront-identity/internal/domain/account"
	"storefront-identity/internal/gate"
	"storefront-identity/internal/logger"
	"storefront-identity/internal/notification"
	appErrors "storefront-identity/pkg/errors"
	"storefront-identity/pkg/utils"

	"go.uber.org/zap"
)

// bcrypt only considers the first 72 bytes of a password.
const maxPasswordBytes = 72

const (
	msgAllFieldsRequired     = "All fields are required"
	msgCredentialsRequired   = "Email and password are required"
	msgEmailRequired         = "Email required"
	msgTokenPasswordRequired = "Token and password required"
	msgInvalidInput          = "Invalid input"
	msgPasswordTooLong       = "Password must be at most 72 bytes"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hashed string) bool
}

type TokenIssuer interface {
	Issue(accountID string, isAdmin bool) (string, time.Time, error)
}

type ResetNotifier interface {
	SendResetToken(ctx context.Context, to, token string) (*notification.Receipt, error)
}

type ResetThrottle interface {
	Allow(ctx context.Context, email string) error
}

// Dependencies are the collaborators of the identity service. All are
// required.
type Dependencies struct {
	Repository domainAccount.Repository
	Hasher     PasswordHasher
	Tokens     TokenIssuer
	Notifier   ResetNotifier
	Throttle   ResetThrottle
	Gate       gate.Gate
	Recorder   *audit.Recorder
}

// Service implements the account and credential use cases
type Service struct {
	repo     domainAccount.Repository
	hasher   PasswordHasher
	tokens   TokenIssuer
	notifier ResetNotifier
	throttle ResetThrottle
	gate     gate.Gate
	recorder *audit.Recorder
	now      func() time.Time
}

func NewService(deps Dependencies) *Service {
	return &Service{
		repo:     deps.Repository,
		hasher:   deps.Hasher,
		tokens:   deps.Tokens,
		notifier: deps.Notifier,
		throttle: deps.Throttle,
		gate:     deps.Gate,
		recorder: deps.Recorder,
		now:      time.Now,
	}
}

func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AccountSummary, error) {
	a, err := s.createAccount(ctx, req)
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, audit.EventRegistered, a.ID, "")
	logger.Info("Account registered",
		zap.String("account_id", a.ID),
		logger.Event("account_registered"),
	)

	return ToAccountSummary(a), nil
}

// AdminCreate applies the registration rules on behalf of an administrator.
func (s *Service) AdminCreate(ctx context.Context, req *RegisterRequest) (*AccountSummary, error) {
	a, err := s.createAccount(ctx, req)
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, audit.EventCreated, a.ID, "")
	logger.Info("Account created by admin",
		zap.String("account_id", a.ID),
		logger.Event("account_created"),
	)

	return ToAccountSummary(a), nil
}

func (s *Service) createAccount(ctx context.Context, req *RegisterRequest) (*domainAccount.Account, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = utils.SanitizeEmail(req.Email)
	req.Phone = utils.SanitizePhone(req.Phone)
	name := domainAccount.DisplayName(req.Name, req.FirstName, req.LastName)

	if name == "" || req.Email == "" || req.Password == "" {
		return nil, appErrors.NewValidationError(msgAllFieldsRequired, nil)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewValidationError(msgInvalidInput, err)
	}
	if len(req.Password) > maxPasswordBytes {
		return nil, appErrors.NewValidationError(msgPasswordTooLong, nil)
	}

	existing, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, domainAccount.ErrAccountNotFound) {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if existing != nil {
		logger.Warn("Registration attempt with existing email",
			logger.Event("registration_failed_duplicate_email"),
		)
		return nil, domainAccount.ErrAccountExists
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	a := &domainAccount.Account{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Name:         name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hashed,
	}

	// A concurrent registration can still win between the check and the
	// insert; the store reports that as ErrAccountExists.
	if err := s.repo.Insert(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResult, error) {
	email := utils.SanitizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, appErrors.NewValidationError(msgCredentialsRequired, nil)
	}

	a, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainAccount.ErrAccountNotFound) {
			s.recorder.Record(ctx, audit.EventLoginFailed, "", "unknown email")
			logger.Warn("Login attempt with non-existent email",
				logger.Event("user_not_found"),
			)
		}
		return nil, err
	}

	if !s.hasher.Verify(req.Password, a.PasswordHash) {
		s.recorder.Record(ctx, audit.EventLoginFailed, a.ID, "incorrect password")
		logger.Warn("Login attempt with invalid password",
			zap.String("account_id", a.ID),
			logger.Event("login_failed_invalid_password"),
		)
		return nil, appErrors.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(a.ID, a.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	s.recorder.Record(ctx, audit.EventLoginSucceeded, a.ID, "")
	logger.Info("Account logged in",
		zap.String("account_id", a.ID),
		zap.Bool("is_admin", a.IsAdmin),
		logger.Event("login_success"),
	)

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      ToAccountSummary(a),
	}, nil
}

func (s *Service) ListAccounts(ctx context.Context) ([]*AccountSummary, error) {
	accounts, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return ToAccountSummaries(accounts), nil
}

func (s *Service) GetAccount(ctx context.Context, id string) (*AccountSummary, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToAccountSummary(a), nil
}

// UpdateAccount applies an owner or admin edit. Promotion is not reachable
// through it.
func (s *Service) UpdateAccount(ctx context.Context, id string, req *UpdateAccountRequest) (*AccountSummary, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch, err := s.buildPatch(current, req)
	if err != nil {
		return nil, err
	}

	if patch.Email != nil && *patch.Email != current.Email {
		other, err := s.repo.FindByEmail(ctx, *patch.Email)
		if err != nil && !errors.Is(err, domainAccount.ErrAccountNotFound) {
			return nil, fmt.Errorf("failed to check existing account: %w", err)
		}
		if other != nil && other.ID != current.ID {
			return nil, domainAccount.ErrAccountExists
		}
	}

	updated, err := s.repo.UpdateByID(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, audit.EventUpdated, updated.ID, "")
	logger.Info("Account updated",
		zap.String("account_id", updated.ID),
		zap.Bool("password_changed", patch.PasswordHash != nil),
		logger.Event("account_updated"),
	)

	return ToAccountSummary(updated), nil
}

// buildPatch turns the tri-state request into a domain patch. The display
// name follows the name parts when they change and no name is given.
func (s *Service) buildPatch(current *domainAccount.Account, req *UpdateAccountRequest) (domainAccount.Patch, error) {
	var patch domainAccount.Patch

	required := []struct {
		label string
		value OptionalString
	}{
		{"Name", req.Name},
		{"Email", req.Email},
		{"Password", req.Password},
	}
	for _, field := range required {
		if field.value.Cleared() {
			return patch, appErrors.NewValidationError(field.label+" cannot be empty", nil)
		}
	}

	if req.FirstName.Set {
		v := strings.TrimSpace(req.FirstName.Value)
		patch.FirstName = &v
	}
	if req.LastName.Set {
		v := strings.TrimSpace(req.LastName.Value)
		patch.LastName = &v
	}
	if req.Phone.Set {
		v := utils.SanitizePhone(req.Phone.Value)
		if v != "" && !utils.ValidatePhone(v) {
			return patch, appErrors.NewValidationError(msgInvalidInput, errors.New("invalid phone number"))
		}
		patch.Phone = &v
	}
	if req.Email.Set {
		v := utils.SanitizeEmail(req.Email.Value)
		if !utils.IsValidEmail(v) {
			return patch, appErrors.NewValidationError(msgInvalidInput, errors.New("invalid email address"))
		}
		patch.Email = &v
	}
	if req.Password.Set {
		if len(req.Password.Value) > maxPasswordBytes {
			return patch, appErrors.NewValidationError(msgPasswordTooLong, nil)
		}
		hashed, err := s.hasher.Hash(req.Password.Value)
		if err != nil {
			return patch, fmt.Errorf("failed to hash password: %w", err)
		}
		patch.PasswordHash = &hashed
	}

	if req.Name.Set {
		v := strings.TrimSpace(req.Name.Value)
		patch.Name = &v
	} else if patch.FirstName != nil || patch.LastName != nil {
		first, last := current.FirstName, current.LastName
		if patch.FirstName != nil {
			first = *patch.FirstName
		}
		if patch.LastName != nil {
			last = *patch.LastName
		}
		if derived := domainAccount.DisplayName("", first, last); derived != "" {
			patch.Name = &derived
		}
	}

	return patch, nil
}

func (s *Service) AdminDelete(ctx context.Context, id string) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}

	s.recorder.Record(ctx, audit.EventDeleted, id, "")
	logger.Info("Account deleted by admin",
		zap.String("account_id", id),
		logger.Event("account_deleted"),
	)
	return nil
}

// Promote grants admin rights. The shared secret is checked before the
// account is looked up, so an unknown email is never revealed to callers
// without it.
func (s *Service) Promote(ctx context.Context, presentedSecret string, req *PromoteRequest) error {
	if err := s.AuthorizePrivileged(ctx, presentedSecret, "promote"); err != nil {
		return err
	}

	email := utils.SanitizeEmail(req.Email)
	if email == "" {
		return appErrors.NewValidationError(msgEmailRequired, nil)
	}

	a, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	admin := true
	if _, err := s.repo.UpdateByID(ctx, a.ID, domainAccount.Patch{IsAdmin: &admin}); err != nil {
		return err
	}

	s.recorder.Record(ctx, audit.EventPromoted, a.ID, "")
	logger.Info("Account promoted to admin",
		zap.String("account_id", a.ID),
		logger.Event("account_promoted"),
	)
	return nil
}

func (s *Service) DebugListAccounts(ctx context.Context, presentedSecret string) ([]*AccountSummary, error) {
	if err := s.AuthorizePrivileged(ctx, presentedSecret, "debug_list"); err != nil {
		return nil, err
	}
	return s.ListAccounts(ctx)
}

// AuthorizePrivileged runs the shared-secret gate for operation.
func (s *Service) AuthorizePrivileged(ctx context.Context, presentedSecret, operation string) error {
	if s.gate.Authorize(presentedSecret) {
		return nil
	}

	s.recorder.Record(ctx, audit.EventGateRejected, "", operation)
	logger.Warn("Privileged operation rejected",
		zap.String("operation", operation),
		logger.Event("gate_rejected"),
	)
	return appErrors.ErrUnauthorized
}

// Metrics returns the identity counters.
func (s *Service) Metrics() audit.IdentityMetrics {
	return s.recorder.Metrics()
}
