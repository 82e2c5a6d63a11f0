package account

import (
	"time"

	domainAccount "storefront-identity/internal/domain/account"
)

type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
	Name      string `json:"name" validate:"max=255"`
	Email     string `json:"email" validate:"omitempty,email,max=255"`
	Password  string `json:"password"`
	Phone     string `json:"phone" validate:"omitempty,phone"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// PromoteRequest may carry the shared secret in AdminKey when the header is
// not used.
type PromoteRequest struct {
	Email    string `json:"email"`
	AdminKey string `json:"adminKey"`
}

// UpdateAccountRequest is a partial update. Fields left out of the body are
// untouched; null clears optional fields and is rejected for required ones.
type UpdateAccountRequest struct {
	FirstName OptionalString `json:"firstName"`
	LastName  OptionalString `json:"lastName"`
	Name      OptionalString `json:"name"`
	Email     OptionalString `json:"email"`
	Password  OptionalString `json:"password"`
	Phone     OptionalString `json:"phone"`
}

// AccountSummary is the caller-visible projection of an account. It never
// includes the password hash or reset token fields.
type AccountSummary struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *AccountSummary
}

func ToAccountSummary(a *domainAccount.Account) *AccountSummary {
	if a == nil {
		return nil
	}
	return &AccountSummary{
		ID:        a.ID,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Name:      a.Name,
		Email:     a.Email,
		Phone:     a.Phone,
		IsAdmin:   a.IsAdmin,
		CreatedAt: a.CreatedAt,
	}
}

func ToAccountSummaries(accounts []*domainAccount.Account) []*AccountSummary {
	summaries := make([]*AccountSummary, len(accounts))
	for i, a := range accounts {
		summaries[i] = ToAccountSummary(a)
	}
	return summaries
}
