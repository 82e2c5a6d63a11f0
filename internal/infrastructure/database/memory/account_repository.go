// Package memory keeps accounts and messages in process memory. It backs
// DB_DRIVER=memory for local development and the HTTP tests; data is lost on
// restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"storefront-identity/internal/domain/account"

	"github.com/google/uuid"
)

type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*account.Account
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{accounts: make(map[string]*account.Account)}
}

func (r *AccountRepository) Insert(_ context.Context, a *account.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTaken(a.Email, "") {
		return account.ErrAccountExists
	}

	now := time.Now().UTC()
	a.ID = uuid.NewString()
	a.CreatedAt = now
	a.UpdatedAt = now

	cp := *a
	r.accounts[a.ID] = &cp
	return nil
}

func (r *AccountRepository) FindByID(_ context.Context, id string) (*account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[id]
	if !ok {
		return nil, account.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *AccountRepository) FindByEmail(_ context.Context, email string) (*account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, account.ErrAccountNotFound
}

func (r *AccountRepository) FindByResetToken(_ context.Context, token string, notExpiredAsOf time.Time) (*account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if a := r.pendingReset(token, notExpiredAsOf); a != nil {
		cp := *a
		return &cp, nil
	}
	return nil, account.ErrAccountNotFound
}

func (r *AccountRepository) List(_ context.Context) ([]*account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*account.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *AccountRepository) UpdateByID(_ context.Context, id string, patch account.Patch) (*account.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok {
		return nil, account.ErrAccountNotFound
	}
	if patch.Email != nil && r.emailTaken(*patch.Email, id) {
		return nil, account.ErrAccountExists
	}

	patch.Apply(a)
	a.UpdatedAt = time.Now().UTC()

	cp := *a
	return &cp, nil
}

func (r *AccountRepository) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[id]; !ok {
		return account.ErrAccountNotFound
	}
	delete(r.accounts, id)
	return nil
}

func (r *AccountRepository) SetResetToken(_ context.Context, id, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok {
		return account.ErrAccountNotFound
	}
	a.ResetToken = token
	a.ResetExpires = &expiresAt
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *AccountRepository) ConsumeResetToken(_ context.Context, token string, now time.Time, passwordHash string) (*account.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a := r.pendingReset(token, now)
	if a == nil {
		return nil, account.ErrResetTokenInvalid
	}

	a.PasswordHash = passwordHash
	a.ResetToken = ""
	a.ResetExpires = nil
	a.UpdatedAt = now

	cp := *a
	return &cp, nil
}

func (r *AccountRepository) ClearExpiredResetTokens(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var cleared int64
	for _, a := range r.accounts {
		if a.ResetExpires != nil && !a.ResetExpires.After(now) {
			a.ResetToken = ""
			a.ResetExpires = nil
			cleared++
		}
	}
	return cleared, nil
}

func (r *AccountRepository) Health(context.Context) error {
	return nil
}

// callers hold r.mu
func (r *AccountRepository) emailTaken(email, exceptID string) bool {
	for id, a := range r.accounts {
		if id != exceptID && a.Email == email {
			return true
		}
	}
	return false
}

// callers hold r.mu
func (r *AccountRepository) pendingReset(token string, now time.Time) *account.Account {
	if token == "" {
		return nil
	}
	for _, a := range r.accounts {
		if a.ResetToken == token && a.HasPendingReset(now) {
			return a
		}
	}
	return nil
}
