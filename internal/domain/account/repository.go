package account

import (
	"context"
	"time"
)

// Repository is the persistence contract for accounts. Lookups that match
// nothing return ErrAccountNotFound; any other error is an I/O failure.
// Implementations enforce email uniqueness and return ErrAccountExists on a
// duplicate insert or update.
type Repository interface {
	Insert(ctx context.Context, account *Account) error
	FindByID(ctx context.Context, id string) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	List(ctx context.Context) ([]*Account, error)
	UpdateByID(ctx context.Context, id string, patch Patch) (*Account, error)
	DeleteByID(ctx context.Context, id string) error

	// SetResetToken stores token and expiresAt on the account, replacing any
	// pending token.
	SetResetToken(ctx context.Context, id, token string, expiresAt time.Time) error
	FindByResetToken(ctx context.Context, token string, notExpiredAsOf time.Time) (*Account, error)
	// ConsumeResetToken atomically swaps in passwordHash and clears the reset
	// fields of the account holding token, provided it has not expired at now.
	// It returns ErrResetTokenInvalid when no account qualifies.
	ConsumeResetToken(ctx context.Context, token string, now time.Time, passwordHash string) (*Account, error)
	// ClearExpiredResetTokens drops reset fields that expired at or before now
	// and reports how many accounts were touched.
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)

	Health(ctx context.Context) error
}
